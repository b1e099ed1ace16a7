package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sincarebunch/barbershop-api/internal/model"
	"github.com/sincarebunch/barbershop-api/internal/repository"
)

// ProfileInput lists the fields a user wants to change.  Nil fields are
// left alone.
type ProfileInput struct {
	Name  *string
	Email *string
	Phone *string
}

type UserService struct {
	users  UserStore
	hasher PasswordHasher
}

func NewUserService(users UserStore, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// GetProfile returns the public profile of id.
func (s *UserService) GetProfile(ctx context.Context, id uint64) (model.Profile, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}
	return u.Profile(), nil
}

// UpdateProfile applies the supplied fields that differ from the stored
// ones.  Each changed value must not belong to another user; email is
// checked first, then name, then phone.  Nothing is written when no value
// actually changes.
func (s *UserService) UpdateProfile(ctx context.Context, id uint64, in ProfileInput) (model.Profile, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}

	var upd repository.ProfileUpdate
	if in.Email != nil && !strings.EqualFold(strings.TrimSpace(*in.Email), u.Email) {
		if err := s.ensureFree(ctx, id, s.users.GetByEmail, *in.Email, MsgProfileEmailTaken); err != nil {
			return model.Profile{}, err
		}
		upd.Email = in.Email
	}
	if in.Name != nil && *in.Name != u.Name {
		if err := s.ensureFree(ctx, id, s.users.GetByName, *in.Name, MsgProfileNameTaken); err != nil {
			return model.Profile{}, err
		}
		upd.Name = in.Name
	}
	if in.Phone != nil && *in.Phone != u.Phone {
		if err := s.ensureFree(ctx, id, s.users.GetByPhone, *in.Phone, MsgProfilePhoneTaken); err != nil {
			return model.Profile{}, err
		}
		upd.Phone = in.Phone
	}
	if upd.Empty() {
		return u.Profile(), nil
	}

	updated, err := s.users.Update(ctx, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return model.Profile{}, newError(ErrUserExists, MsgProfileEmailTaken)
		case errors.Is(err, repository.ErrNameExists):
			return model.Profile{}, newError(ErrUserExists, MsgProfileNameTaken)
		case errors.Is(err, repository.ErrPhoneExists):
			return model.Profile{}, newError(ErrUserExists, MsgProfilePhoneTaken)
		case errors.Is(err, repository.ErrUserNotFound):
			return model.Profile{}, newError(ErrUserNotFound, MsgUserNotFound)
		}
		return model.Profile{}, fmt.Errorf("update user: %w", err)
	}
	return updated.Profile(), nil
}

// ChangePassword replaces the password after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, id uint64, oldPassword, newPassword string) error {
	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(u.PasswordHash, oldPassword) {
		return newError(ErrInvalidCredentials, MsgWrongOldPassword)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return newError(ErrUserNotFound, MsgUserNotFound)
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *UserService) load(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, newError(ErrUserNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *UserService) ensureFree(ctx context.Context, self uint64, get func(context.Context, string) (*model.User, error), v, msg string) error {
	other, err := get(ctx, v)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check existing user: %w", err)
	case other.ID != self:
		return newError(ErrUserExists, msg)
	}
	return nil
}
