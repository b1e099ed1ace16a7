package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sincarebunch/barbershop-api/internal/model"
	"github.com/sincarebunch/barbershop-api/internal/queue"
	"github.com/sincarebunch/barbershop-api/internal/repository"
)

// UserStore is the subset of the user repository the services need.
type UserStore interface {
	Create(ctx context.Context, nu repository.NewUser) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByName(ctx context.Context, name string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	Update(ctx context.Context, id uint64, upd repository.ProfileUpdate) (*model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

// TokenStore persists refresh tokens.  Every method takes the raw value.
type TokenStore interface {
	Create(ctx context.Context, userID uint64) (string, error)
	FindValid(ctx context.Context, raw string) (*model.RefreshToken, error)
	Delete(ctx context.Context, raw string) (bool, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// EventPublisher receives registration events.  A nil publisher disables
// publishing.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Session is what login and refresh hand back: the user (never with its
// password) and a freshly stored raw refresh token.
type Session struct {
	User         model.Profile
	RefreshToken string
}

type AuthService struct {
	users  UserStore
	tokens TokenStore
	hasher PasswordHasher
	events EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(users UserStore, tokens TokenStore, hasher PasswordHasher, events EventPublisher, log *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		events: events,
		log:    log.Named("auth"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a customer account.  The email, name and phone checks
// run concurrently and all finish before a verdict is reached; when more
// than one collides, email wins over name, name over phone.  The unique
// indexes stay authoritative, so a lost race on insert is reported with
// the same messages.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.Profile, error) {
	var emailTaken, nameTaken, phoneTaken bool

	var g errgroup.Group
	g.Go(func() error {
		var err error
		emailTaken, err = s.exists(ctx, s.users.GetByEmail, in.Email)
		return err
	})
	g.Go(func() error {
		var err error
		nameTaken, err = s.exists(ctx, s.users.GetByName, in.Name)
		return err
	})
	g.Go(func() error {
		var err error
		phoneTaken, err = s.exists(ctx, s.users.GetByPhone, in.Phone)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Profile{}, fmt.Errorf("check existing user: %w", err)
	}

	switch {
	case emailTaken:
		return model.Profile{}, newError(ErrUserExists, MsgEmailTaken)
	case nameTaken:
		return model.Profile{}, newError(ErrUserExists, MsgUsernameTaken)
	case phoneTaken:
		return model.Profile{}, newError(ErrUserExists, MsgPhoneNumberTaken)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.Profile{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, repository.NewUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
	})
	if err != nil {
		if e := registerConflict(err); e != nil {
			return model.Profile{}, e
		}
		return model.Profile{}, fmt.Errorf("create user: %w", err)
	}

	s.publishRegistered(ctx, u)
	return u.Profile(), nil
}

func (s *AuthService) exists(ctx context.Context, get func(context.Context, string) (*model.User, error), v string) (bool, error) {
	_, err := get(ctx, v)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

func registerConflict(err error) *Error {
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return newError(ErrUserExists, MsgEmailTaken)
	case errors.Is(err, repository.ErrNameExists):
		return newError(ErrUserExists, MsgUsernameTaken)
	case errors.Is(err, repository.ErrPhoneExists):
		return newError(ErrUserExists, MsgPhoneNumberTaken)
	}
	return nil
}

func (s *AuthService) publishRegistered(ctx context.Context, u *model.User) {
	if s.events == nil {
		return
	}
	ev := queue.UserRegisteredEvent{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		RegisteredAt: s.now(),
	}
	if err := s.events.PublishUserRegistered(ctx, ev); err != nil {
		s.log.Warn("publish user.registered failed", zap.Uint64("user_id", u.ID), zap.Error(err))
	}
}

// Login checks the credentials and opens a new session.  Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Session{}, newError(ErrInvalidCredentials, MsgInvalidLogin)
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return Session{}, newError(ErrInvalidCredentials, MsgInvalidLogin)
	}
	raw, err := s.tokens.Create(ctx, u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("store refresh token: %w", err)
	}
	return Session{User: u.Profile(), RefreshToken: raw}, nil
}

// Logout revokes a single refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return newError(ErrInvalidToken, MsgLogoutMissing)
	}
	deleted, err := s.tokens.Delete(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	if !deleted {
		return newError(ErrInvalidToken, MsgLogoutInvalid)
	}
	return nil
}

// Refresh rotates a refresh token.  The old token is deleted before the new
// one is stored; if the delete finds nothing another rotation already
// consumed it and this one fails.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (Session, error) {
	if oldToken == "" {
		return Session{}, newError(ErrInvalidToken, MsgRefreshMissing)
	}
	stored, err := s.tokens.FindValid(ctx, oldToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return Session{}, newError(ErrInvalidToken, MsgRefreshInvalid)
		}
		return Session{}, fmt.Errorf("find refresh token: %w", err)
	}
	deleted, err := s.tokens.Delete(ctx, oldToken)
	if err != nil {
		return Session{}, fmt.Errorf("delete refresh token: %w", err)
	}
	if !deleted {
		return Session{}, newError(ErrInvalidToken, MsgRefreshInvalid)
	}

	u, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Session{}, newError(ErrInvalidToken, MsgRefreshUserMissing)
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	raw, err := s.tokens.Create(ctx, u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("store refresh token: %w", err)
	}
	return Session{User: u.Profile(), RefreshToken: raw}, nil
}
