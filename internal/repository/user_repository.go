package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sincarebunch/barbershop-api/internal/model"
)

const userColumns = "id, name, email, password, role, phone"

// NewUser carries the columns written on registration.  PasswordHash
// must already be hashed.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        string
}

// ProfileUpdate lists the profile columns to change; nil means keep.
type ProfileUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

// Empty reports whether u changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a customer and returns the stored row.  The role is
// always customer; callers cannot choose it.
func (r *UserRepo) Create(ctx context.Context, nu NewUser) (*model.User, error) {
	email := normalizeEmail(nu.Email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password, role, phone) VALUES (?,?,?,?,?)",
		nu.Name, email, nu.PasswordHash, string(model.RoleCustomer), nu.Phone)
	if err != nil {
		return nil, mapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:           uint64(id),
		Name:         nu.Name,
		Email:        email,
		PasswordHash: nu.PasswordHash,
		Role:         model.RoleCustomer,
		Phone:        nu.Phone,
	}, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email", normalizeEmail(email))
}

// GetByName fetches a user by name.
func (r *UserRepo) GetByName(ctx context.Context, name string) (*model.User, error) {
	return r.getBy(ctx, "name", name)
}

// GetByPhone fetches a user by phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.getBy(ctx, "phone", phone)
}

// getBy is only ever called with a column name from this file.
func (r *UserRepo) getBy(ctx context.Context, column string, value any) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+column+"=? LIMIT 1",
		value).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

// Update writes the non-nil profile columns and returns the fresh row.
// ErrUserNotFound is returned when id does not exist.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd ProfileUpdate) (*model.User, error) {
	if upd.Empty() {
		return r.GetByID(ctx, id)
	}
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, normalizeEmail(*upd.Email))
	}
	if upd.Phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *upd.Phone)
	}
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
		return nil, mapDuplicate(err)
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
