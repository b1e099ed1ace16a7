// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// inspecting driver errors themselves.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrTokenNotFound is returned when a refresh token is absent or expired.
var ErrTokenNotFound = errors.New("refresh token not found")

// Unique-constraint violations on the users table, one per unique index.
var (
	ErrEmailExists = errors.New("email already exists")
	ErrNameExists  = errors.New("name already exists")
	ErrPhoneExists = errors.New("phone already exists")
)

// ErrConflict is returned when a write violates a unique constraint that
// is not one of the users indexes above.
var ErrConflict = errors.New("conflict")

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// mapDuplicate translates a MySQL duplicate-key error into the sentinel
// matching the violated index.  Any other error is returned unchanged.
func mapDuplicate(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return err
	}
	// Message looks like: Duplicate entry 'a@x.com' for key 'users.uq_users_email'
	msg := strings.ToLower(me.Message)
	switch {
	case strings.Contains(msg, "uq_users_email"):
		return ErrEmailExists
	case strings.Contains(msg, "uq_users_name"):
		return ErrNameExists
	case strings.Contains(msg, "uq_users_phone"):
		return ErrPhoneExists
	}
	return ErrConflict
}
