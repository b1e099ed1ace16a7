package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sincarebunch/barbershop-api/internal/model"
)

func newAuth(t *testing.T) (*AuthService, *memUsers, *memTokens, *recordingPublisher) {
	t.Helper()
	users := newMemUsers()
	tokens := newMemTokens()
	pub := &recordingPublisher{}
	return NewAuthService(users, tokens, plainHasher{}, pub, zap.NewNop()), users, tokens, pub
}

func requireKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, msg, se.Message)
}

func TestRegister_ReturnsProfileWithoutPassword(t *testing.T) {
	svc, _, _, pub := newAuth(t)

	p, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p1", Phone: "1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, p.Role)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "password")
	assert.ElementsMatch(t, []string{"id", "name", "email", "role", "phone"}, keys(fields))

	require.Len(t, pub.events, 1)
	assert.Equal(t, p.ID, pub.events[0].UserID)
	assert.Equal(t, "customer", pub.events[0].Role)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestRegister_ConflictPrecedence(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"all collide", RegisterInput{Name: "A", Email: "a@x.com", Password: "x", Phone: "1"}, MsgEmailTaken},
		{"name and phone", RegisterInput{Name: "A", Email: "b@x.com", Password: "x", Phone: "1"}, MsgUsernameTaken},
		{"phone only", RegisterInput{Name: "B", Email: "b@x.com", Password: "x", Phone: "1"}, MsgPhoneNumberTaken},
		{"email case-insensitive", RegisterInput{Name: "B", Email: "A@X.com", Password: "x", Phone: "2"}, MsgEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newAuth(t)
			_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p1", Phone: "1"})
			require.NoError(t, err)

			_, err = svc.Register(context.Background(), tt.in)
			requireKind(t, err, ErrUserExists, tt.msg)
		})
	}
}

// lateUsers hides existing rows from lookups so the insert is the first to
// notice the collision, as in two concurrent registrations.
type lateUsers struct{ *memUsers }

func (l lateUsers) GetByEmail(context.Context, string) (*model.User, error) { return nil, errNotFound }
func (l lateUsers) GetByName(context.Context, string) (*model.User, error)  { return nil, errNotFound }
func (l lateUsers) GetByPhone(context.Context, string) (*model.User, error) { return nil, errNotFound }

func TestRegister_LostInsertRaceIsConflict(t *testing.T) {
	users := newMemUsers()
	svc := NewAuthService(lateUsers{users}, newMemTokens(), plainHasher{}, nil, zap.NewNop())

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p", Phone: "1"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), RegisterInput{Name: "B", Email: "a@x.com", Password: "p", Phone: "2"})
	requireKind(t, err, ErrUserExists, MsgEmailTaken)
}

func TestRegister_LookupFailureIsInternal(t *testing.T) {
	svc, users, _, _ := newAuth(t)
	users.failOn = "phone"

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p", Phone: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	var se *Error
	assert.False(t, errors.As(err, &se))
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	svc, _, _, pub := newAuth(t)
	pub.err = errors.New("broker down")

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p", Phone: "1"})
	assert.NoError(t, err)
}

func TestLogin_WrongPasswordAndUnknownEmailAreIdentical(t *testing.T) {
	svc, _, _, _ := newAuth(t)
	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p1", Phone: "1"})
	require.NoError(t, err)

	_, wrongPass := svc.Login(context.Background(), "a@x.com", "wrong")
	_, unknown := svc.Login(context.Background(), "nobody@x.com", "p1")

	requireKind(t, wrongPass, ErrInvalidCredentials, MsgInvalidLogin)
	requireKind(t, unknown, ErrInvalidCredentials, MsgInvalidLogin)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestLogin_TokenValidUntilExpiry(t *testing.T) {
	svc, _, tokens, _ := newAuth(t)
	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p1", Phone: "1"})
	require.NoError(t, err)

	sess, err := svc.Login(context.Background(), "a@x.com", "p1")
	require.NoError(t, err)
	require.NotEmpty(t, sess.RefreshToken)
	assert.Equal(t, "a@x.com", sess.User.Email)

	_, err = tokens.FindValid(context.Background(), sess.RefreshToken)
	require.NoError(t, err)

	tokens.advance(30*24*time.Hour + time.Second)
	_, err = tokens.FindValid(context.Background(), sess.RefreshToken)
	assert.Error(t, err)
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, _, tokens, _ := newAuth(t)
	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p1", Phone: "1"})
	require.NoError(t, err)
	sess, err := svc.Login(context.Background(), "a@x.com", "p1")
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.RefreshToken, next.RefreshToken)
	assert.Equal(t, 1, tokens.count())

	_, err = svc.Refresh(context.Background(), sess.RefreshToken)
	requireKind(t, err, ErrInvalidToken, MsgRefreshInvalid)

	_, err = tokens.FindValid(context.Background(), next.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_Failures(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		svc, _, _, _ := newAuth(t)
		_, err := svc.Refresh(context.Background(), "")
		requireKind(t, err, ErrInvalidToken, MsgRefreshMissing)
	})
	t.Run("unknown", func(t *testing.T) {
		svc, _, _, _ := newAuth(t)
		_, err := svc.Refresh(context.Background(), "deadbeef")
		requireKind(t, err, ErrInvalidToken, MsgRefreshInvalid)
	})
	t.Run("expired", func(t *testing.T) {
		svc, _, tokens, _ := newAuth(t)
		raw, err := tokens.Create(context.Background(), 1)
		require.NoError(t, err)
		tokens.advance(31 * 24 * time.Hour)
		_, err = svc.Refresh(context.Background(), raw)
		requireKind(t, err, ErrInvalidToken, MsgRefreshInvalid)
	})
	t.Run("user gone", func(t *testing.T) {
		svc, users, _, _ := newAuth(t)
		_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p1", Phone: "1"})
		require.NoError(t, err)
		sess, err := svc.Login(context.Background(), "a@x.com", "p1")
		require.NoError(t, err)
		users.delete(sess.User.ID)

		_, err = svc.Refresh(context.Background(), sess.RefreshToken)
		requireKind(t, err, ErrInvalidToken, MsgRefreshUserMissing)
	})
	t.Run("concurrent rotation won", func(t *testing.T) {
		tokens := newMemTokens()
		users := newMemUsers()
		svc := NewAuthService(users, racingTokens{tokens}, plainHasher{}, nil, zap.NewNop())
		raw, err := tokens.Create(context.Background(), 1)
		require.NoError(t, err)

		_, err = svc.Refresh(context.Background(), raw)
		requireKind(t, err, ErrInvalidToken, MsgRefreshInvalid)
	})
}

func TestLogout(t *testing.T) {
	svc, _, tokens, _ := newAuth(t)
	keep, err := tokens.Create(context.Background(), 1)
	require.NoError(t, err)
	drop, err := tokens.Create(context.Background(), 1)
	require.NoError(t, err)

	requireKind(t, svc.Logout(context.Background(), ""), ErrInvalidToken, MsgLogoutMissing)
	requireKind(t, svc.Logout(context.Background(), "not-stored"), ErrInvalidToken, MsgLogoutInvalid)

	require.NoError(t, svc.Logout(context.Background(), drop))
	assert.Equal(t, 1, tokens.count())
	_, err = tokens.FindValid(context.Background(), keep)
	assert.NoError(t, err)
}
