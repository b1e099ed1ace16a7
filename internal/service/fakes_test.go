package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sincarebunch/barbershop-api/internal/model"
	"github.com/sincarebunch/barbershop-api/internal/queue"
	"github.com/sincarebunch/barbershop-api/internal/repository"
	"github.com/sincarebunch/barbershop-api/internal/utils"
)

// memUsers mimics the users table including its unique indexes.
type memUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.User
	failOn string // lookup column that returns errBoom
}

var (
	errBoom     = errors.New("boom")
	errNotFound = repository.ErrUserNotFound
)

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]model.User{}} }

func (m *memUsers) Create(_ context.Context, nu repository.NewUser) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(nu.Email))
	for _, u := range m.byID {
		switch {
		case u.Email == email:
			return nil, repository.ErrEmailExists
		case u.Name == nu.Name:
			return nil, repository.ErrNameExists
		case u.Phone == nu.Phone:
			return nil, repository.ErrPhoneExists
		}
	}
	m.nextID++
	u := model.User{ID: m.nextID, Name: nu.Name, Email: email, PasswordHash: nu.PasswordHash, Role: model.RoleCustomer, Phone: nu.Phone}
	m.byID[u.ID] = u
	return &u, nil
}

func (m *memUsers) find(col string, match func(model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == col {
		return nil, errBoom
	}
	for _, u := range m.byID {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	return m.find("id", func(u model.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return m.find("email", func(u model.User) bool { return u.Email == email })
}

func (m *memUsers) GetByName(_ context.Context, name string) (*model.User, error) {
	return m.find("name", func(u model.User) bool { return u.Name == name })
}

func (m *memUsers) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	return m.find("phone", func(u model.User) bool { return u.Phone == phone })
}

func (m *memUsers) Update(_ context.Context, id uint64, upd repository.ProfileUpdate) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*upd.Email))
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	m.byID[id] = u
	return &u, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	m.byID[id] = u
	return nil
}

func (m *memUsers) delete(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

// memTokens stores refresh tokens keyed by raw value with a movable clock.
type memTokens struct {
	mu   sync.Mutex
	now  time.Time
	ttl  time.Duration
	rows map[string]model.RefreshToken
}

func newMemTokens() *memTokens {
	return &memTokens{
		now:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		ttl:  repository.DefaultRefreshTTL,
		rows: map[string]model.RefreshToken{},
	}
}

func (m *memTokens) Create(_ context.Context, userID uint64) (string, error) {
	raw, err := utils.NewRefreshToken()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[raw] = model.RefreshToken{UserID: userID, TokenHash: utils.HashRefreshRaw(raw), ExpiresAt: m.now.Add(m.ttl), CreatedAt: m.now}
	return raw, nil
}

func (m *memTokens) FindValid(_ context.Context, raw string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[raw]
	if !ok || !t.ExpiresAt.After(m.now) {
		return nil, repository.ErrTokenNotFound
	}
	return &t, nil
}

func (m *memTokens) Delete(_ context.Context, raw string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[raw]
	delete(m.rows, raw)
	return ok, nil
}

func (m *memTokens) advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *memTokens) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// racingTokens reports a successful lookup but loses the delete, as when
// a concurrent rotation already consumed the token.
type racingTokens struct{ *memTokens }

func (r racingTokens) Delete(context.Context, string) (bool, error) { return false, nil }

// plainHasher keeps tests fast; bcrypt itself is covered in utils.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Verify(h, p string) bool       { return h == "hashed:"+p }

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.UserRegisteredEvent
	err    error
}

func (r *recordingPublisher) PublishUserRegistered(_ context.Context, ev queue.UserRegisteredEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}
