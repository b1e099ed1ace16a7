package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sincarebunch/barbershop-api/internal/model"
	"github.com/sincarebunch/barbershop-api/internal/repository"
	"github.com/sincarebunch/barbershop-api/internal/utils"
)

// memStore backs both service stores in handler tests.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
	tokens map[string]model.RefreshToken
}

func newMemStore() *memStore {
	return &memStore{users: map[uint64]model.User{}, tokens: map[string]model.RefreshToken{}}
}

type memUsers struct{ *memStore }
type memTokens struct{ *memStore }

func (s memUsers) Create(_ context.Context, nu repository.NewUser) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(nu.Email))
	for _, u := range s.users {
		if u.Email == email {
			return nil, repository.ErrEmailExists
		}
	}
	s.nextID++
	u := model.User{ID: s.nextID, Name: nu.Name, Email: email, PasswordHash: nu.PasswordHash, Role: model.RoleCustomer, Phone: nu.Phone}
	s.users[u.ID] = u
	return &u, nil
}

func (s memUsers) find(match func(model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.find(func(u model.User) bool { return u.Email == email })
}

func (s memUsers) GetByName(_ context.Context, name string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Name == name })
}

func (s memUsers) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Phone == phone })
}

func (s memUsers) Update(_ context.Context, id uint64, upd repository.ProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = strings.ToLower(*upd.Email)
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	s.users[id] = u
	return &u, nil
}

func (s memUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s memTokens) Create(_ context.Context, userID uint64) (string, error) {
	raw, err := utils.NewRefreshToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.tokens[raw] = model.RefreshToken{UserID: userID, ExpiresAt: now.Add(repository.DefaultRefreshTTL), CreatedAt: now}
	return raw, nil
}

func (s memTokens) FindValid(_ context.Context, raw string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[raw]
	if !ok || !t.ExpiresAt.After(time.Now()) {
		return nil, repository.ErrTokenNotFound
	}
	return &t, nil
}

func (s memTokens) Delete(_ context.Context, raw string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[raw]
	delete(s.tokens, raw)
	return ok, nil
}
