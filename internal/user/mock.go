package user

import (
	"context"
	"sync"

	"github.com/mauv0809/courtside/internal/apperr"
)

// MockStore is an in-memory UserStore for tests. It is safe for concurrent use.
type MockStore struct {
	mu    sync.Mutex
	Users map[string]*User

	GetUserFunc func(ctx context.Context, id string) (*User, error)

	GetUserCalls []string
}

func NewMock(users ...User) *MockStore {
	m := &MockStore{Users: make(map[string]*User)}
	for _, u := range users {
		u := u
		m.Users[u.ID] = &u
	}
	return m
}

func (m *MockStore) UpsertUser(_ context.Context, u User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Role == "" {
		u.Role = RoleUser
	}
	m.Users[u.ID] = &u
	copied := u
	return &copied, nil
}

func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetUserCalls = append(m.GetUserCalls, id)
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, apperr.NotFound("user %s", id)
	}
	copied := *u
	return &copied, nil
}

func (m *MockStore) SetBanned(_ context.Context, id string, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return apperr.NotFound("user %s", id)
	}
	u.Banned = banned
	return nil
}
