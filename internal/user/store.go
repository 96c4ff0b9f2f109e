package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/apperr"
)

// New creates a new UserStore.
func New(db *sql.DB) UserStore {
	return &store{db: db}
}

// UpsertUser inserts the user, or updates name, contact details and role when
// the id already exists. An empty id gets a fresh one.
func (s *store) UpsertUser(ctx context.Context, u User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Name == "" {
		return nil, apperr.Validation("user name is required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !u.Role.Valid() {
		return nil, apperr.Validation("unknown role %q", u.Role)
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, role, banned, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			role = excluded.role
	`, u.ID, u.Name, u.Email, u.Phone, string(u.Role), u.Banned, u.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user %s: %w", u.ID, err)
	}

	log.Debug("Upserted user", "id", u.ID, "role", u.Role)
	return s.getLocked(ctx, u.ID)
}

func (s *store) GetUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(ctx, id)
}

func (s *store) getLocked(ctx context.Context, id string) (*User, error) {
	var (
		u         User
		email     sql.NullString
		phone     sql.NullString
		role      string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, role, banned, created_at
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Name, &email, &phone, &role, &u.Banned, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	u.Email = email.String
	u.Phone = phone.String
	u.Role = Role(role)
	u.CreatedAt = time.Unix(createdAt, 0)
	return &u, nil
}

// SetBanned suspends or reinstates an account.
func (s *store) SetBanned(ctx context.Context, id string, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE users SET banned = ? WHERE id = ?", banned, id)
	if err != nil {
		return fmt.Errorf("failed to update banned flag for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("user %s", id)
	}
	log.Info("Updated user ban status", "id", id, "banned", banned)
	return nil
}
