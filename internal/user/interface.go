package user

import "context"

// UserStore persists the accounts that book courts, own venues and create invites.
type UserStore interface {
	UpsertUser(ctx context.Context, u User) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	SetBanned(ctx context.Context, id string, banned bool) error
}
