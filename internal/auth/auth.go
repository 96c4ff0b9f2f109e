// Package auth turns bearer tokens into the Actor passed to every core
// operation.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/user"
)

// Actor is the caller of a core operation.
type Actor struct {
	UserID string
	Role   user.Role
	Banned bool
}

func (a Actor) IsAdmin() bool { return a.Role == user.RoleAdmin }

type Claims struct {
	Sub   string `json:"sub"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// WithActor returns a copy of ctx carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ActorFromContext returns the actor set by the middleware, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}

// Authenticator signs and validates HS256 tokens and resolves the banned
// flag from the user store.
type Authenticator struct {
	secret []byte
	users  user.UserStore
}

func New(secret string, users user.UserStore) *Authenticator {
	return &Authenticator{secret: []byte(secret), users: users}
}

// IssueToken signs a token for the given user.
func (a *Authenticator) IssueToken(sub string, role user.Role, email string, ttl time.Duration) (string, error) {
	claims := Claims{
		Sub:   sub,
		Role:  string(role),
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates the signature and expiry of tokenStr.
func (a *Authenticator) ParseToken(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperr.Unauthenticated("invalid token: %v", err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Sub == "" {
		return nil, apperr.Unauthenticated("invalid token")
	}
	return c, nil
}

// Resolve builds the Actor for a token. Role and banned flag are read from
// the store so that a demotion or suspension takes effect immediately.
func (a *Authenticator) Resolve(ctx context.Context, tokenStr string) (Actor, error) {
	claims, err := a.ParseToken(tokenStr)
	if err != nil {
		return Actor{}, err
	}
	u, err := a.users.GetUser(ctx, claims.Sub)
	if errors.Is(err, apperr.ErrNotFound) {
		return Actor{}, apperr.Unauthenticated("unknown user %s", claims.Sub)
	}
	if err != nil {
		return Actor{}, err
	}
	if !u.Role.Valid() {
		return Actor{}, apperr.Unauthenticated("unknown role %q", u.Role)
	}
	if claims.Role != string(u.Role) {
		log.Debug("Token role differs from stored role", "user", u.ID, "token_role", claims.Role, "role", u.Role)
	}
	return Actor{UserID: u.ID, Role: u.Role, Banned: u.Banned}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	token, ok := strings.CutPrefix(h, "Bearer ")
	return strings.TrimSpace(token), ok
}

// RequireActor rejects requests without a valid bearer token.
func (a *Authenticator) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, apperr.Unauthenticated("missing bearer token"))
			return
		}
		actor, err := a.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// OptionalActor attaches an actor when a token is present and lets anonymous
// requests through. A present but invalid token is still rejected.
func (a *Authenticator) OptionalActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		actor, err := a.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("Failed to resolve actor", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   apperr.Code(err),
		"message": apperr.Message(err),
	})
}
