// Package identity holds the signed-in shopper. There are no credentials; signing in only
// records a name and email for checkout prefill and order fallback.
package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/validation"
)

var ErrInvalidUser = apperr.New(apperr.KindValidation, "invalid user")

type User struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type Provider interface {
	CurrentUser(ctx context.Context) (User, bool)
}

type Session struct {
	mu   sync.RWMutex
	user *User
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) CurrentUser(_ context.Context) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) SignIn(name, email string) (User, error) {
	u := User{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := validation.Check(ErrInvalidUser, u); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	log.Info().Str("email", u.Email).Msg("identity: user signed in")
	return u, nil
}

func (s *Session) SignOut() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}
