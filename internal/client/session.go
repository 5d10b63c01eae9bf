package client

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
	"github.com/rajsexperiments/scanner-final/internal/notify"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Session tracks the signed-in user. Credentials are checked against the
// user directory held by the store.
type Session struct {
	store    *Store
	notifier notify.Notifier

	mu      sync.RWMutex
	current *types.User
}

func NewSession(store *Store, n notify.Notifier) *Session {
	if n == nil {
		n = notify.Discard{}
	}
	return &Session{store: store, notifier: n}
}

// Login matches email case-insensitively. The directory is fetched on
// first use. The stored password is dropped from the session user.
func (s *Session) Login(ctx context.Context, email, password string) (types.User, error) {
	users := s.store.Users()
	if len(users) == 0 {
		if err := s.store.FetchUsers(ctx); err != nil {
			return types.User{}, err
		}
		users = s.store.Users()
	}

	email = strings.TrimSpace(email)
	for _, u := range users {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if !verifyPassword(u.Password, password) {
			break
		}
		u.Password = ""
		s.mu.Lock()
		s.current = &u
		s.mu.Unlock()
		s.notifier.Notify(notify.Success, notify.Msg(notify.KeyWelcome, u.Name))
		return u, nil
	}

	s.notifier.Notify(notify.Error, notify.Msg(notify.KeyLoginFailed))
	return types.User{}, ErrInvalidCredentials
}

func verifyPassword(stored, given string) bool {
	if stored == "" {
		return false
	}
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func (s *Session) Logout() {
	s.mu.Lock()
	was := s.current != nil
	s.current = nil
	s.mu.Unlock()
	if was {
		s.notifier.Notify(notify.Info, notify.Msg(notify.KeyLoggedOut))
	}
}

// Current returns the signed-in user, if any.
func (s *Session) Current() (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return types.User{}, false
	}
	return *s.current, true
}

func (s *Session) CanClearLogs() bool {
	u, ok := s.Current()
	return ok && u.Role == types.RoleWarehouseManager
}
