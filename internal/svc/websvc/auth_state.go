package websvc

import (
	"sync"

	"github.com/mkrupp/fishpizzaria/internal/domain"
)

// AuthState holds the signed-in user for the lifetime of the application.
// Views subscribe to it and are notified whenever the held user changes.
// The zero value is not usable; use NewAuthState.
type AuthState struct {
	mu          sync.RWMutex
	user        *domain.User
	subscribers map[int]func(domain.User, bool)
	nextID      int
}

// NewAuthState creates an empty AuthState.
func NewAuthState() *AuthState {
	return &AuthState{
		subscribers: make(map[int]func(domain.User, bool)),
	}
}

// User returns the held user and whether there is one.
func (s *AuthState) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return domain.User{}, false
	}

	return *s.user, true
}

// IsAuthenticated reports whether a user is held. It is always derived from
// User and never stored separately.
func (s *AuthState) IsAuthenticated() bool {
	_, ok := s.User()

	return ok
}

// Insert replaces the held user. The record is not validated.
// Subscribers are notified unless the new user equals the held one.
func (s *AuthState) Insert(user domain.User) {
	s.mu.Lock()

	if s.user != nil && *s.user == user {
		s.mu.Unlock()

		return
	}

	s.user = &user

	subscribers := make([]func(domain.User, bool), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}

	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(user, true)
	}
}

// Subscribe registers fn to be called after every change of the held user.
// The returned function removes the subscription.
func (s *AuthState) Subscribe(fn func(user domain.User, authenticated bool)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.subscribers, id)
	}
}
