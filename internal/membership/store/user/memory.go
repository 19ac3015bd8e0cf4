// Package user holds the membership stores. Identity uniqueness (username,
// email, phone) is enforced at the store so racing registrations cannot both
// succeed.
package user

import (
	"context"
	"strings"
	"sync"

	"circ/internal/membership/models"
	id "circ/pkg/domain"
	"circ/pkg/platform/sentinel"
	txcontext "circ/pkg/platform/tx"
)

type InMemory struct {
	mu         sync.RWMutex
	users      map[id.UserID]*models.User
	byUsername map[string]id.UserID
	byEmail    map[string]id.UserID
	byPhone    map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:      make(map[id.UserID]*models.User),
		byUsername: make(map[string]id.UserID),
		byEmail:    make(map[string]id.UserID),
		byPhone:    make(map[string]id.UserID),
	}
}

func (s *InMemory) CreateIfIdentityAvailable(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uname := fold(user.Username)
	email := fold(user.Email)
	phone := strings.TrimSpace(user.Phone)
	if _, taken := s.byUsername[uname]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, taken := s.byEmail[email]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, taken := s.byPhone[phone]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.users[user.ID] = clone(user)
	s.byUsername[uname] = user.ID
	s.byEmail[email] = user.ID
	s.byPhone[phone] = user.ID
	userID := user.ID
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.users, userID)
		delete(s.byUsername, uname)
		delete(s.byEmail, email)
		delete(s.byPhone, phone)
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(user), nil
}

func (s *InMemory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byUsername[fold(username)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.users[userID]), nil
}

// LockMember only verifies existence here; the in-memory transaction's coarse
// lock already serializes loan-cap checks.
func (s *InMemory) LockMember(_ context.Context, userID id.UserID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[userID]; !ok {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}
