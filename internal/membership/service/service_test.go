package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	userStore "circ/internal/membership/store/user"
	"circ/pkg/audit"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/requestcontext"
)

type MembershipServiceSuite struct {
	suite.Suite
	store    *userStore.InMemory
	auditLog *audit.InMemoryStore
	service  *MembershipService
	now      time.Time
	ctx      context.Context
}

func TestMembershipServiceSuite(t *testing.T) {
	suite.Run(t, new(MembershipServiceSuite))
}

func (s *MembershipServiceSuite) SetupTest() {
	s.store = userStore.NewInMemory()
	s.auditLog = audit.NewInMemoryStore()
	s.service = New(s.store, audit.NewRecorder(s.auditLog))
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *MembershipServiceSuite) TestRegisterUser() {
	s.Run("registers a patron and audits it", func() {
		user, err := s.service.RegisterUser(s.ctx, "alice", "Alice@Example.com", "+1-555-0001", id.RolePatron)
		s.Require().NoError(err)
		s.Equal("alice", user.Username)
		s.Equal("alice@example.com", user.Email)
		s.Equal(id.RolePatron, user.Role)
		s.Equal(s.now, user.CreatedAt)

		entries, err := s.auditLog.Query(s.ctx, audit.Filter{Action: audit.ActionUserCreated})
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(user.ID.String(), entries[0].EntityID)
		s.Require().NotNil(entries[0].UserID)
		s.Equal(user.ID, *entries[0].UserID)
	})

	s.Run("registers librarians", func() {
		user, err := s.service.RegisterUser(s.ctx, "head-librarian", "librarian@example.com", "+1-555-0002", id.RoleLibrarian)
		s.Require().NoError(err)
		s.Equal(id.RoleLibrarian, user.Role)
	})

	s.Run("rejects blank fields as validation errors", func() {
		_, err := s.service.RegisterUser(s.ctx, "", "x@example.com", "+1-555-0003", id.RolePatron)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.RegisterUser(s.ctx, "no-email", "", "+1-555-0004", id.RolePatron)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.RegisterUser(s.ctx, "no-phone", "y@example.com", "", id.RolePatron)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("duplicate identity is a conflict", func() {
		_, err := s.service.RegisterUser(s.ctx, "bob", "bob@example.com", "+1-555-0010", id.RolePatron)
		s.Require().NoError(err)

		_, err = s.service.RegisterUser(s.ctx, "BOB", "other@example.com", "+1-555-0011", id.RolePatron)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		_, err = s.service.RegisterUser(s.ctx, "bob2", "bob@example.com", "+1-555-0012", id.RolePatron)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		_, err = s.service.RegisterUser(s.ctx, "bob3", "bob3@example.com", "+1-555-0010", id.RolePatron)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *MembershipServiceSuite) TestGetUser() {
	s.Run("fetches an existing member", func() {
		user, err := s.service.RegisterUser(s.ctx, "carol", "carol@example.com", "+1-555-0020", id.RolePatron)
		s.Require().NoError(err)

		found, err := s.service.GetUser(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal("carol", found.Username)
	})

	s.Run("unknown member is not found", func() {
		_, err := s.service.GetUser(s.ctx, id.UserID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("nil ID is a bad request", func() {
		_, err := s.service.GetUser(s.ctx, id.UserID{})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *MembershipServiceSuite) TestCountUsers() {
	count, err := s.service.CountUsers(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)

	_, err = s.service.RegisterUser(s.ctx, "dave", "dave@example.com", "+1-555-0030", id.RolePatron)
	s.Require().NoError(err)

	count, err = s.service.CountUsers(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}
