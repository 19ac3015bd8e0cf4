package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"circ/internal/membership/models"
	"circ/internal/platform/metrics"
	"circ/pkg/audit"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/platform/sentinel"
	"circ/pkg/requestcontext"
)

// UserStore is the persistence surface membership needs.
type UserStore interface {
	CreateIfIdentityAvailable(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

// Auditor appends trail entries inside the caller's transaction.
type Auditor interface {
	Record(ctx context.Context, action audit.Action, entityType, entityID string, userID *id.UserID, details map[string]any) error
}

// MembershipService registers and resolves library members.
type MembershipService struct {
	users   UserStore
	auditor Auditor
	metrics *metrics.Metrics
	tx      StoreTx
}

type Option func(cfg *serviceConfig)

type serviceConfig struct {
	metrics *metrics.Metrics
	tx      StoreTx
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *serviceConfig) {
		cfg.metrics = m
	}
}

func WithStoreTx(tx StoreTx) Option {
	return func(cfg *serviceConfig) {
		cfg.tx = tx
	}
}

func New(users UserStore, auditor Auditor, opts ...Option) *MembershipService {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	tx := cfg.tx
	if tx == nil {
		tx = newInMemoryStoreTx()
	}
	return &MembershipService{
		users:   users,
		auditor: auditor,
		metrics: cfg.metrics,
		tx:      tx,
	}
}

// RegisterUser creates a member. Identity uniqueness (username, email, phone)
// is enforced by the store so racing registrations cannot both claim a value.
func (s *MembershipService) RegisterUser(ctx context.Context, username, email, phone string, role id.Role) (*models.User, error) {
	var user *models.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		u, err := models.NewUser(id.UserID(uuid.New()), username, email, phone, role, requestcontext.Now(txCtx))
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return err
		}

		if err := s.users.CreateIfIdentityAvailable(txCtx, u); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "username, email or phone already in use")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}

		if err := s.auditor.Record(txCtx, audit.ActionUserCreated, "user", u.ID.String(), &u.ID, map[string]any{
			"username": u.Username,
			"role":     u.Role.String(),
		}); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
	return user, nil
}

// GetUser fetches a member by ID.
func (s *MembershipService) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user ID is required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// CountUsers reports the member count for the health surface.
func (s *MembershipService) CountUsers(ctx context.Context) (int, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count users")
	}
	return count, nil
}
