package user

import (
	"context"
	"database/sql"
	"errors"

	"circ/internal/membership/models"
	id "circ/pkg/domain"
	"circ/pkg/platform/sentinel"
	txcontext "circ/pkg/platform/tx"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// CreateIfIdentityAvailable inserts unless any of the unique identity columns
// collides. ON CONFLICT with no target catches all three constraints.
func (s *Postgres) CreateIfIdentityAvailable(ctx context.Context, user *models.User) error {
	q := txcontext.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		INSERT INTO users (id, username, email, phone, role, created_at)
		VALUES ($1, $2, lower($3), $4, $5, $6)
		ON CONFLICT DO NOTHING`,
		user.ID.String(), user.Username, user.Email, user.Phone, user.Role.String(), user.CreatedAt,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, selectUser+` WHERE id = $1`, userID.String())
	return scanUser(row)
}

func (s *Postgres) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, selectUser+` WHERE lower(username) = lower($1)`, username)
	return scanUser(row)
}

// LockMember pins the member row for the duration of the ambient transaction.
// Concurrent loan creations for the same user queue behind this lock, so the
// active-loan cap is checked against a settled count.
func (s *Postgres) LockMember(ctx context.Context, userID id.UserID) error {
	q := txcontext.QuerierFrom(ctx, s.db)
	var found string
	err := q.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID.String()).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Postgres) Count(ctx context.Context) (int, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

const selectUser = `
	SELECT id, username, email, phone, role, created_at
	FROM users`

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user    models.User
		rawID   string
		rawRole string
	)
	err := row.Scan(&rawID, &user.Username, &user.Email, &user.Phone, &rawRole, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, err
	}
	role, err := id.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	user.ID = userID
	user.Role = role
	return &user, nil
}
