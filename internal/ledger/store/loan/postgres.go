package loan

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"circ/internal/ledger/models"
	id "circ/pkg/domain"
	"circ/pkg/platform/sentinel"
	txcontext "circ/pkg/platform/tx"
)

// Postgres persists loans. Methods resolve the ambient transaction from the
// context so ledger mutations, copy counts and audit entries commit together.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, loan *models.Loan) error {
	q := txcontext.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		INSERT INTO loans (id, book_id, user_id, loaned_at, due_at, returned_at, fine_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		loan.ID.String(), loan.BookID.String(), loan.UserID.String(),
		loan.LoanedAt, loan.DueAt, loan.ReturnedAt, loan.FineCents,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, loanID id.LoanID) (*models.Loan, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, selectLoan+` WHERE id = $1`, loanID.String())
	return scanLoan(row)
}

// Execute locks the loan row, runs validate and mutate, and writes the result.
// Callers must invoke this inside RunInTx so the lock spans the mutation.
func (s *Postgres) Execute(ctx context.Context, loanID id.LoanID, validate func(*models.Loan) error, mutate func(*models.Loan)) (*models.Loan, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, selectLoan+` WHERE id = $1 FOR UPDATE`, loanID.String())
	loan, err := scanLoan(row)
	if err != nil {
		return nil, err
	}
	if err := validate(loan); err != nil {
		return nil, err
	}
	mutate(loan)
	_, err = q.ExecContext(ctx, `
		UPDATE loans
		SET returned_at = $2, fine_cents = $3
		WHERE id = $1`,
		loan.ID.String(), loan.ReturnedAt, loan.FineCents,
	)
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *Postgres) CountActiveByUser(ctx context.Context, userID id.UserID) (int, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE user_id = $1 AND returned_at IS NULL`,
		userID.String(),
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Postgres) ListActiveByUser(ctx context.Context, userID id.UserID) ([]*models.Loan, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx,
		selectLoan+` WHERE user_id = $1 AND returned_at IS NULL ORDER BY loaned_at`,
		userID.String(),
	)
	if err != nil {
		return nil, err
	}
	return scanLoans(rows)
}

func (s *Postgres) CountActiveByBook(ctx context.Context, bookID id.BookID) (int, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE book_id = $1 AND returned_at IS NULL`,
		bookID.String(),
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Postgres) CountByBook(ctx context.Context, bookID id.BookID) (int, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE book_id = $1`,
		bookID.String(),
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Postgres) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Loan, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx,
		selectLoan+` WHERE returned_at IS NULL AND due_at < $1 ORDER BY due_at`,
		asOf,
	)
	if err != nil {
		return nil, err
	}
	return scanLoans(rows)
}

func (s *Postgres) CountActive(ctx context.Context) (int, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM loans WHERE returned_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

const selectLoan = `
	SELECT id, book_id, user_id, loaned_at, due_at, returned_at, fine_cents
	FROM loans`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoanFrom(row rowScanner) (*models.Loan, error) {
	var (
		loan                      models.Loan
		rawID, rawBookID, rawUser string
		returnedAt                sql.NullTime
		fineCents                 sql.NullInt64
	)
	err := row.Scan(&rawID, &rawBookID, &rawUser, &loan.LoanedAt, &loan.DueAt, &returnedAt, &fineCents)
	if err != nil {
		return nil, err
	}
	loanID, err := id.ParseLoanID(rawID)
	if err != nil {
		return nil, err
	}
	bookID, err := id.ParseBookID(rawBookID)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(rawUser)
	if err != nil {
		return nil, err
	}
	loan.ID = loanID
	loan.BookID = bookID
	loan.UserID = userID
	if returnedAt.Valid {
		t := returnedAt.Time
		loan.ReturnedAt = &t
	}
	if fineCents.Valid {
		f := fineCents.Int64
		loan.FineCents = &f
	}
	return &loan, nil
}

func scanLoan(row *sql.Row) (*models.Loan, error) {
	loan, err := scanLoanFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return loan, nil
}

func scanLoans(rows *sql.Rows) ([]*models.Loan, error) {
	defer rows.Close()
	var out []*models.Loan
	for rows.Next() {
		loan, err := scanLoanFrom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loan)
	}
	return out, rows.Err()
}
