package book

import (
	"context"
	"database/sql"
	"errors"

	"circ/internal/catalog/models"
	id "circ/pkg/domain"
	"circ/pkg/platform/sentinel"
	txcontext "circ/pkg/platform/tx"
	"circ/pkg/requestcontext"
)

// Postgres persists books. Every method resolves the ambient transaction from
// the context, so calls made inside a coordinator's RunInTx share one tx.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateIfISBNAvailable(ctx context.Context, book *models.Book) error {
	q := txcontext.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		INSERT INTO books (id, title, author, isbn, total_copies, available_copies, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (lower(isbn)) DO NOTHING`,
		book.ID.String(), book.Title, book.Author, book.ISBN,
		book.TotalCopies, book.AvailableCopies, book.CreatedAt, book.UpdatedAt,
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

func (s *Postgres) FindByID(ctx context.Context, bookID id.BookID) (*models.Book, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, selectBook+` WHERE id = $1`, bookID.String())
	return scanBook(row)
}

func (s *Postgres) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, selectBook+` WHERE lower(isbn) = lower($1)`, isbn)
	return scanBook(row)
}

// Execute locks the book row, runs validate and mutate, and writes the result.
// Outside a transaction the row lock would be released immediately, so callers
// must invoke this inside RunInTx.
func (s *Postgres) Execute(ctx context.Context, bookID id.BookID, validate func(*models.Book) error, mutate func(*models.Book)) (*models.Book, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, selectBook+` WHERE id = $1 FOR UPDATE`, bookID.String())
	book, err := scanBook(row)
	if err != nil {
		return nil, err
	}
	if err := validate(book); err != nil {
		return nil, err
	}
	mutate(book)
	_, err = q.ExecContext(ctx, `
		UPDATE books
		SET title = $2, author = $3, total_copies = $4, available_copies = $5, updated_at = $6
		WHERE id = $1`,
		book.ID.String(), book.Title, book.Author, book.TotalCopies, book.AvailableCopies, book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ReserveCopy decrements availability in one guarded statement, so concurrent
// borrowers can never drive the count below zero.
func (s *Postgres) ReserveCopy(ctx context.Context, bookID id.BookID) error {
	q := txcontext.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies - 1, updated_at = $2
		WHERE id = $1 AND available_copies > 0`,
		bookID.String(), requestcontext.Now(ctx),
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.FindByID(ctx, bookID); err != nil {
			return err
		}
		return sentinel.ErrNoneAvailable
	}
	return nil
}

// ReleaseCopy increments availability, clamped at the total so a resize that
// shrank the title while copies were out cannot overshoot.
func (s *Postgres) ReleaseCopy(ctx context.Context, bookID id.BookID) error {
	q := txcontext.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE books
		SET available_copies = LEAST(available_copies + 1, total_copies), updated_at = $2
		WHERE id = $1`,
		bookID.String(), requestcontext.Now(ctx),
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Count(ctx context.Context) (int, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

const selectBook = `
	SELECT id, title, author, isbn, total_copies, available_copies, created_at, updated_at
	FROM books`

func scanBook(row *sql.Row) (*models.Book, error) {
	var (
		book  models.Book
		rawID string
	)
	err := row.Scan(&rawID, &book.Title, &book.Author, &book.ISBN,
		&book.TotalCopies, &book.AvailableCopies, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	bookID, err := id.ParseBookID(rawID)
	if err != nil {
		return nil, err
	}
	book.ID = bookID
	return &book, nil
}
