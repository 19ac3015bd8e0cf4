// Package book holds the catalog's book stores. InMemory backs unit tests and
// local runs; Postgres is the production store. Both return sentinel errors so
// services can translate without knowing the backend.
package book

import (
	"context"
	"strings"
	"sync"

	"circ/internal/catalog/models"
	id "circ/pkg/domain"
	"circ/pkg/platform/sentinel"
	txcontext "circ/pkg/platform/tx"
)

type InMemory struct {
	mu     sync.RWMutex
	books  map[id.BookID]*models.Book
	byISBN map[string]id.BookID
}

func NewInMemory() *InMemory {
	return &InMemory{
		books:  make(map[id.BookID]*models.Book),
		byISBN: make(map[string]id.BookID),
	}
}

func (s *InMemory) CreateIfISBNAvailable(ctx context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := isbnKey(book.ISBN)
	if _, taken := s.byISBN[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.books[book.ID] = clone(book)
	s.byISBN[key] = book.ID
	bookID := book.ID
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.books, bookID)
		delete(s.byISBN, key)
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, bookID id.BookID) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.books[bookID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(book), nil
}

func (s *InMemory) FindByISBN(_ context.Context, isbn string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bookID, ok := s.byISBN[isbnKey(isbn)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.books[bookID]), nil
}

// Execute runs validate and mutate while holding the store lock, so no other
// writer can interleave between the check and the write.
func (s *InMemory) Execute(ctx context.Context, bookID id.BookID, validate func(*models.Book) error, mutate func(*models.Book)) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.books[bookID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(book); err != nil {
		return nil, err
	}
	prev := clone(book)
	mutate(book)
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.books[bookID] = prev
	})
	return clone(book), nil
}

// ReserveCopy atomically takes one available copy.
func (s *InMemory) ReserveCopy(ctx context.Context, bookID id.BookID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.books[bookID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if book.AvailableCopies <= 0 {
		return sentinel.ErrNoneAvailable
	}
	book.AvailableCopies--
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if b, ok := s.books[bookID]; ok && b.AvailableCopies < b.TotalCopies {
			b.AvailableCopies++
		}
	})
	return nil
}

// ReleaseCopy returns one copy to the shelf, clamped at the total.
func (s *InMemory) ReleaseCopy(ctx context.Context, bookID id.BookID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.books[bookID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
		txcontext.RecordUndo(ctx, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if b, ok := s.books[bookID]; ok && b.AvailableCopies > 0 {
				b.AvailableCopies--
			}
		})
	}
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books), nil
}

func isbnKey(isbn string) string {
	return strings.ToLower(strings.TrimSpace(isbn))
}

func clone(b *models.Book) *models.Book {
	c := *b
	return &c
}
