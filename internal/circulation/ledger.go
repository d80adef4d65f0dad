// Package circulation implements the checkout/check-in lifecycle on top of
// the local store repositories.
//
// The ledger owns the one-active-checkout-per-book invariant. The catalog's
// single status enum gives each title one borrow slot regardless of its
// quantity, so a second borrow of the same book is rejected until the first
// is returned.
package circulation

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/database/books"
	"github.com/mrlokans/circulate/internal/database/checkouts"
	"github.com/mrlokans/circulate/internal/database/outbox"
	"github.com/mrlokans/circulate/internal/entities"
)

// Ledger coordinates checkout and book writes. The checkout record and the
// book status flip are two separate collection transactions; a crash between
// them can leave the pair inconsistent until the next successful operation
// on the same book.
type Ledger struct {
	books     *books.Repository
	checkouts *checkouts.Repository
	outbox    *outbox.Repository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedger creates a circulation ledger over the given repositories.
func NewLedger(booksRepo *books.Repository, checkoutsRepo *checkouts.Repository, outboxRepo *outbox.Repository) *Ledger {
	return &Ledger{
		books:     booksRepo,
		checkouts: checkoutsRepo,
		outbox:    outboxRepo,
		locks:     make(map[string]*sync.Mutex),
	}
}

// bookLock returns the per-book guard, creating it on first use. Locks are
// never removed; the catalog is low-cardinality.
func (l *Ledger) bookLock(bookID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[bookID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[bookID] = lock
	}
	return lock
}

// Checkout creates a borrow transaction for the book and flips the book's
// status to borrowed. The new checkout starts unsynced with a
// client-generated identifier so it can be created offline. A book that
// already has an active checkout is rejected with ErrConstraintViolation;
// the availability check and the write happen under a per-book guard, so
// two racing calls cannot both succeed.
func (l *Ledger) Checkout(bookID, studentEmail string) (*entities.Checkout, error) {
	if bookID == "" || studentEmail == "" {
		return nil, fmt.Errorf("%w: book id and student email are required", database.ErrInvalidState)
	}

	lock := l.bookLock(bookID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := l.books.GetBook(bookID); err != nil {
		return nil, err
	}

	if active, err := l.checkouts.ActiveForBook(bookID); err == nil {
		return nil, fmt.Errorf("%w: book %s already checked out to %s",
			database.ErrConstraintViolation, bookID, active.StudentEmail)
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	checkout := &entities.Checkout{
		ID:           uuid.NewString(),
		BookID:       bookID,
		StudentEmail: studentEmail,
		CheckoutDate: time.Now(),
		Status:       entities.CheckoutStatusBorrowed,
		Synced:       false,
	}
	if err := l.checkouts.Add(checkout); err != nil {
		return nil, err
	}

	if err := l.books.SetStatus(bookID, entities.BookStatusBorrowed); err != nil {
		return nil, fmt.Errorf("checkout %s recorded but book status update failed: %w", checkout.ID, err)
	}

	if _, err := l.outbox.Record(studentEmail, bookID, entities.OfflineActionBorrow); err != nil {
		return nil, fmt.Errorf("journal borrow of %s: %w", bookID, err)
	}

	return checkout, nil
}

// CheckIn resolves the active checkout for the book, closes it, and flips
// the book back to available. A book with no active checkout fails with
// ErrNotFound and the book record stays untouched.
func (l *Ledger) CheckIn(bookID string) (*entities.Checkout, error) {
	if bookID == "" {
		return nil, fmt.Errorf("%w: book id is required", database.ErrInvalidState)
	}

	lock := l.bookLock(bookID)
	lock.Lock()
	defer lock.Unlock()

	checkout, err := l.checkouts.ActiveForBook(bookID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	checkout.Status = entities.CheckoutStatusReturned
	checkout.ReturnDate = &now
	checkout.Synced = false
	if err := l.checkouts.Update(checkout); err != nil {
		return nil, err
	}

	if err := l.books.SetStatus(bookID, entities.BookStatusAvailable); err != nil {
		return nil, fmt.Errorf("return %s recorded but book status update failed: %w", checkout.ID, err)
	}

	if _, err := l.outbox.Record(checkout.StudentEmail, bookID, entities.OfflineActionReturn); err != nil {
		return nil, fmt.Errorf("journal return of %s: %w", bookID, err)
	}

	return checkout, nil
}

// ActiveCheckoutFor returns the single borrowed checkout for a book, or
// ErrNotFound.
func (l *Ledger) ActiveCheckoutFor(bookID string) (*entities.Checkout, error) {
	return l.checkouts.ActiveForBook(bookID)
}

// HistoryFor returns all checkouts for a borrower joined with book title
// and author, newest checkout first.
func (l *Ledger) HistoryFor(studentEmail string) ([]entities.BorrowingRecord, error) {
	list, err := l.checkouts.ForStudent(studentEmail)
	if err != nil {
		return nil, err
	}
	return l.join(list)
}

// AllHistory returns every checkout joined with its book, newest first.
func (l *Ledger) AllHistory() ([]entities.BorrowingRecord, error) {
	list, err := l.checkouts.GetAll()
	if err != nil {
		return nil, err
	}
	return l.join(list)
}

func (l *Ledger) join(list []entities.Checkout) ([]entities.BorrowingRecord, error) {
	records := make([]entities.BorrowingRecord, 0, len(list))
	for _, c := range list {
		record := entities.BorrowingRecord{
			ID:           c.ID,
			StudentEmail: c.StudentEmail,
			Status:       c.Status,
			CheckoutDate: c.CheckoutDate,
			ReturnDate:   c.ReturnDate,
		}
		book, err := l.books.GetBook(c.BookID)
		if err == nil {
			record.Book = entities.BookSummary{Title: book.Title, Author: book.Author}
		} else if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		records = append(records, record)
	}

	// The store returns rows in unspecified order; consumers expect newest
	// checkouts first.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CheckoutDate.After(records[j].CheckoutDate)
	})
	return records, nil
}
