package entities

import (
	"time"
)

type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusBorrowed  BookStatus = "borrowed"
)

type CheckoutStatus string

const (
	CheckoutStatusBorrowed CheckoutStatus = "borrowed"
	CheckoutStatusReturned CheckoutStatus = "returned"
)

// Book is a catalog record. Identifiers are strings assigned by the
// client so records can be created while offline.
//
// Status is a single borrow slot per title: the original data model tracks
// one status enum per record, so a book with Quantity > 1 still exposes only
// one borrow/return slot. AvailableQuantity is carried through sync verbatim
// but does not widen the slot.
type Book struct {
	ID                string     `gorm:"primaryKey;size:64" json:"id"`
	Title             string     `gorm:"index;size:512" json:"title"`
	Author            string     `gorm:"size:256" json:"author"`
	ISBN              string     `gorm:"uniqueIndex;size:20" json:"isbn"`
	Quantity          int        `json:"quantity"`
	AvailableQuantity int        `json:"availableQuantity"`
	Status            BookStatus `gorm:"index;size:20" json:"status"`
	CreatedAt         time.Time  `json:"createdAt,omitempty"`
	UpdatedAt         time.Time  `json:"-"`
}

// Checkout is a borrow transaction. ReturnDate is a pointer so an open
// checkout serializes as `"returnDate": null` and round-trips as null.
// Synced flips to true only after the remote authority acknowledges the
// record; the reconciliation engine is the only writer of that flag.
type Checkout struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	BookID       string         `gorm:"index;size:64" json:"bookId"`
	StudentEmail string         `gorm:"index;size:255" json:"studentEmail"`
	CheckoutDate time.Time      `json:"checkoutDate"`
	ReturnDate   *time.Time     `json:"returnDate"`
	Status       CheckoutStatus `gorm:"index;size:20" json:"status"`
	Synced       bool           `gorm:"index" json:"synced"`
	CreatedAt    time.Time      `json:"-"`
	UpdatedAt    time.Time      `json:"-"`
}

// User is reference data only; the circulation core never mutates users.
// Token authenticates API calls against the remote authority.
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email"`
	Name      string    `gorm:"size:255" json:"name,omitempty"`
	Token     string    `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type OfflineAction string

const (
	OfflineActionBorrow OfflineAction = "borrow"
	OfflineActionReturn OfflineAction = "return"
)

// OfflineSync is an outbox journal entry: a pending offline action recorded
// separately from the entity it mutates.
type OfflineSync struct {
	ID        string        `gorm:"primaryKey;size:64" json:"id"`
	UserID    string        `gorm:"index;size:64" json:"userId"`
	BookID    string        `gorm:"size:64" json:"bookId"`
	Action    OfflineAction `gorm:"size:32" json:"action"`
	Synced    bool          `gorm:"index" json:"synced"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (OfflineSync) TableName() string {
	return "offline_syncs"
}

// BookSummary is the slice of book data joined onto history rows.
type BookSummary struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BorrowingRecord is a checkout joined with its book, for history views.
type BorrowingRecord struct {
	ID           string         `json:"id"`
	StudentEmail string         `json:"studentEmail"`
	Status       CheckoutStatus `json:"status"`
	CheckoutDate time.Time      `json:"checkoutDate"`
	ReturnDate   *time.Time     `json:"returnDate"`
	Book         BookSummary    `json:"book"`
}
