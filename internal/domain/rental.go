package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookRental is one ledger entry. A rental is open while ReturnedAt is null;
// a book is available iff it has no open rental.
type BookRental struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	BookID     uint       `json:"bookId" gorm:"not null;index"`
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	BorrowedAt time.Time  `json:"borrowedAt" gorm:"not null"`
	DueAt      time.Time  `json:"dueAt" gorm:"not null"`
	ReturnedAt *time.Time `json:"returnedAt"`
}

func (r *BookRental) IsOpen() bool {
	return r.ReturnedAt == nil
}

// Overdue reports whether an open rental is past its due date.
func (r *BookRental) Overdue(now time.Time) bool {
	return r.IsOpen() && r.DueAt.Before(now)
}

// DueSoon reports whether an open rental is due within the next 24 hours.
func (r *BookRental) DueSoon(now time.Time) bool {
	if !r.IsOpen() || r.DueAt.Before(now) {
		return false
	}
	return r.DueAt.Sub(now) <= 24*time.Hour
}
