package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMissingUserID = errors.New("user id is required")

type RentalService struct {
	rentalRepo repository.RentalRepository
	bookRepo   repository.BookRepository
	authorRepo repository.AuthorRepository
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	bookRepo repository.BookRepository,
	authorRepo repository.AuthorRepository,
) *RentalService {
	return &RentalService{
		rentalRepo: rentalRepo,
		bookRepo:   bookRepo,
		authorRepo: authorRepo,
	}
}

// RentalDetails is a ledger row joined with its book and author, the shape
// the profile page lists.
type RentalDetails struct {
	RentalID    uint
	BookID      uint
	Title       string
	Genre       string
	Description string
	AuthorName  string
	BorrowedAt  time.Time
	DueAt       time.Time
	ReturnedAt  *time.Time
}

// Borrow opens a rental for the book. A book with an open rental cannot be
// borrowed again by anyone until it is returned.
func (s *RentalService) Borrow(ctx context.Context, userID uuid.UUID, bookID uint, dueAt time.Time) (*domain.BookRental, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUserID
	}

	rental := &domain.BookRental{
		BookID:     bookID,
		UserID:     userID,
		BorrowedAt: time.Now(),
		DueAt:      dueAt,
	}

	if err := s.rentalRepo.CreateIfBookFree(ctx, rental); err != nil {
		return nil, err
	}
	return rental, nil
}

// Return soft-closes the caller's open rental for the book. The row stays in
// the ledger as history.
func (s *RentalService) Return(ctx context.Context, userID uuid.UUID, bookID uint) error {
	if userID == uuid.Nil {
		return ErrMissingUserID
	}

	rental, err := s.rentalRepo.GetOpenByBookAndUser(ctx, bookID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRentalNotFound
		}
		return err
	}

	return s.rentalRepo.Close(ctx, rental, time.Now())
}

// IsBookRentedByUser reports whether the user holds an open rental for the book.
func (s *RentalService) IsBookRentedByUser(ctx context.Context, bookID uint, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, ErrMissingUserID
	}

	_, err := s.rentalRepo.GetOpenByBookAndUser(ctx, bookID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsBookAvailable reports whether the book has no open rental.
func (s *RentalService) IsBookAvailable(ctx context.Context, bookID uint) (bool, error) {
	_, err := s.rentalRepo.GetOpenByBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// UserRentals lists the caller's full rental history, newest first.
func (s *RentalService) UserRentals(ctx context.Context, userID uuid.UUID) ([]*RentalDetails, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUserID
	}

	rentals, err := s.rentalRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, rentals)
}

// BookRentals lists every rental of one book, for the admin detail view.
func (s *RentalService) BookRentals(ctx context.Context, bookID uint) ([]*RentalDetails, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}

	rentals, err := s.rentalRepo.GetByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, rentals)
}

// Notifications classifies the caller's open rentals by due date. Overdue
// wins over due-soon; a user with no rental history at all gets a single
// informational notice.
func (s *RentalService) Notifications(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUserID
	}

	rentals, err := s.rentalRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(rentals) == 0 {
		return []*domain.Notification{
			{Message: "No active rentals.", Severity: domain.SeverityInfo},
		}, nil
	}

	titles, err := s.bookTitles(ctx, rentals)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	notifications := []*domain.Notification{}
	for _, r := range rentals {
		title, ok := titles[r.BookID]
		if !ok {
			continue
		}

		switch {
		case r.Overdue(now):
			notifications = append(notifications, &domain.Notification{
				Message:  fmt.Sprintf("The return date for %q has passed!", title),
				Severity: domain.SeverityError,
			})
		case r.DueSoon(now):
			notifications = append(notifications, &domain.Notification{
				Message:  fmt.Sprintf("The return date for %q is coming up soon!", title),
				Severity: domain.SeverityWarning,
			})
		}
	}

	return notifications, nil
}

func (s *RentalService) bookTitles(ctx context.Context, rentals []*domain.BookRental) (map[uint]string, error) {
	titles := make(map[uint]string)
	for _, r := range rentals {
		if _, ok := titles[r.BookID]; ok {
			continue
		}
		book, err := s.bookRepo.GetByID(ctx, r.BookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		titles[r.BookID] = book.Title
	}
	return titles, nil
}

func (s *RentalService) describe(ctx context.Context, rentals []*domain.BookRental) ([]*RentalDetails, error) {
	details := make([]*RentalDetails, 0, len(rentals))

	books := make(map[uint]*domain.Book)
	authors := make(map[uint]string)
	for _, r := range rentals {
		book, ok := books[r.BookID]
		if !ok {
			var err error
			book, err = s.bookRepo.GetByID(ctx, r.BookID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			books[r.BookID] = book
		}

		authorName, ok := authors[book.AuthorID]
		if !ok {
			author, err := s.authorRepo.GetByID(ctx, book.AuthorID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					authorName = "Unknown"
				} else {
					return nil, err
				}
			} else {
				authorName = author.FullName()
			}
			authors[book.AuthorID] = authorName
		}

		details = append(details, &RentalDetails{
			RentalID:    r.ID,
			BookID:      book.ID,
			Title:       book.Title,
			Genre:       book.Genre,
			Description: book.Description,
			AuthorName:  authorName,
			BorrowedAt:  r.BorrowedAt,
			DueAt:       r.DueAt,
			ReturnedAt:  r.ReturnedAt,
		})
	}

	return details, nil
}
