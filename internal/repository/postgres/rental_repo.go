package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type rentalRepository struct {
	db *gorm.DB
}

func NewRentalRepository(db *gorm.DB) *rentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) CreateIfBookFree(ctx context.Context, rental *domain.BookRental) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the book row so two concurrent borrows serialize here. The
		// partial unique index on open rentals is the backstop.
		var book domain.Book
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&book, "id = ?", rental.BookID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBookNotFound
			}
			return err
		}

		var open int64
		err = tx.Model(&domain.BookRental{}).
			Where("book_id = ? AND returned_at IS NULL", rental.BookID).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrBookAlreadyTaken
		}

		if err := tx.Create(rental).Error; err != nil {
			// The partial unique index fires when a racing borrow got past
			// the count under a different lock path.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrBookAlreadyTaken
			}
			return err
		}
		return nil
	})
}

func (r *rentalRepository) GetOpenByBookAndUser(ctx context.Context, bookID uint, userID uuid.UUID) (*domain.BookRental, error) {
	var rental domain.BookRental
	err := r.db.WithContext(ctx).
		First(&rental, "book_id = ? AND user_id = ? AND returned_at IS NULL", bookID, userID).Error
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) GetOpenByBook(ctx context.Context, bookID uint) (*domain.BookRental, error) {
	var rental domain.BookRental
	err := r.db.WithContext(ctx).
		First(&rental, "book_id = ? AND returned_at IS NULL", bookID).Error
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) GetOpenByBooks(ctx context.Context, bookIDs []uint) ([]*domain.BookRental, error) {
	var rentals []*domain.BookRental
	if len(bookIDs) == 0 {
		return rentals, nil
	}
	err := r.db.WithContext(ctx).
		Where("book_id IN ? AND returned_at IS NULL", bookIDs).
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *rentalRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.BookRental, error) {
	var rentals []*domain.BookRental
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("borrowed_at DESC").
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *rentalRepository) GetByBook(ctx context.Context, bookID uint) ([]*domain.BookRental, error) {
	var rentals []*domain.BookRental
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("borrowed_at DESC").
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *rentalRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.BookRental{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *rentalRepository) Close(ctx context.Context, rental *domain.BookRental, returnedAt time.Time) error {
	rental.ReturnedAt = &returnedAt
	return r.db.WithContext(ctx).
		Model(rental).
		Update("returned_at", returnedAt).Error
}
