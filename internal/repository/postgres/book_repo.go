package postgres

import (
	"context"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/repository"
	"gorm.io/gorm"
)

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) *bookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) GetByID(ctx context.Context, id uint) (*domain.Book, error) {
	var book domain.Book
	err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	var book domain.Book
	err := r.db.WithContext(ctx).First(&book, "isbn = ?", isbn).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetFiltered(ctx context.Context, filter repository.BookFilter) ([]*domain.Book, error) {
	q := r.db.WithContext(ctx).Model(&domain.Book{})

	if filter.Search != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Genre != "" {
		q = q.Where("genre = ?", filter.Genre)
	}
	if filter.AuthorID != nil {
		q = q.Where("author_id = ?", *filter.AuthorID)
	}

	var books []*domain.Book
	if err := q.Order("title").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) GetByAuthorID(ctx context.Context, authorID uint) ([]*domain.Book, error) {
	var books []*domain.Book
	err := r.db.WithContext(ctx).Find(&books, "author_id = ?", authorID).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) CountByAuthorID(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Book{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

func (r *bookRepository) DeleteWithRentals(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		err := tx.Model(&domain.BookRental{}).
			Where("book_id = ? AND returned_at IS NULL", id).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrBookRentedOut
		}

		if err := tx.Delete(&domain.BookRental{}, "book_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Book{}, "id = ?", id).Error
	})
}
