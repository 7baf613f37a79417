package postgres

import (
	"context"

	"github.com/avdeev/library-app/internal/domain"
	"gorm.io/gorm"
)

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) *authorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, author *domain.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

func (r *authorRepository) GetByID(ctx context.Context, id uint) (*domain.Author, error) {
	var author domain.Author
	err := r.db.WithContext(ctx).First(&author, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) GetByName(ctx context.Context, name string) (*domain.Author, error) {
	var author domain.Author
	err := r.db.WithContext(ctx).
		First(&author, "first_name || ' ' || last_name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) GetAll(ctx context.Context) ([]*domain.Author, error) {
	var authors []*domain.Author
	err := r.db.WithContext(ctx).Order("last_name, first_name").Find(&authors).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *authorRepository) GetByIDs(ctx context.Context, ids []uint) ([]*domain.Author, error) {
	var authors []*domain.Author
	if len(ids) == 0 {
		return authors, nil
	}
	err := r.db.WithContext(ctx).Find(&authors, "id IN ?", ids).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *authorRepository) Update(ctx context.Context, author *domain.Author) error {
	return r.db.WithContext(ctx).Save(author).Error
}

func (r *authorRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Author{}, "id = ?", id).Error
}
