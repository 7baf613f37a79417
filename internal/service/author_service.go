package service

import (
	"context"
	"errors"
	"time"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrMissingAuthorName = errors.New("author first and last name are required")
	ErrIDMismatch        = errors.New("id in path does not match id in body")
)

type AuthorService struct {
	authorRepo repository.AuthorRepository
	bookRepo   repository.BookRepository
}

func NewAuthorService(authorRepo repository.AuthorRepository, bookRepo repository.BookRepository) *AuthorService {
	return &AuthorService{
		authorRepo: authorRepo,
		bookRepo:   bookRepo,
	}
}

type AuthorInput struct {
	FirstName string
	LastName  string
	BirthDate time.Time
	Country   string
}

func (s *AuthorService) GetAll(ctx context.Context) ([]*domain.Author, error) {
	return s.authorRepo.GetAll(ctx)
}

func (s *AuthorService) GetByID(ctx context.Context, id uint) (*domain.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAuthorNotFound
		}
		return nil, err
	}
	return author, nil
}

// GetBooks fails with not-found both when the author is missing and when the
// author has no books.
func (s *AuthorService) GetBooks(ctx context.Context, authorID uint) ([]*domain.Book, error) {
	if _, err := s.GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	books, err := s.bookRepo.GetByAuthorID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, domain.ErrBookNotFound
	}
	return books, nil
}

func (s *AuthorService) Create(ctx context.Context, input AuthorInput) (*domain.Author, error) {
	if input.FirstName == "" || input.LastName == "" {
		return nil, ErrMissingAuthorName
	}

	author := &domain.Author{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		BirthDate: input.BirthDate,
		Country:   input.Country,
	}

	if err := s.authorRepo.Create(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *AuthorService) Update(ctx context.Context, id uint, input AuthorInput) (*domain.Author, error) {
	author, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName == "" || input.LastName == "" {
		return nil, ErrMissingAuthorName
	}

	author.FirstName = input.FirstName
	author.LastName = input.LastName
	author.BirthDate = input.BirthDate
	author.Country = input.Country

	if err := s.authorRepo.Update(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

// Delete refuses to remove an author who still has books in the catalog.
func (s *AuthorService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.bookRepo.CountByAuthorID(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrAuthorHasBooks
	}

	return s.authorRepo.Delete(ctx, id)
}
