package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/repository"
	"github.com/avdeev/library-app/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrMissingISBN     = errors.New("isbn is required")
	ErrMissingTitle    = errors.New("title is required")
	ErrMissingAuthorID = errors.New("authorId is required")
	ErrUnknownAuthor   = errors.New("author does not exist")
)

type BookService struct {
	bookRepo   repository.BookRepository
	authorRepo repository.AuthorRepository
	rentalRepo repository.RentalRepository
	images     *storage.ImageStore
}

func NewBookService(
	bookRepo repository.BookRepository,
	authorRepo repository.AuthorRepository,
	rentalRepo repository.RentalRepository,
	images *storage.ImageStore,
) *BookService {
	return &BookService{
		bookRepo:   bookRepo,
		authorRepo: authorRepo,
		rentalRepo: rentalRepo,
		images:     images,
	}
}

// BookDetails is a catalog row with the author name and rental state joined in.
// TakenAt and ReturnAt come from the open rental, never from the book itself.
type BookDetails struct {
	Book       *domain.Book
	AuthorName string
	Available  bool
	TakenAt    *time.Time
	ReturnAt   *time.Time
}

type ListBooksInput struct {
	Search     string
	Genre      string
	AuthorName string
}

type BookInput struct {
	ISBN        string
	Title       string
	Genre       string
	Description string
	AuthorID    uint
	Tags        []string
	Image       io.Reader
	ImageName   string
}

// List filters the catalog. An author name that matches nobody yields an
// empty result, not an error.
func (s *BookService) List(ctx context.Context, input ListBooksInput) ([]*BookDetails, error) {
	filter := repository.BookFilter{
		Search: input.Search,
		Genre:  input.Genre,
	}

	if input.AuthorName != "" {
		author, err := s.authorRepo.GetByName(ctx, input.AuthorName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []*BookDetails{}, nil
			}
			return nil, err
		}
		filter.AuthorID = &author.ID
	}

	books, err := s.bookRepo.GetFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.decorate(ctx, books)
}

func (s *BookService) GetByID(ctx context.Context, id uint) (*BookDetails, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return s.decorateOne(ctx, book)
}

func (s *BookService) GetByISBN(ctx context.Context, isbn string) (*BookDetails, error) {
	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return s.decorateOne(ctx, book)
}

func (s *BookService) Create(ctx context.Context, input BookInput) (*BookDetails, error) {
	if err := validateBookInput(input); err != nil {
		return nil, err
	}

	if _, err := s.authorRepo.GetByID(ctx, input.AuthorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAuthor
		}
		return nil, err
	}

	book := &domain.Book{
		ISBN:        input.ISBN,
		Title:       input.Title,
		Genre:       input.Genre,
		Description: input.Description,
		AuthorID:    input.AuthorID,
	}
	if len(input.Tags) > 0 {
		raw, err := json.Marshal(input.Tags)
		if err != nil {
			return nil, err
		}
		book.Tags = raw
	}

	if input.Image != nil {
		path, err := s.images.Save(input.Image, input.ImageName)
		if err != nil {
			return nil, err
		}
		book.ImagePath = &path
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	return s.decorateOne(ctx, book)
}

func (s *BookService) Update(ctx context.Context, id uint, input BookInput) (*BookDetails, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}

	if err := validateBookInput(input); err != nil {
		return nil, err
	}

	if input.AuthorID != book.AuthorID {
		if _, err := s.authorRepo.GetByID(ctx, input.AuthorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownAuthor
			}
			return nil, err
		}
	}

	book.ISBN = input.ISBN
	book.Title = input.Title
	book.Genre = input.Genre
	book.Description = input.Description
	book.AuthorID = input.AuthorID
	if input.Tags != nil {
		raw, err := json.Marshal(input.Tags)
		if err != nil {
			return nil, err
		}
		book.Tags = raw
	}

	if input.Image != nil {
		if book.ImagePath != nil {
			if err := s.images.Remove(*book.ImagePath); err != nil {
				log.Printf("ERROR [book.Update] removing old image %s: %v", *book.ImagePath, err)
			}
		}
		path, err := s.images.Save(input.Image, input.ImageName)
		if err != nil {
			return nil, err
		}
		book.ImagePath = &path
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	return s.decorateOne(ctx, book)
}

func (s *BookService) Delete(ctx context.Context, id uint) error {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrBookNotFound
		}
		return err
	}

	if err := s.bookRepo.DeleteWithRentals(ctx, id); err != nil {
		return err
	}

	if book.ImagePath != nil {
		if err := s.images.Remove(*book.ImagePath); err != nil {
			log.Printf("ERROR [book.Delete] removing image %s: %v", *book.ImagePath, err)
		}
	}
	return nil
}

func (s *BookService) UploadImage(ctx context.Context, id uint, file io.Reader, fileName string) (string, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrBookNotFound
		}
		return "", err
	}

	if book.ImagePath != nil {
		if err := s.images.Remove(*book.ImagePath); err != nil {
			log.Printf("ERROR [book.UploadImage] removing old image %s: %v", *book.ImagePath, err)
		}
	}

	path, err := s.images.Save(file, fileName)
	if err != nil {
		return "", err
	}

	book.ImagePath = &path
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return "", err
	}
	return path, nil
}

func validateBookInput(input BookInput) error {
	if input.ISBN == "" {
		return ErrMissingISBN
	}
	if input.Title == "" {
		return ErrMissingTitle
	}
	if input.AuthorID == 0 {
		return ErrMissingAuthorID
	}
	return nil
}

func (s *BookService) decorateOne(ctx context.Context, book *domain.Book) (*BookDetails, error) {
	details, err := s.decorate(ctx, []*domain.Book{book})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *BookService) decorate(ctx context.Context, books []*domain.Book) ([]*BookDetails, error) {
	details := make([]*BookDetails, 0, len(books))
	if len(books) == 0 {
		return details, nil
	}

	authorIDs := make([]uint, 0, len(books))
	bookIDs := make([]uint, 0, len(books))
	seen := make(map[uint]bool)
	for _, b := range books {
		bookIDs = append(bookIDs, b.ID)
		if !seen[b.AuthorID] {
			seen[b.AuthorID] = true
			authorIDs = append(authorIDs, b.AuthorID)
		}
	}

	authors, err := s.authorRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(authors))
	for _, a := range authors {
		names[a.ID] = a.FullName()
	}

	open, err := s.rentalRepo.GetOpenByBooks(ctx, bookIDs)
	if err != nil {
		return nil, err
	}
	openByBook := make(map[uint]*domain.BookRental, len(open))
	for _, r := range open {
		openByBook[r.BookID] = r
	}

	for _, b := range books {
		d := &BookDetails{
			Book:      b,
			Available: true,
		}
		if name, ok := names[b.AuthorID]; ok {
			d.AuthorName = name
		} else {
			d.AuthorName = "Unknown"
		}
		if r, ok := openByBook[b.ID]; ok {
			d.Available = false
			takenAt := r.BorrowedAt
			returnAt := r.DueAt
			d.TakenAt = &takenAt
			d.ReturnAt = &returnAt
		}
		details = append(details, d)
	}

	return details, nil
}
