package repository

import (
	"context"
	"time"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// RotateRefreshToken swaps oldToken for newToken atomically; it fails with
	// gorm.ErrRecordNotFound when oldToken no longer matches the stored one,
	// so two concurrent refreshes cannot both succeed.
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldToken, newToken string, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, userID uuid.UUID) error
}

type AuthorRepository interface {
	Create(ctx context.Context, author *domain.Author) error
	GetByID(ctx context.Context, id uint) (*domain.Author, error)
	// GetByName matches the exact "First Last" concatenation.
	GetByName(ctx context.Context, name string) (*domain.Author, error)
	GetAll(ctx context.Context) ([]*domain.Author, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*domain.Author, error)
	Update(ctx context.Context, author *domain.Author) error
	Delete(ctx context.Context, id uint) error
}

type BookFilter struct {
	Search   string // title substring, case-insensitive
	Genre    string // exact match
	AuthorID *uint
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id uint) (*domain.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	GetFiltered(ctx context.Context, filter BookFilter) ([]*domain.Book, error)
	GetByAuthorID(ctx context.Context, authorID uint) ([]*domain.Book, error)
	CountByAuthorID(ctx context.Context, authorID uint) (int64, error)
	Update(ctx context.Context, book *domain.Book) error
	// DeleteWithRentals removes the book and its closed rental history in one
	// transaction. It fails with domain.ErrBookRentedOut while a rental is open.
	DeleteWithRentals(ctx context.Context, id uint) error
}

type RentalRepository interface {
	// CreateIfBookFree inserts the rental only when the book has no open
	// rental, holding a row lock on the book for the duration of the check.
	// Returns domain.ErrBookAlreadyTaken otherwise.
	CreateIfBookFree(ctx context.Context, rental *domain.BookRental) error
	GetOpenByBookAndUser(ctx context.Context, bookID uint, userID uuid.UUID) (*domain.BookRental, error)
	GetOpenByBook(ctx context.Context, bookID uint) (*domain.BookRental, error)
	GetOpenByBooks(ctx context.Context, bookIDs []uint) ([]*domain.BookRental, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.BookRental, error)
	GetByBook(ctx context.Context, bookID uint) ([]*domain.BookRental, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Close(ctx context.Context, rental *domain.BookRental, returnedAt time.Time) error
}

type Repositories struct {
	User   UserRepository
	Author AuthorRepository
	Book   BookRepository
	Rental RentalRepository
}
