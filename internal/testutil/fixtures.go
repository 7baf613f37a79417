package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      domain.Role
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:    fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
		password: "testpassword123",
		role:     domain.RoleUser,
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithName sets first and last name
func (b *UserBuilder) WithName(first, last string) *UserBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

// AsAdmin gives the user the admin role
func (b *UserBuilder) AsAdmin() *UserBuilder {
	b.role = domain.RoleAdmin
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		FirstName:    b.firstName,
		LastName:     b.lastName,
		Role:         b.role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates the user in the database, authenticates via
// the API and returns the user and an access token.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	reqBody := map[string]string{
		"email":    b.email,
		"password": password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/authenticate"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to authenticate user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return user, authResp.AccessToken
}

// AuthorBuilder creates test authors
type AuthorBuilder struct {
	firstName string
	lastName  string
	country   string
	birthDate time.Time
}

// NewAuthorBuilder creates a new AuthorBuilder with default values
func NewAuthorBuilder() *AuthorBuilder {
	return &AuthorBuilder{
		firstName: "Jane",
		lastName:  fmt.Sprintf("Doe_%s", uuid.New().String()[:8]),
		country:   "England",
		birthDate: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WithName sets first and last name
func (b *AuthorBuilder) WithName(first, last string) *AuthorBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

// WithCountry sets the country
func (b *AuthorBuilder) WithCountry(country string) *AuthorBuilder {
	b.country = country
	return b
}

// Build creates the author in the database
func (b *AuthorBuilder) Build(t *testing.T, db *gorm.DB) *domain.Author {
	t.Helper()

	author := &domain.Author{
		FirstName: b.firstName,
		LastName:  b.lastName,
		Country:   b.country,
		BirthDate: b.birthDate,
	}

	if err := db.Create(author).Error; err != nil {
		t.Fatalf("failed to create author: %v", err)
	}

	return author
}

// BookBuilder creates test books
type BookBuilder struct {
	isbn        string
	title       string
	genre       string
	description string
	author      *domain.Author
}

// NewBookBuilder creates a new BookBuilder with default values
func NewBookBuilder() *BookBuilder {
	return &BookBuilder{
		isbn:  fmt.Sprintf("isbn-%s", uuid.New().String()[:13]),
		title: "Test Book",
		genre: "Fiction",
	}
}

// WithISBN sets the ISBN
func (b *BookBuilder) WithISBN(isbn string) *BookBuilder {
	b.isbn = isbn
	return b
}

// WithTitle sets the title
func (b *BookBuilder) WithTitle(title string) *BookBuilder {
	b.title = title
	return b
}

// WithGenre sets the genre
func (b *BookBuilder) WithGenre(genre string) *BookBuilder {
	b.genre = genre
	return b
}

// WithAuthor sets the author
func (b *BookBuilder) WithAuthor(author *domain.Author) *BookBuilder {
	b.author = author
	return b
}

// Build creates the book in the database, creating an author if none was set
func (b *BookBuilder) Build(t *testing.T, db *gorm.DB) *domain.Book {
	t.Helper()

	if b.author == nil {
		b.author = NewAuthorBuilder().Build(t, db)
	}

	book := &domain.Book{
		ISBN:        b.isbn,
		Title:       b.title,
		Genre:       b.genre,
		Description: b.description,
		AuthorID:    b.author.ID,
	}

	if err := db.Create(book).Error; err != nil {
		t.Fatalf("failed to create book: %v", err)
	}

	return book
}

// RentalBuilder creates rental ledger rows
type RentalBuilder struct {
	book       *domain.Book
	user       *domain.User
	borrowedAt time.Time
	dueAt      time.Time
	returnedAt *time.Time
}

// NewRentalBuilder creates a new RentalBuilder with default values
func NewRentalBuilder() *RentalBuilder {
	now := time.Now()
	return &RentalBuilder{
		borrowedAt: now,
		dueAt:      now.Add(72 * time.Hour),
	}
}

// WithBook sets the book
func (b *RentalBuilder) WithBook(book *domain.Book) *RentalBuilder {
	b.book = book
	return b
}

// WithUser sets the user
func (b *RentalBuilder) WithUser(user *domain.User) *RentalBuilder {
	b.user = user
	return b
}

// WithDueAt sets the due date
func (b *RentalBuilder) WithDueAt(dueAt time.Time) *RentalBuilder {
	b.dueAt = dueAt
	return b
}

// Returned closes the rental at the given time
func (b *RentalBuilder) Returned(at time.Time) *RentalBuilder {
	b.returnedAt = &at
	return b
}

// Build creates the rental in the database, creating a book and user if unset
func (b *RentalBuilder) Build(t *testing.T, db *gorm.DB) *domain.BookRental {
	t.Helper()

	if b.book == nil {
		b.book = NewBookBuilder().Build(t, db)
	}
	if b.user == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.user = user
	}

	rental := &domain.BookRental{
		BookID:     b.book.ID,
		UserID:     b.user.ID,
		BorrowedAt: b.borrowedAt,
		DueAt:      b.dueAt,
		ReturnedAt: b.returnedAt,
	}

	if err := db.Create(rental).Error; err != nil {
		t.Fatalf("failed to create rental: %v", err)
	}

	return rental
}
