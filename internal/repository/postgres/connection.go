package postgres

import (
	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs auto-migration plus the partial unique index that backs the
// single-open-rental-per-book invariant.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Author{},
		&domain.Book{},
		&domain.BookRental{},
	)
	if err != nil {
		return err
	}

	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_book_rentals_open_book
		 ON book_rentals (book_id) WHERE returned_at IS NULL`,
	).Error
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:   NewUserRepository(db),
		Author: NewAuthorRepository(db),
		Book:   NewBookRepository(db),
		Rental: NewRentalRepository(db),
	}
}
