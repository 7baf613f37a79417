package service

import (
	"github.com/avdeev/library-app/internal/config"
	"github.com/avdeev/library-app/internal/repository"
	"github.com/avdeev/library-app/internal/storage"
)

type Services struct {
	Auth   *AuthService
	Author *AuthorService
	Book   *BookService
	Rental *RentalService
}

func NewServices(repos *repository.Repositories, images *storage.ImageStore, cfg *config.Config) *Services {
	return &Services{
		Auth:   NewAuthService(repos.User, cfg),
		Author: NewAuthorService(repos.Author, repos.Book),
		Book:   NewBookService(repos.Book, repos.Author, repos.Rental, images),
		Rental: NewRentalService(repos.Rental, repos.Book, repos.Author),
	}
}
