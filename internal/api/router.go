package api

import (
	"net/http"

	"github.com/avdeev/library-app/internal/api/handlers"
	"github.com/avdeev/library-app/internal/api/middleware"
	"github.com/avdeev/library-app/internal/service"
	"github.com/avdeev/library-app/internal/storage"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, images *storage.ImageStore) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Uploaded book covers
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(images.Dir()))))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	authorHandler := handlers.NewAuthorHandler(services.Author)
	bookHandler := handlers.NewBookHandler(services.Book, services.Rental)
	rentalHandler := handlers.NewRentalHandler(services.Rental)

	r.Route("/api", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/authenticate", authHandler.Authenticate)
			r.Post("/refresh", authHandler.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/books", func(r chi.Router) {
				r.Get("/", bookHandler.List)
				r.Get("/isbn/{isbn}", bookHandler.GetByISBN)
				r.Get("/{id}", bookHandler.Get)
				r.Get("/{id}/is-rented", rentalHandler.IsRented)

				r.Post("/borrow", rentalHandler.Borrow)
				r.Post("/return/{bookId}", rentalHandler.Return)
				r.Get("/user/rentals", rentalHandler.UserRentals)
				r.Get("/user/rentals/notifications", rentalHandler.Notifications)

				// Admin-only catalog management
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", bookHandler.Create)
					r.Put("/{id}", bookHandler.Update)
					r.Delete("/{id}", bookHandler.Delete)
					r.Post("/{id}/upload-image", bookHandler.UploadImage)
					r.Get("/{id}/rentals", bookHandler.Rentals)
				})
			})

			r.Route("/authors", func(r chi.Router) {
				r.Get("/", authorHandler.List)
				r.Get("/{id}", authorHandler.Get)
				r.Get("/{id}/books", authorHandler.GetBooks)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", authorHandler.Create)
					r.Put("/{id}", authorHandler.Update)
					r.Delete("/{id}", authorHandler.Delete)
				})
			})
		})
	})

	return r
}
