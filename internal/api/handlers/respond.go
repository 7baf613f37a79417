package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/service"
	"github.com/avdeev/library-app/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleServiceError maps the service error taxonomy onto HTTP statuses in
// one place. Unknown errors become a generic 500; internal text is logged,
// never sent to the client.
func handleServiceError(w http.ResponseWriter, component string, err error) {
	switch {
	case errors.Is(err, domain.ErrBookNotFound),
		errors.Is(err, domain.ErrAuthorNotFound),
		errors.Is(err, domain.ErrRentalNotFound),
		errors.Is(err, service.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, domain.ErrBookAlreadyTaken),
		errors.Is(err, domain.ErrBookRentedOut),
		errors.Is(err, domain.ErrAuthorHasBooks),
		errors.Is(err, service.ErrEmailExists):
		http.Error(w, err.Error(), http.StatusConflict)

	case errors.Is(err, service.ErrMissingISBN),
		errors.Is(err, service.ErrMissingTitle),
		errors.Is(err, service.ErrMissingAuthorID),
		errors.Is(err, service.ErrUnknownAuthor),
		errors.Is(err, service.ErrMissingAuthorName),
		errors.Is(err, service.ErrIDMismatch),
		errors.Is(err, storage.ErrEmptyFile):
		http.Error(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, service.ErrMissingUserID),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefresh):
		http.Error(w, err.Error(), http.StatusUnauthorized)

	default:
		log.Printf("ERROR [%s]: %v", component, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
