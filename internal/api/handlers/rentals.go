package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avdeev/library-app/internal/api/middleware"
	"github.com/avdeev/library-app/internal/service"
)

type RentalHandler struct {
	rentalService *service.RentalService
}

func NewRentalHandler(rentalService *service.RentalService) *RentalHandler {
	return &RentalHandler{rentalService: rentalService}
}

type BorrowRequest struct {
	BookID   uint      `json:"bookId"`
	ReturnAt time.Time `json:"returnAt"`
}

type RentalResponse struct {
	ID          uint       `json:"id"`
	BookID      uint       `json:"bookId"`
	Title       string     `json:"title"`
	Genre       string     `json:"genre"`
	Description string     `json:"description"`
	AuthorName  string     `json:"authorName"`
	BorrowedAt  time.Time  `json:"borrowedAt"`
	DueAt       time.Time  `json:"dueAt"`
	ReturnedAt  *time.Time `json:"returnedAt"`
}

func toRentalResponses(rentals []*service.RentalDetails) []RentalResponse {
	resp := make([]RentalResponse, len(rentals))
	for i, r := range rentals {
		resp[i] = RentalResponse{
			ID:          r.RentalID,
			BookID:      r.BookID,
			Title:       r.Title,
			Genre:       r.Genre,
			Description: r.Description,
			AuthorName:  r.AuthorName,
			BorrowedAt:  r.BorrowedAt,
			DueAt:       r.DueAt,
			ReturnedAt:  r.ReturnedAt,
		}
	}
	return resp
}

func (h *RentalHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.BookID == 0 || req.ReturnAt.IsZero() {
		http.Error(w, "bookId and returnAt are required", http.StatusBadRequest)
		return
	}

	rental, err := h.rentalService.Borrow(r.Context(), userID, req.BookID, req.ReturnAt)
	if err != nil {
		handleServiceError(w, "rentals.Borrow", err)
		return
	}

	writeJSON(w, http.StatusCreated, rental)
}

func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookID, err := parseUintParam(r, "bookId")
	if err != nil {
		http.Error(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	if err := h.rentalService.Return(r.Context(), userID, bookID); err != nil {
		handleServiceError(w, "rentals.Return", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *RentalHandler) UserRentals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rentals, err := h.rentalService.UserRentals(r.Context(), userID)
	if err != nil {
		handleServiceError(w, "rentals.UserRentals", err)
		return
	}

	writeJSON(w, http.StatusOK, toRentalResponses(rentals))
}

func (h *RentalHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.rentalService.Notifications(r.Context(), userID)
	if err != nil {
		handleServiceError(w, "rentals.Notifications", err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

func (h *RentalHandler) IsRented(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookID, err := parseUintParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	rented, err := h.rentalService.IsBookRentedByUser(r.Context(), bookID, userID)
	if err != nil {
		handleServiceError(w, "rentals.IsRented", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"isRented": rented})
}
