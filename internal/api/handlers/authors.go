package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthorHandler struct {
	authorService *service.AuthorService
}

func NewAuthorHandler(authorService *service.AuthorService) *AuthorHandler {
	return &AuthorHandler{authorService: authorService}
}

type AuthorRequest struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	BirthDate time.Time `json:"birthDate"`
	Country   string    `json:"country"`
}

type AuthorResponse struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	BirthDate time.Time `json:"birthDate"`
	Country   string    `json:"country"`
}

func toAuthorResponse(a *domain.Author) AuthorResponse {
	return AuthorResponse{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		BirthDate: a.BirthDate,
		Country:   a.Country,
	}
}

func (h *AuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	authors, err := h.authorService.GetAll(r.Context())
	if err != nil {
		handleServiceError(w, "authors.List", err)
		return
	}

	resp := make([]AuthorResponse, len(authors))
	for i, a := range authors {
		resp[i] = toAuthorResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid author id", http.StatusBadRequest)
		return
	}

	author, err := h.authorService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, "authors.Get", err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthorResponse(author))
}

func (h *AuthorHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid author id", http.StatusBadRequest)
		return
	}

	books, err := h.authorService.GetBooks(r.Context(), id)
	if err != nil {
		handleServiceError(w, "authors.GetBooks", err)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

func (h *AuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	author, err := h.authorService.Create(r.Context(), service.AuthorInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: req.BirthDate,
		Country:   req.Country,
	})
	if err != nil {
		handleServiceError(w, "authors.Create", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthorResponse(author))
}

func (h *AuthorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid author id", http.StatusBadRequest)
		return
	}

	var req AuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// An id in the body must agree with the path.
	if req.ID != 0 && req.ID != id {
		handleServiceError(w, "authors.Update", service.ErrIDMismatch)
		return
	}

	author, err := h.authorService.Update(r.Context(), id, service.AuthorInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: req.BirthDate,
		Country:   req.Country,
	})
	if err != nil {
		handleServiceError(w, "authors.Update", err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthorResponse(author))
}

func (h *AuthorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid author id", http.StatusBadRequest)
		return
	}

	if err := h.authorService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, "authors.Delete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseUintParam(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
