package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/avdeev/library-app/internal/service"
	"github.com/go-chi/chi/v5"
)

const maxUploadSize = 10 << 20 // 10 MiB

type BookHandler struct {
	bookService   *service.BookService
	rentalService *service.RentalService
}

func NewBookHandler(bookService *service.BookService, rentalService *service.RentalService) *BookHandler {
	return &BookHandler{
		bookService:   bookService,
		rentalService: rentalService,
	}
}

type BookResponse struct {
	ID          uint       `json:"id"`
	ISBN        string     `json:"isbn"`
	Title       string     `json:"title"`
	Genre       string     `json:"genre"`
	Description string     `json:"description"`
	AuthorID    uint       `json:"authorId"`
	AuthorName  string     `json:"authorName"`
	ImagePath   *string    `json:"imagePath"`
	Tags        []string   `json:"tags"`
	Available   bool       `json:"available"`
	TakenAt     *time.Time `json:"takenAt"`
	ReturnAt    *time.Time `json:"returnAt"`
}

func toBookResponse(d *service.BookDetails) BookResponse {
	var tags []string
	if len(d.Book.Tags) > 0 {
		json.Unmarshal(d.Book.Tags, &tags)
	}

	return BookResponse{
		ID:          d.Book.ID,
		ISBN:        d.Book.ISBN,
		Title:       d.Book.Title,
		Genre:       d.Book.Genre,
		Description: d.Book.Description,
		AuthorID:    d.Book.AuthorID,
		AuthorName:  d.AuthorName,
		ImagePath:   d.Book.ImagePath,
		Tags:        tags,
		Available:   d.Available,
		TakenAt:     d.TakenAt,
		ReturnAt:    d.ReturnAt,
	}
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	books, err := h.bookService.List(r.Context(), service.ListBooksInput{
		Search:     q.Get("search"),
		Genre:      q.Get("genre"),
		AuthorName: q.Get("author"),
	})
	if err != nil {
		handleServiceError(w, "books.List", err)
		return
	}

	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = toBookResponse(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	book, err := h.bookService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, "books.Get", err)
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(book))
}

func (h *BookHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")

	book, err := h.bookService.GetByISBN(r.Context(), isbn)
	if err != nil {
		handleServiceError(w, "books.GetByISBN", err)
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(book))
}

// Create accepts multipart form data: book fields plus an optional image.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := parseBookForm(r)
	if err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	book, err := h.bookService.Create(r.Context(), *input)
	if err != nil {
		handleServiceError(w, "books.Create", err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookResponse(book))
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	input, err := parseBookForm(r)
	if err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	// A mismatched id field in the form is a client error, same as the path
	// id pointing at a different book.
	if formID := r.FormValue("id"); formID != "" {
		if parsed, err := strconv.ParseUint(formID, 10, 64); err != nil || uint(parsed) != id {
			handleServiceError(w, "books.Update", service.ErrIDMismatch)
			return
		}
	}

	book, err := h.bookService.Update(r.Context(), id, *input)
	if err != nil {
		handleServiceError(w, "books.Update", err)
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(book))
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	if err := h.bookService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, "books.Delete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BookHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	path, err := h.bookService.UploadImage(r.Context(), id, file, header.Filename)
	if err != nil {
		handleServiceError(w, "books.UploadImage", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"imagePath": path})
}

// Rentals lists a book's full rental history (admin view).
func (h *BookHandler) Rentals(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	rentals, err := h.rentalService.BookRentals(r.Context(), id)
	if err != nil {
		handleServiceError(w, "books.Rentals", err)
		return
	}

	writeJSON(w, http.StatusOK, toRentalResponses(rentals))
}

func parseBookForm(r *http.Request) (*service.BookInput, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, err
	}

	authorID, _ := strconv.ParseUint(r.FormValue("authorId"), 10, 64)

	input := &service.BookInput{
		ISBN:        r.FormValue("isbn"),
		Title:       r.FormValue("title"),
		Genre:       r.FormValue("genre"),
		Description: r.FormValue("description"),
		AuthorID:    uint(authorID),
	}

	if raw := r.FormValue("tags"); raw != "" {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return nil, err
		}
		input.Tags = tags
	}

	file, header, err := r.FormFile("image")
	switch err {
	case nil:
		// The reader is consumed inside the service call, before the handler
		// returns and the form is cleaned up.
		input.Image = file
		input.ImageName = header.Filename
	case http.ErrMissingFile:
	default:
		return nil, err
	}

	return input, nil
}
