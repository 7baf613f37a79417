package domain

import "errors"

// Catalog errors
var (
	ErrAuthorNotFound = errors.New("author not found")
	ErrBookNotFound   = errors.New("book not found")
	ErrAuthorHasBooks = errors.New("author still has books in the catalog")
)

// Rental errors
var (
	ErrRentalNotFound   = errors.New("rental not found")
	ErrBookAlreadyTaken = errors.New("book already has an open rental")
	ErrBookRentedOut    = errors.New("book has an open rental and cannot be deleted")
)
