package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/repository"
	"github.com/avdeev/library-app/internal/repository/postgres"
	"github.com/avdeev/library-app/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookRepository_GetByISBN(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	book := testutil.NewBookBuilder().
		WithISBN("9780199232765").
		WithTitle("War and Peace").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		isbn    string
		wantErr bool
	}{
		{
			name: "existing isbn",
			isbn: "9780199232765",
		},
		{
			name:    "unknown isbn",
			isbn:    "9999999999999",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByISBN(ctx, tt.isbn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, book.ID, got.ID)
			assert.Equal(t, book.Title, got.Title)
		})
	}
}

func TestBookRepository_GetFiltered(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	tolstoy := testutil.NewAuthorBuilder().WithName("Leo", "Tolstoy").Build(t, testDB.DB)
	austen := testutil.NewAuthorBuilder().WithName("Jane", "Austen").Build(t, testDB.DB)

	testutil.NewBookBuilder().WithTitle("War and Peace").WithGenre("Novel").WithAuthor(tolstoy).Build(t, testDB.DB)
	testutil.NewBookBuilder().WithTitle("Anna Karenina").WithGenre("Novel").WithAuthor(tolstoy).Build(t, testDB.DB)
	testutil.NewBookBuilder().WithTitle("Pride and Prejudice").WithGenre("Romance").WithAuthor(austen).Build(t, testDB.DB)

	tests := []struct {
		name       string
		filter     repository.BookFilter
		wantTitles []string
	}{
		{
			name:       "no filter returns everything",
			filter:     repository.BookFilter{},
			wantTitles: []string{"Anna Karenina", "Pride and Prejudice", "War and Peace"},
		},
		{
			name:       "title substring is case-insensitive",
			filter:     repository.BookFilter{Search: "war"},
			wantTitles: []string{"War and Peace"},
		},
		{
			name:       "genre is exact",
			filter:     repository.BookFilter{Genre: "Novel"},
			wantTitles: []string{"Anna Karenina", "War and Peace"},
		},
		{
			name:       "author id filter",
			filter:     repository.BookFilter{AuthorID: &austen.ID},
			wantTitles: []string{"Pride and Prejudice"},
		},
		{
			name:       "combined filters",
			filter:     repository.BookFilter{Search: "anna", Genre: "Novel", AuthorID: &tolstoy.ID},
			wantTitles: []string{"Anna Karenina"},
		},
		{
			name:       "no match",
			filter:     repository.BookFilter{Search: "Dead Souls"},
			wantTitles: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := repo.GetFiltered(ctx, tt.filter)
			require.NoError(t, err)

			titles := make([]string, len(books))
			for i, b := range books {
				titles[i] = b.Title
			}
			assert.Equal(t, tt.wantTitles, titles)
		})
	}
}

func TestBookRepository_DeleteWithRentals(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	t.Run("open rental blocks deletion", func(t *testing.T) {
		book := testutil.NewBookBuilder().Build(t, testDB.DB)
		testutil.NewRentalBuilder().WithBook(book).Build(t, testDB.DB)

		err := repo.DeleteWithRentals(ctx, book.ID)
		assert.ErrorIs(t, err, domain.ErrBookRentedOut)

		_, err = repo.GetByID(ctx, book.ID)
		assert.NoError(t, err)
	})

	t.Run("closed history is removed with the book", func(t *testing.T) {
		book := testutil.NewBookBuilder().Build(t, testDB.DB)
		rental := testutil.NewRentalBuilder().WithBook(book).Build(t, testDB.DB)
		now := rental.BorrowedAt.Add(time.Hour)
		require.NoError(t, testDB.DB.Model(rental).Update("returned_at", now).Error)

		require.NoError(t, repo.DeleteWithRentals(ctx, book.ID))

		_, err := repo.GetByID(ctx, book.ID)
		assert.Error(t, err)

		var count int64
		testDB.DB.Model(&domain.BookRental{}).Where("book_id = ?", book.ID).Count(&count)
		assert.Zero(t, count)
	})
}
