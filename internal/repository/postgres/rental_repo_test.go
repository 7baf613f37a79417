package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/repository/postgres"
	"github.com/avdeev/library-app/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRentalRepository_CreateIfBookFree(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewRentalRepository(testDB.DB)
	ctx := context.Background()

	book := testutil.NewBookBuilder().Build(t, testDB.DB)
	alice, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	dueAt := time.Now().Add(72 * time.Hour)

	t.Run("free book", func(t *testing.T) {
		rental := &domain.BookRental{
			BookID:     book.ID,
			UserID:     alice.ID,
			BorrowedAt: time.Now(),
			DueAt:      dueAt,
		}
		require.NoError(t, repo.CreateIfBookFree(ctx, rental))
		assert.NotZero(t, rental.ID)
	})

	t.Run("second borrow is rejected", func(t *testing.T) {
		rental := &domain.BookRental{
			BookID:     book.ID,
			UserID:     bob.ID,
			BorrowedAt: time.Now(),
			DueAt:      dueAt,
		}
		err := repo.CreateIfBookFree(ctx, rental)
		assert.ErrorIs(t, err, domain.ErrBookAlreadyTaken)
	})

	t.Run("borrowable again after close", func(t *testing.T) {
		open, err := repo.GetOpenByBook(ctx, book.ID)
		require.NoError(t, err)
		require.NoError(t, repo.Close(ctx, open, time.Now()))

		rental := &domain.BookRental{
			BookID:     book.ID,
			UserID:     bob.ID,
			BorrowedAt: time.Now(),
			DueAt:      dueAt,
		}
		require.NoError(t, repo.CreateIfBookFree(ctx, rental))
	})

	t.Run("unknown book", func(t *testing.T) {
		rental := &domain.BookRental{
			BookID:     99999,
			UserID:     alice.ID,
			BorrowedAt: time.Now(),
			DueAt:      dueAt,
		}
		err := repo.CreateIfBookFree(ctx, rental)
		assert.ErrorIs(t, err, domain.ErrBookNotFound)
	})
}

func TestRentalRepository_OpenRentalIndex(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	ctx := context.Background()

	book := testutil.NewBookBuilder().Build(t, testDB.DB)
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	testutil.NewRentalBuilder().WithBook(book).WithUser(user).Build(t, testDB.DB)

	// A second open row for the same book violates the partial unique index
	// even when inserted outside the guarded path.
	err := testDB.DB.WithContext(ctx).Create(&domain.BookRental{
		BookID:     book.ID,
		UserID:     user.ID,
		BorrowedAt: time.Now(),
		DueAt:      time.Now().Add(72 * time.Hour),
	}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRentalRepository_OpenLookups(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewRentalRepository(testDB.DB)
	ctx := context.Background()

	book := testutil.NewBookBuilder().Build(t, testDB.DB)
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	// A closed rental should never count as open.
	closedAt := time.Now().Add(-time.Hour)
	testutil.NewRentalBuilder().WithBook(book).WithUser(user).Returned(closedAt).Build(t, testDB.DB)

	_, err := repo.GetOpenByBook(ctx, book.ID)
	assert.Error(t, err)

	open := testutil.NewRentalBuilder().WithBook(book).WithUser(user).Build(t, testDB.DB)

	got, err := repo.GetOpenByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, got.ID)

	got, err = repo.GetOpenByBookAndUser(ctx, book.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, got.ID)

	_, err = repo.GetOpenByBookAndUser(ctx, book.ID, other.ID)
	assert.Error(t, err)

	rentals, err := repo.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, rentals, 2)
}
