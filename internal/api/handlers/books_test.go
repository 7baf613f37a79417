package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/avdeev/library-app/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, method, url, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	return doRequest(t, method, url, token, bytes.NewBuffer(body), "application/json")
}

func TestBookLifecycle(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, adminToken := testutil.NewUserBuilder().AsAdmin().BuildAndAuthenticate(t, ts)
	_, userToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	author := testutil.NewAuthorBuilder().WithName("Jane", "Doe").Build(t, ts.DB.DB)

	// Admin creates a book via multipart form.
	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	w.WriteField("isbn", "123")
	w.WriteField("title", "A Tale of Tests")
	w.WriteField("genre", "Fiction")
	w.WriteField("authorId", fmt.Sprint(author.ID))
	w.Close()

	resp := doRequest(t, http.MethodPost, ts.APIURL("/books"), adminToken, &form, w.FormDataContentType())
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID         uint   `json:"id"`
		ISBN       string `json:"isbn"`
		AuthorName string `json:"authorName"`
		Available  bool   `json:"available"`
	}
	testutil.AssertJSONResponse(t, resp, &created)
	assert.Equal(t, "123", created.ISBN)
	assert.Equal(t, "Jane Doe", created.AuthorName)
	assert.True(t, created.Available)

	// A non-admin cannot create books.
	var form2 bytes.Buffer
	w2 := multipart.NewWriter(&form2)
	w2.WriteField("isbn", "456")
	w2.WriteField("title", "Forbidden")
	w2.WriteField("authorId", fmt.Sprint(author.ID))
	w2.Close()

	forbidden := doRequest(t, http.MethodPost, ts.APIURL("/books"), userToken, &form2, w2.FormDataContentType())
	defer forbidden.Body.Close()
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)

	// ISBN lookup round trip.
	byISBN := doRequest(t, http.MethodGet, ts.APIURL("/books/isbn/123"), userToken, nil, "")
	defer byISBN.Body.Close()
	assert.Equal(t, http.StatusOK, byISBN.StatusCode)

	missing := doRequest(t, http.MethodGet, ts.APIURL("/books/isbn/unknown"), userToken, nil, "")
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestBorrowReturnFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, aliceToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, bobToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	book := testutil.NewBookBuilder().WithTitle("Borrowable").Build(t, ts.DB.DB)

	borrowURL := ts.APIURL("/books/borrow")
	returnAt := time.Now().Add(72 * time.Hour)

	// Alice borrows.
	resp := doJSON(t, http.MethodPost, borrowURL, aliceToken, map[string]any{
		"bookId":   book.ID,
		"returnAt": returnAt,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The book now reads unavailable.
	bookResp := doRequest(t, http.MethodGet, ts.APIURL(fmt.Sprintf("/books/%d", book.ID)), bobToken, nil, "")
	defer bookResp.Body.Close()
	var details struct {
		Available bool       `json:"available"`
		TakenAt   *time.Time `json:"takenAt"`
	}
	testutil.AssertJSONResponse(t, bookResp, &details)
	assert.False(t, details.Available)
	assert.NotNil(t, details.TakenAt)

	// Bob cannot double-borrow.
	conflict := doJSON(t, http.MethodPost, borrowURL, bobToken, map[string]any{
		"bookId":   book.ID,
		"returnAt": returnAt,
	})
	defer conflict.Body.Close()
	assert.Equal(t, http.StatusConflict, conflict.StatusCode)

	// is-rented answers per caller.
	isRentedURL := ts.APIURL(fmt.Sprintf("/books/%d/is-rented", book.ID))

	aliceRented := doRequest(t, http.MethodGet, isRentedURL, aliceToken, nil, "")
	defer aliceRented.Body.Close()
	var rented struct {
		IsRented bool `json:"isRented"`
	}
	testutil.AssertJSONResponse(t, aliceRented, &rented)
	assert.True(t, rented.IsRented)

	bobRented := doRequest(t, http.MethodGet, isRentedURL, bobToken, nil, "")
	defer bobRented.Body.Close()
	testutil.AssertJSONResponse(t, bobRented, &rented)
	assert.False(t, rented.IsRented)

	// Bob cannot return Alice's rental.
	bobReturn := doJSON(t, http.MethodPost, ts.APIURL(fmt.Sprintf("/books/return/%d", book.ID)), bobToken, nil)
	defer bobReturn.Body.Close()
	assert.Equal(t, http.StatusNotFound, bobReturn.StatusCode)

	// Alice returns; availability is restored.
	aliceReturn := doJSON(t, http.MethodPost, ts.APIURL(fmt.Sprintf("/books/return/%d", book.ID)), aliceToken, nil)
	defer aliceReturn.Body.Close()
	require.Equal(t, http.StatusOK, aliceReturn.StatusCode)

	after := doRequest(t, http.MethodGet, ts.APIURL(fmt.Sprintf("/books/%d", book.ID)), aliceToken, nil, "")
	defer after.Body.Close()
	testutil.AssertJSONResponse(t, after, &details)
	assert.True(t, details.Available)
	assert.Nil(t, details.TakenAt)

	// Alice's history shows the closed rental.
	history := doRequest(t, http.MethodGet, ts.APIURL("/books/user/rentals"), aliceToken, nil, "")
	defer history.Body.Close()
	var rentals []struct {
		Title      string     `json:"title"`
		ReturnedAt *time.Time `json:"returnedAt"`
	}
	testutil.AssertJSONResponse(t, history, &rentals)
	require.Len(t, rentals, 1)
	assert.Equal(t, "Borrowable", rentals[0].Title)
	assert.NotNil(t, rentals[0].ReturnedAt)
}

func TestNotificationsEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	url := ts.APIURL("/books/user/rentals/notifications")

	// No rentals: exactly one info notice.
	resp := doRequest(t, http.MethodGet, url, token, nil, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var notifications []struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	testutil.AssertJSONResponse(t, resp, &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, "info", notifications[0].Type)

	// An overdue rental turns into an error notice.
	book := testutil.NewBookBuilder().WithTitle("Late Book").Build(t, ts.DB.DB)
	testutil.NewRentalBuilder().
		WithBook(book).
		WithUser(user).
		WithDueAt(time.Now().Add(-2 * time.Hour)).
		Build(t, ts.DB.DB)

	resp2 := doRequest(t, http.MethodGet, url, token, nil, "")
	defer resp2.Body.Close()
	testutil.AssertJSONResponse(t, resp2, &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, "error", notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "Late Book")
}
