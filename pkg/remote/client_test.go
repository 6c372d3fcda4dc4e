package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cragtrack/cragtrack/pkg/climb"
	"github.com/cragtrack/cragtrack/pkg/grade"
	"github.com/cragtrack/cragtrack/pkg/identity"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	auth := identity.NewState()
	auth.SetIdentity(identity.Identity{UserID: "user-1"})

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, auth)
	require.NoError(t, err)
	return client
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	auth := identity.NewState()

	_, err := NewClient(Config{APIKey: "k"}, auth)
	assert.Error(t, err, "missing BaseURL must be rejected")

	_, err = NewClient(Config{BaseURL: "https://api.example.com"}, auth)
	assert.Error(t, err, "missing APIKey must be rejected")
}

func TestFetchClimbs(t *testing.T) {
	t.Parallel()

	want := []climb.Climb{
		{ID: "a", Grade: "V4", Type: grade.TypeBoulder, Status: climb.StatusSend, SessionID: "s1"},
	}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/users/user-1/climbs", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(want) // nolint:errcheck
	}))

	got, err := client.FetchClimbs(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "V4", got[0].Grade)
}

func TestUpsertClimbs(t *testing.T) {
	t.Parallel()

	var received []climb.Climb
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/users/user-1/climbs", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))

	batch := []climb.Climb{
		{ID: "a", Grade: "V4", Type: grade.TypeBoulder, Status: climb.StatusSend, SessionID: "s1"},
		{ID: "b", Grade: "V5", Type: grade.TypeBoulder, Status: climb.StatusAttempt, SessionID: "s1"},
	}

	require.NoError(t, client.UpsertClimbs(context.Background(), batch))
	require.Len(t, received, 2)
	assert.Equal(t, "b", received[1].ID)
}

func TestDeleteClimb(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/users/user-1/climbs/climb-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteClimb(context.Background(), "climb-1"))
}

func TestFetchSessionsPath(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/user-1/sessions", r.URL.Path)
		w.Write([]byte("[]")) // nolint:errcheck
	}))

	got, err := client.FetchSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNotAuthenticated(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached the server without an identity")
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, identity.NewState())
	require.NoError(t, err)

	_, err = client.FetchClimbs(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "key revoked"}`)) // nolint:errcheck
	}))

	_, err := client.FetchClimbs(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "key revoked")
}

func TestAPIErrorWithoutBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.FetchClimbs(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}
