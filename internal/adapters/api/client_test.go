package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return Client{BaseURL: server.URL + "/", HTTPClient: server.Client()}
}

func TestFetchServersSendsRawTokenAndParsesArray(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/server", r.URL.Path)
		assert.Equal(t, "token-ada", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":10,"name":"alpha","created_at":"2026-10-01T10:00:00Z","description":"primary","owner":1}]`))
	})

	servers, err := client.FetchServers(context.Background(), "token-ada")
	require.NoError(t, err)
	assert.Equal(t, []domain.ServerSummary{{
		ID:          10,
		Name:        "alpha",
		CreatedAt:   "2026-10-01T10:00:00Z",
		Description: "primary",
		Owner:       1,
	}}, servers)
}

func TestFetchServersEmptyArrayIsLoaded(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	servers, err := client.FetchServers(context.Background(), "token")
	require.NoError(t, err)
	assert.NotNil(t, servers)
	assert.Empty(t, servers)
}

func TestFetchServersAcceptsZeroID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":0,"name":"first","owner":0}]`))
	})

	servers, err := client.FetchServers(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, []domain.ServerSummary{{ID: 0, Name: "first"}}, servers)
}

func TestFetchServersFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"invalid token"}`, wantErr: "status 401: invalid token"},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`, wantErr: "status 500: boom"},
		{name: "object body", status: http.StatusOK, body: `{"id":1}`, wantErr: "decode response"},
		{name: "null body", status: http.StatusOK, body: `null`, wantErr: "not an array"},
		{name: "truncated body", status: http.StatusOK, body: `[{"id":1`, wantErr: "decode response"},
		{name: "entry with negative id", status: http.StatusOK, body: `[{"id":3},{"id":-1,"name":"x"}]`, wantErr: "entry 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FetchServers(context.Background(), "token")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrFetchFailed)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFetchServersNetworkErrorIsFetchFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	_, err := Client{BaseURL: baseURL}.FetchServers(context.Background(), "token")
	require.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.ErrorContains(t, err, "perform request")
}

func TestFetchServersTimesOutWithoutCallerDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })
	client.RequestTimeout = 20 * time.Millisecond

	_, err := client.FetchServers(context.Background(), "token")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoginPostsCredentialsAndReturnsSession(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"username": "ada", "password": "secret"}, body)

		_, _ = w.Write([]byte(`{"username":"ada","token":"token-ada","id":1}`))
	})

	session, err := client.Login(context.Background(), "ada", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.Session{Username: "ada", Token: "token-ada", ID: 1}, session)
}

func TestLoginSurfacesServiceErrorMessage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"not implemented"}`))
	})

	_, err := client.Login(context.Background(), "ada", "secret")
	require.Error(t, err)
	assert.ErrorContains(t, err, "not implemented")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Status)
}

func TestLoginValidatesInputAndResponse(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"username":"ada","id":1}`))
	})

	_, err := client.Login(context.Background(), "", "secret")
	require.ErrorContains(t, err, "username is required")

	_, err = client.Login(context.Background(), "ada", "")
	require.ErrorContains(t, err, "password is required")

	_, err = client.Login(context.Background(), "ada", "secret")
	require.ErrorIs(t, err, domain.ErrMalformedValue)
}

func TestFetchProfile(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-ada", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/user/2":
			_, _ = w.Write([]byte(`{"username":"grace"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	entry, err := client.FetchProfile(context.Background(), "token-ada", 2)
	require.NoError(t, err)
	assert.Equal(t, "grace", entry.Username)

	_, err = client.FetchProfile(context.Background(), "token-ada", 3)
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestListUsernames(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/debug/users", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`["ada","grace"]`))
	})

	usernames, err := client.ListUsernames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ada", "grace"}, usernames)

	failing := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"database offline"}`))
	})

	_, err = failing.ListUsernames(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database offline")
}

func TestBuildAPIURLRejectsRelativeRoots(t *testing.T) {
	t.Parallel()

	_, err := buildAPIURL("", "/v1/server")
	require.ErrorContains(t, err, "service root is empty")

	_, err = buildAPIURL("localhost:8080", "/v1/server")
	require.Error(t, err)

	got, err := buildAPIURL("https://api.example.com/base/", "/v1/server")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/base/v1/server", got)
}
