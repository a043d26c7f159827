package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/ports"
	"github.com/google/uuid"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 15 * time.Second
	userAgent             = "srvctl"

	loginPath   = "/v1/auth/login"
	serversPath = "/v1/server"
	userPath    = "/v1/user/"
	debugPath   = "/v1/debug/users"
)

// Client talks to the server-hosting service. Authenticated calls send the
// session token verbatim in the Authorization header.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var (
	_ ports.ServerFetcher  = Client{}
	_ ports.ProfileFetcher = Client{}
	_ ports.Authenticator  = Client{}
)

type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Client) FetchServers(ctx context.Context, token string) ([]domain.ServerSummary, error) {
	var servers []domain.ServerSummary
	if err := c.do(ctx, http.MethodGet, serversPath, token, nil, &servers); err != nil {
		return nil, fmt.Errorf("%w: list servers: %w", domain.ErrFetchFailed, err)
	}
	if servers == nil {
		return nil, fmt.Errorf("%w: list servers: response is not an array", domain.ErrFetchFailed)
	}

	for i, server := range servers {
		if err := server.Validate(); err != nil {
			return nil, fmt.Errorf("%w: list servers: entry %d: %w", domain.ErrFetchFailed, i, err)
		}
	}

	return servers, nil
}

func (c Client) FetchProfile(ctx context.Context, token string, id domain.UserID) (domain.ProfileEntry, error) {
	var entry domain.ProfileEntry
	err := c.do(ctx, http.MethodGet, userPath+strconv.FormatInt(int64(id), 10), token, nil, &entry)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
			return domain.ProfileEntry{}, fmt.Errorf("user %d: %w", id, domain.ErrProfileNotFound)
		}
		return domain.ProfileEntry{}, fmt.Errorf("fetch user %d: %w", id, err)
	}

	return entry, nil
}

func (c Client) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if strings.TrimSpace(username) == "" {
		return domain.Session{}, errors.New("username is required")
	}
	if password == "" {
		return domain.Session{}, errors.New("password is required")
	}

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return domain.Session{}, fmt.Errorf("encode login request: %w", err)
	}

	var session domain.Session
	if err := c.do(ctx, http.MethodPost, loginPath, "", body, &session); err != nil {
		return domain.Session{}, fmt.Errorf("log in as %q: %w", username, err)
	}
	if err := session.Validate(); err != nil {
		return domain.Session{}, fmt.Errorf("log in as %q: %w", username, err)
	}

	return session, nil
}

// ListUsernames returns every username known to the service. The endpoint is
// unauthenticated and meant for development deployments.
func (c Client) ListUsernames(ctx context.Context) ([]string, error) {
	var usernames []string
	if err := c.do(ctx, http.MethodGet, debugPath, "", nil, &usernames); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return usernames, nil
}

func (c Client) do(ctx context.Context, method, path, token string, body []byte, out any) error {
	endpoint, err := buildAPIURL(c.BaseURL, path)
	if err != nil {
		return err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func errorMessage(body []byte) string {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

func buildAPIURL(baseURL, path string) (string, error) {
	base, err := domain.ParseServiceRoot(baseURL)
	if err != nil {
		return "", err
	}

	return base.String() + path, nil
}
