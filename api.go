package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PlatformClient talks to the remote social-platform REST API. The platform
// is the system of record; the console only reads lists and issues
// moderation mutations against it.
type PlatformClient struct {
	baseURL string
	client  *http.Client
}

func NewPlatformClient(baseURL string) *PlatformClient {
	return &PlatformClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError is a non-2xx response from the platform, carrying the server's
// message field when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API: %d %s", e.Status, e.Message)
}

// isAuthError reports whether the platform rejected our bearer token. The
// local session is meaningless after this; callers force a re-login.
func isAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

type LoginResult struct {
	Token string
	Role  string
}

func (c *PlatformClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var reply struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &reply); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: reply.Token, Role: reply.User.Role}, nil
}

func (c *PlatformClient) ListUsers(ctx context.Context, token string) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/admin/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *PlatformClient) Feed(ctx context.Context, token string) ([]Post, error) {
	var posts []Post
	if err := c.do(ctx, http.MethodGet, "/posts/feed", token, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *PlatformClient) ApproveUser(ctx context.Context, token, userID string) error {
	return c.do(ctx, http.MethodPatch, "/admin/approve-user", token, map[string]string{"userId": userID}, nil)
}

// RestrictUser blocks a user's login without deleting their record (the
// platform calls this a reject, the dashboard calls it a soft delete).
func (c *PlatformClient) RestrictUser(ctx context.Context, token, userID string) error {
	return c.do(ctx, http.MethodPatch, "/admin/reject-user", token, map[string]string{"userId": userID}, nil)
}

func (c *PlatformClient) DeleteUser(ctx context.Context, token, userID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/delete-user/"+userID, token, nil, nil)
}

func (c *PlatformClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling platform API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &payload)

	// Message may be empty; call sites supply their own fallback text.
	return &APIError{Status: resp.StatusCode, Message: payload.Message}
}

// apiMessage prefers the platform's message field, falling back to the
// caller's generic text for transport failures and messageless errors.
func apiMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// errNotConnected marks dashboard affordances that have no platform
// endpoint yet. The buttons existed in the old console without any network
// call behind them; this keeps the gap explicit instead of guessing one.
var errNotConnected = errors.New("post moderation is not connected to the platform API yet")

// PostModerator is the seam where post approve/reject will land once the
// platform exposes endpoints for them.
// TODO: swap notConnectedModerator for a real implementation when the
// platform ships its post moderation routes.
type PostModerator interface {
	ApprovePost(ctx context.Context, token, postID string) error
	RejectPost(ctx context.Context, token, postID string) error
}

type notConnectedModerator struct{}

func (notConnectedModerator) ApprovePost(context.Context, string, string) error {
	return errNotConnected
}

func (notConnectedModerator) RejectPost(context.Context, string, string) error {
	return errNotConnected
}
