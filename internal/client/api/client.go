// Package api implements the JSON/HTTP client for the SealVault server.
// It mirrors the server's httpapi routes one method per operation and keeps
// no state beyond the base URL and the bearer token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable indicates the server could not be reached at all, as
// opposed to the server answering with an error status.
var ErrUnavailable = errors.New("server unavailable")

// APIError carries a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken stores the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, reqBody any, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if respBody != nil {
		return json.NewDecoder(resp.Body).Decode(respBody)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/ping", nil, nil)
}

// CreateSession exchanges an authenticated subject for a bearer token and
// stores the token on the client.
func (c *Client) CreateSession(ctx context.Context, subject, email string) (string, error) {
	var resp struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	req := map[string]string{"subject": subject, "email": email}
	if err := c.do(ctx, http.MethodPost, "/api/session", req, &resp); err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.UserID, nil
}

func (c *Client) RegisterVault(ctx context.Context, pin string, metadata []byte) error {
	req := map[string]any{"pin": pin, "metadata": metadata}
	return c.do(ctx, http.MethodPost, "/api/vault", req, nil)
}

func (c *Client) RecoverVault(ctx context.Context, pin string) ([]byte, error) {
	var resp struct {
		Metadata []byte `json:"metadata"`
	}
	req := map[string]string{"pin": pin}
	if err := c.do(ctx, http.MethodPost, "/api/vault/recover", req, &resp); err != nil {
		return nil, err
	}
	return resp.Metadata, nil
}

func (c *Client) RefreshVault(ctx context.Context, metadata []byte) error {
	req := map[string]any{"metadata": metadata}
	return c.do(ctx, http.MethodPut, "/api/vault", req, nil)
}

type VaultStatus struct {
	HasVault bool   `json:"has_vault"`
	Metadata []byte `json:"metadata"`
}

func (c *Client) VaultStatus(ctx context.Context) (*VaultStatus, error) {
	status := &VaultStatus{}
	if err := c.do(ctx, http.MethodGet, "/api/vault", nil, status); err != nil {
		return nil, err
	}
	return status, nil
}

func (c *Client) AddEntry(ctx context.Context, name string, ciphertext, deletionHash []byte) error {
	req := map[string]any{"name": name, "ciphertext": ciphertext, "deletion_hash": deletionHash}
	return c.do(ctx, http.MethodPost, "/api/vault/entries", req, nil)
}

func (c *Client) ListEntryNames(ctx context.Context) ([]string, error) {
	var resp struct {
		Names []string `json:"names"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/vault/entries", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Names, nil
}

type Entry struct {
	Name       string `json:"name"`
	Ciphertext []byte `json:"ciphertext"`
}

func (c *Client) GetEntries(ctx context.Context) ([]Entry, error) {
	var resp struct {
		Entries []Entry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/vault/entries/all", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *Client) DeleteEntry(ctx context.Context, name string, preimage []byte) error {
	req := map[string]any{"preimage": preimage}
	return c.do(ctx, http.MethodDelete, "/api/vault/entries/"+name, req, nil)
}

func (c *Client) DeleteUser(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/user", nil, nil)
}
