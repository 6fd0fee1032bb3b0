// Package gist is a minimal client for the GitHub gist API: identity lookup
// and list, create, update and fetch of a single document.
package gist

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
)

// maxListPages bounds the document search.
const maxListPages = 10

// User is the account behind a credential.
type User struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	ID        int64  `json:"id"`
}

// File is one named file of a gist.
type File struct {
	Filename  string `json:"filename,omitempty"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
	RawURL    string `json:"raw_url,omitempty"`
}

// Gist is a remote document.
type Gist struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	Files       map[string]File `json:"files"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// API is the remote document backend.
type API interface {
	User(ctx context.Context, token string) (User, error)
	ListGists(ctx context.Context, token string) ([]Gist, error)
	CreateGist(ctx context.Context, token, description string, files map[string]string) (Gist, error)
	UpdateGist(ctx context.Context, token, id string, files map[string]string) (Gist, error)
	GetGist(ctx context.Context, token, id string) (Gist, error)
}

// Client implements API over HTTP.
type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a Client. A nil observer discards events.
func NewClient(cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		observer: observer,
	}
}

func (c *Client) User(ctx context.Context, token string) (User, error) {
	var u User
	err := c.do(ctx, "get user", http.MethodGet, "/user", token, nil, &u)
	return u, err
}

// ListGists returns the gists of the authenticated account, following
// pagination up to a fixed number of pages.
func (c *Client) ListGists(ctx context.Context, token string) ([]Gist, error) {
	var all []Gist
	for page := 1; page <= maxListPages; page++ {
		var batch []Gist
		path := "/gists?per_page=100&page=" + strconv.Itoa(page)
		if err := c.do(ctx, "list gists", http.MethodGet, path, token, nil, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < 100 {
			break
		}
	}
	return all, nil
}

type writeRequest struct {
	Description string          `json:"description,omitempty"`
	Public      *bool           `json:"public,omitempty"`
	Files       map[string]File `json:"files"`
}

func fileMap(files map[string]string) map[string]File {
	out := make(map[string]File, len(files))
	for name, content := range files {
		out[name] = File{Content: content}
	}
	return out
}

// CreateGist creates a secret gist.
func (c *Client) CreateGist(ctx context.Context, token, description string, files map[string]string) (Gist, error) {
	public := false
	body := writeRequest{Description: description, Public: &public, Files: fileMap(files)}
	var g Gist
	err := c.do(ctx, "create gist", http.MethodPost, "/gists", token, body, &g)
	return g, err
}

// UpdateGist overwrites the named files of gist id. The description is left
// unchanged.
func (c *Client) UpdateGist(ctx context.Context, token, id string, files map[string]string) (Gist, error) {
	body := writeRequest{Files: fileMap(files)}
	var g Gist
	err := c.do(ctx, "update gist", http.MethodPatch, "/gists/"+id, token, body, &g)
	return g, err
}

// GetGist fetches gist id. Files the API truncated are completed from their
// raw URL.
func (c *Client) GetGist(ctx context.Context, token, id string) (Gist, error) {
	var g Gist
	if err := c.do(ctx, "get gist", http.MethodGet, "/gists/"+id, token, nil, &g); err != nil {
		return Gist{}, err
	}
	for name, f := range g.Files {
		if !f.Truncated || f.RawURL == "" {
			continue
		}
		content, err := c.raw(ctx, token, f.RawURL)
		if err != nil {
			return Gist{}, err
		}
		f.Content = content
		f.Truncated = false
		g.Files[name] = f
	}
	return g, nil
}

func (c *Client) raw(ctx context.Context, token, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req, token)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.complete(ctx, "get raw file", http.MethodGet, 0, start, err)
		return "", fmt.Errorf("get raw file: %w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.complete(ctx, "get raw file", http.MethodGet, resp.StatusCode, start, err)
		return "", fmt.Errorf("get raw file: %w: %v", ErrNetwork, err)
	}
	if resp.StatusCode/100 != 2 {
		err := &StatusError{Op: "get raw file", Code: resp.StatusCode}
		c.complete(ctx, "get raw file", http.MethodGet, resp.StatusCode, start, err)
		return "", err
	}
	c.complete(ctx, "get raw file", http.MethodGet, resp.StatusCode, start, nil)
	return string(data), nil
}

func (c *Client) authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := strings.TrimRight(c.cfg.APIURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req, token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.complete(ctx, op, method, 0, start, err)
		return fmt.Errorf("%s: %w: %v", op, ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.complete(ctx, op, method, resp.StatusCode, start, err)
		return fmt.Errorf("%s: %w: reading response: %v", op, ErrNetwork, err)
	}

	if resp.StatusCode/100 != 2 {
		err := &StatusError{Op: op, Code: resp.StatusCode, Message: apiMessage(respBody)}
		c.complete(ctx, op, method, resp.StatusCode, start, err)
		return err
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			err = fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
			c.complete(ctx, op, method, resp.StatusCode, start, err)
			return err
		}
	}
	c.complete(ctx, op, method, resp.StatusCode, start, nil)
	return nil
}

func (c *Client) complete(ctx context.Context, op, method string, status int, start time.Time, err error) {
	c.observer.OnCallComplete(ctx, CallEvent{
		Op:        op,
		Method:    method,
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}

// apiMessage extracts the "message" field GitHub puts in error bodies.
func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Message
	}
	return ""
}

func errorCode(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.As(err, &statusErr):
		return "HTTP_" + strconv.Itoa(statusErr.Code)
	case errors.Is(err, ErrMalformedResponse):
		return "MALFORMED"
	default:
		return "NETWORK"
	}
}

// FindByMarker returns the first gist whose description contains marker.
func FindByMarker(gists []Gist, marker string) (Gist, bool) {
	for _, g := range gists {
		if g.Description != "" && strings.Contains(g.Description, marker) {
			return g, true
		}
	}
	return Gist{}, false
}
