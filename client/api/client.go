// Package api implements the HTTP client for the notes REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")

	// ErrRejected marks a request the server refused as invalid; retrying
	// it unchanged can never succeed.
	ErrRejected = errors.New("request rejected")

	ErrServer = errors.New("server error")
)

// ServerNote is the note record as the REST API returns it.
type ServerNote struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AuthResult struct {
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

// ResolveURL turns a server-relative path such as "/uploads/x.png" into an
// absolute URL. Absolute inputs pass through unchanged.
func (c *Client) ResolveURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var out AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) ListNotes(ctx context.Context) ([]ServerNote, error) {
	var notes []ServerNote
	if err := c.doJSON(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*ServerNote, error) {
	var note ServerNote
	if err := c.doJSON(ctx, http.MethodGet, "/api/notes/"+id, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// CreateNote sends a multipart form. When photoPath names a readable local
// file it is attached as the image; server URLs and empty paths are skipped.
func (c *Client) CreateNote(ctx context.Context, title, description, photoPath string) (*ServerNote, error) {
	var note ServerNote
	fields := map[string]string{"title": title, "description": description}
	if err := c.doMultipart(ctx, http.MethodPost, "/api/notes", fields, photoPath, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, title, description *string, photoPath string) (*ServerNote, error) {
	var note ServerNote
	fields := map[string]string{}
	if title != nil {
		fields["title"] = *title
	}
	if description != nil {
		fields["description"] = *description
	}
	if err := c.doMultipart(ctx, http.MethodPut, "/api/notes/"+id, fields, photoPath, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/notes/"+id, nil, nil)
}

// Ping probes server reachability.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, photoPath string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}

	if isLocalFile(photoPath) {
		f, err := os.Open(photoPath)
		if err != nil {
			return err
		}
		part, err := w.CreateFormFile("image", filepath.Base(photoPath))
		if err != nil {
			f.Close()
			return err
		}
		_, err = io.Copy(part, f)
		f.Close()
		if err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	var base error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		base = ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		base = ErrNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		base = ErrRejected
	default:
		base = ErrServer
	}

	if body.Error != "" {
		return fmt.Errorf("%w: %s", base, body.Error)
	}
	return fmt.Errorf("%w: status %d", base, resp.StatusCode)
}

func isLocalFile(path string) bool {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
