package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marcward/clack/internal/domain"
)

// RequestError is returned for any non-success HTTP response. It is
// transient from the caller's point of view: local state is never changed
// on failure.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: status %d: %s", e.Status, e.Body)
}

// SendRequest is the payload for sending a message. The server assigns the
// id and timestamp.
type SendRequest struct {
	Content    string             `json:"content"`
	Kind       domain.MessageKind `json:"kind"`
	ReceiverID string             `json:"receiverId"`
	FileRef    string             `json:"fileRef,omitempty"`
	FileName   string             `json:"fileName,omitempty"`
	FileSize   int64              `json:"fileSize,omitempty"`
}

// UploadResult describes a stored file.
type UploadResult struct {
	FileRef  string `json:"fileRef"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

// API is the HTTP client for the message store, identity directory, and
// upload endpoints. All calls carry the bearer credential.
type API struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// GetMessages fetches the full transcript of the conversation with peerID,
// oldest first.
func (a *API) GetMessages(ctx context.Context, peerID string) ([]domain.Message, error) {
	var msgs []domain.Message
	if err := a.getJSON(ctx, "/api/messages/"+url.PathEscape(peerID), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a new message and returns the server's acknowledged
// copy, with id and timestamp filled in.
func (a *API) SendMessage(ctx context.Context, req SendRequest) (domain.Message, error) {
	var msg domain.Message
	if err := a.postJSON(ctx, "/api/messages", req, &msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// GetUsers fetches the identity directory, excluding the local user.
func (a *API) GetUsers(ctx context.Context) ([]domain.Identity, error) {
	var users []domain.Identity
	if err := a.getJSON(ctx, "/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Me fetches the identity the bearer credential belongs to.
func (a *API) Me(ctx context.Context) (domain.Identity, error) {
	var me domain.Identity
	if err := a.getJSON(ctx, "/api/users/me", &me); err != nil {
		return domain.Identity{}, err
	}
	return me, nil
}

// Upload stores a file and returns the reference to embed in a file or
// image message.
func (a *API) Upload(ctx context.Context, name string, r io.Reader) (UploadResult, error) {
	var res UploadResult
	if err := a.postMultipart(ctx, "/api/upload", name, r, &res); err != nil {
		return UploadResult{}, err
	}
	return res, nil
}

// UploadAvatar stores a new avatar image for the local user.
func (a *API) UploadAvatar(ctx context.Context, name string, r io.Reader) (string, error) {
	var res struct {
		AvatarRef string `json:"avatarRef"`
	}
	if err := a.postMultipart(ctx, "/api/profile/upload", name, r, &res); err != nil {
		return "", err
	}
	return res.AvatarRef, nil
}

func (a *API) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return a.do(req, out)
}

func (a *API) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *API) postMultipart(ctx context.Context, path, name string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req, out)
}

func (a *API) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RequestError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
