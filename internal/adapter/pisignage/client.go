package pisignage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/metar-signage/internal/domain"
	"github.com/jonboulle/clockwork"
)

const (
	tokenHeader = "X-Access-Token"
	uploadField = "Upload file"
)

// ErrNotAuthenticated is returned by any call made before Authenticate.
var ErrNotAuthenticated = errors.New("pisignage: not authenticated")

// Client talks to the piSignage server REST API. One Client holds one
// session token and lives for a single run. It implements
// pipeline.SignageService.
type Client struct {
	email      string
	password   string
	token      string
	deploy     DeployConfig
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates a piSignage client. baseURL includes the /api prefix,
// e.g. "https://example.pisignage.com/api".
func NewClient(baseURL, email, password string, deploy DeployConfig, timeout time.Duration, clock clockwork.Clock, logger *slog.Logger) *Client {
	return &Client{
		email:    email,
		password: password,
		deploy:   deploy,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		clock:   clock,
		logger:  logger,
	}
}

// Authenticate exchanges the account credentials for a session token.
func (c *Client) Authenticate(ctx context.Context) error {
	body := map[string]any{
		"email":    c.email,
		"password": c.password,
		"getToken": true,
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/session", body, &resp, false); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if resp.Token == "" {
		return errors.New("authenticate: no token in response")
	}
	c.token = resp.Token
	c.logger.Debug("pisignage session established")
	return nil
}

// DeleteFile removes a stored file by name.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/files/"+url.PathEscape(name), nil, nil, true); err != nil {
		return fmt.Errorf("delete file %s: %w", name, err)
	}
	return nil
}

// UploadFile stores data under name and returns the file descriptor the
// server expects back in PostUpload.
func (c *Client) UploadFile(ctx context.Context, name string, data []byte) (json.RawMessage, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, name))
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.send(req, &resp); err != nil {
		return nil, fmt.Errorf("upload file %s: %w", name, err)
	}
	return resp.Data, nil
}

// PostUpload asks the server to process files returned by UploadFile.
func (c *Client) PostUpload(ctx context.Context, files json.RawMessage) error {
	body := map[string]any{
		"files":      files,
		"categories": []string{"string"},
	}
	if err := c.doJSON(ctx, http.MethodPost, "/postupload", body, nil, true); err != nil {
		return fmt.Errorf("post upload: %w", err)
	}
	return nil
}

// GetPlaylist fetches the playlist document.
func (c *Client) GetPlaylist(ctx context.Context, name string) (domain.Playlist, error) {
	var resp struct {
		Data domain.Playlist `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/playlists/"+url.PathEscape(name), nil, &resp, true); err != nil {
		return domain.Playlist{}, fmt.Errorf("get playlist %s: %w", name, err)
	}
	if resp.Data.Name == "" {
		resp.Data.Name = name
	}
	return resp.Data, nil
}

// UpdatePlaylistAssets replaces the asset list of a playlist.
func (c *Client) UpdatePlaylistAssets(ctx context.Context, name string, assets []domain.AssetEntry) error {
	body := map[string]any{"assets": assets}
	if err := c.doJSON(ctx, http.MethodPost, "/playlists/"+url.PathEscape(name), body, nil, true); err != nil {
		return fmt.Errorf("update playlist %s: %w", name, err)
	}
	return nil
}

// Deploy pushes playlist to the configured display group.
func (c *Client) Deploy(ctx context.Context, playlist domain.Playlist) error {
	body := newDeployRequest(c.deploy, playlist, c.clock.Now())
	if err := c.doJSON(ctx, http.MethodPost, "/groups/"+url.PathEscape(c.deploy.GroupID), body, nil, true); err != nil {
		return fmt.Errorf("deploy group %s: %w", c.deploy.GroupID, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, auth bool) error {
	if auth && c.token == "" {
		return ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(tokenHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pisignage request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pisignage API error: status %d: %s", resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
