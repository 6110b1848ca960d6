package pisignage

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/metar-signage/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken    = "session-token"
	testPlaylist = "Main Slideshow"
)

var deployTime = time.Date(2026, time.October, 17, 18, 0, 0, 0, time.UTC)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, "ops@example.org", "hunter2", DefaultDeployConfig("", testPlaylist),
		5*time.Second, clockwork.NewFakeClockAt(deployTime), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func authedClient(baseURL string) *Client {
	c := testClient(baseURL)
	c.token = testToken
	return c
}

func TestClient_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/session", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ops@example.org", body["email"])
		assert.Equal(t, "hunter2", body["password"])
		assert.Equal(t, true, body["getToken"])

		_, _ = w.Write([]byte(`{"token":"` + testToken + `"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL + "/api")
	require.NoError(t, c.Authenticate(context.Background()))
	assert.Equal(t, testToken, c.token)
}

func TestClient_Authenticate_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.Authenticate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Empty(t, c.token)
}

func TestClient_RequiresToken(t *testing.T) {
	c := testClient("http://127.0.0.1:1")

	require.ErrorIs(t, c.DeleteFile(context.Background(), "latest_metar.png"), ErrNotAuthenticated)
	_, err := c.UploadFile(context.Background(), "latest_metar.png", []byte("png"))
	require.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = c.GetPlaylist(context.Background(), testPlaylist)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClient_DeleteFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/files/latest_metar.png", r.URL.Path)
		assert.Equal(t, testToken, r.Header.Get(tokenHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, authedClient(srv.URL).DeleteFile(context.Background(), "latest_metar.png"))
}

func TestClient_UploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		assert.Equal(t, testToken, r.Header.Get(tokenHeader))

		file, header, err := r.FormFile(uploadField)
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "latest_metar.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), data)

		_, _ = w.Write([]byte(`{"success":true,"data":[{"name":"latest_metar.png","size":9}]}`))
	}))
	defer srv.Close()

	files, err := authedClient(srv.URL).UploadFile(context.Background(), "latest_metar.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"latest_metar.png","size":9}]`, string(files))
}

func TestClient_PostUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/postupload", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"files":[{"name":"latest_metar.png"}],"categories":["string"]}`, string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := authedClient(srv.URL).PostUpload(context.Background(), json.RawMessage(`[{"name":"latest_metar.png"}]`))
	require.NoError(t, err)
}

func TestClient_GetPlaylist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/playlists/Main%20Slideshow", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"data":{"name":"Main Slideshow","assets":[
			{"filename":"welcome.jpg","duration":10,"selected":true,"option":{"main":false},"fullscreen":true},
			{"filename":"latest_metar.png","duration":30,"selected":true,"option":{"main":false},"fullscreen":true}
		]}}`))
	}))
	defer srv.Close()

	pl, err := authedClient(srv.URL).GetPlaylist(context.Background(), testPlaylist)
	require.NoError(t, err)
	assert.Equal(t, testPlaylist, pl.Name)
	assert.Equal(t, []string{"welcome.jpg", "latest_metar.png"}, domain.AssetFilenames(pl.Assets))
	assert.Equal(t, 10, pl.Assets[0].Duration)
}

func TestClient_UpdatePlaylistAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/playlists/Main%20Slideshow", r.URL.EscapedPath())

		var body struct {
			Assets []domain.AssetEntry `json:"assets"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Assets, 1)
		assert.Equal(t, domain.NewImageAsset("latest_metar.png", 30), body.Assets[0])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := authedClient(srv.URL).UpdatePlaylistAssets(context.Background(), testPlaylist,
		[]domain.AssetEntry{domain.NewImageAsset("latest_metar.png", 30)})
	require.NoError(t, err)
}

func TestClient_Deploy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/"+DefaultGroupID, r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["deploy"])
		assert.Equal(t, true, body["loadPlaylistOnCompletion"])
		assert.Equal(t, "landscape", body["orientation"])
		assert.Equal(t, []any{"welcome.jpg", "latest_metar.png", "__Main Slideshow.json", "custom_layout.html"}, body["assets"])
		assert.Equal(t, "1792260000000", body["lastDeployed"])

		playlists := body["playlists"].([]any)
		require.Len(t, playlists, 1)
		assert.Equal(t, testPlaylist, playlists[0].(map[string]any)["name"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pl := domain.Playlist{Name: testPlaylist, Assets: []domain.AssetEntry{
		{Filename: "welcome.jpg"},
		domain.NewImageAsset("latest_metar.png", 30),
	}}
	require.NoError(t, authedClient(srv.URL).Deploy(context.Background(), pl))
}

func TestClient_Deploy_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := authedClient(srv.URL).Deploy(context.Background(), domain.Playlist{Name: testPlaylist})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestDefaultDeployConfig(t *testing.T) {
	cfg := DefaultDeployConfig("", testPlaylist)
	assert.Equal(t, DefaultGroupID, cfg.GroupID)
	assert.True(t, cfg.LoadPlaylistOnCompletion)

	cfg = DefaultDeployConfig("abc123", "Lobby")
	assert.Equal(t, "abc123", cfg.GroupID)
	assert.Equal(t, "Lobby", cfg.Playlist)
}

func TestNewDeployRequest_Timestamps(t *testing.T) {
	req := newDeployRequest(DefaultDeployConfig("", testPlaylist), domain.Playlist{Name: testPlaylist}, deployTime)
	assert.Equal(t, "2026-10-17T18:00:00.000000Z", req.CreatedAt)
	assert.Equal(t, "1792260000000", req.LastDeployed)
	assert.Equal(t, []string{"__Main Slideshow.json", "custom_layout.html"}, req.Assets)
}
