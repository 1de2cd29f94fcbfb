package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tunelist/internal/auth"
	"github.com/hitoshi/tunelist/internal/middleware"
	"github.com/hitoshi/tunelist/internal/model"
)

// --- モック定義 ---

// mockPlaylistService はPlaylistServiceInterfaceのモック実装。
type mockPlaylistService struct {
	listForOwnerFn func(ctx context.Context, ownerID string) ([]model.PlaylistSummary, error)
	createFn       func(ctx context.Context, ownerID, name, description string) (*model.Playlist, error)
	getFn          func(ctx context.Context, subjectID, playlistID string) (*model.PlaylistDetail, error)
	addSongFn      func(ctx context.Context, subjectID, playlistID string, songID int64) (*model.Membership, error)
	removeSongFn   func(ctx context.Context, subjectID, playlistID string, songID int64) error
	deleteFn       func(ctx context.Context, subjectID, playlistID string) error
}

func (m *mockPlaylistService) ListForOwner(ctx context.Context, ownerID string) ([]model.PlaylistSummary, error) {
	if m.listForOwnerFn != nil {
		return m.listForOwnerFn(ctx, ownerID)
	}
	return []model.PlaylistSummary{}, nil
}

func (m *mockPlaylistService) Create(ctx context.Context, ownerID, name, description string) (*model.Playlist, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, name, description)
	}
	return &model.Playlist{ID: "pl-1", Name: name, Description: description, OwnerID: ownerID}, nil
}

func (m *mockPlaylistService) Get(ctx context.Context, subjectID, playlistID string) (*model.PlaylistDetail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, subjectID, playlistID)
	}
	return nil, model.NewPlaylistNotFoundError(playlistID)
}

func (m *mockPlaylistService) AddSong(ctx context.Context, subjectID, playlistID string, songID int64) (*model.Membership, error) {
	if m.addSongFn != nil {
		return m.addSongFn(ctx, subjectID, playlistID, songID)
	}
	return &model.Membership{ID: "m-1", PlaylistID: playlistID, SongID: songID, Order: 1}, nil
}

func (m *mockPlaylistService) RemoveSong(ctx context.Context, subjectID, playlistID string, songID int64) error {
	if m.removeSongFn != nil {
		return m.removeSongFn(ctx, subjectID, playlistID, songID)
	}
	return nil
}

func (m *mockPlaylistService) Delete(ctx context.Context, subjectID, playlistID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, subjectID, playlistID)
	}
	return nil
}

// mockCatalogService はCatalogServiceInterfaceのモック実装。
type mockCatalogService struct {
	listSongsFn func(ctx context.Context) ([]model.Song, error)
	getSongFn   func(ctx context.Context, id int64) (*model.Song, error)
}

func (m *mockCatalogService) ListSongs(ctx context.Context) ([]model.Song, error) {
	if m.listSongsFn != nil {
		return m.listSongsFn(ctx)
	}
	return []model.Song{}, nil
}

func (m *mockCatalogService) GetSong(ctx context.Context, id int64) (*model.Song, error) {
	if m.getSongFn != nil {
		return m.getSongFn(ctx, id)
	}
	return nil, model.NewSongNotFoundError(id)
}

// staticSongs はテスト用の固定カタログ（catalog.Reader実装）。
type staticSongs []model.Song

func (s staticSongs) Songs(context.Context) ([]model.Song, error) {
	out := make([]model.Song, len(s))
	copy(out, s)
	return out, nil
}

// --- ヘルパー ---

// withUserID はテスト用にリクエストコンテキストへユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withClaims はテスト用に検証済みクレームを注入するヘルパー。
func withClaims(r *http.Request, claims *auth.Claims) *http.Request {
	return r.WithContext(middleware.ContextWithClaims(r.Context(), claims))
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorCode はエラーレスポンスのcodeを取り出す。
func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v\nraw: %s", err, w.Body.String())
	}
	return body.Code
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}
