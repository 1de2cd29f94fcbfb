package playlist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hitoshi/tunelist/internal/model"
	"github.com/hitoshi/tunelist/internal/repository"
	"github.com/hitoshi/tunelist/internal/security"
)

// fakeCatalog はテスト用の固定カタログ。
type fakeCatalog struct {
	songs []model.Song
	err   error
}

func (c *fakeCatalog) Songs(_ context.Context) ([]model.Song, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.songs, nil
}

// countingRecorder は記録された操作を数える。並行呼び出しに対応する。
type countingRecorder struct {
	mu                                          sync.Mutex
	created, deleted, added, removed, conflicts int
}

func (r *countingRecorder) inc(n *int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*n++
}

func (r *countingRecorder) PlaylistCreated() { r.inc(&r.created) }
func (r *countingRecorder) PlaylistDeleted() { r.inc(&r.deleted) }
func (r *countingRecorder) SongAdded()       { r.inc(&r.added) }
func (r *countingRecorder) SongRemoved()     { r.inc(&r.removed) }
func (r *countingRecorder) SongConflict()    { r.inc(&r.conflicts) }

func defaultCatalog() *fakeCatalog {
	songs := make([]model.Song, 0, 10)
	for id := int64(1); id <= 10; id++ {
		songs = append(songs, model.Song{ID: id, Title: "Song", Artist: "Artist"})
	}
	return &fakeCatalog{songs: songs}
}

// newTestService はMemoryStoreを使ったServiceを生成する。
func newTestService(t *testing.T) (*Service, *repository.MemoryStore, *countingRecorder) {
	t.Helper()
	store := repository.NewMemoryStore()
	rec := &countingRecorder{}
	svc := NewService(Deps{
		Tx:          store,
		Playlists:   store,
		Memberships: store,
		Catalog:     defaultCatalog(),
		Sanitizer:   security.NewTextSanitizer(),
		Recorder:    rec,
	})
	return svc, store, rec
}

// assertAPIErrorCode はerrが指定コードのAPIErrorであることを検証する。
func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError with code %s, got %v", code, err)
	}
	if apiErr.Code != code {
		t.Errorf("error code = %s, want %s", apiErr.Code, code)
	}
}

// mockPlaylistRepo はPlaylistRepositoryのモック。
type mockPlaylistRepo struct {
	findByIDFn          func(ctx context.Context, id string) (*model.Playlist, error)
	findByIDForUpdateFn func(ctx context.Context, id string) (*model.Playlist, error)
	listByOwnerFn       func(ctx context.Context, ownerID string) ([]*model.Playlist, error)
	createFn            func(ctx context.Context, p *model.Playlist) error
	deleteFn            func(ctx context.Context, id string) error
}

func (m *mockPlaylistRepo) FindByID(ctx context.Context, id string) (*model.Playlist, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPlaylistRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Playlist, error) {
	if m.findByIDForUpdateFn != nil {
		return m.findByIDForUpdateFn(ctx, id)
	}
	return m.FindByID(ctx, id)
}

func (m *mockPlaylistRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Playlist, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockPlaylistRepo) Create(ctx context.Context, p *model.Playlist) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPlaylistRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockMembershipRepo はMembershipRepositoryのモック。
type mockMembershipRepo struct {
	listByPlaylistFn   func(ctx context.Context, playlistID string) ([]*model.Membership, error)
	countByPlaylistFn  func(ctx context.Context, playlistID string) (int, error)
	findBySongFn       func(ctx context.Context, playlistID string, songID int64) (*model.Membership, error)
	appendFn           func(ctx context.Context, m *model.Membership) error
	deleteBySongFn     func(ctx context.Context, playlistID string, songID int64) error
	deleteByPlaylistFn func(ctx context.Context, playlistID string) (int64, error)
}

func (m *mockMembershipRepo) ListByPlaylist(ctx context.Context, playlistID string) ([]*model.Membership, error) {
	if m.listByPlaylistFn != nil {
		return m.listByPlaylistFn(ctx, playlistID)
	}
	return nil, nil
}

func (m *mockMembershipRepo) CountByPlaylist(ctx context.Context, playlistID string) (int, error) {
	if m.countByPlaylistFn != nil {
		return m.countByPlaylistFn(ctx, playlistID)
	}
	return 0, nil
}

func (m *mockMembershipRepo) FindBySong(ctx context.Context, playlistID string, songID int64) (*model.Membership, error) {
	if m.findBySongFn != nil {
		return m.findBySongFn(ctx, playlistID, songID)
	}
	return nil, nil
}

func (m *mockMembershipRepo) Append(ctx context.Context, mem *model.Membership) error {
	if m.appendFn != nil {
		return m.appendFn(ctx, mem)
	}
	return nil
}

func (m *mockMembershipRepo) DeleteBySong(ctx context.Context, playlistID string, songID int64) error {
	if m.deleteBySongFn != nil {
		return m.deleteBySongFn(ctx, playlistID, songID)
	}
	return nil
}

func (m *mockMembershipRepo) DeleteByPlaylist(ctx context.Context, playlistID string) (int64, error) {
	if m.deleteByPlaylistFn != nil {
		return m.deleteByPlaylistFn(ctx, playlistID)
	}
	return 0, nil
}

// passthroughTx はfnをそのまま実行するTransactor。
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
