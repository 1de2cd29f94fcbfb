package handler

import (
	"context"

	"github.com/hitoshi/tunelist/internal/catalog"
	"github.com/hitoshi/tunelist/internal/model"
	"github.com/hitoshi/tunelist/internal/playlist"
)

// CatalogServiceAdapter は catalog.Reader を CatalogServiceInterface に適合させるアダプタ。
type CatalogServiceAdapter struct {
	reader catalog.Reader
}

// NewCatalogServiceAdapter はCatalogServiceAdapterを生成する。
func NewCatalogServiceAdapter(reader catalog.Reader) *CatalogServiceAdapter {
	return &CatalogServiceAdapter{reader: reader}
}

// ListSongs はカタログの全曲を返す。
func (a *CatalogServiceAdapter) ListSongs(ctx context.Context) ([]model.Song, error) {
	songs, err := a.reader.Songs(ctx)
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []model.Song{}
	}
	return songs, nil
}

// GetSong は指定IDの曲を返す。
func (a *CatalogServiceAdapter) GetSong(ctx context.Context, id int64) (*model.Song, error) {
	song, err := catalog.Lookup(ctx, a.reader, id)
	if err != nil {
		return nil, err
	}
	if song == nil {
		return nil, model.NewSongNotFoundError(id)
	}
	return song, nil
}

// --- compile-time interface checks ---

var _ CatalogServiceInterface = (*CatalogServiceAdapter)(nil)
var _ PlaylistServiceInterface = (*playlist.Service)(nil)
