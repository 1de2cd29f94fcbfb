package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tunelist/internal/model"
)

// CatalogServiceInterface はカタログハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	// ListSongs はカタログの全曲を返す。
	ListSongs(ctx context.Context) ([]model.Song, error)
	// GetSong は指定IDの曲を返す。存在しない場合はSONG_NOT_FOUNDのAPIErrorを返す。
	GetSong(ctx context.Context, id int64) (*model.Song, error)
}

// CatalogHandler は曲カタログの読み取り専用HTTPハンドラー。認証は不要。
type CatalogHandler struct {
	service CatalogServiceInterface
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// songResponse は曲のAPIレスポンス。
type songResponse struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Cover  string `json:"cover"`
	Audio  string `json:"audio"`
}

// ListSongs はカタログの全曲を返す。
// GET /api/songs
func (h *CatalogHandler) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.service.ListSongs(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]songResponse, len(songs))
	for i := range songs {
		resp[i] = toSongResponse(&songs[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSong は指定IDの曲を返す。
// GET /api/songs/{id}
func (h *CatalogHandler) GetSong(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewSongNotFoundError(0))
		return
	}

	song, err := h.service.GetSong(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSongResponse(song))
}

func toSongResponse(s *model.Song) songResponse {
	return songResponse{
		ID:     s.ID,
		Title:  s.Title,
		Artist: s.Artist,
		Cover:  s.Cover,
		Audio:  s.Audio,
	}
}
