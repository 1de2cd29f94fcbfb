package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tunelist/internal/model"
)

// PlaylistServiceInterface はプレイリストハンドラーが必要とするサービスインターフェース。
// 所有者の検証はすべてサービス側で行う。
type PlaylistServiceInterface interface {
	ListForOwner(ctx context.Context, ownerID string) ([]model.PlaylistSummary, error)
	Create(ctx context.Context, ownerID, name, description string) (*model.Playlist, error)
	Get(ctx context.Context, subjectID, playlistID string) (*model.PlaylistDetail, error)
	AddSong(ctx context.Context, subjectID, playlistID string, songID int64) (*model.Membership, error)
	RemoveSong(ctx context.Context, subjectID, playlistID string, songID int64) error
	Delete(ctx context.Context, subjectID, playlistID string) error
}

// PlaylistHandler はプレイリスト管理のHTTPハンドラー。
type PlaylistHandler struct {
	service PlaylistServiceInterface
}

// NewPlaylistHandler はPlaylistHandlerを生成する。
func NewPlaylistHandler(service PlaylistServiceInterface) *PlaylistHandler {
	return &PlaylistHandler{service: service}
}

// playlistResponse はプレイリストのAPIレスポンス。
type playlistResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// playlistSummaryResponse は一覧表示用のプレイリストレスポンス。
type playlistSummaryResponse struct {
	playlistResponse
	MemberCount int `json:"memberCount"`
}

// playlistSongResponse はプレイリスト内の曲のレスポンス。
type playlistSongResponse struct {
	songResponse
	Order int `json:"order"`
}

// playlistDetailResponse は曲一覧を含むプレイリスト詳細のレスポンス。
type playlistDetailResponse struct {
	playlistResponse
	Songs []playlistSongResponse `json:"songs"`
}

// membershipResponse は曲追加のレスポンス。
type membershipResponse struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlistId"`
	SongID     int64     `json:"songId"`
	Order      int       `json:"order"`
	AddedAt    time.Time `json:"addedAt"`
}

// createPlaylistRequest はプレイリスト作成リクエストのボディ。
type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// addSongRequest は曲追加リクエストのボディ。
// 整数以外の値を検出するため、songIdは生のJSONとして受け取る。
type addSongRequest struct {
	SongID json.RawMessage `json:"songId"`
}

// ListPlaylists は認証ユーザーのプレイリスト一覧を返す。
// GET /api/playlists
func (h *PlaylistHandler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summaries, err := h.service.ListForOwner(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]playlistSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = playlistSummaryResponse{
			playlistResponse: toPlaylistResponse(&s.Playlist),
			MemberCount:      s.MemberCount,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreatePlaylist はプレイリストを作成する。
// POST /api/playlists
func (h *PlaylistHandler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createPlaylistRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	p, err := h.service.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlaylistResponse(p))
}

// GetPlaylist はカタログ情報で補完した曲一覧付きのプレイリストを返す。
// GET /api/playlists/{id}
func (h *PlaylistHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	songs := make([]playlistSongResponse, len(detail.Songs))
	for i, s := range detail.Songs {
		songs[i] = playlistSongResponse{songResponse: toSongResponse(&s.Song), Order: s.Order}
	}
	writeJSON(w, http.StatusOK, playlistDetailResponse{
		playlistResponse: toPlaylistResponse(&detail.Playlist),
		Songs:            songs,
	})
}

// DeletePlaylist はプレイリストと登録済みの曲をすべて削除する。
// DELETE /api/playlists/{id}
func (h *PlaylistHandler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// AddSong はプレイリストの末尾に曲を追加する。
// POST /api/playlists/{id}/songs
func (h *PlaylistHandler) AddSong(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req addSongRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	songID, err := parseSongIDJSON(req.SongID)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidArgumentError("songIdは1以上の整数で指定してください"))
		return
	}

	m, err := h.service.AddSong(r.Context(), userID, chi.URLParam(r, "id"), songID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, membershipResponse{
		ID:         m.ID,
		PlaylistID: m.PlaylistID,
		SongID:     m.SongID,
		Order:      m.Order,
		AddedAt:    m.AddedAt,
	})
}

// RemoveSong はプレイリストから曲を削除する。
// DELETE /api/playlists/{id}/songs/{songId}
func (h *PlaylistHandler) RemoveSong(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	// 整数でないIDに一致する登録は存在しないため0として扱い、
	// 所有者の検証を経たうえでSONG_NOT_IN_PLAYLISTを返す。
	songID, err := strconv.ParseInt(chi.URLParam(r, "songId"), 10, 64)
	if err != nil || songID < 1 {
		songID = 0
	}

	if err := h.service.RemoveSong(r.Context(), userID, chi.URLParam(r, "id"), songID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// parseSongIDJSON はJSONの値を1以上の整数として解釈する。
// 文字列・小数・null・欠落はエラーとする。
func parseSongIDJSON(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, strconv.ErrSyntax
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

func toPlaylistResponse(p *model.Playlist) playlistResponse {
	return playlistResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
	}
}
