package playlist

import (
	"context"
	"fmt"

	"github.com/hitoshi/tunelist/internal/model"
	"github.com/hitoshi/tunelist/internal/repository"
)

// Guard はプレイリストの所有者チェックを行う。
// 存在しない場合と他ユーザーの所有である場合を区別せず、どちらもNotFoundを返す。
type Guard struct {
	playlists repository.PlaylistRepository
}

// NewGuard はGuardを生成する。
func NewGuard(playlists repository.PlaylistRepository) *Guard {
	return &Guard{playlists: playlists}
}

// Authorize はsubjectIDが所有するプレイリストを返す。
func (g *Guard) Authorize(ctx context.Context, playlistID, subjectID string) (*model.Playlist, error) {
	p, err := g.playlists.FindByID(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("プレイリストの取得に失敗しました: %w", err)
	}
	return checkOwner(p, playlistID, subjectID)
}

// AuthorizeForUpdate はAuthorizeと同じだが、トランザクション内では行ロックを取得する。
func (g *Guard) AuthorizeForUpdate(ctx context.Context, playlistID, subjectID string) (*model.Playlist, error) {
	p, err := g.playlists.FindByIDForUpdate(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("プレイリストの取得に失敗しました: %w", err)
	}
	return checkOwner(p, playlistID, subjectID)
}

func checkOwner(p *model.Playlist, playlistID, subjectID string) (*model.Playlist, error) {
	if p == nil || subjectID == "" || p.OwnerID != subjectID {
		return nil, model.NewPlaylistNotFoundError(playlistID)
	}
	return p, nil
}
