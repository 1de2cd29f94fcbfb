package playlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/tunelist/internal/model"
	"github.com/hitoshi/tunelist/internal/repository"
)

// Memberships はプレイリストへの曲登録を管理する。
// 所有者チェックは行わないため、呼び出し前にGuardを通すこと。
// Addは順序の採番が競合しないよう、親プレイリストの行ロックを取得した
// トランザクション内で呼び出すこと。
type Memberships struct {
	repo repository.MembershipRepository
	now  func() time.Time
}

// NewMemberships はMembershipsを生成する。
func NewMemberships(repo repository.MembershipRepository) *Memberships {
	return &Memberships{repo: repo, now: time.Now}
}

// List はプレイリストの曲登録をOrder昇順で返す。
func (m *Memberships) List(ctx context.Context, playlistID string) ([]*model.Membership, error) {
	list, err := m.repo.ListByPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("曲登録一覧の取得に失敗しました: %w", err)
	}
	return list, nil
}

// Add は曲を末尾に追加する。既に登録済みの曲はConflictとなる。
func (m *Memberships) Add(ctx context.Context, playlistID string, songID int64) (*model.Membership, error) {
	if err := validateSongID(songID); err != nil {
		return nil, err
	}

	existing, err := m.repo.FindBySong(ctx, playlistID, songID)
	if err != nil {
		return nil, fmt.Errorf("曲登録の検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateSongError(songID)
	}

	membership := &model.Membership{
		ID:         uuid.New().String(),
		PlaylistID: playlistID,
		SongID:     songID,
		AddedAt:    m.now().UTC().Truncate(time.Microsecond),
	}
	if err := m.repo.Append(ctx, membership); err != nil {
		if errors.Is(err, repository.ErrDuplicateSong) {
			return nil, model.NewDuplicateSongError(songID)
		}
		return nil, fmt.Errorf("曲登録の追加に失敗しました: %w", err)
	}
	return membership, nil
}

// Remove はプレイリストから指定曲の登録を削除する。残りの曲のOrderは変更しない。
func (m *Memberships) Remove(ctx context.Context, playlistID string, songID int64) error {
	if err := m.repo.DeleteBySong(ctx, playlistID, songID); err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return model.NewSongNotInPlaylistError(songID)
		}
		return fmt.Errorf("曲登録の削除に失敗しました: %w", err)
	}
	return nil
}

// RemoveAll はプレイリストの曲登録を全て削除し、削除件数を返す。
func (m *Memberships) RemoveAll(ctx context.Context, playlistID string) (int64, error) {
	n, err := m.repo.DeleteByPlaylist(ctx, playlistID)
	if err != nil {
		return 0, fmt.Errorf("曲登録の一括削除に失敗しました: %w", err)
	}
	return n, nil
}

// Count はプレイリストの曲登録数を返す。
func (m *Memberships) Count(ctx context.Context, playlistID string) (int, error) {
	n, err := m.repo.CountByPlaylist(ctx, playlistID)
	if err != nil {
		return 0, fmt.Errorf("曲登録数の取得に失敗しました: %w", err)
	}
	return n, nil
}

func validateSongID(songID int64) error {
	if songID < 1 {
		return model.NewInvalidArgumentError("曲IDは1以上の整数で指定してください")
	}
	return nil
}
