// Package playlist はプレイリスト管理のドメインロジックを提供する。
// 全ての操作は検証済みの利用者ID（subject）を受け取り、
// 所有者以外からはプレイリストが存在しないものとして扱う。
package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/tunelist/internal/catalog"
	"github.com/hitoshi/tunelist/internal/model"
	"github.com/hitoshi/tunelist/internal/repository"
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 2000
)

// TextSanitizer はユーザー入力テキストからHTMLを除去するインターフェース。
type TextSanitizer interface {
	SanitizeText(raw string) string
}

// Recorder はプレイリスト操作の発生を記録するインターフェース。
type Recorder interface {
	PlaylistCreated()
	PlaylistDeleted()
	SongAdded()
	SongRemoved()
	SongConflict()
}

type noopRecorder struct{}

func (noopRecorder) PlaylistCreated() {}
func (noopRecorder) PlaylistDeleted() {}
func (noopRecorder) SongAdded()       {}
func (noopRecorder) SongRemoved()     {}
func (noopRecorder) SongConflict()    {}

// Deps はServiceの依存関係。
type Deps struct {
	Tx          repository.Transactor
	Playlists   repository.PlaylistRepository
	Memberships repository.MembershipRepository
	Catalog     catalog.Reader
	Sanitizer   TextSanitizer
	Recorder    Recorder // nilの場合は記録しない
}

// Service はプレイリスト管理のサービス層。
type Service struct {
	tx          repository.Transactor
	playlists   repository.PlaylistRepository
	memberships *Memberships
	guard       *Guard
	catalog     catalog.Reader
	sanitizer   TextSanitizer
	recorder    Recorder
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(deps Deps) *Service {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{
		tx:          deps.Tx,
		playlists:   deps.Playlists,
		memberships: NewMemberships(deps.Memberships),
		guard:       NewGuard(deps.Playlists),
		catalog:     deps.Catalog,
		sanitizer:   deps.Sanitizer,
		recorder:    recorder,
		now:         time.Now,
	}
}

// ListForOwner は所有者のプレイリストを登録曲数付きで作成日時の降順に返す。
func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]model.PlaylistSummary, error) {
	playlists, err := s.playlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("プレイリスト一覧の取得に失敗しました: %w", err)
	}

	summaries := make([]model.PlaylistSummary, 0, len(playlists))
	for _, p := range playlists {
		count, err := s.memberships.Count(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, model.PlaylistSummary{Playlist: *p, MemberCount: count})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return summaries, nil
}

// Create はプレイリストを作成する。名前と説明はHTMLを除去して前後の空白を取り除く。
func (s *Service) Create(ctx context.Context, ownerID, name, description string) (*model.Playlist, error) {
	name = s.sanitizer.SanitizeText(name)
	description = s.sanitizer.SanitizeText(description)

	if name == "" {
		return nil, model.NewInvalidArgumentError("プレイリスト名は必須です")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, model.NewInvalidArgumentError(fmt.Sprintf("プレイリスト名は%d文字以内で指定してください", maxNameLength))
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return nil, model.NewInvalidArgumentError(fmt.Sprintf("説明は%d文字以内で指定してください", maxDescriptionLength))
	}

	p := &model.Playlist{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.playlists.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("プレイリストの作成に失敗しました: %w", err)
	}

	s.recorder.PlaylistCreated()
	slog.Info("playlist created",
		slog.String("playlist_id", p.ID),
		slog.String("user_id", ownerID),
	)
	return p, nil
}

// Get はプレイリストとカタログ情報で補完した曲一覧を返す。
// カタログから消えた曲は一覧から除外される。
func (s *Service) Get(ctx context.Context, subjectID, playlistID string) (*model.PlaylistDetail, error) {
	p, err := s.guard.Authorize(ctx, playlistID, subjectID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.memberships.List(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	songs, err := catalog.Hydrate(ctx, s.catalog, memberships)
	if err != nil {
		return nil, fmt.Errorf("カタログとの突き合わせに失敗しました: %w", err)
	}

	return &model.PlaylistDetail{Playlist: *p, Songs: songs}, nil
}

// AddSong はプレイリストの末尾に曲を追加する。
// 親プレイリストの行ロックを取得したトランザクション内で採番するため、
// 同一プレイリストへの並行追加でも順序は重複しない。
// カタログに存在するかは確認しない（表示時に除外される）。
func (s *Service) AddSong(ctx context.Context, subjectID, playlistID string, songID int64) (*model.Membership, error) {
	if err := validateSongID(songID); err != nil {
		return nil, err
	}

	var added *model.Membership
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.guard.AuthorizeForUpdate(ctx, playlistID, subjectID)
		if err != nil {
			return err
		}
		added, err = s.memberships.Add(ctx, p.ID, songID)
		return err
	})
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeDuplicateSong {
			s.recorder.SongConflict()
		}
		return nil, err
	}

	s.recorder.SongAdded()
	return added, nil
}

// RemoveSong はプレイリストから曲を削除する。
func (s *Service) RemoveSong(ctx context.Context, subjectID, playlistID string, songID int64) error {
	p, err := s.guard.Authorize(ctx, playlistID, subjectID)
	if err != nil {
		return err
	}
	if err := s.memberships.Remove(ctx, p.ID, songID); err != nil {
		return err
	}

	s.recorder.SongRemoved()
	return nil
}

// Delete はプレイリストと全ての曲登録を1つのトランザクションで削除する。
func (s *Service) Delete(ctx context.Context, subjectID, playlistID string) error {
	var removed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.guard.AuthorizeForUpdate(ctx, playlistID, subjectID)
		if err != nil {
			return err
		}
		removed, err = s.memberships.RemoveAll(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := s.playlists.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("プレイリストの削除に失敗しました: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.recorder.PlaylistDeleted()
	slog.Info("playlist deleted",
		slog.String("playlist_id", playlistID),
		slog.String("user_id", subjectID),
		slog.Int64("songs_removed", removed),
	)
	return nil
}
