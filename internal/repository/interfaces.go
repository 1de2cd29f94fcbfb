// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hitoshi/tunelist/internal/model"
)

var (
	// ErrDuplicateSong は同一プレイリストに同じ曲が既に登録されている場合に返される。
	ErrDuplicateSong = errors.New("song already exists in playlist")

	// ErrMembershipNotFound は削除対象の曲登録が存在しない場合に返される。
	ErrMembershipNotFound = errors.New("membership not found")
)

// PlaylistRepository はプレイリストのメタデータの永続化インターフェース。
// 所有者のチェックは行わない（呼び出し側のGuardが担う）。
type PlaylistRepository interface {
	// FindByID は指定IDのプレイリストを取得する。見つからない場合はnilを返す。
	// UUIDとして不正なIDも「見つからない」として扱う。
	FindByID(ctx context.Context, id string) (*model.Playlist, error)

	// FindByIDForUpdate はFindByIDと同じだが、トランザクション内では行ロックを取得する。
	// 同一プレイリストへの並行な曲追加・削除を直列化するために使用する。
	FindByIDForUpdate(ctx context.Context, id string) (*model.Playlist, error)

	// ListByOwner は所有者のプレイリストを全件返す。並び順は保証しない。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Playlist, error)

	// Create はプレイリストを作成する。
	Create(ctx context.Context, playlist *model.Playlist) error

	// Delete はプレイリスト本体のみを削除する。曲登録はCASCADE削除されないため、
	// 呼び出し前にMembershipRepository.DeleteByPlaylistで削除しておくこと。
	Delete(ctx context.Context, id string) error
}

// MembershipRepository はプレイリストへの曲登録の永続化インターフェース。
type MembershipRepository interface {
	// ListByPlaylist はプレイリストの曲登録をOrder昇順で返す。
	ListByPlaylist(ctx context.Context, playlistID string) ([]*model.Membership, error)

	// CountByPlaylist はプレイリストの曲登録数を返す。
	CountByPlaylist(ctx context.Context, playlistID string) (int, error)

	// FindBySong はプレイリスト内の指定曲の登録を返す。見つからない場合はnilを返す。
	FindBySong(ctx context.Context, playlistID string, songID int64) (*model.Membership, error)

	// Append は曲登録を末尾に追加し、割り当てたOrderをmembershipに設定する。
	// Orderは既存の最大値+1（空の場合は1）を同一ステートメント内で算出する。
	// 同じ曲が既に登録されている場合はErrDuplicateSongを返す。
	Append(ctx context.Context, membership *model.Membership) error

	// DeleteBySong はプレイリスト内の指定曲の登録を1件削除する。残りのOrderは詰め直さない。
	// 見つからない場合はErrMembershipNotFoundを返す。
	DeleteBySong(ctx context.Context, playlistID string, songID int64) error

	// DeleteByPlaylist はプレイリストの曲登録を全て削除し、削除件数を返す。
	DeleteByPlaylist(ctx context.Context, playlistID string) (int64, error)
}

// Transactor は複数のリポジトリ操作を1つのトランザクションで実行するインターフェース。
// fnに渡されるcontextを使ったリポジトリ呼び出しは同一トランザクションに参加する。
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
