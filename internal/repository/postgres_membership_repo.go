package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/tunelist/internal/model"
	"github.com/lib/pq"
)

const (
	uniqueViolation = "23505"

	constraintUniqueSong = "uq_playlist_songs_song"
)

// PostgresMembershipRepo はPostgreSQLを使用した曲登録リポジトリ。
type PostgresMembershipRepo struct {
	db *sql.DB
}

// NewPostgresMembershipRepo はPostgresMembershipRepoを生成する。
func NewPostgresMembershipRepo(db *sql.DB) *PostgresMembershipRepo {
	return &PostgresMembershipRepo{db: db}
}

// ListByPlaylist はプレイリストの曲登録をposition昇順で返す。
func (r *PostgresMembershipRepo) ListByPlaylist(ctx context.Context, playlistID string) ([]*model.Membership, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, playlist_id, song_id, position, added_at
		 FROM playlist_songs WHERE playlist_id = $1
		 ORDER BY position ASC`,
		playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("曲登録一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var memberships []*model.Membership
	for rows.Next() {
		m := &model.Membership{}
		if err := rows.Scan(&m.ID, &m.PlaylistID, &m.SongID, &m.Order, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("曲登録のスキャンに失敗しました: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("曲登録一覧の走査に失敗しました: %w", err)
	}

	return memberships, nil
}

// CountByPlaylist はプレイリストの曲登録数を返す。
func (r *PostgresMembershipRepo) CountByPlaylist(ctx context.Context, playlistID string) (int, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM playlist_songs WHERE playlist_id = $1`,
		playlistID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("曲登録数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// FindBySong はプレイリスト内の指定曲の登録を返す。見つからない場合はnilを返す。
func (r *PostgresMembershipRepo) FindBySong(ctx context.Context, playlistID string, songID int64) (*model.Membership, error) {
	m := &model.Membership{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, playlist_id, song_id, position, added_at
		 FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2`,
		playlistID, songID,
	).Scan(&m.ID, &m.PlaylistID, &m.SongID, &m.Order, &m.AddedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("曲登録の検索に失敗しました: %w", err)
	}
	return m, nil
}

// Append は曲登録を末尾に追加する。
// positionは既存の最大値+1を同一ステートメントで算出し、membership.Orderに書き戻す。
func (r *PostgresMembershipRepo) Append(ctx context.Context, m *model.Membership) error {
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO playlist_songs (id, playlist_id, song_id, position, added_at)
		 SELECT $1, $2, $3, COALESCE(MAX(position), 0) + 1, $4
		 FROM playlist_songs WHERE playlist_id = $2
		 RETURNING position`,
		m.ID, m.PlaylistID, m.SongID, m.AddedAt,
	).Scan(&m.Order)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == constraintUniqueSong {
			return ErrDuplicateSong
		}
		return fmt.Errorf("曲登録の追加に失敗しました: %w", err)
	}
	return nil
}

// DeleteBySong はプレイリスト内の指定曲の登録を削除する。
func (r *PostgresMembershipRepo) DeleteBySong(ctx context.Context, playlistID string, songID int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2`,
		playlistID, songID,
	)
	if err != nil {
		return fmt.Errorf("曲登録の削除に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	if rows == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// DeleteByPlaylist はプレイリストの曲登録を全て削除する。
func (r *PostgresMembershipRepo) DeleteByPlaylist(ctx context.Context, playlistID string) (int64, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM playlist_songs WHERE playlist_id = $1`,
		playlistID,
	)
	if err != nil {
		return 0, fmt.Errorf("曲登録の一括削除に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return rows, nil
}

// compile-time interface check
var _ MembershipRepository = (*PostgresMembershipRepo)(nil)
