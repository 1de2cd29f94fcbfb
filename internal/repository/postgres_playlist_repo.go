package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/tunelist/internal/model"
)

// PostgresPlaylistRepo はPostgreSQLを使用したプレイリストリポジトリ。
type PostgresPlaylistRepo struct {
	db *sql.DB
}

// NewPostgresPlaylistRepo はPostgresPlaylistRepoを生成する。
func NewPostgresPlaylistRepo(db *sql.DB) *PostgresPlaylistRepo {
	return &PostgresPlaylistRepo{db: db}
}

// FindByID は指定IDのプレイリストを取得する。見つからない場合はnilを返す。
func (r *PostgresPlaylistRepo) FindByID(ctx context.Context, id string) (*model.Playlist, error) {
	return r.find(ctx, id,
		`SELECT id, owner_id, name, description, created_at
		 FROM playlists WHERE id = $1`,
	)
}

// FindByIDForUpdate は指定IDのプレイリストを行ロック付きで取得する。見つからない場合はnilを返す。
func (r *PostgresPlaylistRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Playlist, error) {
	return r.find(ctx, id,
		`SELECT id, owner_id, name, description, created_at
		 FROM playlists WHERE id = $1 FOR UPDATE`,
	)
}

func (r *PostgresPlaylistRepo) find(ctx context.Context, id, query string) (*model.Playlist, error) {
	// uuid型カラムに不正な文字列を渡すとSQLエラーになるため事前に弾く
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	p := &model.Playlist{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("プレイリストの取得に失敗しました: %w", err)
	}

	return p, nil
}

// ListByOwner は所有者のプレイリストを作成日時の降順で返す。
func (r *PostgresPlaylistRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Playlist, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, owner_id, name, description, created_at
		 FROM playlists WHERE owner_id = $1
		 ORDER BY created_at DESC, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("プレイリスト一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var playlists []*model.Playlist
	for rows.Next() {
		p := &model.Playlist{}
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("プレイリストのスキャンに失敗しました: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("プレイリスト一覧の走査に失敗しました: %w", err)
	}

	return playlists, nil
}

// Create はプレイリストを作成する。
func (r *PostgresPlaylistRepo) Create(ctx context.Context, p *model.Playlist) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO playlists (id, owner_id, name, description, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.OwnerID, p.Name, p.Description, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("プレイリストの作成に失敗しました: %w", err)
	}
	return nil
}

// Delete はプレイリスト本体を削除する。
func (r *PostgresPlaylistRepo) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM playlists WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("プレイリストの削除に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("プレイリストが見つかりません: %s", id)
	}
	return nil
}

// compile-time interface check
var _ PlaylistRepository = (*PostgresPlaylistRepo)(nil)
