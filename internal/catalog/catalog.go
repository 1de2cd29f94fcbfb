// Package catalog は外部で管理される楽曲カタログの読み取りを提供する。
// カタログはこのサービスから見て読み取り専用であり、取り込み処理は別システムが担う。
package catalog

import (
	"context"

	"github.com/hitoshi/tunelist/internal/model"
)

// Reader はカタログ全体を読み取るインターフェース。
// 1回の読み取り合成（プレイリスト詳細の組み立てなど）につき1回だけ呼び出す。
type Reader interface {
	Songs(ctx context.Context) ([]model.Song, error)
}

// Hydrate は曲登録とカタログを突き合わせ、登録順を保ったまま曲情報を返す。
// カタログに存在しない曲IDの登録は黙って除外する。
func Hydrate(ctx context.Context, reader Reader, memberships []*model.Membership) ([]model.PlaylistSong, error) {
	songs := make([]model.PlaylistSong, 0, len(memberships))
	if len(memberships) == 0 {
		return songs, nil
	}

	all, err := reader.Songs(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]model.Song, len(all))
	for _, s := range all {
		byID[s.ID] = s
	}

	for _, m := range memberships {
		song, ok := byID[m.SongID]
		if !ok {
			continue
		}
		songs = append(songs, model.PlaylistSong{Song: song, Order: m.Order})
	}
	return songs, nil
}

// Lookup は指定IDの曲を返す。見つからない場合はnilを返す。
func Lookup(ctx context.Context, reader Reader, id int64) (*model.Song, error) {
	all, err := reader.Songs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}
