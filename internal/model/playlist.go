// Package model はドメインモデルを定義する。
package model

import "time"

// Playlist はユーザーが所有するプレイリストのメタデータを表す。
// 所有者（OwnerID）は作成後に変更されない。
type Playlist struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
}

// PlaylistSummary はプレイリストと登録曲数を結合したモデル。
// 一覧表示で使用される。
type PlaylistSummary struct {
	Playlist
	MemberCount int
}

// Membership はプレイリストへの曲の登録（プレイリスト・曲・順序）を表す。
// 同一プレイリスト内でSongIDは一意。Orderは登録順に単調増加し、削除時に詰め直さない。
type Membership struct {
	ID         string
	PlaylistID string
	SongID     int64
	Order      int
	AddedAt    time.Time
}

// PlaylistDetail はプレイリストとカタログ情報で補完された曲一覧を結合したモデル。
type PlaylistDetail struct {
	Playlist
	Songs []PlaylistSong
}
