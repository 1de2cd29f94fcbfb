package model

// Song は外部カタログの曲情報を表す。このサービスからは読み取り専用。
type Song struct {
	ID     int64
	Title  string
	Artist string
	Cover  string // カバー画像の参照（URLまたはパス）
	Audio  string // 音声ファイルの参照（URLまたはパス）
}

// PlaylistSong はカタログの曲情報にプレイリスト内の順序を付与したもの。
type PlaylistSong struct {
	Song
	Order int
}
