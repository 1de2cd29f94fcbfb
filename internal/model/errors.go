// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, playlist, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidArgument   = "INVALID_ARGUMENT"
	ErrCodePlaylistNotFound  = "PLAYLIST_NOT_FOUND"
	ErrCodeSongNotInPlaylist = "SONG_NOT_IN_PLAYLIST"
	ErrCodeSongNotFound      = "SONG_NOT_FOUND"
	ErrCodeDuplicateSong     = "DUPLICATE_SONG"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidArgumentError は入力値の検証エラーを生成する。
func NewInvalidArgumentError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidArgument,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewPlaylistNotFoundError はプレイリスト未検出エラーを生成する。
// 存在しない場合と他ユーザーの所有である場合を区別しない。
func NewPlaylistNotFoundError(playlistID string) *APIError {
	return &APIError{
		Code:     ErrCodePlaylistNotFound,
		Message:  fmt.Sprintf("指定されたプレイリストが見つかりません: %s", playlistID),
		Category: "playlist",
		Action:   "プレイリストIDを確認してください。",
	}
}

// NewSongNotInPlaylistError はプレイリストに曲が登録されていない場合のエラーを生成する。
func NewSongNotInPlaylistError(songID int64) *APIError {
	return &APIError{
		Code:     ErrCodeSongNotInPlaylist,
		Message:  fmt.Sprintf("指定された曲はプレイリストに登録されていません: %d", songID),
		Category: "playlist",
		Action:   "プレイリストの曲一覧を確認してください。",
	}
}

// NewSongNotFoundError はカタログに曲が存在しない場合のエラーを生成する。
func NewSongNotFoundError(songID int64) *APIError {
	return &APIError{
		Code:     ErrCodeSongNotFound,
		Message:  fmt.Sprintf("指定された曲が見つかりません: %d", songID),
		Category: "catalog",
		Action:   "曲IDを確認してください。",
	}
}

// NewDuplicateSongError は既にプレイリストに登録済みの曲を再度追加しようとした場合のエラーを生成する。
func NewDuplicateSongError(songID int64) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSong,
		Message:  fmt.Sprintf("この曲は既にプレイリストに登録されています: %d", songID),
		Category: "playlist",
		Action:   "プレイリストの曲一覧から該当の曲を確認してください。",
	}
}

// NewRateLimitExceededError はレート制限超過エラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。しばらくしてから再度お試しください。",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再試行してください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
