package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hitoshi/tunelist/internal/model"
)

// songRecord はカタログファイル上の1曲分の表現。
type songRecord struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Cover  string `json:"cover"`
	Audio  string `json:"audio"`
}

func (r songRecord) toModel() model.Song {
	return model.Song{
		ID:     r.ID,
		Title:  r.Title,
		Artist: r.Artist,
		Cover:  r.Cover,
		Audio:  r.Audio,
	}
}

func fromModel(s model.Song) songRecord {
	return songRecord{
		ID:     s.ID,
		Title:  s.Title,
		Artist: s.Artist,
		Cover:  s.Cover,
		Audio:  s.Audio,
	}
}

// FileCatalog はJSON配列ファイルからカタログを読み取る。
// ファイルは外部の取り込み処理によって更新されるため、呼び出しごとに読み直す。
type FileCatalog struct {
	path string
}

// NewFileCatalog はFileCatalogを生成する。
func NewFileCatalog(path string) *FileCatalog {
	return &FileCatalog{path: path}
}

// Songs はカタログファイルを読み込んで全曲を返す。
func (c *FileCatalog) Songs(ctx context.Context) ([]model.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("カタログファイルの読み込みに失敗しました: %w", err)
	}
	return decodeSongs(data)
}

func decodeSongs(data []byte) ([]model.Song, error) {
	var records []songRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("カタログのデコードに失敗しました: %w", err)
	}

	songs := make([]model.Song, 0, len(records))
	for _, r := range records {
		songs = append(songs, r.toModel())
	}
	return songs, nil
}

func encodeSongs(songs []model.Song) ([]byte, error) {
	records := make([]songRecord, 0, len(songs))
	for _, s := range songs {
		records = append(records, fromModel(s))
	}
	return json.Marshal(records)
}

// compile-time interface check
var _ Reader = (*FileCatalog)(nil)
