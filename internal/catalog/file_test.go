package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "songs.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileCatalog_Songs(t *testing.T) {
	path := writeCatalog(t, `[
		{"id": 1, "title": "Highway", "artist": "The Drivers", "cover": "/covers/1.jpg", "audio": "/audio/1.mp3"},
		{"id": 2, "title": "Night Ride", "artist": "Moon", "cover": "", "audio": "/audio/2.mp3", "album": "ignored"}
	]`)

	songs, err := NewFileCatalog(path).Songs(context.Background())
	require.NoError(t, err)
	require.Len(t, songs, 2)

	assert.Equal(t, int64(1), songs[0].ID)
	assert.Equal(t, "Highway", songs[0].Title)
	assert.Equal(t, "The Drivers", songs[0].Artist)
	assert.Equal(t, "/covers/1.jpg", songs[0].Cover)
	assert.Equal(t, "/audio/1.mp3", songs[0].Audio)
	assert.Equal(t, "Night Ride", songs[1].Title)
}

// ファイルは呼び出しごとに読み直される
func TestFileCatalog_RereadsOnEveryCall(t *testing.T) {
	path := writeCatalog(t, `[{"id": 1, "title": "One"}]`)
	c := NewFileCatalog(path)

	first, err := c.Songs(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1, "title": "One"}, {"id": 2, "title": "Two"}]`), 0o600))

	second, err := c.Songs(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestFileCatalog_Errors(t *testing.T) {
	t.Run("ファイルが存在しない", func(t *testing.T) {
		_, err := NewFileCatalog(filepath.Join(t.TempDir(), "missing.json")).Songs(context.Background())
		assert.Error(t, err)
	})

	t.Run("JSONが不正", func(t *testing.T) {
		path := writeCatalog(t, `{"id": 1}`)
		_, err := NewFileCatalog(path).Songs(context.Background())
		assert.Error(t, err)
	})

	t.Run("キャンセル済みのcontext", func(t *testing.T) {
		path := writeCatalog(t, `[]`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFileCatalog(path).Songs(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
