package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/tunelist/internal/model"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheKey はカタログをキャッシュするRedisキー。
const DefaultCacheKey = "tunelist:catalog:songs"

// CacheObserver はキャッシュのヒット・ミスを受け取るインターフェース。
type CacheObserver interface {
	CatalogCacheHit()
	CatalogCacheMiss()
}

type noopObserver struct{}

func (noopObserver) CatalogCacheHit()  {}
func (noopObserver) CatalogCacheMiss() {}

// CachedCatalog はReaderの結果をRedisにキャッシュするデコレータ。
// キャッシュの読み書きに失敗した場合はログを出力して元のReaderにフォールバックする。
type CachedCatalog struct {
	source   Reader
	rdb      redis.Cmdable
	key      string
	ttl      time.Duration
	observer CacheObserver
}

// CacheOption はCachedCatalogのオプション。
type CacheOption func(*CachedCatalog)

// WithCacheKey はキャッシュキーを変更する。
func WithCacheKey(key string) CacheOption {
	return func(c *CachedCatalog) { c.key = key }
}

// WithCacheObserver はヒット・ミスの通知先を設定する。
func WithCacheObserver(o CacheObserver) CacheOption {
	return func(c *CachedCatalog) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewCachedCatalog はCachedCatalogを生成する。
func NewCachedCatalog(source Reader, rdb redis.Cmdable, ttl time.Duration, opts ...CacheOption) *CachedCatalog {
	c := &CachedCatalog{
		source:   source,
		rdb:      rdb,
		key:      DefaultCacheKey,
		ttl:      ttl,
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Songs はキャッシュがあればそれを、なければ元のReaderから読み取ってキャッシュする。
func (c *CachedCatalog) Songs(ctx context.Context) ([]model.Song, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		songs, decodeErr := decodeSongs(data)
		if decodeErr == nil {
			c.observer.CatalogCacheHit()
			return songs, nil
		}
		slog.Warn("discarding undecodable catalog cache entry",
			slog.String("key", c.key),
			slog.String("error", decodeErr.Error()),
		)
	case errors.Is(err, redis.Nil):
	default:
		slog.Warn("catalog cache read failed",
			slog.String("key", c.key),
			slog.String("error", err.Error()),
		)
	}
	c.observer.CatalogCacheMiss()

	songs, err := c.source.Songs(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeSongs(songs)
	if err != nil {
		slog.Warn("catalog cache encode failed", slog.String("error", err.Error()))
		return songs, nil
	}
	if err := c.rdb.Set(ctx, c.key, encoded, c.ttl).Err(); err != nil {
		slog.Warn("catalog cache write failed",
			slog.String("key", c.key),
			slog.String("error", err.Error()),
		)
	}
	return songs, nil
}

// Invalidate はキャッシュを削除する。
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}

// compile-time interface check
var _ Reader = (*CachedCatalog)(nil)
