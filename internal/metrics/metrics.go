// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// HTTPミドルウェア、プレイリストサービス、カタログキャッシュから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	PlaylistCreated()
	PlaylistDeleted()
	SongAdded()
	SongRemoved()
	SongConflict()
	CatalogCacheHit()
	CatalogCacheMiss()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	playlistsCreated prometheus.Counter
	playlistsDeleted prometheus.Counter
	songsAdded       prometheus.Counter
	songsRemoved     prometheus.Counter
	songConflicts    prometheus.Counter
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tunelist_http_requests_total",
			Help: "メソッド・ルート・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tunelist_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		playlistsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tunelist_playlists_created_total",
			Help: "作成されたプレイリストの合計数",
		}),
		playlistsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tunelist_playlists_deleted_total",
			Help: "削除されたプレイリストの合計数",
		}),
		songsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tunelist_playlist_songs_added_total",
			Help: "プレイリストに追加された曲の合計数",
		}),
		songsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tunelist_playlist_songs_removed_total",
			Help: "プレイリストから削除された曲の合計数",
		}),
		songConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tunelist_playlist_song_conflicts_total",
			Help: "登録済みの曲を追加しようとした回数",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tunelist_catalog_cache_hits_total",
			Help: "カタログキャッシュのヒット数",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tunelist_catalog_cache_misses_total",
			Help: "カタログキャッシュのミス数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.playlistsCreated,
		c.playlistsDeleted,
		c.songsAdded,
		c.songsRemoved,
		c.songConflicts,
		c.cacheHits,
		c.cacheMisses,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
// routeにはパスパラメータを含まないルートパターンを渡すこと。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// PlaylistCreated はプレイリスト作成を記録する。
func (c *Collector) PlaylistCreated() {
	c.playlistsCreated.Inc()
}

// PlaylistDeleted はプレイリスト削除を記録する。
func (c *Collector) PlaylistDeleted() {
	c.playlistsDeleted.Inc()
}

// SongAdded は曲の追加を記録する。
func (c *Collector) SongAdded() {
	c.songsAdded.Inc()
}

// SongRemoved は曲の削除を記録する。
func (c *Collector) SongRemoved() {
	c.songsRemoved.Inc()
}

// SongConflict は重複追加の拒否を記録する。
func (c *Collector) SongConflict() {
	c.songConflicts.Inc()
}

// CatalogCacheHit はカタログキャッシュのヒットを記録する。
func (c *Collector) CatalogCacheHit() {
	c.cacheHits.Inc()
}

// CatalogCacheMiss はカタログキャッシュのミスを記録する。
func (c *Collector) CatalogCacheMiss() {
	c.cacheMisses.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
