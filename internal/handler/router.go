package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tunelist/internal/auth"
	"github.com/hitoshi/tunelist/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Verifier          auth.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HTTPRecorder      middleware.HTTPRecorder // nilの場合はHTTPメトリクスを記録しない
	Logger            *slog.Logger            // nilの場合はslog.Default()

	// 疎通確認とメトリクス公開
	HealthChecker  HealthChecker
	MetricsHandler http.Handler // nilの場合は/metricsを公開しない

	// ドメイン
	PlaylistService PlaylistServiceInterface
	CatalogService  CatalogServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS → Auth → RateLimit(General)
//
// /health、/metrics、/api/songs は認証チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	playlistHandler := NewPlaylistHandler(deps.PlaylistService)
	catalogHandler := NewCatalogHandler(deps.CatalogService)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/songs", func(r chi.Router) {
		r.Get("/", catalogHandler.ListSongs)
		r.Get("/{id}", catalogHandler.GetSong)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Verifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/me", Me)

		r.Route("/api/playlists", func(r chi.Router) {
			r.Get("/", playlistHandler.ListPlaylists)
			// POST /api/playlists - プレイリスト作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.PlaylistCreateMiddleware()).Post("/", playlistHandler.CreatePlaylist)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", playlistHandler.GetPlaylist)
				r.Delete("/", playlistHandler.DeletePlaylist)

				r.Post("/songs", playlistHandler.AddSong)
				r.Delete("/songs/{songId}", playlistHandler.RemoveSong)
			})
		})
	})

	return r
}
