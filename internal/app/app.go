package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/tunelist/internal/auth"
	"github.com/hitoshi/tunelist/internal/catalog"
	"github.com/hitoshi/tunelist/internal/config"
	"github.com/hitoshi/tunelist/internal/database"
	"github.com/hitoshi/tunelist/internal/handler"
	"github.com/hitoshi/tunelist/internal/logger"
	"github.com/hitoshi/tunelist/internal/metrics"
	"github.com/hitoshi/tunelist/internal/middleware"
	"github.com/hitoshi/tunelist/internal/playlist"
	"github.com/hitoshi/tunelist/internal/repository"
	"github.com/hitoshi/tunelist/internal/security"
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, known := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if !known {
		slog.Warn("unknown command, falling back to serve", slog.String("arg", args[0]))
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// 3. IDトークン検証
	verifier, err := buildVerifier(cfg)
	if err != nil {
		return err
	}

	// 4. 楽曲カタログ
	songs, closeCatalog, err := buildCatalog(cfg, collector)
	if err != nil {
		return err
	}
	defer closeCatalog()

	// 5. ドメインサービスの初期化
	playlistService := playlist.NewService(playlist.Deps{
		Tx:          repository.NewSQLTransactor(db),
		Playlists:   repository.NewPostgresPlaylistRepo(db),
		Memberships: repository.NewPostgresMembershipRepo(db),
		Catalog:     songs,
		Sanitizer:   security.NewTextSanitizer(),
		Recorder:    collector,
	})

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitPlaylistCreate),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Verifier:          verifier,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		HTTPRecorder:      collector,
		HealthChecker:     db,
		MetricsHandler:    metrics.Handler(reg),
		PlaylistService:   playlistService,
		CatalogService:    handler.NewCatalogServiceAdapter(songs),
	})

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// buildVerifier は資格情報からプロジェクトIDを決定し、IDトークン検証器を構築する。
// 公開鍵エンドポイントはSSRFガード付きのHTTPクライアントで取得する。
func buildVerifier(cfg *config.Config) (*auth.Verifier, error) {
	account, source, err := auth.LoadCredentials(cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	slog.Info("credentials loaded",
		slog.String("source", string(source)),
		slog.String("project_id", account.ProjectID),
	)

	guard := security.NewSSRFGuard()
	if err := guard.ValidateURL(cfg.AuthKeysURL); err != nil {
		return nil, fmt.Errorf("invalid AUTH_KEYS_URL: %w", err)
	}

	keys := auth.NewRemoteKeySource(cfg.AuthKeysURL, guard.NewSafeClient(cfg.AuthKeysTimeout))
	return auth.NewVerifier(keys, auth.VerifierConfig{
		ProjectID: account.ProjectID,
		ClockSkew: cfg.AuthClockSkew,
	}), nil
}

// buildCatalog はJSONファイルのカタログを構築する。
// REDIS_URLが設定されている場合はRedisキャッシュでラップする。
// 返却する関数はRedis接続を閉じる。
func buildCatalog(cfg *config.Config, observer catalog.CacheObserver) (catalog.Reader, func() error, error) {
	file := catalog.NewFileCatalog(cfg.CatalogPath)
	if cfg.RedisURL == "" {
		slog.Info("catalog cache disabled", slog.String("path", cfg.CatalogPath))
		return file, func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	slog.Info("catalog cache enabled",
		slog.String("path", cfg.CatalogPath),
		slog.String("redis_addr", opts.Addr),
		slog.Duration("ttl", cfg.CatalogCacheTTL),
	)

	cached := catalog.NewCachedCatalog(file, rdb, cfg.CatalogCacheTTL, catalog.WithCacheObserver(observer))
	return cached, rdb.Close, nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	status, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(status.Version)),
		slog.Bool("dirty", status.Dirty),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// 解釈できないURLは全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
