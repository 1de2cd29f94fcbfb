// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hitoshi/tunelist/internal/auth"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Credentials（IDトークン検証用のプロジェクト情報）
	Credentials auth.CredentialSources

	// Auth
	AuthKeysURL     string
	AuthClockSkew   time.Duration
	AuthKeysTimeout time.Duration

	// Catalog
	CatalogPath     string
	RedisURL        string // 空の場合はカタログをキャッシュしない
	CatalogCacheTTL time.Duration

	// Rate Limit（req/min/user）
	RateLimitGeneral        int
	RateLimitPlaylistCreate int

	// Server
	ServerPort string

	// CORS（カンマ区切りで複数指定可、"*"は全許可）
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込むが、既に設定済みの環境変数は上書きしない。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.Credentials = auth.CredentialSourcesFromEnv(os.Getenv)
	if !cfg.Credentials.Any() {
		missing = append(missing, "FIREBASE_CREDENTIALS_JSON|FIREBASE_CREDENTIALS_BASE64|FIREBASE_PROJECT_ID|GOOGLE_APPLICATION_CREDENTIALS")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.AuthKeysURL = getEnvString("AUTH_KEYS_URL", auth.DefaultKeysURL)
	cfg.AuthClockSkew = getEnvDuration("AUTH_CLOCK_SKEW", auth.DefaultClockSkew)
	cfg.AuthKeysTimeout = getEnvDuration("AUTH_KEYS_TIMEOUT", 10*time.Second)
	cfg.CatalogPath = getEnvString("CATALOG_PATH", "data/songs.json")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.CatalogCacheTTL = getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitPlaylistCreate = getEnvInt("RATE_LIMIT_PLAYLIST_CREATE", 20)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	return cfg, nil
}

// loadDotEnv は.envファイルを読み込む。ファイルが存在しない場合は何もしない。
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getEnvInt は正の整数を読み込む。解釈できない値や0以下の値はデフォルト値とする。
func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
