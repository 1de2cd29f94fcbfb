package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultKeysURL は署名検証用x509証明書の公開エンドポイント。
const DefaultKeysURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const (
	maxKeysResponseSize = 1 << 20
	minRefreshInterval  = time.Minute
	defaultKeysMaxAge   = time.Hour
)

// ErrUnknownKey は指定されたkidの公開鍵が存在しない場合に返される。
var ErrUnknownKey = errors.New("unknown signing key")

// KeySource はkidに対応するRSA公開鍵を提供するインターフェース。
type KeySource interface {
	PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// StaticKeySource は固定の公開鍵セットを提供する。
type StaticKeySource struct {
	keys map[string]*rsa.PublicKey
}

// NewStaticKeySource はStaticKeySourceを生成する。
func NewStaticKeySource(keys map[string]*rsa.PublicKey) *StaticKeySource {
	copied := make(map[string]*rsa.PublicKey, len(keys))
	for kid, k := range keys {
		copied[kid] = k
	}
	return &StaticKeySource{keys: copied}
}

// PublicKey はkidに対応する公開鍵を返す。
func (s *StaticKeySource) PublicKey(_ context.Context, kid string) (*rsa.PublicKey, error) {
	k, ok := s.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, kid)
	}
	return k, nil
}

// RemoteKeySource はx509証明書マップ（{"kid": "PEM証明書"}）をHTTPで取得してキャッシュする。
// キャッシュ期間はCache-Controlのmax-ageに従う。
// 未知のkidを受け取った場合は再取得するが、再取得は1分に1回までに制限する。
type RemoteKeySource struct {
	url    string
	client *http.Client
	now    func() time.Time

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
	fetchedAt time.Time
}

// NewRemoteKeySource はRemoteKeySourceを生成する。
// clientにはSSRF防止機能付きのクライアントを渡すこと。
func NewRemoteKeySource(url string, client *http.Client) *RemoteKeySource {
	return &RemoteKeySource{
		url:    url,
		client: client,
		now:    time.Now,
	}
}

// PublicKey はkidに対応する公開鍵を返す。必要に応じて証明書を再取得する。
func (s *RemoteKeySource) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.keys != nil && now.Before(s.expiresAt) {
		if k, ok := s.keys[kid]; ok {
			return k, nil
		}
		if now.Sub(s.fetchedAt) < minRefreshInterval {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, kid)
		}
	}

	if err := s.refresh(ctx, now); err != nil {
		return nil, err
	}

	k, ok := s.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, kid)
	}
	return k, nil
}

// refresh は証明書マップを取得してキャッシュを置き換える。s.muを保持した状態で呼ぶこと。
func (s *RemoteKeySource) refresh(ctx context.Context, now time.Time) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create keys request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("keys request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeysResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read keys response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("keys fetch failed with status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return fmt.Errorf("failed to parse keys response: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemCert := range certs {
		k, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemCert))
		if err != nil {
			slog.Warn("skipping unparsable signing certificate",
				slog.String("kid", kid),
				slog.String("error", err.Error()),
			)
			continue
		}
		keys[kid] = k
	}
	if len(keys) == 0 {
		return errors.New("keys response contained no usable certificates")
	}

	s.keys = keys
	s.fetchedAt = now
	s.expiresAt = now.Add(maxAge(resp.Header.Get("Cache-Control")))

	slog.Info("signing keys refreshed",
		slog.Int("count", len(keys)),
		slog.Time("expires_at", s.expiresAt),
	)
	return nil
}

// maxAge はCache-Controlヘッダーのmax-ageを返す。指定がなければ既定値を返す。
func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			break
		}
		return time.Duration(seconds) * time.Second
	}
	return defaultKeysMaxAge
}

// compile-time interface check
var (
	_ KeySource = (*StaticKeySource)(nil)
	_ KeySource = (*RemoteKeySource)(nil)
)
