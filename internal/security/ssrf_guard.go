// Package security はアプリケーションのセキュリティ機能を提供する。
//
// SSRFGuardService は認証用公開鍵の取得など外部への送信リクエストを保護し、
// TextSanitizerService はユーザー入力テキストからHTMLを除去する。
package security

import (
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// SSRFGuardService は外部エンドポイントへの送信を保護するインターフェース。
// 公開鍵エンドポイントURLの起動時検証と、鍵取得時のHTTPクライアント生成に使用される。
type SSRFGuardService interface {
	// NewSafeClient は内部ネットワーク宛ての接続を拒否するHTTPクライアントを生成する。
	NewSafeClient(timeout time.Duration) *http.Client

	// ValidateURL は送信先URLを静的に検証し、危険なURLの場合はエラーを返す。
	ValidateURL(rawURL string) error
}

// 公開鍵はTLS経由でのみ取得する。
const (
	allowedScheme = "https"
	allowedPort   = 443
)

// blockedPrefixes は送信先として許可しないアドレス範囲。
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),     // RFC 1918
	netip.MustParsePrefix("172.16.0.0/12"),  // RFC 1918
	netip.MustParsePrefix("192.168.0.0/16"), // RFC 1918
	netip.MustParsePrefix("127.0.0.0/8"),    // ループバック
	netip.MustParsePrefix("169.254.0.0/16"), // リンクローカル（メタデータIPを含む）
	netip.MustParsePrefix("100.64.0.0/10"),  // CGNAT
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fc00::/7"),
}

// blockedHostSuffixes はDNS解決前に拒否するホスト名の接尾辞。
var blockedHostSuffixes = []string{
	"localhost",
	".localhost",
	".internal",
	".local",
}

// ErrUnsafeURL は送信先URLが許可されない場合に返される。
var ErrUnsafeURL = errors.New("unsafe outbound URL")

// ssrfGuard はSSRFGuardServiceの実装。
type ssrfGuard struct{}

// NewSSRFGuard はSSRFGuardServiceの新しいインスタンスを生成する。
func NewSSRFGuard() *ssrfGuard {
	return &ssrfGuard{}
}

// NewSafeClient はHTTPS・443番ポートのみに接続するHTTPクライアントを生成する。
// safeurlはDialerのControlフックでDNS解決後のIPアドレスを検証するため、
// ホスト名がプライベートアドレスへ解決される場合も接続を拒否する。
func (g *ssrfGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedScheme).
		SetAllowedPorts(allowedPort).
		Build()

	return safeurl.Client(config).Client
}

// ValidateURL は公開鍵エンドポイントURLを起動時に検証する。
// DNS解決は行わないため、解決後のアドレスはNewSafeClient側で検証される。
func (g *ssrfGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: empty URL", ErrUnsafeURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}

	if !strings.EqualFold(parsed.Scheme, allowedScheme) {
		return fmt.Errorf("%w: scheme %q is not allowed", ErrUnsafeURL, parsed.Scheme)
	}
	if parsed.User != nil {
		return fmt.Errorf("%w: credentials in URL are not allowed", ErrUnsafeURL)
	}
	if port := parsed.Port(); port != "" && port != fmt.Sprint(allowedPort) {
		return fmt.Errorf("%w: port %s is not allowed", ErrUnsafeURL, port)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty host", ErrUnsafeURL)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if isBlockedAddr(addr) {
			return fmt.Errorf("%w: blocked address %s", ErrUnsafeURL, addr)
		}
		return nil
	}

	if isBlockedHostname(host) {
		return fmt.Errorf("%w: blocked host %s", ErrUnsafeURL, host)
	}
	return nil
}

func isBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func isBlockedHostname(host string) bool {
	lower := strings.TrimSuffix(strings.ToLower(host), ".")
	for _, suffix := range blockedHostSuffixes {
		if lower == suffix || strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
