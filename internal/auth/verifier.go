// Package auth は外部IdPが発行したIDトークンの検証と、
// サービスアカウント認証情報の読み込みを提供する。
// このサービスはトークンを発行せず、検証のみを行う。
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized はトークンが検証できなかった場合に返される。
// 具体的な理由はラップされたメッセージに含まれる。
var ErrUnauthorized = errors.New("unauthorized")

const (
	// DefaultClockSkew は時刻検証に適用する既定の許容誤差。
	DefaultClockSkew = 30 * time.Second

	issuerPrefix     = "https://securetoken.google.com/"
	maxSubjectLength = 128
)

// Claims は検証済みIDトークンのクレーム。Subjectが利用者IDとなる。
type Claims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	AuthTime      int64  `json:"auth_time,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier はIDトークンを検証するインターフェース。
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// VerifierConfig はVerifierの設定。
type VerifierConfig struct {
	ProjectID string
	ClockSkew time.Duration
}

// Verifier はRS256署名のIDトークンを検証する。
// 公開鍵キャッシュ以外の状態を持たず、データストアには触れない。
type Verifier struct {
	keys      KeySource
	projectID string
	issuer    string
	skew      time.Duration
	now       func() time.Time
}

// NewVerifier はVerifierを生成する。
func NewVerifier(keys KeySource, cfg VerifierConfig) *Verifier {
	skew := cfg.ClockSkew
	if skew <= 0 {
		skew = DefaultClockSkew
	}
	return &Verifier{
		keys:      keys,
		projectID: cfg.ProjectID,
		issuer:    issuerPrefix + cfg.ProjectID,
		skew:      skew,
		now:       time.Now,
	}
}

// Verify はトークンの署名・発行者・対象者・有効期限を検証し、クレームを返す。
// 検証に失敗した場合はErrUnauthorizedをラップしたエラーを返す。
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("%w: empty token", ErrUnauthorized)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.skew),
		jwt.WithTimeFunc(v.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		return v.keys.PublicKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrUnauthorized)
	}
	if len(claims.Subject) > maxSubjectLength {
		return nil, fmt.Errorf("%w: subject exceeds %d characters", ErrUnauthorized, maxSubjectLength)
	}
	if claims.AuthTime == 0 {
		return nil, fmt.Errorf("%w: missing auth_time", ErrUnauthorized)
	}
	if time.Unix(claims.AuthTime, 0).After(v.now().Add(v.skew)) {
		return nil, fmt.Errorf("%w: auth_time is in the future", ErrUnauthorized)
	}

	return claims, nil
}

// compile-time interface check
var _ TokenVerifier = (*Verifier)(nil)
