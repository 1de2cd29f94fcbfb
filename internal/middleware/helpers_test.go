package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/tunelist/internal/auth"
)

// --- モック定義 ---

type mockVerifier struct {
	verifyFn func(ctx context.Context, rawToken string) (*auth.Claims, error)
}

func (m *mockVerifier) Verify(ctx context.Context, rawToken string) (*auth.Claims, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, rawToken)
	}
	return nil, fmt.Errorf("%w: no verifier configured", auth.ErrUnauthorized)
}

// tokenVerifier は "token-<subject>" 形式のトークンを受け付けるモックを返す。
func tokenVerifier() *mockVerifier {
	return &mockVerifier{
		verifyFn: func(_ context.Context, rawToken string) (*auth.Claims, error) {
			subject, ok := strings.CutPrefix(rawToken, "token-")
			if !ok || subject == "" {
				return nil, fmt.Errorf("%w: bad signature", auth.ErrUnauthorized)
			}
			return &auth.Claims{
				Email:            subject + "@example.com",
				RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
			}, nil
		},
	}
}

var errVerifierDown = errors.New("key endpoint unreachable")

// requestAs はユーザーIDをコンテキストに注入したリクエストを生成する。
func requestAs(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(ContextWithUserID(req.Context(), userID))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
