package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testProjectID = "tunelist-test"

var (
	keyOnce   sync.Once
	signKey   *rsa.PrivateKey
	otherKey  *rsa.PrivateKey
	keyGenErr error
)

// testKeys はテスト全体で共有するRSA鍵を返す。
func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keyOnce.Do(func() {
		signKey, keyGenErr = rsa.GenerateKey(rand.Reader, 2048)
		if keyGenErr != nil {
			return
		}
		otherKey, keyGenErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	require.NoError(t, keyGenErr)
	return signKey, otherKey
}

// validClaims は検証に通るクレームを返す。
func validClaims(now time.Time) *Claims {
	return &Claims{
		Email:         "driver@example.com",
		EmailVerified: true,
		Name:          "Road Tripper",
		AuthTime:      now.Add(-time.Minute).Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-a",
			Issuer:    issuerPrefix + testProjectID,
			Audience:  jwt.ClaimStrings{testProjectID},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

// signToken はRS256でトークンに署名する。kidが空の場合はヘッダーに含めない。
func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

// certPEM は公開鍵を含む自己署名証明書をPEM形式で返す。
func certPEM(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

// privateKeyPEM は秘密鍵をPKCS#8のPEM形式で返す。
func privateKeyPEM(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}
