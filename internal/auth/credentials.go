package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialSource は認証情報の読み込み元を表す。
type CredentialSource string

// 認証情報の読み込み元。LoadCredentialsはこの順に評価する。
const (
	SourceExplicitJSON CredentialSource = "explicit-json"
	SourceBase64JSON   CredentialSource = "base64-json"
	SourceFields       CredentialSource = "fields"
	SourceFile         CredentialSource = "file"
)

// ErrNoCredentials はどの読み込み元も設定されていない場合に返される。
var ErrNoCredentials = errors.New("no credential source configured")

// CredentialSources は各読み込み元の設定値。
type CredentialSources struct {
	JSON   string // FIREBASE_CREDENTIALS_JSON
	Base64 string // FIREBASE_CREDENTIALS_BASE64

	ProjectID    string // FIREBASE_PROJECT_ID
	ClientEmail  string // FIREBASE_CLIENT_EMAIL
	PrivateKey   string // FIREBASE_PRIVATE_KEY
	PrivateKeyID string // FIREBASE_PRIVATE_KEY_ID

	File string // GOOGLE_APPLICATION_CREDENTIALS
}

// CredentialSourcesFromEnv は環境変数から読み込み元を組み立てる。
func CredentialSourcesFromEnv(getenv func(string) string) CredentialSources {
	return CredentialSources{
		JSON:         getenv("FIREBASE_CREDENTIALS_JSON"),
		Base64:       getenv("FIREBASE_CREDENTIALS_BASE64"),
		ProjectID:    getenv("FIREBASE_PROJECT_ID"),
		ClientEmail:  getenv("FIREBASE_CLIENT_EMAIL"),
		PrivateKey:   getenv("FIREBASE_PRIVATE_KEY"),
		PrivateKeyID: getenv("FIREBASE_PRIVATE_KEY_ID"),
		File:         getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	}
}

// Any はいずれかの読み込み元が設定されているかを返す。
func (s CredentialSources) Any() bool {
	return s.JSON != "" || s.Base64 != "" || s.fieldsSet() || s.File != ""
}

func (s CredentialSources) fieldsSet() bool {
	return s.ProjectID != "" || s.ClientEmail != "" || s.PrivateKey != "" || s.PrivateKeyID != ""
}

// ServiceAccount はサービスアカウントの認証情報。
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
}

// LoadCredentials は認証情報を次の優先順位で読み込む。
//
//  1. explicit-json: サービスアカウントJSONそのもの
//  2. base64-json: JSONのBase64（標準・URLセーフのどちらも可）
//  3. fields: 個別の値（プロジェクトIDのみでも可）
//  4. file: JSONファイルのパス
//
// 最初に設定されている読み込み元を採用する。その値が不正な場合は
// 次の読み込み元に進まずエラーを返す。
func LoadCredentials(src CredentialSources) (*ServiceAccount, CredentialSource, error) {
	var (
		sa     *ServiceAccount
		source CredentialSource
		err    error
	)

	switch {
	case src.JSON != "":
		source = SourceExplicitJSON
		sa, err = parseServiceAccount([]byte(src.JSON))
	case src.Base64 != "":
		source = SourceBase64JSON
		var decoded []byte
		decoded, err = decodeBase64(src.Base64)
		if err == nil {
			sa, err = parseServiceAccount(decoded)
		}
	case src.fieldsSet():
		source = SourceFields
		sa = &ServiceAccount{
			Type:         "service_account",
			ProjectID:    src.ProjectID,
			ClientEmail:  src.ClientEmail,
			PrivateKey:   strings.ReplaceAll(src.PrivateKey, `\n`, "\n"),
			PrivateKeyID: src.PrivateKeyID,
		}
	case src.File != "":
		source = SourceFile
		var data []byte
		data, err = os.ReadFile(src.File)
		if err != nil {
			err = fmt.Errorf("failed to read credentials file: %w", err)
		} else {
			sa, err = parseServiceAccount(data)
		}
	default:
		return nil, "", ErrNoCredentials
	}

	if err == nil {
		err = sa.validate()
	}
	if err != nil {
		return nil, source, fmt.Errorf("invalid %s credentials: %w", source, err)
	}
	return sa, source, nil
}

func parseServiceAccount(data []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("failed to parse service account JSON: %w", err)
	}
	return &sa, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	} {
		if decoded, err := enc.DecodeString(s); err == nil {
			return decoded, nil
		}
	}
	return nil, errors.New("value is not valid base64")
}

func (sa *ServiceAccount) validate() error {
	if strings.TrimSpace(sa.ProjectID) == "" {
		return errors.New("project_id is required")
	}
	if sa.PrivateKey != "" {
		if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey)); err != nil {
			return fmt.Errorf("private_key is not a valid RSA key: %w", err)
		}
	}
	return nil
}
