package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はユーザー入力のプレーンテキストを正規化するインターフェース。
// プレイリスト名・説明の保存前に使用される。
type TextSanitizerService interface {
	// SanitizeText はHTMLタグを全て除去し、前後の空白を取り除いたテキストを返す。
	// 文字参照（&amp; など）は元の文字に戻すため、"Rock & Roll" はそのまま保存される。
	// エスケープされたタグ（&lt;b&gt; など）も復元後に除去され、出力は冪等となる。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyは全てのタグと属性を除去する。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// maxSanitizePasses はエスケープが入れ子になった入力に対する除去の反復上限。
const maxSanitizePasses = 8

// SanitizeText はHTMLタグを除去したプレーンテキストを返す。
// 文字参照を戻した結果にタグが現れる場合があるため、出力が変化しなくなるまで
// 除去と文字参照の復元を繰り返す。
func (s *textSanitizer) SanitizeText(raw string) string {
	text := strings.TrimSpace(raw)
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
		if next == text {
			return text
		}
		text = next
	}
	// 上限まで変化し続けた入力は山括弧を落としてタグになり得ない形にする
	return strings.TrimSpace(angleBrackets.Replace(text))
}

var angleBrackets = strings.NewReplacer("<", "", ">", "")
