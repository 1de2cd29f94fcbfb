package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "正常", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "スキーム小文字", header: "bearer abc", want: "abc"},
		{name: "スキーム大文字", header: "BEARER abc", want: "abc"},
		{name: "ヘッダーなし", header: "", wantErr: true},
		{name: "Basic認証", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "トークンなし", header: "Bearer", wantErr: true},
		{name: "トークンが空白", header: "Bearer   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnauthorized)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
