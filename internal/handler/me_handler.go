package handler

import (
	"net/http"
	"time"

	"github.com/hitoshi/tunelist/internal/middleware"
	"github.com/hitoshi/tunelist/internal/model"
)

// meResponse は検証済みトークンから得た利用者情報。
type meResponse struct {
	UID           string     `json:"uid"`
	Email         string     `json:"email,omitempty"`
	EmailVerified bool       `json:"emailVerified"`
	Name          string     `json:"name,omitempty"`
	AuthTime      *time.Time `json:"authTime,omitempty"`
}

// Me は検証済みトークンのクレームを返す。
// GET /api/me
func Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	resp := meResponse{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}
	if claims.AuthTime > 0 {
		t := time.Unix(claims.AuthTime, 0).UTC()
		resp.AuthTime = &t
	}
	writeJSON(w, http.StatusOK, resp)
}
