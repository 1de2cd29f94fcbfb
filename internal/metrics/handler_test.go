package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

// TestHandler_ServesDomainCounters はプレイリスト操作のカウンタがスクレイプ結果に含まれることを検証する。
func TestHandler_ServesDomainCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.PlaylistCreated()
	c.SongAdded()
	c.SongConflict()

	body := scrape(t, reg)

	for _, want := range []string{
		"tunelist_playlists_created_total 1",
		"tunelist_playlist_songs_added_total 1",
		"tunelist_playlist_song_conflicts_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape output should contain %q", want)
		}
	}
}

// TestHandler_HTTPRequestsUseRouteLabel はパスパラメータを含まないルートでラベル付けされることを検証する。
func TestHandler_HTTPRequestsUseRouteLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPRequest(http.MethodPost, "/api/playlists/{id}/songs", http.StatusConflict, 15*time.Millisecond)

	body := scrape(t, reg)

	want := `tunelist_http_requests_total{method="POST",route="/api/playlists/{id}/songs",status="409"} 1`
	if !strings.Contains(body, want) {
		t.Errorf("scrape output should contain %q\n%s", want, body)
	}
}
