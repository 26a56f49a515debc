package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"

	"github.com/oukeidos/vidlens/internal/apperrors"
)

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		duration string
		want     int
	}{
		{"", 0},
		{"PT45S", 45},
		{"PT1M30S", 90},
		{"PT2H15M30S", 8130},
		{"PT3H", 10800},
		{"PT10M", 600},
		{"not-a-duration", 0},
	}

	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			if got := parseDurationSeconds(tt.duration); got != tt.want {
				t.Errorf("parseDurationSeconds(%q) = %d, want %d", tt.duration, got, tt.want)
			}
		})
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	// WithHTTPClient cannot be combined with WithAPIKey, so only the
	// endpoint is redirected; requests still go through the key transport.
	client, err := NewClient(context.Background(), "test-key",
		option.WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestResolveChannel_ByID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "UCabcdefghij12345" {
			t.Errorf("expected id filter, got %q", got)
		}
		fmt.Fprint(w, `{"items": [{"id": "UCabcdefghij12345",
			"snippet": {"title": "Cooking Daily", "description": "recipes"},
			"statistics": {"subscriberCount": "1200", "videoCount": "88", "viewCount": "990000"},
			"contentDetails": {"relatedPlaylists": {"uploads": "UUabcdefghij12345"}}}]}`)
	}))

	info, err := client.ResolveChannel(context.Background(), "https://www.youtube.com/channel/UCabcdefghij12345")
	if err != nil {
		t.Fatalf("ResolveChannel failed: %v", err)
	}
	if info.Title != "Cooking Daily" {
		t.Errorf("unexpected title %q", info.Title)
	}
	if info.Subscribers != 1200 {
		t.Errorf("unexpected subscribers %d", info.Subscribers)
	}
	if info.UploadsPlaylist != "UUabcdefghij12345" {
		t.Errorf("unexpected uploads playlist %q", info.UploadsPlaylist)
	}
}

func TestResolveChannel_ByHandle(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("forHandle"); got != "@cookingdaily" {
			t.Errorf("expected forHandle filter, got %q", got)
		}
		fmt.Fprint(w, `{"items": [{"id": "UCabcdefghij12345", "snippet": {"title": "Cooking Daily"}}]}`)
	}))

	info, err := client.ResolveChannel(context.Background(), "@cookingdaily")
	if err != nil {
		t.Fatalf("ResolveChannel failed: %v", err)
	}
	if info.ID != "UCabcdefghij12345" {
		t.Errorf("unexpected id %q", info.ID)
	}
}

func TestResolveChannel_EmptyInput(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := client.ResolveChannel(context.Background(), "   ")
	if !apperrors.Is(err, apperrors.KindEmptyInput) {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestResolveChannel_Unparseable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := client.ResolveChannel(context.Background(), "not a channel at all")
	if !apperrors.Is(err, apperrors.KindFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestResolveChannel_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	}))

	_, err := client.ResolveChannel(context.Background(), "@ghostchannel")
	if !apperrors.Is(err, apperrors.KindFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestValidateKey_QuotaExceeded(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": 403, "message": "quota", "errors": [{"reason": "quotaExceeded"}]}}`)
	}))

	err := client.ValidateKey(context.Background())
	if !apperrors.Is(err, apperrors.KindRateLimit) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestValidateKey_BadKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"code": 400, "message": "API key not valid", "errors": [{"reason": "badRequest"}]}}`)
	}))

	err := client.ValidateKey(context.Background())
	if !apperrors.Is(err, apperrors.KindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestVideoDetails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [{"id": "vid1",
			"snippet": {"title": "Quick Pho", "publishedAt": "2026-05-01T10:00:00Z"},
			"contentDetails": {"duration": "PT8M20S"},
			"statistics": {"viewCount": "50000", "likeCount": "2100", "commentCount": "310"}}]}`)
	}))

	videos, err := client.VideoDetails(context.Background(), []string{"vid1"})
	if err != nil {
		t.Fatalf("VideoDetails failed: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(videos))
	}
	if videos[0].DurationSeconds != 500 {
		t.Errorf("expected 500 seconds, got %d", videos[0].DurationSeconds)
	}
	// The API quotes statistics counts; they must still land in the
	// numeric fields.
	if videos[0].ViewCount != 50000 || videos[0].LikeCount != 2100 || videos[0].CommentCount != 310 {
		t.Errorf("unexpected statistics %d/%d/%d", videos[0].ViewCount, videos[0].LikeCount, videos[0].CommentCount)
	}
	if videos[0].URL != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("unexpected URL %q", videos[0].URL)
	}
}
