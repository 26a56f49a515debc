package leonardo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oukeidos/vidlens/internal/apperrors"
)

func TestClient_ValidateKey_Errors(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		responseBody   string
		expectedErrMsg string
		expectedKind   apperrors.Kind
	}{
		{
			name:           "401 Unauthorized",
			status:         http.StatusUnauthorized,
			responseBody:   `{"error": "invalid api key"}`,
			expectedErrMsg: "Leonardo API authentication failed (401)",
			expectedKind:   apperrors.KindAuth,
		},
		{
			name:           "429 Too Many Requests",
			status:         http.StatusTooManyRequests,
			responseBody:   `{"error": "rate limited"}`,
			expectedErrMsg: "Leonardo API rate limit exceeded (429)",
			expectedKind:   apperrors.KindRateLimit,
		},
		{
			name:           "503 Service Unavailable",
			status:         http.StatusServiceUnavailable,
			responseBody:   "maintenance",
			expectedErrMsg: "Leonardo server error (503)",
			expectedKind:   apperrors.KindTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.responseBody)
			}))
			defer server.Close()

			client := NewClient("test-key")
			client.baseURL = server.URL

			_, err := client.ValidateKey(context.Background())
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.expectedErrMsg) {
				t.Errorf("Expected error message to contain %q, got %q", tt.expectedErrMsg, err.Error())
			}
			if !apperrors.Is(err, tt.expectedKind) {
				t.Errorf("Expected kind %q, got %v", tt.expectedKind, err)
			}
		})
	}
}

func TestClient_ValidateKey_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		fmt.Fprint(w, `{"user_details": [{"user": {"username": "creator"}, "apiSubscriptionTokens": 3500}]}`)
	}))
	defer server.Close()

	client := NewClient("test-key")
	client.baseURL = server.URL

	account, err := client.ValidateKey(context.Background())
	if err != nil {
		t.Fatalf("ValidateKey failed: %v", err)
	}
	if account.Username != "creator" {
		t.Errorf("expected username creator, got %q", account.Username)
	}
	if account.Tokens != 3500 {
		t.Errorf("expected 3500 tokens, got %d", account.Tokens)
	}
}

func TestClient_ValidateKey_EmptyDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"user_details": []}`)
	}))
	defer server.Close()

	client := NewClient("test-key")
	client.baseURL = server.URL

	if _, err := client.ValidateKey(context.Background()); !apperrors.Is(err, apperrors.KindFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}
