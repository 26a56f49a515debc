package leonardo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/oukeidos/vidlens/internal/apperrors"
	"github.com/oukeidos/vidlens/internal/httpclient"
)

// userInfo is the trimmed-down /me response.
type userInfo struct {
	UserDetails []userDetails `json:"user_details"`
}

type userDetails struct {
	User struct {
		Username string `json:"username"`
	} `json:"user"`
	APISubscriptionTokens int `json:"apiSubscriptionTokens"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

type Client struct {
	apiKey  string
	baseURL string
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://cloud.leonardo.ai/api/rest/v1",
	}
}

// Account holds the subset of account details the key check reports.
type Account struct {
	Username string
	Tokens   int
}

// ValidateKey calls the /me endpoint to confirm the key is accepted and
// returns the account it belongs to.
func (c *Client) ValidateKey(ctx context.Context) (*Account, error) {
	url := c.baseURL + "/me"
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	client := httpclient.GetDefaultClient()
	body, resp, err := httpclient.DoAndRead(client, httpReq)
	if err != nil {
		return nil, apperrors.New(
			apperrors.KindTransient,
			"Leonardo request failed due to a temporary network/runtime error.",
			fmt.Errorf("request failed: %w", err),
		)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyLeonardoError(resp.StatusCode, resp.Status, body)
	}

	var result userInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.New(
			apperrors.KindFormat,
			"Leonardo response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}
	if len(result.UserDetails) == 0 {
		return nil, apperrors.New(
			apperrors.KindFormat,
			"Leonardo response did not include account details.",
			nil,
		)
	}

	account := &Account{
		Username: result.UserDetails[0].User.Username,
		Tokens:   result.UserDetails[0].APISubscriptionTokens,
	}
	slog.Debug("Leonardo key check passed", "status", resp.Status, "tokens", account.Tokens)
	return account, nil
}

func classifyLeonardoError(statusCode int, status string, body []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)
	cause := fmt.Errorf("leonardo status=%s message=%s", status, envelope.Error)

	switch statusCode {
	case http.StatusTooManyRequests:
		return apperrors.New(
			apperrors.KindRateLimit,
			"Leonardo API rate limit exceeded (429): please try again later.",
			cause,
		)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("Leonardo API authentication failed (%d): please verify your API key.", statusCode),
			cause,
		)
	default:
		if statusCode >= 500 {
			return apperrors.New(
				apperrors.KindTransient,
				fmt.Sprintf("Leonardo server error (%d): please try again later.", statusCode),
				cause,
			)
		}
		return apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("Leonardo API error (%d): %s", statusCode, status),
			cause,
		)
	}
}
