package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/oukeidos/vidlens/internal/apperrors"
)

// Client wraps the YouTube Data API v3 for key checks and channel analysis.
type Client struct {
	service *youtube.Service
}

// NewClient creates an API-key authenticated client. Extra options are
// appended so tests can point the service at a local server.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service}, nil
}

// ChannelInfo is the channel summary the analysis pipeline starts from.
type ChannelInfo struct {
	ID              string
	Title           string
	Description     string
	Subscribers     uint64
	VideoCount      uint64
	ViewCount       uint64
	UploadsPlaylist string
}

// VideoInfo is the per-video detail used for reports.
type VideoInfo struct {
	ID              string
	Title           string
	Description     string
	PublishedAt     time.Time
	Duration        string
	DurationSeconds int
	ViewCount       uint64
	LikeCount       uint64
	CommentCount    uint64
	URL             string
}

// ValidateKey performs the cheapest possible listing to confirm the key is
// accepted by the API.
func (c *Client) ValidateKey(ctx context.Context) error {
	call := c.service.Videos.List([]string{"id"}).
		Chart("mostPopular").
		MaxResults(1).
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return classifyAPIError("key check", err)
	}
	return nil
}

var (
	channelURLPattern = regexp.MustCompile(`youtube\.com/channel/(UC[\w-]+)`)
	handleURLPattern  = regexp.MustCompile(`youtube\.com/(@[\w.-]+)`)
	userURLPattern    = regexp.MustCompile(`youtube\.com/user/([\w-]+)`)
	rawChannelID      = regexp.MustCompile(`^UC[\w-]{10,}$`)
)

// ResolveChannel accepts a channel URL, @handle, legacy username URL, or raw
// channel ID and returns the channel summary.
func (c *Client) ResolveChannel(ctx context.Context, input string) (*ChannelInfo, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, apperrors.EmptyInput("Please enter a channel URL or ID first.")
	}

	call := c.service.Channels.List([]string{"snippet", "statistics", "contentDetails"}).
		MaxResults(1).
		Context(ctx)

	switch {
	case channelURLPattern.MatchString(input):
		call = call.Id(channelURLPattern.FindStringSubmatch(input)[1])
	case rawChannelID.MatchString(input):
		call = call.Id(input)
	case handleURLPattern.MatchString(input):
		call = call.ForHandle(handleURLPattern.FindStringSubmatch(input)[1])
	case strings.HasPrefix(input, "@"):
		call = call.ForHandle(input)
	case userURLPattern.MatchString(input):
		call = call.ForUsername(userURLPattern.FindStringSubmatch(input)[1])
	default:
		return nil, apperrors.New(
			apperrors.KindFormat,
			"Unrecognized channel reference. Use a channel URL, @handle, or channel ID.",
			fmt.Errorf("cannot parse channel reference %q", input),
		)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, classifyAPIError("channel lookup", err)
	}
	if len(resp.Items) == 0 {
		return nil, apperrors.New(
			apperrors.KindFormat,
			"Channel not found. Please check the URL or handle.",
			fmt.Errorf("no channel matched %q", input),
		)
	}

	ch := resp.Items[0]
	info := &ChannelInfo{
		ID:          ch.Id,
		Title:       ch.Snippet.Title,
		Description: ch.Snippet.Description,
	}
	if ch.Statistics != nil {
		info.Subscribers = ch.Statistics.SubscriberCount
		info.VideoCount = ch.Statistics.VideoCount
		info.ViewCount = ch.Statistics.ViewCount
	}
	if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
		info.UploadsPlaylist = ch.ContentDetails.RelatedPlaylists.Uploads
	}
	return info, nil
}

// RecentUploads returns up to maxResults most recent video IDs from the
// channel's uploads playlist.
func (c *Client) RecentUploads(ctx context.Context, uploadsPlaylist string, maxResults int64) ([]string, error) {
	if uploadsPlaylist == "" {
		return nil, fmt.Errorf("uploads playlist is empty")
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 50 {
		maxResults = 50
	}

	call := c.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(uploadsPlaylist).
		MaxResults(maxResults).
		Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return nil, classifyAPIError("uploads listing", err)
	}

	var ids []string
	for _, item := range resp.Items {
		if item.Snippet != nil && item.Snippet.ResourceId != nil {
			ids = append(ids, item.Snippet.ResourceId.VideoId)
		}
	}
	return ids, nil
}

// VideoDetails fetches snippet, duration, and statistics for the given
// video IDs in batches of 50.
func (c *Client) VideoDetails(ctx context.Context, ids []string) ([]VideoInfo, error) {
	var videos []VideoInfo
	const batchSize = 50

	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		call := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
			Id(strings.Join(ids[i:end], ",")).
			Context(ctx)
		resp, err := call.Do()
		if err != nil {
			return nil, classifyAPIError("video details", err)
		}

		for _, item := range resp.Items {
			video := VideoInfo{
				ID:  item.Id,
				URL: fmt.Sprintf("https://www.youtube.com/watch?v=%s", item.Id),
			}
			if item.Snippet != nil {
				video.Title = item.Snippet.Title
				video.Description = item.Snippet.Description
				if published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
					video.PublishedAt = published
				}
			}
			if item.ContentDetails != nil {
				video.Duration = item.ContentDetails.Duration
				video.DurationSeconds = parseDurationSeconds(item.ContentDetails.Duration)
			}
			if item.Statistics != nil {
				video.ViewCount = item.Statistics.ViewCount
				video.LikeCount = item.Statistics.LikeCount
				video.CommentCount = item.Statistics.CommentCount
			}
			videos = append(videos, video)
		}
	}
	return videos, nil
}

var durationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// parseDurationSeconds parses ISO 8601 durations like "PT1M30S" or "PT2H15M30S".
func parseDurationSeconds(duration string) int {
	if duration == "" {
		return 0
	}

	matches := durationPattern.FindStringSubmatch(duration)
	if len(matches) == 0 {
		return 0
	}

	var totalSeconds int
	if matches[1] != "" {
		if hours, err := strconv.Atoi(matches[1]); err == nil {
			totalSeconds += hours * 3600
		}
	}
	if matches[2] != "" {
		if minutes, err := strconv.Atoi(matches[2]); err == nil {
			totalSeconds += minutes * 60
		}
	}
	if matches[3] != "" {
		if seconds, err := strconv.Atoi(matches[3]); err == nil {
			totalSeconds += seconds
		}
	}
	return totalSeconds
}

func classifyAPIError(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return apperrors.New(
			apperrors.KindTransient,
			fmt.Sprintf("YouTube %s failed due to a temporary network/runtime error.", op),
			err,
		)
	}

	switch gerr.Code {
	case http.StatusBadRequest, http.StatusUnauthorized:
		return apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("YouTube API rejected the key during %s (%d): please verify your API key.", op, gerr.Code),
			err,
		)
	case http.StatusForbidden:
		if isQuotaExceeded(gerr) {
			return apperrors.New(
				apperrors.KindRateLimit,
				"YouTube API quota exceeded: please try again after the daily quota resets.",
				err,
			)
		}
		return apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("YouTube API access denied during %s (403): the key may lack Data API access.", op),
			err,
		)
	default:
		if gerr.Code >= 500 {
			return apperrors.New(
				apperrors.KindTransient,
				fmt.Sprintf("YouTube server error (%d): please try again later.", gerr.Code),
				err,
			)
		}
		return apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("YouTube API error during %s (%d).", op, gerr.Code),
			err,
		)
	}
}

func isQuotaExceeded(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		if item.Reason == "quotaExceeded" || item.Reason == "dailyLimitExceeded" {
			return true
		}
	}
	return strings.Contains(strings.ToLower(gerr.Message), "quota")
}
