// Package collector gathers channel and video metrics from the YouTube Data
// API and produces the analysis payload consumed by the result view.
package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/oukeidos/vidlens/internal/logger"
	"github.com/oukeidos/vidlens/internal/panel"
	"github.com/oukeidos/vidlens/internal/youtube"
)

// DefaultMaxVideos bounds how many recent uploads one run examines.
const DefaultMaxVideos = 20

// API is the slice of the YouTube client a collection run needs.
type API interface {
	ResolveChannel(ctx context.Context, input string) (*youtube.ChannelInfo, error)
	RecentUploads(ctx context.Context, uploadsPlaylist string, maxResults int64) ([]string, error)
	VideoDetails(ctx context.Context, ids []string) ([]youtube.VideoInfo, error)
}

// Collector runs one channel analysis at a time and reports progress through
// the injected callback.
type Collector struct {
	api        API
	maxVideos  int64
	onProgress func(panel.ProgressEvent)
}

// Option configures a Collector.
type Option func(*Collector)

// WithMaxVideos overrides how many uploads are fetched per run.
func WithMaxVideos(n int64) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxVideos = n
		}
	}
}

// WithProgress installs the progress callback. Events arrive on the
// collector's goroutine; the GUI marshals them onto the event loop.
func WithProgress(fn func(panel.ProgressEvent)) Option {
	return func(c *Collector) { c.onProgress = fn }
}

func New(api API, opts ...Option) *Collector {
	c := &Collector{
		api:        api,
		maxVideos:  DefaultMaxVideos,
		onProgress: func(panel.ProgressEvent) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run collects the channel's recent uploads and builds the analysis payload.
// The payload is a plain mapping so the view and formatter can stay agnostic
// about where it came from.
func (c *Collector) Run(ctx context.Context, channelRef string) (map[string]any, error) {
	c.onProgress(panel.ProgressEvent{
		Status:  "starting",
		Message: "Đang tìm kênh...",
		Percent: 5,
	})

	channel, err := c.api.ResolveChannel(ctx, channelRef)
	if err != nil {
		return nil, err
	}
	logger.Info("Channel resolved", "channel", channel.Title, "id", channel.ID)

	c.onProgress(panel.ProgressEvent{
		Status:  panel.StatusCollecting,
		Message: fmt.Sprintf("Đang thu thập video của %s...", channel.Title),
		Percent: 20,
	})

	ids, err := c.api.RecentUploads(ctx, channel.UploadsPlaylist, c.maxVideos)
	if err != nil {
		return nil, err
	}

	videos, err := c.api.VideoDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	videoMaps := make([]map[string]any, 0, len(videos))
	for i, video := range videos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.onProgress(panel.ProgressEvent{
			Status:      panel.StatusCollecting,
			Message:     fmt.Sprintf("Đang phân tích video %d/%d", i+1, len(videos)),
			Percent:     20 + 60*float64(i+1)/float64(len(videos)),
			CurrentItem: video.Title,
		})
		videoMaps = append(videoMaps, videoToMap(video))
	}

	c.onProgress(panel.ProgressEvent{
		Status:  "scoring",
		Message: "Đang tính điểm viral...",
		Percent: 90,
	})

	payload := map[string]any{
		"channel": map[string]any{
			"id":          channel.ID,
			"title":       channel.Title,
			"subscribers": channel.Subscribers,
			"video_count": channel.VideoCount,
			"view_count":  channel.ViewCount,
		},
		"videos":          videoMaps,
		"summary":         buildSummary(videos),
		"viral_score":     viralScore(videos),
		"collection_date": time.Now().Format(time.RFC3339),
	}
	return payload, nil
}

func videoToMap(video youtube.VideoInfo) map[string]any {
	m := map[string]any{
		"video_id":      video.ID,
		"title":         video.Title,
		"duration":      video.Duration,
		"view_count":    video.ViewCount,
		"like_count":    video.LikeCount,
		"comment_count": video.CommentCount,
		"url":           video.URL,
	}
	if !video.PublishedAt.IsZero() {
		m["published_at"] = video.PublishedAt.Format(time.RFC3339)
	}
	return m
}

func buildSummary(videos []youtube.VideoInfo) map[string]any {
	summary := map[string]any{
		"channels_analyzed":   1,
		"total_videos":        len(videos),
		"total_views":         uint64(0),
		"total_likes":         uint64(0),
		"total_comments":      uint64(0),
		"avg_engagement_rate": 0.0,
	}

	var views, likes, comments uint64
	var totalEngagement float64
	var engaged int
	var dates []string

	for _, video := range videos {
		views += video.ViewCount
		likes += video.LikeCount
		comments += video.CommentCount
		if video.ViewCount > 0 {
			totalEngagement += float64(video.LikeCount+video.CommentCount) / float64(video.ViewCount) * 100
			engaged++
		}
		if !video.PublishedAt.IsZero() {
			dates = append(dates, video.PublishedAt.Format("2006-01-02"))
		}
	}

	summary["total_views"] = views
	summary["total_likes"] = likes
	summary["total_comments"] = comments
	if engaged > 0 {
		summary["avg_engagement_rate"] = totalEngagement / float64(engaged)
	}
	if len(dates) > 0 {
		sort.Strings(dates)
		summary["date_range"] = map[string]any{
			"start": dates[0],
			"end":   dates[len(dates)-1],
		}
	}
	return summary
}

// viralScore is a naive potential score: average engagement scaled so 5%
// engagement maps to 100, capped there.
func viralScore(videos []youtube.VideoInfo) float64 {
	var totalEngagement float64
	var engaged int
	for _, video := range videos {
		if video.ViewCount > 0 {
			totalEngagement += float64(video.LikeCount+video.CommentCount) / float64(video.ViewCount) * 100
			engaged++
		}
	}
	if engaged == 0 {
		return 0
	}
	score := totalEngagement / float64(engaged) * 20
	if score > 100 {
		score = 100
	}
	return score
}
