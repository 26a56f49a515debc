// Package report renders an analysis payload into the Vietnamese text report
// shown in the Analysis tab and written by the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
)

const divider = "================================================================================"

// maxTitleGraphemes bounds video titles in the report so one long title does
// not wrap the whole table.
const maxTitleGraphemes = 70

// Format renders the full report. The payload is an opaque mapping; only
// summary, videos, and additional_requirements are interpreted, everything
// else passes through untouched.
func Format(data map[string]any) string {
	if len(data) == 0 {
		return "Không có dữ liệu để phân tích"
	}

	var b strings.Builder
	summary := asMap(data["summary"])

	fmt.Fprintf(&b, "\n📊 KẾT QUẢ PHÂN TÍCH YOUTUBE CHI TIẾT\n%s\n\n", divider)
	b.WriteString("📈 TỔNG QUAN DỮ LIỆU:\n")
	fmt.Fprintf(&b, "📺 Số kênh phân tích: %d\n", asInt(summary["channels_analyzed"]))
	fmt.Fprintf(&b, "🎬 Tổng số video: %d\n", asInt(summary["total_videos"]))
	fmt.Fprintf(&b, "👁️ Tổng lượt xem: %s\n", groupDigits(asInt(summary["total_views"])))
	fmt.Fprintf(&b, "👍 Tổng lượt thích: %s\n", groupDigits(asInt(summary["total_likes"])))
	fmt.Fprintf(&b, "💬 Tổng số bình luận: %s\n", groupDigits(asInt(summary["total_comments"])))
	fmt.Fprintf(&b, "📈 Tỷ lệ tương tác trung bình: %.2f%%\n\n", asFloat(summary["avg_engagement_rate"]))

	if score, ok := data["viral_score"]; ok {
		fmt.Fprintf(&b, "🔥 Viral score: %.1f/100\n\n", asFloat(score))
	}

	videos := asMapSlice(data["videos"])
	b.WriteString(formatTitleThemes(videos))
	b.WriteString(formatTopVideos(videos))
	b.WriteString(formatAdditionalRequirements(asMapSlice(data["additional_requirements"])))

	return b.String()
}

func formatTitleThemes(videos []map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n🎯 1. NỘI DUNG CÁC VIDEO ĐỀ CẬP ĐẾN CHỦ ĐỀ GÌ?\n%s\n\n", divider)

	if len(videos) == 0 {
		b.WriteString("❌ Không có dữ liệu video để phân tích chủ đề.\n")
		return b.String()
	}

	titles := make([]string, 0, len(videos))
	for _, v := range videos {
		titles = append(titles, asString(v["title"]))
	}
	counts := titleThemes(titles)
	if len(counts) == 0 {
		b.WriteString("❌ Không nhận diện được chủ đề từ tiêu đề video.\n")
		return b.String()
	}

	type themeCount struct {
		theme string
		count int
	}
	sorted := make([]themeCount, 0, len(counts))
	for theme, count := range counts {
		sorted = append(sorted, themeCount{theme, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].theme < sorted[j].theme
	})

	b.WriteString("📋 PHÂN TÍCH QUA TIÊU ĐỀ VIDEO:\n")
	for _, tc := range sorted {
		fmt.Fprintf(&b, "  • %s: %d video\n", tc.theme, tc.count)
	}
	return b.String()
}

var themeKeywords = []struct {
	theme    string
	keywords []string
}{
	{"Tâm lý học", []string{"psychology", "mind", "brain", "mental"}},
	{"Mối quan hệ", []string{"relationship", "love", "dating", "couple"}},
	{"Cảm xúc", []string{"emotion", "feel", "happy", "sad"}},
	{"Hành vi", []string{"behavior", "action", "habit"}},
	{"Phát triển", []string{"growth", "improve", "success"}},
}

func titleThemes(titles []string) map[string]int {
	all := strings.ToLower(strings.Join(titles, " "))
	counts := make(map[string]int)
	for _, tk := range themeKeywords {
		total := 0
		for _, kw := range tk.keywords {
			total += strings.Count(all, kw)
		}
		if total > 0 {
			counts[tk.theme] = total
		}
	}
	return counts
}

func formatTopVideos(videos []map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n🏆 2. CHI TIẾT VIDEO TOP PERFORMANCE:\n%s\n\n", divider)

	if len(videos) == 0 {
		b.WriteString("❌ Không có dữ liệu video để phân tích.\n")
		return b.String()
	}

	sorted := make([]map[string]any, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return asInt(sorted[i]["view_count"]) > asInt(sorted[j]["view_count"])
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}

	for i, video := range sorted {
		title := asString(video["title"])
		if title == "" {
			title = "Không có tiêu đề"
		}
		views := asInt(video["view_count"])
		likes := asInt(video["like_count"])
		comments := asInt(video["comment_count"])

		var engagement float64
		if views > 0 {
			engagement = float64(likes+comments) / float64(views) * 100
		}

		fmt.Fprintf(&b, "🎬 TOP %d: %s\n", i+1, truncateTitle(title))
		fmt.Fprintf(&b, "   📊 %s views | %s likes | %s comments\n",
			groupDigits(views), groupDigits(likes), groupDigits(comments))
		fmt.Fprintf(&b, "   📈 Engagement: %.2f%%", engagement)
		if published := asString(video["published_at"]); len(published) >= 10 {
			fmt.Fprintf(&b, " | Ngày đăng: %s", published[:10])
		}
		if duration := asString(video["duration"]); duration != "" {
			fmt.Fprintf(&b, " | Độ dài: %s", FormatDuration(duration))
		}
		fmt.Fprintf(&b, "\n   🎯 Phân tích tiêu đề: %s\n", titleViralPotential(title))
		fmt.Fprintf(&b, "   %s\n\n", performanceVerdict(engagement))
	}
	return b.String()
}

func performanceVerdict(engagement float64) string {
	switch {
	case engagement > 5:
		return "🔥 Performance xuất sắc - Top 1%"
	case engagement > 2:
		return "⭐ Performance tốt - Trên trung bình"
	case engagement > 1:
		return "👍 Performance trung bình"
	default:
		return "📊 Cần cải thiện engagement"
	}
}

func titleViralPotential(title string) string {
	lower := strings.ToLower(title)
	score := 0
	if strings.ContainsAny(title, "0123456789") {
		score++
	}
	if strings.Contains(title, "?") {
		score++
	}
	if containsAny(lower, "shocking", "amazing", "incredible", "secret") {
		score++
	}
	if containsAny(lower, "you", "your") {
		score++
	}
	if containsAny(lower, "now", "immediately", "today") {
		score++
	}
	if containsAny(lower, "secret", "hidden", "never", "nobody") {
		score++
	}

	switch {
	case score >= 4:
		return "Tiềm năng viral rất cao ⭐⭐⭐⭐"
	case score >= 3:
		return "Tiềm năng viral cao ⭐⭐⭐"
	case score >= 2:
		return "Tiềm năng viral trung bình ⭐⭐"
	case score >= 1:
		return "Tiềm năng viral thấp ⭐"
	default:
		return "Cần tối ưu title để viral"
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func formatAdditionalRequirements(reqs []map[string]any) string {
	if len(reqs) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n📋 PHÂN TÍCH BỔ SUNG THEO YÊU CẦU:\n%s\n\n", divider)
	for i, req := range reqs {
		fmt.Fprintf(&b, "🔍 Yêu cầu %d: %s\n", i+1, asString(req["requirement"]))
		fmt.Fprintf(&b, "⏰ Thời gian: %s\n", asString(req["timestamp"]))
		fmt.Fprintf(&b, "📊 Kết quả:\n%s\n\n", asString(req["analysis"]))
	}
	return b.String()
}

var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// FormatDuration converts an ISO 8601 duration ("PT4M13S") into a readable
// clock form ("4:13"). Unparseable input is returned as-is.
func FormatDuration(duration string) string {
	matches := durationPattern.FindStringSubmatch(duration)
	if matches == nil {
		return duration
	}

	hours := atoiOrZero(matches[1])
	minutes := atoiOrZero(matches[2])
	seconds := atoiOrZero(matches[3])

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// truncateTitle shortens by grapheme cluster so emoji and combining marks in
// titles are never split mid-character.
func truncateTitle(title string) string {
	if uniseg.GraphemeClusterCount(title) <= maxTitleGraphemes {
		return title
	}
	g := uniseg.NewGraphemes(title)
	var b strings.Builder
	count := 0
	for g.Next() && count < maxTitleGraphemes {
		b.WriteString(g.Str())
		count++
	}
	return b.String() + "…"
}

// groupDigits formats n with thousands separators ("1,234,567").
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if negative {
		out = "-" + out
	}
	return out
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asMapSlice(v any) []map[string]any {
	switch vv := v.(type) {
	case []map[string]any:
		return vv
	case []any:
		out := make([]map[string]any, 0, len(vv))
		for _, item := range vv {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}
