package report

import (
	"strings"
	"testing"
)

func TestFormat_EmptyPayload(t *testing.T) {
	if got := Format(nil); got != "Không có dữ liệu để phân tích" {
		t.Errorf("unexpected empty-payload text: %q", got)
	}
	if got := Format(map[string]any{}); got != "Không có dữ liệu để phân tích" {
		t.Errorf("unexpected empty-payload text: %q", got)
	}
}

func TestFormat_Overview(t *testing.T) {
	data := map[string]any{
		"summary": map[string]any{
			"channels_analyzed":   1,
			"total_videos":        12,
			"total_views":         1234567,
			"total_likes":         8900,
			"total_comments":      456,
			"avg_engagement_rate": 3.21,
		},
		"viral_score": 82.5,
	}

	out := Format(data)
	for _, want := range []string{
		"Số kênh phân tích: 1",
		"Tổng số video: 12",
		"Tổng lượt xem: 1,234,567",
		"Tỷ lệ tương tác trung bình: 3.21%",
		"Viral score: 82.5/100",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestFormat_TopVideosSortedByViews(t *testing.T) {
	data := map[string]any{
		"videos": []any{
			map[string]any{"title": "Small", "view_count": 100},
			map[string]any{"title": "Big", "view_count": 90000, "like_count": 5000, "comment_count": 500,
				"published_at": "2026-04-02T08:00:00Z", "duration": "PT12M5S"},
		},
	}

	out := Format(data)
	big := strings.Index(out, "TOP 1: Big")
	small := strings.Index(out, "TOP 2: Small")
	if big == -1 || small == -1 || big > small {
		t.Fatalf("videos not sorted by views:\n%s", out)
	}
	if !strings.Contains(out, "Độ dài: 12:05") {
		t.Errorf("expected formatted duration in:\n%s", out)
	}
	if !strings.Contains(out, "Ngày đăng: 2026-04-02") {
		t.Errorf("expected publish date in:\n%s", out)
	}
	// (5000+500)/90000 = 6.11% engagement
	if !strings.Contains(out, "Performance xuất sắc") {
		t.Errorf("expected top-tier verdict in:\n%s", out)
	}
}

func TestFormat_AdditionalRequirementsTrailingSection(t *testing.T) {
	data := map[string]any{
		"summary": map[string]any{"total_videos": 1},
		"additional_requirements": []any{
			map[string]any{"requirement": "so sánh competitor", "timestamp": "2026-05-01T10:00:00Z", "analysis": "báo cáo A"},
			map[string]any{"requirement": "xu hướng viral", "timestamp": "2026-05-01T10:05:00Z", "analysis": "báo cáo B"},
		},
	}

	out := Format(data)
	if !strings.Contains(out, "PHÂN TÍCH BỔ SUNG THEO YÊU CẦU") {
		t.Fatalf("missing additional requirements section:\n%s", out)
	}
	first := strings.Index(out, "Yêu cầu 1: so sánh competitor")
	second := strings.Index(out, "Yêu cầu 2: xu hướng viral")
	if first == -1 || second == -1 || first > second {
		t.Errorf("requirements not rendered in order:\n%s", out)
	}

	// Omitting the field omits the section entirely.
	out = Format(map[string]any{"summary": map[string]any{}})
	if strings.Contains(out, "PHÂN TÍCH BỔ SUNG") {
		t.Errorf("unexpected additional requirements section:\n%s", out)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PT4M13S", "4:13"},
		{"PT45S", "0:45"},
		{"PT1H2M3S", "1:02:03"},
		{"PT3H", "3:00:00"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitleViralPotential(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"plain video", "Cần tối ưu title để viral"},
		{"5 secrets you never knew?", "Tiềm năng viral rất cao ⭐⭐⭐⭐"},
		{"Why do you worry?", "Tiềm năng viral trung bình ⭐⭐"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := titleViralPotential(tt.title); got != tt.want {
				t.Errorf("titleViralPotential(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestTruncateTitle(t *testing.T) {
	short := "ngắn gọn"
	if got := truncateTitle(short); got != short {
		t.Errorf("short title altered: %q", got)
	}

	long := strings.Repeat("mộ", 100)
	got := truncateTitle(long)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
	if len([]rune(got)) >= len([]rune(long)) {
		t.Errorf("expected shorter output")
	}
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, tt := range tests {
		if got := groupDigits(tt.in); got != tt.want {
			t.Errorf("groupDigits(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
