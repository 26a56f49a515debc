package panel

import (
	"fmt"
	"strings"
	"time"

	"github.com/oukeidos/vidlens/internal/apperrors"
)

// Engine maps a free-text follow-up requirement to a canned insight block by
// keyword matching and appends it to the view's requirement log. It is a
// placeholder for real analysis; the matching priority (viral > competitor >
// pattern > fallback) is part of its contract.
type Engine struct {
	view *ResultView
	now  func() time.Time
}

func NewEngine(view *ResultView) *Engine {
	return &Engine{view: view, now: time.Now}
}

type topicTemplate struct {
	keywords []string
	insight  string
}

// Topic templates in priority order; the first keyword hit wins.
var topicTemplates = []topicTemplate{
	{
		keywords: []string{"viral", "xu hướng"},
		insight: `🔥 PHÂN TÍCH XU HƯỚNG VIRAL:
• Các video đạt engagement trên 5% có khả năng viral cao nhất trong dữ liệu hiện tại.
• Tiêu đề chứa con số và câu hỏi thu hút CTR tốt hơn trung bình 2-3 lần.
• Thời điểm đăng tối ưu: theo dõi 48h đầu sau khi đăng để đánh giá tiềm năng viral.
• Đề xuất: nhân rộng format của video top engagement, giữ hook trong 5 giây đầu.`,
	},
	{
		keywords: []string{"competitor", "so sánh"},
		insight: `⚔️ PHÂN TÍCH SO SÁNH ĐỐI THỦ:
• So sánh tỷ lệ tương tác của kênh với mặt bằng chung cùng chủ đề.
• Xác định khoảng trống nội dung: chủ đề đối thủ chưa khai thác sâu.
• Tần suất đăng của các kênh top thường từ 2-4 video/tuần.
• Đề xuất: phân tích top 20 video của đối thủ để tìm góc tiếp cận khác biệt.`,
	},
	{
		keywords: []string{"pattern", "công thức"},
		insight: `🧩 PHÂN TÍCH CÔNG THỨC NỘI DUNG:
• Cấu trúc lặp lại của video hiệu quả: hook → vấn đề → giải pháp → kêu gọi hành động.
• Độ dài tối ưu nằm trong khoảng giữ được trên 50% thời lượng xem trung bình.
• Tiêu đề theo công thức "con số + lợi ích + yếu tố tò mò" xuất hiện nhiều ở video top.
• Đề xuất: chuẩn hóa template kịch bản từ 3 video hiệu quả nhất của kênh.`,
	},
}

const fallbackInsight = `📌 PHÂN TÍCH THEO YÊU CẦU: %q
• Yêu cầu chưa khớp với các nhóm phân tích chuyên sâu có sẵn (viral, đối thủ, công thức).
• Hệ thống đã ghi nhận yêu cầu và áp dụng khung phân tích tổng quát trên dữ liệu hiện tại.
• Đề xuất: diễn đạt lại yêu cầu với từ khóa cụ thể hơn để nhận phân tích chuyên sâu.`

// Analyze resolves the requirement to an insight block, appends it with a
// timestamp to the requirement log, and returns the full re-rendered report.
func (e *Engine) Analyze(requirement string) (string, error) {
	trimmed := strings.TrimSpace(requirement)
	if trimmed == "" {
		return "", apperrors.EmptyInput("Please enter an analysis requirement first.")
	}
	if !e.view.HasPayload() {
		return "", apperrors.NoPayload()
	}

	insight := resolveInsight(trimmed)
	report := e.view.appendRequirement(AdditionalRequirement{
		Requirement: trimmed,
		Timestamp:   e.now().Format(time.RFC3339),
		Analysis:    insight,
	})
	return report, nil
}

func resolveInsight(requirement string) string {
	lower := strings.ToLower(requirement)
	for _, tmpl := range topicTemplates {
		for _, keyword := range tmpl.keywords {
			if strings.Contains(lower, keyword) {
				return tmpl.insight
			}
		}
	}
	return fmt.Sprintf(fallbackInsight, requirement)
}
