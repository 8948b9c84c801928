package notify

import (
	"fmt"
	"strings"

	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
)

// Notifier 抽象一个通知通道。Push 把一批新公告作为一条消息推送出去，
// 返回错误只代表该通道失败，调用方负责隔离各通道。
type Notifier interface {
	Name() string
	Push(notices []collector.Notice) error
}

// Digest 把一批新公告格式化为标题 + 正文。
// 正文逐条编号，【i】标题 / 📅 日期 / 🔗 链接，条目间空一行，末条不留尾随空行。
func Digest(notices []collector.Notice) (title, content string) {
	title = fmt.Sprintf("📢 曲阜师范大学教务处有%d条新公告", len(notices))

	var b strings.Builder
	for i, n := range notices {
		fmt.Fprintf(&b, "【%d】%s\n", i+1, n.Title)
		fmt.Fprintf(&b, "📅 %s\n", n.Date)
		fmt.Fprintf(&b, "🔗 %s", n.Link)
		if i != len(notices)-1 {
			b.WriteString("\n\n")
		}
	}
	return title, b.String()
}
