package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
)

// Feishu 通过群机器人 webhook 推送文本消息。
// webhook 地址未配置时该通道处于禁用态，Push 直接成功返回。
type Feishu struct {
	WebhookURL string
	client     *http.Client
}

func NewFeishu(webhookURL string) *Feishu {
	if webhookURL == "" {
		log.Println("warn: feishu webhook url not configured, channel disabled")
	}
	return &Feishu{
		WebhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *Feishu) Name() string {
	return "feishu"
}

func (f *Feishu) Push(notices []collector.Notice) error {
	if f.WebhookURL == "" {
		return nil
	}
	if len(notices) == 0 {
		return nil
	}

	title, content := Digest(notices)
	payload := map[string]any{
		"msg_type": "text",
		"content": map[string]string{
			"text": title + "\n" + content,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("feishu: marshal payload: %w", err)
	}

	resp, err := f.client.Post(f.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("feishu: send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("feishu: unexpected status %d", resp.StatusCode)
	}

	log.Printf("feishu push ok: %d notices", len(notices))
	return nil
}
