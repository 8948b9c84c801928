package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
)

const (
	onebotTimeout          = 10 * time.Second
	onebotMaxResponseBytes = 1 << 20 // 1MB
)

// OneBotConfig 是 OneBot v11 HTTP 接口的显式配置，
// 由调用方从环境注入，便于测试时替换
type OneBotConfig struct {
	BaseURL     string
	AccessToken string
	Groups      []string
}

// Segment OneBot 消息段，纯文本消息为 {"type":"text","data":{"text":...}}
type Segment struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

// SendResult 单个群的发送结果，Error 非空即失败
type SendResult struct {
	Status  string `json:"status,omitempty"`
	RetCode int    `json:"retcode,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Summary 一次批量发送的汇总，Error 非空表示整体失败（如无可用配置）
type Summary struct {
	TotalGroups  int                   `json:"total_groups"`
	SuccessCount int                   `json:"success_count"`
	FailedCount  int                   `json:"failed_count"`
	Results      map[string]SendResult `json:"results,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// OneBot 向 OneBot v11 协议端的 /send_group_msg 接口发群消息
type OneBot struct {
	cfg    OneBotConfig
	client *http.Client
}

// NewOneBot 校验配置并构造发送器：BaseURL 缺失是构造错误；
// 群组列表为空只警告，不妨碍构造。
func NewOneBot(cfg OneBotConfig) (*OneBot, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("onebot: http url not configured")
	}
	if len(cfg.Groups) == 0 {
		log.Println("warn: onebot target groups not configured")
	}
	return &OneBot{
		cfg:    cfg,
		client: &http.Client{Timeout: onebotTimeout},
	}, nil
}

// normalizeMessage 把纯文本规整成单个 text 消息段，消息段数组原样透传
func normalizeMessage(message any) any {
	if s, ok := message.(string); ok {
		return []Segment{{Type: "text", Data: map[string]string{"text": s}}}
	}
	return message
}

func (o *OneBot) buildHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "QFNU-Monitor/1.0")
	if o.cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.AccessToken)
	}
}

// SendGroupMessage 向单个群发送一条消息，失败原因收敛进返回值，不抛给调用方
func (o *OneBot) SendGroupMessage(groupID string, message any) SendResult {
	apiURL := strings.TrimRight(o.cfg.BaseURL, "/") + "/send_group_msg"

	payload := map[string]any{
		"group_id": groupID,
		"message":  normalizeMessage(message),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return SendResult{Error: fmt.Sprintf("marshal request: %v", err)}
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return SendResult{Error: fmt.Sprintf("build request: %v", err)}
	}
	o.buildHeaders(req)

	resp, err := o.client.Do(req)
	if err != nil {
		return SendResult{Error: fmt.Sprintf("network request failed: %v", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, onebotMaxResponseBytes))
	if err != nil {
		return SendResult{Error: fmt.Sprintf("read response: %v", err)}
	}

	var apiResp struct {
		Status  string `json:"status"`
		RetCode int    `json:"retcode"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return SendResult{Error: fmt.Sprintf("decode response: %v", err)}
	}

	if apiResp.Status != "ok" {
		msg := apiResp.Message
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %q (http %d)", apiResp.Status, resp.StatusCode)
		}
		log.Printf("onebot send to group %s failed: %s", groupID, msg)
		return SendResult{Status: apiResp.Status, RetCode: apiResp.RetCode, Error: msg}
	}

	log.Printf("onebot send to group %s ok", groupID)
	return SendResult{Status: apiResp.Status, RetCode: apiResp.RetCode}
}

// SendToAll 向配置中的全部群组发送同一条消息
func (o *OneBot) SendToAll(message any) Summary {
	if len(o.cfg.Groups) == 0 {
		return Summary{Error: "no target groups configured"}
	}
	return o.SendToGroups(o.cfg.Groups, message)
}

// SendToGroups 向指定群组列表逐个发送，单群失败不影响其余群
func (o *OneBot) SendToGroups(groupIDs []string, message any) Summary {
	if len(groupIDs) == 0 {
		return Summary{Error: "group list is empty"}
	}

	results := make(map[string]SendResult, len(groupIDs))
	success := 0
	for _, id := range groupIDs {
		res := o.SendGroupMessage(id, message)
		results[id] = res
		if res.Error == "" {
			success++
		}
	}

	summary := Summary{
		TotalGroups:  len(groupIDs),
		SuccessCount: success,
		FailedCount:  len(groupIDs) - success,
		Results:      results,
	}

	if success > 0 {
		log.Printf("onebot batch send done: %d/%d groups ok", success, len(groupIDs))
	} else {
		log.Printf("onebot batch send failed for all %d groups", len(groupIDs))
	}
	return summary
}

// OneBotNotifier 把 OneBot 发送器包装成通知通道。
// 构造永不失败：配置错误推迟到 Push 时转成普通错误返回，
// 与另一条通道的隔离交给监控器处理。
type OneBotNotifier struct {
	Config OneBotConfig
}

func NewOneBotNotifier(cfg OneBotConfig) *OneBotNotifier {
	return &OneBotNotifier{Config: cfg}
}

func (n *OneBotNotifier) Name() string {
	return "onebot"
}

func (n *OneBotNotifier) Push(notices []collector.Notice) error {
	if len(notices) == 0 {
		return nil
	}

	ob, err := NewOneBot(n.Config)
	if err != nil {
		return fmt.Errorf("onebot: %w", err)
	}

	title, content := Digest(notices)
	summary := ob.SendToAll(title + "\n\n" + content)

	if summary.Error != "" {
		return fmt.Errorf("onebot: %s", summary.Error)
	}
	if summary.SuccessCount == 0 {
		return fmt.Errorf("onebot: all %d groups failed", summary.TotalGroups)
	}

	// 部分群失败不算通道失败，记录即可
	if summary.FailedCount > 0 {
		log.Printf("onebot push partial: %d/%d groups ok", summary.SuccessCount, summary.TotalGroups)
	}
	return nil
}
