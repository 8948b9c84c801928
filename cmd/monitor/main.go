package main

import (
	"log"

	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/config"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/monitor"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/notify"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/store"
)

// 仅执行一轮监控的命令行入口：交给外部调度器（crontab、systemd timer）周期调用
func main() {
	cfg := config.Load()

	st, err := store.New(cfg.DataDir, cfg.MaxNotices, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	m := monitor.New(
		collector.NewJWCFetcher(cfg.NoticeURL, cfg.NoticeBaseURL),
		st,
		notify.NewFeishu(cfg.FeishuWebhookURL),
		notify.NewOneBotNotifier(notify.OneBotConfig{
			BaseURL:     cfg.OneBotURL,
			AccessToken: cfg.OneBotAccessToken,
			Groups:      cfg.OneBotGroups,
		}),
	)

	m.Run()
}
