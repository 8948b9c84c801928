package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/api"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/config"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/monitor"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/notify"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/scheduler"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/store"
)

// 常驻进程入口：内置 cron 调度周期监控，同时提供只读查询接口
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

	s, err := scheduler.New(cfg.CronSpec, m.Run)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()
	defer s.Stop()

	r := gin.Default()
	api.NewServer(st).RegisterRoutes(r)

	log.Printf("listening on :%s", cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		log.Fatalf("run api server failed: %v", err)
	}
}
