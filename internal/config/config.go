package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppPort string

	// 公告页面地址与相对链接补全用的站点根地址
	NoticeURL     string
	NoticeBaseURL string

	// 数据目录：活跃记录文件与归档文件都放在这里
	DataDir    string
	MaxNotices int

	CronSpec  string
	RedisAddr string

	FeishuWebhookURL string

	OneBotURL         string
	OneBotAccessToken string
	OneBotGroups      []string
}

func Load() *Config {
	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "9000"),
		NoticeURL:     getEnv("NOTICE_URL", "https://jwc.qfnu.edu.cn/gg_j_.htm"),
		NoticeBaseURL: getEnv("NOTICE_BASE_URL", "https://jwc.qfnu.edu.cn/"),
		DataDir:       getEnv("DATA_DIR", "data"),
		MaxNotices:    getEnvInt("MAX_NOTICES", 30),
		CronSpec:      getEnv("CRON_SPEC", "*/10 * * * *"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),

		FeishuWebhookURL: getEnv("FEISHU_WEBHOOK_URL", ""),

		OneBotURL:         getEnv("ONEBOT_HTTP_URL", ""),
		OneBotAccessToken: getEnv("ONEBOT_ACCESS_TOKEN", ""),
		OneBotGroups:      splitList(getEnv("ONEBOT_TARGET_GROUPS", "")),
	}

	log.Printf("config loaded: port=%s cron=%s max_notices=%d groups=%d",
		cfg.AppPort, cfg.CronSpec, cfg.MaxNotices, len(cfg.OneBotGroups))
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, fallback to %d", key, v, def)
		return def
	}
	return n
}

// splitList 解析逗号分隔的列表，忽略空项与首尾空白
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
