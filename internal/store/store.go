package store

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
	"github.com/redis/go-redis/v9"
)

const (
	activeFileName  = "jwc_gg_notices.json"
	archiveDirName  = "archive"
	archiveFileName = "jwc_gg_notices_archive.json"

	cacheKeyActive  = "notices:active"
	cacheKeyArchive = "notices:archive"
	// 缓存只为 API 读路径减压，短 TTL 自然过期即可，不做主动失效
	cacheTTL = time.Minute
)

// Store 负责公告记录的落盘：活跃文件保留最近 maxActive 条，
// 被挤出窗口的旧记录追加进归档文件，永不丢弃。
type Store struct {
	activeFile  string
	archiveFile string
	maxActive   int

	// 守护同进程内 API 读与监控写的并发访问；跨进程并发不受支持
	mu sync.Mutex

	Redis *redis.Client
}

// New 创建存储并确保数据目录与归档目录存在。
// redisAddr 为空表示不启用缓存。
func New(dataDir string, maxActive int, redisAddr string) (*Store, error) {
	archiveDir := filepath.Join(dataDir, archiveDirName)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return nil, err
	}

	s := &Store{
		activeFile:  filepath.Join(dataDir, activeFileName),
		archiveFile: filepath.Join(archiveDir, archiveFileName),
		maxActive:   maxActive,
	}

	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("warn: redis ping failed: %v", err)
		}
		s.Redis = rdb
	}

	return s, nil
}

// LoadActive 读取活跃公告记录；文件缺失、为空或损坏时返回空列表，
// 读失败永远不向调用方传播（宁可丢数据也不让本轮监控失败）。
func (s *Store) LoadActive() []collector.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFile(s.activeFile)
}

// LoadArchive 读取归档记录，契约与 LoadActive 相同
func (s *Store) LoadArchive() []collector.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFile(s.archiveFile)
}

// SaveActive 以覆盖语义保存活跃记录：只保留最后 maxActive 条，
// 超出的最旧前缀交给归档。
func (s *Store) SaveActive(notices []collector.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveActiveLocked(notices)
}

func (s *Store) saveActiveLocked(notices []collector.Notice) error {
	latest := notices
	if len(notices) > s.maxActive {
		latest = notices[len(notices)-s.maxActive:]
	}
	if err := s.writeFile(s.activeFile, latest); err != nil {
		return err
	}

	if len(notices) > s.maxActive {
		return s.archiveLocked(notices[:len(notices)-s.maxActive])
	}
	return nil
}

// Archive 把记录追加进归档文件：读出全量、拼接、整体重写。
// 空输入是显式的 no-op，不触碰文件。
func (s *Store) Archive(notices []collector.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archiveLocked(notices)
}

func (s *Store) archiveLocked(notices []collector.Notice) error {
	if len(notices) == 0 {
		return nil
	}

	all := append(s.loadFile(s.archiveFile), notices...)
	if err := s.writeFile(s.archiveFile, all); err != nil {
		return err
	}

	log.Printf("archived %d notices to %s", len(notices), s.archiveFile)
	return nil
}

// AppendAndSave 把新公告接在现有活跃记录之后再保存，
// 这是新公告进入有界窗口并触发溢出归档的唯一入口。
func (s *Store) AppendAndSave(newNotices []collector.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append(s.loadFile(s.activeFile), newNotices...)
	return s.saveActiveLocked(all)
}

func (s *Store) loadFile(path string) []collector.Notice {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return []collector.Notice{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("read %s failed: %v", path, err)
		return []collector.Notice{}
	}

	var notices []collector.Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		log.Printf("decode %s failed: %v", path, err)
		return []collector.Notice{}
	}
	return notices
}

func (s *Store) writeFile(path string, notices []collector.Notice) error {
	data, err := json.MarshalIndent(notices, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
