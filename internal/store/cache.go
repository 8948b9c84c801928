package store

import (
	"context"
	"encoding/json"

	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
)

// CachedActive 给 API 读路径用的活跃记录视图，命中 Redis 则不碰文件。
// 文件永远是唯一的数据源，缓存只靠短 TTL 过期，最多滞后一分钟。
func (s *Store) CachedActive() []collector.Notice {
	return s.cachedList(cacheKeyActive, s.LoadActive)
}

// CachedArchive 同上，归档记录的缓存视图
func (s *Store) CachedArchive() []collector.Notice {
	return s.cachedList(cacheKeyArchive, s.LoadArchive)
}

func (s *Store) cachedList(key string, load func() []collector.Notice) []collector.Notice {
	ctx := context.Background()

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
			var cached []collector.Notice
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached
			}
		}
	}

	list := load()

	// 回写缓存；失败无所谓，下次直接读文件
	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, key, bs, cacheTTL).Err()
		}
	}

	return list
}
