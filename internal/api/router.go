package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/store"
)

// Server 只读 API：把盘上的公告记录暴露出来，方便核对监控状态
type Server struct {
	store *store.Store
}

func NewServer(st *store.Store) *Server {
	return &Server{store: st}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/notices", s.listNotices)
		v1.GET("/archive", s.listArchive)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listNotices(c *gin.Context) {
	s.respondList(c, s.store.CachedActive())
}

func (s *Server) listArchive(c *gin.Context) {
	s.respondList(c, s.store.CachedArchive())
}

func (s *Server) respondList(c *gin.Context, list []collector.Notice) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}

	// 文件内最新在末尾，接口按最新在前返回
	out := make([]collector.Notice, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    out,
	})
}
