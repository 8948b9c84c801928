package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler 按 cron 表达式周期性地跑监控任务。
// 只注册单个周期条目，保证同一时刻不会有两轮监控并发写文件。
type Scheduler struct {
	cron *cron.Cron
	job  func()
}

func New(spec string, job func()) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{cron: c, job: job}
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 启动后稍等片刻跑首轮，避开进程初始化阶段
	const startupDelay = 5 * time.Second
	time.AfterFunc(startupDelay, s.job)
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发一轮监控
func (s *Scheduler) RunOnce() {
	s.job()
}
