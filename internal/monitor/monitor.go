package monitor

import (
	"fmt"
	"log"

	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/notify"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/store"
)

// Phase 标记一轮监控走到了哪条分支，首轮建档与常规推送是业务上不同的状态
type Phase int

const (
	// PhaseIdle 本轮没有可处理的新公告（抓取为空或无新增）
	PhaseIdle Phase = iota
	// PhaseBootstrap 首次运行：以当前快照静默建档，不推送
	PhaseBootstrap
	// PhaseSteady 常规运行：推送新公告并入库
	PhaseSteady
)

func (p Phase) String() string {
	switch p {
	case PhaseBootstrap:
		return "bootstrap"
	case PhaseSteady:
		return "steady"
	default:
		return "idle"
	}
}

// Monitor 串起一轮完整的监控：抓取 → 按标题比对 → 建档或推送 → 落盘
type Monitor struct {
	fetcher   collector.Fetcher
	store     *store.Store
	notifiers []notify.Notifier
}

func New(fetcher collector.Fetcher, st *store.Store, notifiers ...notify.Notifier) *Monitor {
	return &Monitor{fetcher: fetcher, store: st, notifiers: notifiers}
}

// Run 执行一轮监控并吞掉所有失败：周期调度下一轮失败不应影响宿主进程
func (m *Monitor) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("monitor cycle panic: %v", r)
		}
	}()

	log.Printf("start %s monitor cycle", m.fetcher.Name())
	phase, err := m.RunCycle()
	if err != nil {
		log.Printf("monitor cycle error: %v", err)
		return
	}
	log.Printf("monitor cycle done: phase=%s", phase)
}

// RunCycle 执行一轮监控并返回本轮进入的阶段。
// 落盘只发生在新公告集合计算成功之后，失败的轮次不会破坏盘上状态。
func (m *Monitor) RunCycle() (Phase, error) {
	current, err := m.fetcher.Fetch()
	if err != nil {
		return PhaseIdle, fmt.Errorf("fetch notices: %w", err)
	}
	if len(current) == 0 {
		log.Println("warn: no notices fetched, skip this cycle")
		return PhaseIdle, nil
	}

	saved := m.store.LoadActive()
	fresh := diffByTitle(current, saved)

	if len(fresh) == 0 {
		log.Println("no new notices")
		return PhaseIdle, nil
	}

	if len(saved) == 0 {
		// 首次运行：当前快照直接成为基线，不推送历史公告
		log.Printf("first run, seeding %d notices without notification", len(current))
		if err := m.store.SaveActive(current); err != nil {
			return PhaseBootstrap, fmt.Errorf("seed active store: %w", err)
		}
		return PhaseBootstrap, nil
	}

	log.Printf("found %d new notices", len(fresh))
	m.pushAll(fresh)

	if err := m.store.AppendAndSave(fresh); err != nil {
		return PhaseSteady, fmt.Errorf("persist new notices: %w", err)
	}
	return PhaseSteady, nil
}

// pushAll 逐个通道推送，单通道失败只记录，不影响其余通道与后续落盘
func (m *Monitor) pushAll(fresh []collector.Notice) {
	for _, n := range m.notifiers {
		if err := m.pushOne(n, fresh); err != nil {
			log.Printf("%s push failed: %v", n.Name(), err)
		}
	}
}

func (m *Monitor) pushOne(n notify.Notifier, fresh []collector.Notice) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return n.Push(fresh)
}

// diffByTitle 返回 current 中标题不在 saved 里的公告，保持原有顺序。
// 标题按原文精确比对，不做任何归一化。
func diffByTitle(current, saved []collector.Notice) []collector.Notice {
	if len(saved) == 0 {
		return current
	}

	seen := make(map[string]struct{}, len(saved))
	for _, n := range saved {
		seen[n.Title] = struct{}{}
	}

	fresh := make([]collector.Notice, 0, len(current))
	for _, n := range current {
		if _, ok := seen[n.Title]; !ok {
			fresh = append(fresh, n)
		}
	}
	return fresh
}
