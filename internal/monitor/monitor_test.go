package monitor

import (
	"errors"
	"testing"

	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
	"github.com/lengwuya/QFNUNoticeMonitor/internal/store"
)

type fakeFetcher struct {
	notices []collector.Notice
	err     error
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch() ([]collector.Notice, error) {
	return f.notices, f.err
}

type fakeNotifier struct {
	name   string
	err    error
	panics bool
	calls  [][]collector.Notice
}

func (n *fakeNotifier) Name() string { return n.name }

func (n *fakeNotifier) Push(notices []collector.Notice) error {
	n.calls = append(n.calls, notices)
	if n.panics {
		panic("transport exploded")
	}
	return n.err
}

func newTestStore(t *testing.T, maxActive int) *store.Store {
	t.Helper()
	s, err := store.New(t.TempDir(), maxActive, "")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return s
}

func notice(title string) collector.Notice {
	return collector.Notice{Title: title, Link: "https://jwc.qfnu.edu.cn/" + title, Date: "2026-08-28"}
}

func activeTitles(t *testing.T, s *store.Store) []string {
	t.Helper()
	list := s.LoadActive()
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.Title)
	}
	return out
}

func TestFirstRunSeedsWithoutNotification(t *testing.T) {
	s := newTestStore(t, 30)
	n1 := &fakeNotifier{name: "feishu"}
	n2 := &fakeNotifier{name: "onebot"}
	m := New(&fakeFetcher{notices: []collector.Notice{notice("A"), notice("B")}}, s, n1, n2)

	phase, err := m.RunCycle()
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if phase != PhaseBootstrap {
		t.Fatalf("phase = %s, want bootstrap", phase)
	}

	// 首轮只建档，两个通道都不应被调用
	if len(n1.calls) != 0 || len(n2.calls) != 0 {
		t.Fatalf("notifiers invoked on bootstrap: %d/%d", len(n1.calls), len(n2.calls))
	}

	got := activeTitles(t, s)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("active store = %v, want [A B]", got)
	}
}

func TestSteadyStatePushesOnlyFreshNotices(t *testing.T) {
	s := newTestStore(t, 30)
	if err := s.SaveActive([]collector.Notice{notice("A")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n1 := &fakeNotifier{name: "feishu"}
	n2 := &fakeNotifier{name: "onebot"}
	m := New(&fakeFetcher{notices: []collector.Notice{notice("A"), notice("B")}}, s, n1, n2)

	phase, err := m.RunCycle()
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if phase != PhaseSteady {
		t.Fatalf("phase = %s, want steady", phase)
	}

	// 两个通道各推送一次，且只包含新公告 B
	for _, n := range []*fakeNotifier{n1, n2} {
		if len(n.calls) != 1 {
			t.Fatalf("%s invoked %d times, want 1", n.name, len(n.calls))
		}
		if len(n.calls[0]) != 1 || n.calls[0][0].Title != "B" {
			t.Fatalf("%s pushed %v, want only B", n.name, n.calls[0])
		}
	}

	got := activeTitles(t, s)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("active store = %v, want [A B]", got)
	}
}

func TestNoNewNoticesWritesNothing(t *testing.T) {
	s := newTestStore(t, 30)
	if err := s.SaveActive([]collector.Notice{notice("A"), notice("B")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n1 := &fakeNotifier{name: "feishu"}
	m := New(&fakeFetcher{notices: []collector.Notice{notice("B")}}, s, n1)

	phase, err := m.RunCycle()
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if phase != PhaseIdle {
		t.Fatalf("phase = %s, want idle", phase)
	}
	if len(n1.calls) != 0 {
		t.Fatalf("notifier invoked on no-new cycle")
	}
	got := activeTitles(t, s)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("active store mutated: %v", got)
	}
}

func TestEmptyFetchLeavesStateUntouched(t *testing.T) {
	s := newTestStore(t, 30)
	m := New(&fakeFetcher{notices: nil}, s, &fakeNotifier{name: "feishu"})

	phase, err := m.RunCycle()
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if phase != PhaseIdle {
		t.Fatalf("phase = %s, want idle", phase)
	}
	if got := s.LoadActive(); len(got) != 0 {
		t.Fatalf("active store mutated on empty fetch: %v", got)
	}
}

func TestFetchErrorEndsCycleWithoutMutation(t *testing.T) {
	s := newTestStore(t, 30)
	m := New(&fakeFetcher{err: errors.New("connection refused")}, s)

	if _, err := m.RunCycle(); err == nil {
		t.Fatalf("expected fetch error")
	}
	if got := s.LoadActive(); len(got) != 0 {
		t.Fatalf("active store mutated on fetch error: %v", got)
	}

	// Run 吞掉错误，不允许向宿主传播
	m.Run()
}

func TestTransportFailureDoesNotBlockOthersOrPersistence(t *testing.T) {
	s := newTestStore(t, 30)
	if err := s.SaveActive([]collector.Notice{notice("A")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// 第一个通道直接 panic，第二个返回错误，都不应阻断后续
	n1 := &fakeNotifier{name: "feishu", panics: true}
	n2 := &fakeNotifier{name: "onebot", err: errors.New("all groups failed")}
	m := New(&fakeFetcher{notices: []collector.Notice{notice("A"), notice("B")}}, s, n1, n2)

	phase, err := m.RunCycle()
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if phase != PhaseSteady {
		t.Fatalf("phase = %s, want steady", phase)
	}
	if len(n1.calls) != 1 || len(n2.calls) != 1 {
		t.Fatalf("both transports must be invoked: %d/%d", len(n1.calls), len(n2.calls))
	}

	got := activeTitles(t, s)
	if len(got) != 2 || got[1] != "B" {
		t.Fatalf("persistence blocked by transport failure: %v", got)
	}
}

func TestRetitledNoticeCountsAsNew(t *testing.T) {
	// 标题即身份：同链接换标题算新公告，同标题换链接算已读
	s := newTestStore(t, 30)
	if err := s.SaveActive([]collector.Notice{{Title: "旧标题", Link: "https://jwc.qfnu.edu.cn/1.htm"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n1 := &fakeNotifier{name: "feishu"}
	m := New(&fakeFetcher{notices: []collector.Notice{
		{Title: "新标题", Link: "https://jwc.qfnu.edu.cn/1.htm"},
		{Title: "旧标题", Link: "https://jwc.qfnu.edu.cn/other.htm"},
	}}, s, n1)

	if _, err := m.RunCycle(); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if len(n1.calls) != 1 || len(n1.calls[0]) != 1 || n1.calls[0][0].Title != "新标题" {
		t.Fatalf("diff by title broken: %+v", n1.calls)
	}
}

func TestDiffKeepsSourceOrder(t *testing.T) {
	saved := []collector.Notice{notice("C")}
	current := []collector.Notice{notice("A"), notice("C"), notice("B")}
	fresh := diffByTitle(current, saved)
	if len(fresh) != 2 || fresh[0].Title != "A" || fresh[1].Title != "B" {
		t.Fatalf("fresh = %+v, want [A B] in source order", fresh)
	}
}
