package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lengwuya/QFNUNoticeMonitor/internal/collector"
)

func TestFeishuPushPostsTextPayload(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("payload is not JSON: %v", err)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	defer srv.Close()

	f := NewFeishu(srv.URL)
	err := f.Push([]collector.Notice{
		{Title: "公告一", Link: "https://jwc.qfnu.edu.cn/1.htm", Date: "2026-08-20"},
	})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	if payload["msg_type"] != "text" {
		t.Fatalf("msg_type = %v", payload["msg_type"])
	}
	content := payload["content"].(map[string]any)
	text := content["text"].(string)
	if !strings.Contains(text, "1条新公告") || !strings.Contains(text, "【1】公告一") {
		t.Fatalf("text missing digest parts:\n%s", text)
	}
}

func TestFeishuPushBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFeishu(srv.URL)
	if err := f.Push([]collector.Notice{{Title: "A"}}); err == nil {
		t.Fatalf("expected error on 500 response")
	}
}

func TestFeishuDisabledChannelIsNoop(t *testing.T) {
	f := NewFeishu("")
	if err := f.Push([]collector.Notice{{Title: "A"}}); err != nil {
		t.Fatalf("disabled channel should be a no-op, got %v", err)
	}
}
