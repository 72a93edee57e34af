package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/history"
)

type fakeSource struct {
	name  string
	ready bool
}

func (f fakeSource) BotName() string { return f.name }
func (f fakeSource) Ready() bool     { return f.ready }

type fakeStats struct {
	global history.GlobalStats
}

func (f fakeStats) TouchUser(context.Context, string, string) error { return nil }
func (f fakeStats) TouchCommunity(context.Context, string) error    { return nil }
func (f fakeStats) Global(context.Context) (history.GlobalStats, error) {
	return f.global, nil
}
func (f fakeStats) User(context.Context, string) (history.UserStats, error) {
	return history.UserStats{}, nil
}
func (f fakeStats) Community(context.Context, string) (history.CommunityStats, error) {
	return history.CommunityStats{}, nil
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON from %s: %v", path, err)
	}
	return w, body
}

func TestHome(t *testing.T) {
	s := New(":0", fakeSource{name: "Lyla", ready: true}, nil, nil)

	w, body := get(t, s, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["bot_name"] != "Lyla" {
		t.Fatalf("unexpected bot name: %v", body["bot_name"])
	}
}

func TestHealth(t *testing.T) {
	s := New(":0", fakeSource{ready: false}, nil, nil)

	w, body := get(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["bot_ready"] != false {
		t.Fatalf("expected bot_ready false, got %v", body["bot_ready"])
	}
}

func TestStats(t *testing.T) {
	stats := fakeStats{global: history.GlobalStats{Conversations: 7, Users: 3, Communities: 2}}
	s := New(":0", fakeSource{name: "Lyla", ready: true}, stats, nil)

	w, body := get(t, s, "/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["conversations"] != float64(7) {
		t.Fatalf("unexpected conversations: %v", body["conversations"])
	}
}

func TestStatsNotReady(t *testing.T) {
	s := New(":0", fakeSource{ready: false}, fakeStats{}, nil)

	w, _ := get(t, s, "/stats")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestStatsUnavailable(t *testing.T) {
	s := New(":0", fakeSource{ready: true}, nil, nil)

	w, _ := get(t, s, "/stats")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

type fakeLogs struct {
	lines []LogLine
}

func (f fakeLogs) RecentLogs(limit int) []LogLine {
	if limit < len(f.lines) {
		return f.lines[len(f.lines)-limit:]
	}
	return f.lines
}

func TestLogs(t *testing.T) {
	logs := fakeLogs{lines: []LogLine{
		{Level: "info", Message: "bot started", Time: "2026-09-01T10:00:00Z"},
		{Level: "error", Message: "delivery failed", Time: "2026-09-01T10:01:00Z"},
	}}
	s := New(":0", fakeSource{ready: true}, nil, logs)

	w, body := get(t, s, "/logs")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	lines, ok := body["logs"].([]any)
	if !ok || len(lines) != 2 {
		t.Fatalf("unexpected logs payload: %v", body["logs"])
	}
	first, _ := lines[0].(map[string]any)
	if first["message"] != "bot started" || first["time"] == "" {
		t.Fatalf("unexpected first line: %v", first)
	}
}

func TestLogsLimit(t *testing.T) {
	logs := fakeLogs{lines: []LogLine{
		{Message: "one"}, {Message: "two"}, {Message: "three"},
	}}
	s := New(":0", fakeSource{ready: true}, nil, logs)

	w, body := get(t, s, "/logs?limit=1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	lines, _ := body["logs"].([]any)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line, _ := lines[0].(map[string]any)
	if line["message"] != "three" {
		t.Fatalf("expected the newest line, got %v", line)
	}
}

func TestLogsUnavailable(t *testing.T) {
	s := New(":0", fakeSource{ready: true}, nil, nil)

	w, _ := get(t, s, "/logs")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
