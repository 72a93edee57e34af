package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/eventbus"
)

func TestLogRing(t *testing.T) {
	app := NewApp()

	app.addLog("info", "bot started")
	app.addLog("error", errors.New("delivery failed"))

	lines := app.RecentLogs(10)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Message != "bot started" || lines[0].Level != "info" {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	if lines[1].Message != "delivery failed" || lines[1].Level != "error" {
		t.Fatalf("unexpected second line: %+v", lines[1])
	}
	for i, line := range lines {
		if line.Time == "" {
			t.Fatalf("line %d has no timestamp", i)
		}
	}
}

func TestLogRingLimit(t *testing.T) {
	app := NewApp()
	for i := 0; i < 5; i++ {
		app.addLog("info", fmt.Sprintf("line%d", i))
	}

	lines := app.RecentLogs(2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	// Newest last.
	if lines[0].Message != "line3" || lines[1].Message != "line4" {
		t.Fatalf("unexpected tail: %+v", lines)
	}
}

func TestLogRingBound(t *testing.T) {
	app := NewApp()
	for i := 0; i < 1500; i++ {
		app.addLog("info", "filler")
	}

	if n := len(app.RecentLogs(0)); n > 1000 {
		t.Fatalf("ring grew to %d lines", n)
	}
}

func TestBusEventsReachLogRing(t *testing.T) {
	app := NewApp()
	app.bus.Subscribe(eventbus.TopicError, func(e eventbus.Event) {
		app.addLog("error", e.Payload)
	})

	app.bus.Publish(eventbus.TopicError, errors.New("backend down"))

	lines := app.RecentLogs(1)
	if len(lines) != 1 || lines[0].Message != "backend down" {
		t.Fatalf("bus event not recorded: %+v", lines)
	}
}
