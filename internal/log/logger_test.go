package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Output: &buf})

	logger.Info("hello", FieldTea, 3)
	logger.WithComponent(ComponentStorage).Debug("below")

	out := buf.String()
	if !strings.Contains(out, "component=http") || !strings.Contains(out, "tea=3") {
		t.Errorf("info line missing fields: %s", out)
	}
	if !strings.Contains(out, "component=storage") {
		t.Errorf("component override missing: %s", out)
	}
	if strings.Count(out, "component=") != 2 {
		t.Errorf("expected one component per line: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Component: ComponentApp, Output: &buf})
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})

	ctx := NewContext(context.Background(), logger.With(FieldRequestID, "req_42"))
	got := FromContext(ctx)
	got.InfoContext(ctx, "inside")

	if got.Component() != ComponentHTTP {
		t.Fatalf("logger not propagated: %+v", got)
	}
	if !strings.Contains(buf.String(), "request_id=req_42") {
		t.Errorf("request id missing: %s", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Errorf("FromContext() = %+v", l)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Component: ComponentThrips, Output: &buf}))

	sl.LogRecordCreated(context.Background(), 7, 3, 1)
	sl.LogAggregation(context.Background(), OpChart, "week", 4)
	sl.LogError(context.Background(), "failed", errors.New("boom"), OpAggregate, nil)

	out := buf.String()
	for _, want := range []string{"record_id=7", "operation=create", "period=week", "buckets=4", "error=boom", "operation=aggregate"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
