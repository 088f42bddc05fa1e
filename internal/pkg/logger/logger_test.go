package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextHandlerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, slog.LevelInfo)

	log.InfoContext(WithRequestID(context.Background(), "req-1"), "handled")
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("expected request_id in %q", buf.String())
	}

	buf.Reset()
	log.Info("plain")
	if strings.Contains(buf.String(), "request_id") {
		t.Fatalf("unexpected request_id in %q", buf.String())
	}
}

func TestContextHandlerKeepsAttrsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, slog.LevelWarn).With("app", "spacegrow")

	log.Info("skipped")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at warn level, got %q", buf.String())
	}

	log.WarnContext(WithRequestID(context.Background(), "req-2"), "slow")
	out := buf.String()
	if !strings.Contains(out, "app=spacegrow") || !strings.Contains(out, "request_id=req-2") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("WARNING") != slog.LevelWarn || parseLevel("debug") != slog.LevelDebug {
		t.Fatal("unexpected level mapping")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown level")
		}
	}()
	parseLevel("verbose")
}

func TestRequestIDEmpty(t *testing.T) {
	if RequestID(context.Background()) != "" {
		t.Fatal("expected empty request id")
	}
}
