package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestBuildAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := Build(Config{Level: "info", Component: "server"}, &buf)

	ctx := WithRequestID(context.Background(), "abc123")
	ctx = WithVariant(ctx, "premium")
	FromContext(ctx, &base).Info().Msg("rendered")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for k, want := range map[string]string{
		"msg":        "rendered",
		"level":      "info",
		"component":  "server",
		"request_id": "abc123",
		"variant":    "premium",
	} {
		if line[k] != want {
			t.Errorf("%s=%v; want %q", k, line[k], want)
		}
	}
	if _, ok := line["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := Build(Config{Level: "warn"}, &buf)
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info line written at warn level: %q", buf.String())
	}
	l.Warn().Msg("shown")
	if buf.Len() == 0 {
		t.Fatal("warn line missing")
	}
	Build(Config{Level: "info"}, &buf) // restore global level for other tests
}

func TestWithRequestIDGenerates(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if id := RequestID(ctx); len(id) != 16 {
		t.Fatalf("generated id=%q; want 16 hex chars", id)
	}
	if FromContext(context.Background(), nil) == nil {
		t.Fatal("FromContext(nil parent) must return a logger")
	}
}

func TestOpenFileEmptyDiscards(t *testing.T) {
	w, err := OpenFile("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}
