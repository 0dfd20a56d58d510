package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func capture(t *testing.T, level Level, verboseOn bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetMinLevel(level)
	SetVerbose(verboseOn)
	t.Cleanup(func() {
		SetOutput(nil)
		SetMinLevel(LevelWarn)
		SetVerbose(false)
	})
	return &buf
}

func TestRedactsRegisteredSecret(t *testing.T) {
	buf := capture(t, LevelDebug, false)
	RegisterSecret("session-abc123")

	Infof("using session session-abc123 for host")
	got := buf.String()
	if strings.Contains(got, "session-abc123") {
		t.Fatalf("expected secret to be redacted, got: %s", got)
	}
	if !strings.Contains(got, "[REDACTED]") {
		t.Fatalf("expected [REDACTED] marker, got: %s", got)
	}
}

func TestTruncationWhenNotVerbose(t *testing.T) {
	buf := capture(t, LevelDebug, false)
	Debugf("%s", strings.Repeat("a", 6000))
	if !strings.Contains(buf.String(), "truncated") {
		t.Fatalf("expected truncation indicator, got: %s", buf.String())
	}
}

func TestNoTruncationWhenVerbose(t *testing.T) {
	buf := capture(t, LevelDebug, true)
	Debugf("%s", strings.Repeat("b", 4000))
	if strings.Contains(buf.String(), "truncated") {
		t.Fatalf("did not expect truncation, got: %s", buf.String())
	}
}

func TestMinLevelFilters(t *testing.T) {
	buf := capture(t, LevelWarn, false)
	Infof("hidden")
	Warnf("shown")
	got := buf.String()
	if strings.Contains(got, "hidden") || !strings.Contains(got, "shown") {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestFieldsAreEncoded(t *testing.T) {
	buf := capture(t, LevelDebug, false)
	Errorw("load failed", "op", "collections", "err", errors.New("boom"), "dangling")

	var e entry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &e); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if e.Level != "error" || e.Msg != "load failed" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Fields["op"] != "collections" || e.Fields["err"] != "boom" || e.Fields["dangling"] != "(missing)" {
		t.Fatalf("unexpected fields: %+v", e.Fields)
	}
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	c, err := ToFile(path, LevelInfo)
	if err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	Infof("written")
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	SetMinLevel(LevelWarn)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "written") {
		t.Fatalf("expected log line in file, got %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, " INFO ": LevelInfo, "error": LevelError, "": LevelWarn, "nope": LevelWarn}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
