package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetup_WritesJSONLinesWithUTCTimestamps(t *testing.T) {
	root := t.TempDir()

	cleanup, err := Setup(Config{Root: root})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	defer func() { _ = cleanup() }()

	if err := IsReady(); err != nil {
		t.Fatalf("logger not ready: %v", err)
	}

	wantPath := filepath.Join(root, ".coeqtlctl", "logs", "coeqtlctl.log")
	if Path() != wantPath {
		t.Fatalf("unexpected log path %q", Path())
	}

	L().Info("stage.ok", "stage", "concat-unfiltered")
	Named("runner").Info("stage.error", "stage", "screen-permutations-unfiltered")

	f, err := os.Open(wantPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line is not JSON: %v: %s", err, sc.Text())
		}
		lines = append(lines, m)
	}
	if len(lines) < 3 { // init line + two records
		t.Fatalf("expected at least 3 log lines, got %d", len(lines))
	}

	last := lines[len(lines)-1]
	if last["msg"] != "stage.error" || last["component"] != "runner" {
		t.Fatalf("unexpected last record: %v", last)
	}

	ts, ok := last["time"].(string)
	if !ok {
		t.Fatalf("missing time attr: %v", last)
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		t.Fatalf("timestamp not RFC3339Nano: %v", err)
	}
	if parsed.Location() != time.UTC && !strings.HasSuffix(ts, "Z") {
		t.Fatalf("timestamp not UTC: %q", ts)
	}
}

func TestSetup_DebugLowersLevel(t *testing.T) {
	root := t.TempDir()

	cleanup, err := Setup(Config{Root: root, Debug: true})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	defer func() { _ = cleanup() }()

	L().Debug("stage.plan", "stage", "concat-filtered")

	b, err := os.ReadFile(Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "stage.plan") {
		t.Fatal("debug record not written in debug mode")
	}
}

func TestCleanup_ResetsGlobal(t *testing.T) {
	root := t.TempDir()

	cleanup, err := Setup(Config{Root: root})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	path := Path()

	if err := cleanup(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
	if err := IsReady(); err == nil {
		t.Fatal("expected not-ready after cleanup")
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Writes after cleanup go to discard, not the file.
	L().Info("after.cleanup")

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Fatal("log file grew after cleanup")
	}
}
