package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func parseLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, WarnLevel)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	entries := parseLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("unexpected levels: %v %v", entries[0].Level, entries[1].Level)
	}
}

func TestFieldsAppearInOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, DebugLevel)

	l.Info("splash built",
		WorkerID(2),
		VertexID(17),
		Priority(0.5),
		SplashLen(9),
	)

	entries := parseLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	f := entries[0].Fields
	if f["worker"] != float64(2) || f["vertex"] != float64(17) {
		t.Errorf("missing worker/vertex fields: %v", f)
	}
	if f["splash_len"] != float64(9) {
		t.Errorf("missing splash_len field: %v", f)
	}
}

func TestWithPresetsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, InfoLevel).With(Component("splash_scheduler"))

	l.Info("hello")
	entries := parseLines(t, &buf)
	if entries[0].Fields["component"] != "splash_scheduler" {
		t.Errorf("component field missing: %v", entries[0].Fields)
	}
}

func TestErrorField(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, InfoLevel)

	l.Error("boom", Error(errors.New("queue exploded")))
	entries := parseLines(t, &buf)
	if entries[0].Fields["error"] != "queue exploded" {
		t.Errorf("error field missing: %v", entries[0].Fields)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"ERROR":   ErrorLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
