// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, test := range tests {
		got, err := ParseLevel(test.name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", test.name, err)
		}
		if got != test.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", test.name, got, test.want)
		}
	}

	if _, err := ParseLevel("trace"); err == nil {
		t.Error("ParseLevel(trace) succeeded")
	}
}

func TestNewAutoUsesJSONWhenNotTerminal(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := New(&buffer, "info", "auto")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("countdown started", "remaining_ms", 120000)

	var record map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &record); err != nil {
		t.Fatalf("output %q is not JSON: %v", buffer.String(), err)
	}
	if record["msg"] != "countdown started" {
		t.Errorf("msg = %v, want %q", record["msg"], "countdown started")
	}
	if record["remaining_ms"] != float64(120000) {
		t.Errorf("remaining_ms = %v, want 120000", record["remaining_ms"])
	}
}

func TestNewText(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := New(&buffer, "info", "text")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Warn("threshold reached", "seconds_remaining", 30)
	if output := buffer.String(); !strings.Contains(output, "level=WARN") || !strings.Contains(output, "seconds_remaining=30") {
		t.Errorf("unexpected text output %q", output)
	}
}

func TestNewLevelFilters(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := New(&buffer, "warn", "json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("dropped")
	if buffer.Len() != 0 {
		t.Errorf("info record written at warn level: %q", buffer.String())
	}
	logger.Error("kept")
	if !strings.Contains(buffer.String(), "kept") {
		t.Errorf("error record missing: %q", buffer.String())
	}
}

func TestNewRejectsUnknown(t *testing.T) {
	var buffer bytes.Buffer
	if _, err := New(&buffer, "info", "xml"); err == nil {
		t.Error("New accepted format xml")
	}
	if _, err := New(&buffer, "loud", "json"); err == nil {
		t.Error("New accepted level loud")
	}
}
