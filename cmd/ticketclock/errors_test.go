// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestToolErrorHint(t *testing.T) {
	err := Validation("missing deadline")
	if err.Error() != "missing deadline" {
		t.Errorf("Error() = %q, want %q", err.Error(), "missing deadline")
	}
	if strings.Contains(err.Error(), "\n\n") {
		t.Error("empty hint added a blank line")
	}

	hinted := err.WithHint("Pass --hold 2m.")
	if hinted != err {
		t.Error("WithHint should return the same pointer")
	}
	if want := "missing deadline\n\nPass --hold 2m."; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestToolErrorUnwrap(t *testing.T) {
	inner := NotFound("reading ticket: %w", os.ErrNotExist)
	wrapped := fmt.Errorf("loading: %w", inner)

	if !errors.Is(wrapped, os.ErrNotExist) {
		t.Error("errors.Is does not see through ToolError")
	}
	var toolErr *ToolError
	if !errors.As(wrapped, &toolErr) {
		t.Fatal("errors.As should find ToolError in wrapped chain")
	}
	if toolErr.Category != CategoryNotFound {
		t.Errorf("Category = %q, want %q", toolErr.Category, CategoryNotFound)
	}
}
