// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireNoReceive] and [RequireClosed] wrap the
// select-with-timeout pattern for channels fed by other goroutines
// (the TUI event bridge, toast subscriptions). They are the only place
// tests use real wall-clock timeouts; all countdown timing in tests
// runs on clock.FakeClock.
//
// [WriteFile] creates fixture files (configs, ticket records) in a
// per-test temporary directory.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
