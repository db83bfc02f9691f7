// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for ticketclock
// binaries.
//
// Four package-level variables are injected at build time via
// -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/ticketclock/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When GitCommit is not injected, [Current] falls back to the VCS
// stamp that "go build" records in the binary. Test binaries carry no
// stamp and report "unknown".
//
//   - [Info] -- "0.1.0-dev (abc1234, 2026-02-10T...)"
//   - [Full] -- Info plus Go version and GOOS/GOARCH
//   - [Current] -- the resolved commit, dirty flag and build time
//   - [Print] -- the --version line
package version
