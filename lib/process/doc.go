// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. Fatal reports an
// error to stderr when the structured logger may not be initialized
// and exits the process; ExitCode carries a non-error exit status out
// of run().
package process
