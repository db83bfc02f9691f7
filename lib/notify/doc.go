// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify is the notification sink for reservation countdowns.
//
// [Store] holds transient toasts. Each toast has a level and an
// optional lifetime after which it removes itself, scheduled through
// an injected [clock.Clock]. The presentation layer reads [Store.List]
// and waits on [Store.Subscribe] for changes.
//
// [CountdownAlerts] turns countdown warnings and expiry into toasts
// with the user-facing payment reminders, and logs each alert.
package notify
