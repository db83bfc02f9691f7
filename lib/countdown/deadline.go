// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdown

import (
	"strings"
	"time"
)

// deadlineLayouts are tried in order. Layouts without a zone offset are
// interpreted in local time, except the date-only form which is UTC
// midnight; this matches how browsers interpret the same strings, and
// reservation services are not consistent about emitting offsets.
var deadlineLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02 15:04:05.999999999Z07:00", false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02 15:04:05.999999999", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02", false},
}

// ParseDeadline parses an ISO-8601 expiration timestamp. The second
// result is false for empty or unparseable input, and for the zero
// time; callers treat that as "no active countdown".
func ParseDeadline(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, candidate := range deadlineLayouts {
		var parsed time.Time
		var err error
		if candidate.local {
			parsed, err = time.ParseInLocation(candidate.layout, value, time.Local)
		} else {
			parsed, err = time.Parse(candidate.layout, value)
		}
		if err == nil && !parsed.IsZero() {
			return parsed, true
		}
	}
	return time.Time{}, false
}
