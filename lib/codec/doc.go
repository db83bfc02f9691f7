// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration used for
// ticketclock's on-disk records.
//
// JSON is the format of external interfaces (ticket records, --json
// state output). CBOR is used for the countdown event log, which is
// appended one record at a time and read back as a CBOR sequence.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2). Times
// are encoded as tag 0 RFC 3339 strings with nanoseconds.
//
//	data, err := codec.Marshal(value)
//	rest, err := codec.UnmarshalFirst(data, &value)
//
// fxamacker/cbor reads `json` tags when `cbor` tags are absent, so a
// type shared with JSON output carries only `json` tags. Never put both
// on the same field.
package codec
