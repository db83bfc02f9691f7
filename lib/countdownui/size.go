// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdownui

import "fmt"

// Size selects how much room the timer takes.
type Size string

const (
	SizeSmall  Size = "sm"
	SizeMedium Size = "md"
	SizeLarge  Size = "lg"
)

// ParseSize validates a size name. The empty string is SizeMedium.
func ParseSize(name string) (Size, error) {
	switch Size(name) {
	case "":
		return SizeMedium, nil
	case SizeSmall, SizeMedium, SizeLarge:
		return Size(name), nil
	}
	return "", fmt.Errorf("unknown size %q (want sm, md or lg)", name)
}

// padding returns the vertical and horizontal padding of the timer box.
func (size Size) padding() (vertical, horizontal int) {
	switch size {
	case SizeSmall:
		return 0, 1
	case SizeLarge:
		return 1, 4
	default:
		return 0, 2
	}
}

// bordered reports whether the timer box draws a border.
func (size Size) bordered() bool {
	return size != SizeSmall
}
