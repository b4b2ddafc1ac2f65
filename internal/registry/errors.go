// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
)

// MalformedValueError reports a value that is not numeric even after the
// locale clean-up. Field is the attribute name or the XML tag involved.
type MalformedValueError struct {
	Food  string
	Field string
	Raw   string
	Err   error
}

func (e *MalformedValueError) Error() string {
	msg := fmt.Sprintf("malformed value %q", e.Raw)
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Food != "" {
		msg = fmt.Sprintf("food %q: %s", e.Food, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedValueError) Unwrap() error {
	return e.Err
}

// MissingFieldError reports a food element with nutrition data but without
// one of its identifying tags.
type MissingFieldError struct {
	Field string
	// Offset is the input byte offset just past the offending element.
	Offset int64
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("food element ending at offset %d has no <%s>", e.Offset, e.Field)
}
