// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNotFinite = errors.New("not a finite number")

// ParseNumber converts a registry value such as "1 234,5" (with a
// non-breaking space) to 1234.5. Only the first comma is taken as the
// decimal separator.
func ParseNumber(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t':
			return -1
		}
		return r
	}, raw)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &MalformedValueError{Raw: raw, Err: errors.Unwrap(err)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &MalformedValueError{Raw: raw, Err: errNotFinite}
	}
	return f, nil
}
