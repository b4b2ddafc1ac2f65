// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package nutrition defines the closed set of nutrition attributes, their
// canonical units of measure and the immutable value types that carry
// unit-aware quantities from the cache store to the caller.
//
// All tables in this package are built once at package initialization and
// never mutated afterwards, so they are safe for concurrent readers.
package nutrition
