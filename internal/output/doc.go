// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package output renders lookup results and query rows. Facts and name lists
// are written as text, json or yaml; query rows go through the filter, sort
// and attrs pipeline before being rendered as a table or a document.
package output
