// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// nutrictl looks up nutrition facts in the Swedish food registry
// (Livsmedelsdatabasen). The registry feeds are downloaded once per API
// version and cached in a local SQLite database. This package is the entry
// point and delegates to internal/command.
package main
