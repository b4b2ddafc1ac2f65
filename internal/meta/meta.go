// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"
	"io"
	"os"

	"github.com/staranto/nutrictl/internal/config"
	"github.com/staranto/nutrictl/internal/picker"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// IsTTY is set when stdin and stdout are both terminals. It enables the
	// picker and colored output by default.
	IsTTY bool
}

// New returns the Meta of a process attached to the standard streams.
func New(ctx context.Context, args []string, cfg config.Type) Meta {
	return Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		IsTTY:   picker.Interactive(os.Stdin, os.Stdout),
	}
}
