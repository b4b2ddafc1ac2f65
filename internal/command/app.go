// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/nutrictl/internal/config"
	"github.com/staranto/nutrictl/internal/meta"
)

// InitApp loads the config file and builds the command tree for a process
// attached to the standard streams.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the subcommand
	// and also represents the namespace key to be used when retrieving config
	// values. arg[1] could be -h/--help, so ignore it if it appears to be a
	// flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		// A missing config file is normal.
		log.WithError(err).Debug("no config loaded")
	}
	config.SetNamespace(ns)

	return NewApp(meta.New(ctx, args, cfg)), nil
}

// NewApp builds the command tree around m.
func NewApp(m meta.Meta) *cli.Command {
	app := &cli.Command{
		Name:      "nutrictl",
		Usage:     "Swedish food registry nutrition lookup",
		UsageText: "nutrictl [command] <food> [options]",
		Writer:    m.Stdout,
		ErrWriter: m.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "nutrictl version info",
				HideDefault: true,
			},
		},
		Metadata: map[string]any{
			"meta": m,
		},
	}

	app.Commands = append(app.Commands,
		LookupCommandBuilder(m),
		SuggestCommandBuilder(m),
		QueryCommandBuilder(m),
		CacheCommandBuilder(m),
		CompletionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	var sortFlags func(cmds []*cli.Command)
	sortFlags = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
			sortFlags(cmd.Commands)
		}
	}
	sortFlags(app.Commands)

	return app
}
