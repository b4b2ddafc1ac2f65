// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/nutrictl/internal/meta"
	"github.com/staranto/nutrictl/internal/output"
	"github.com/staranto/nutrictl/internal/provider"
)

var cacheInfoDefaultAttrs = []string{"name,size,modified,current,!bytes,!path"}

var cacheExamples = [][2]string{
	{"nutrictl cache info", "downloaded feeds and databases with their sizes"},
	{"nutrictl cache info -s -bytes", "largest artifacts first"},
	{"nutrictl cache path", "the data directory"},
	{"nutrictl cache clean", "remove artifacts of other API versions"},
	{"nutrictl cache clean --all", "remove everything, the next lookup downloads again"},
}

// withCache opens the selected provider and hands its cache to fn. Nothing
// is downloaded or built.
func withCache(cmd *cli.Command, fn func(provider.Cache) error) error {
	p, err := NewProvider(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			log.WithError(cerr).Warn("closing provider")
		}
	}()

	c, ok := p.(provider.Cache)
	if !ok {
		return fmt.Errorf("provider %s keeps no local cache", cmd.String("provider"))
	}
	return fn(c)
}

// CacheInfoCommandAction lists the artifacts in the data directory.
func CacheInfoCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if ShortCircuitTLDR(ctx, cmd, "cache") || ShowExamplesIfRequested(cmd, cacheExamples) {
		return nil
	}

	al, err := BuildAttrs(cmd, cacheInfoDefaultAttrs...)
	if err != nil {
		return err
	}

	return withCache(cmd, func(c provider.Cache) error {
		artifacts, err := c.Artifacts()
		if err != nil {
			return err
		}

		rows := make([]map[string]interface{}, 0, len(artifacts))
		for _, a := range artifacts {
			rows = append(rows, map[string]interface{}{
				"name":     a.Name,
				"path":     a.Path,
				"bytes":    a.Size,
				"size":     humanize.Bytes(uint64(a.Size)),
				"modified": humanize.Time(a.ModTime),
				"current":  a.Current,
			})
		}

		raw, err := json.Marshal(rows)
		if err != nil {
			return err
		}
		return output.SliceDiceSpit(raw, al, output.OptionsFromCommand(cmd), m.Stdout)
	})
}

// CachePathCommandAction prints the data directory.
func CachePathCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	return withCache(cmd, func(c provider.Cache) error {
		_, err := fmt.Fprintln(m.Stdout, c.Dir())
		return err
	})
}

// CacheCleanCommandAction removes stale artifacts, or all of them with --all,
// and prints what was removed.
func CacheCleanCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	return withCache(cmd, func(c provider.Cache) error {
		removed, err := c.Clean(cmd.Bool("all"))
		for _, a := range removed {
			fmt.Fprintf(m.Stdout, "removed %s (%s)\n", a.Name, humanize.Bytes(uint64(a.Size)))
		}
		return err
	})
}

// CacheCommandBuilder constructs the "cache" command and its subcommands.
func CacheCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "cache",
		Usage:     "inspect and clean downloaded data",
		UsageText: `nutrictl cache <info|path|clean> [options]`,
		Meta:      meta,
		Commands: []*cli.Command{
			(&CommandBuilder{
				Name:      "info",
				Usage:     "list cached artifacts",
				UsageText: `nutrictl cache info [options]`,
				Flags:     append(NewProviderFlags(meta, "cache"), NewGlobalFlags(meta, "cache")...),
				Action:    CacheInfoCommandAction,
				Meta:      meta,
			}).Build(),
			(&CommandBuilder{
				Name:      "path",
				Usage:     "print the data directory",
				UsageText: `nutrictl cache path [options]`,
				Flags:     NewProviderFlags(meta, "cache"),
				Action:    CachePathCommandAction,
				Meta:      meta,
			}).Build(),
			(&CommandBuilder{
				Name:      "clean",
				Usage:     "remove artifacts of other API versions",
				UsageText: `nutrictl cache clean [--all] [options]`,
				Flags: append(NewProviderFlags(meta, "cache"), &cli.BoolFlag{
					Name:  "all",
					Usage: "remove every artifact, including the current database",
				}),
				Action: CacheCleanCommandAction,
				Meta:   meta,
			}).Build(),
		},
	}).Build()
}
