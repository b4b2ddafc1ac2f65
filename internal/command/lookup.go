// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/nutrictl/internal/meta"
	"github.com/staranto/nutrictl/internal/output"
	"github.com/staranto/nutrictl/internal/picker"
)

var lookupExamples = [][2]string{
	{"nutrictl Äpple", "facts for the food named Äpple"},
	{"nutrictl lookup Nöt talg", "multi-word names need no quotes"},
	{"nutrictl lookup -o json Ärtsoppa", "facts as JSON, in canonical units"},
	{"nutrictl lookup --pick Appl", "choose among suggestions when the name misses"},
}

// LookupCommandAction prints the nutrition facts of the named food. On a miss
// it offers suggestions, either interactively with --pick on a terminal or as
// a list on stderr, and fails with a NotFoundError.
func LookupCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if ShortCircuitTLDR(ctx, cmd, "lookup") || ShowExamplesIfRequested(cmd, lookupExamples) {
		return nil
	}

	name := FoodName(cmd)
	if name == "" {
		return errors.New("no food name given")
	}

	p, err := NewProvider(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			log.WithError(cerr).Warn("closing provider")
		}
	}()

	opts := output.OptionsFromCommand(cmd)

	facts, ok, err := p.Lookup(ctx, name)
	if err != nil {
		return err
	}
	if ok {
		return output.WriteFacts(m.Stdout, facts, opts)
	}

	suggestions, err := p.SuggestNames(ctx, name)
	if err != nil {
		return err
	}
	log.Debugf("%q missed, %d suggestions", name, len(suggestions))

	if cmd.Bool("pick") && m.IsTTY && len(suggestions) > 0 {
		chosen, picked, err := picker.Run(ctx, m.Stdin, m.Stderr,
			fmt.Sprintf("No food named %q. Did you mean", name), suggestions)
		if err != nil {
			return err
		}
		if picked {
			facts, ok, err := p.Lookup(ctx, chosen)
			if err != nil {
				return err
			}
			if ok {
				return output.WriteFacts(m.Stdout, facts, opts)
			}
		}
		return &NotFoundError{Name: name}
	}

	if len(suggestions) > 0 {
		fmt.Fprintln(m.Stderr, "Did you mean:")
		for _, s := range suggestions {
			fmt.Fprintln(m.Stderr, "  "+s)
		}
	}
	return &NotFoundError{Name: name}
}

// LookupCommandBuilder constructs the cli.Command definition for the "lookup"
// command.
func LookupCommandBuilder(meta meta.Meta) *cli.Command {
	flags := append(NewProviderFlags(meta, "lookup"), NewOutputFlags(meta, "lookup")...)
	flags = append(flags, &cli.BoolWithInverseFlag{
		Name:    "pick",
		Usage:   "choose among suggestions interactively when the name misses",
		Sources: cli.NewValueSourceChain(configSources(meta, "lookup", "pick")...),
		Value:   false,
	})

	return (&CommandBuilder{
		Name:      "lookup",
		Usage:     "show the nutrition facts of a food",
		UsageText: `nutrictl [lookup] <food> [options]`,
		Flags:     flags,
		Action:    LookupCommandAction,
		Meta:      meta,
	}).Build()
}
