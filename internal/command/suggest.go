// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/nutrictl/internal/meta"
	"github.com/staranto/nutrictl/internal/output"
)

var suggestExamples = [][2]string{
	{"nutrictl suggest soppa", "names containing soppa, Swedish order"},
	{"nutrictl suggest --suggest-limit 3 mjölk", "at most three names"},
	{"nutrictl suggest -o json äpple", "names as a JSON array"},
}

// SuggestCommandAction prints food names resembling the given fragment.
func SuggestCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if ShortCircuitTLDR(ctx, cmd, "suggest") || ShowExamplesIfRequested(cmd, suggestExamples) {
		return nil
	}

	fragment := FoodName(cmd)
	if fragment == "" {
		return errors.New("no name fragment given")
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

	names, err := p.SuggestNames(ctx, fragment)
	if err != nil {
		return err
	}
	return output.WriteNames(m.Stdout, names, output.OptionsFromCommand(cmd))
}

// SuggestCommandBuilder constructs the cli.Command definition for the
// "suggest" command.
func SuggestCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "suggest",
		Usage:     "list food names containing a fragment",
		UsageText: `nutrictl suggest <fragment> [options]`,
		Flags:     append(NewProviderFlags(meta, "suggest"), NewOutputFlags(meta, "suggest")...),
		Action:    SuggestCommandAction,
		Meta:      meta,
	}).Build()
}
