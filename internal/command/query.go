// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/nutrictl/internal/meta"
	"github.com/staranto/nutrictl/internal/output"
	"github.com/staranto/nutrictl/internal/provider"
	"github.com/staranto/nutrictl/internal/store"
)

var queryDefaultAttrs = []string{"name,number,energy,fat,carbohydrates,protein"}

var queryExamples = [][2]string{
	{"nutrictl query soppa", "foods whose name contains soppa"},
	{"nutrictl query -f 'protein>20' -s -protein", "high protein foods, most first"},
	{"nutrictl query -f 'iron>2000µg' -a iron", "units convert, so 2000µg is 2 mg"},
	{"nutrictl query -a '*::12,salt' -t", "names cut to 12 characters plus salt, with titles"},
	{"nutrictl query --schema", "attributes available to --attrs, --filter and --sort"},
}

// QueryCommandAction lists stored foods as a table or document. Foods are
// taken from the cache in registry order, optionally limited to names
// containing a fragment, then filtered, sorted and projected.
func QueryCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "query") || ShowExamplesIfRequested(cmd, queryExamples) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(store.Food{})) {
		return nil
	}

	al, err := BuildAttrs(cmd, queryDefaultAttrs...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al.String())

	p, err := NewProvider(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			log.WithError(cerr).Warn("closing provider")
		}
	}()

	searcher, ok := p.(provider.Searcher)
	if !ok {
		return fmt.Errorf("provider %s cannot list foods", cmd.String("provider"))
	}

	foods, err := searcher.Search(ctx, FoodName(cmd), cmd.Int("limit"))
	if err != nil {
		return err
	}

	if foods == nil {
		foods = []store.Food{}
	}
	raw, err := json.Marshal(foods)
	if err != nil {
		return fmt.Errorf("failed to marshal foods: %w", err)
	}
	return output.SliceDiceSpit(raw, al, output.OptionsFromCommand(cmd), m.Stdout)
}

// QueryCommandBuilder constructs the cli.Command definition for the "query"
// command.
func QueryCommandBuilder(meta meta.Meta) *cli.Command {
	flags := append(NewProviderFlags(meta, "query"), NewGlobalFlags(meta, "query")...)
	flags = append(flags,
		newSchemaFlag(),
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "maximum number of foods read from the cache, 0 for all",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("query.limit", altsrc.StringSourcer(meta.Config.Source)),
			),
			Validator: func(value int) error {
				return FlagValidators(value, NonNegativeValidator)
			},
		},
	)

	return (&CommandBuilder{
		Name:      "query",
		Usage:     "list stored foods",
		UsageText: `nutrictl query [fragment] [options]`,
		Flags:     flags,
		Action:    QueryCommandAction,
		Meta:      meta,
	}).Build()
}
