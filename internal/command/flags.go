// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/nutrictl/internal/meta"
	"github.com/staranto/nutrictl/internal/provider"
)

// Flags hold parse state, so each command gets its own instances.
func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the queryable attributes",
		HideDefault: true,
	}
}

func newExamplesFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "examples",
		Usage:       "show usage examples",
		HideDefault: true,
	}
}

func newTldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// configSources returns the namespaced and global config file sources for
// key, in that order of precedence.
func configSources(m meta.Meta, ns string, key string) []cli.ValueSource {
	return []cli.ValueSource{
		yaml.YAML(ns+"."+key, altsrc.StringSourcer(m.Config.Source)),
		yaml.YAML(key, altsrc.StringSourcer(m.Config.Source)),
	}
}

// NewOutputFlags are the flags controlling how a command renders results.
func NewOutputFlags(m meta.Meta, ns string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(configSources(m, ns, "color")...),
			Value:   m.IsTTY,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml or raw)",
			Sources: cli.NewValueSourceChain(configSources(m, ns, "output")...),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(configSources(m, ns, "titles")...),
			Value:   false,
		},
	}
}

// NewGlobalFlags are the output flags plus the attrs, filter and sort flags
// of the tabular commands.
func NewGlobalFlags(m meta.Meta, ns string) []cli.Flag {
	return append(NewOutputFlags(m, ns),
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".attrs", altsrc.StringSourcer(m.Config.Source)),
			),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".sort", altsrc.StringSourcer(m.Config.Source)),
			),
		},
	)
}

// NewProviderFlags select and configure the nutrition data provider. Each can
// come from the command line, the environment, or the config file under the
// command's namespace or globally.
func NewProviderFlags(m meta.Meta, ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "provider",
			Aliases: []string{"p"},
			Usage:   "nutrition data provider",
			Sources: cli.NewValueSourceChain(append(
				[]cli.ValueSource{cli.EnvVar("NUTRICTL_PROVIDER")},
				configSources(m, ns, "provider")...)...),
			Value: provider.Livsmedelsdatabasen,
		},
		&cli.StringFlag{
			Name:    "api-version",
			Usage:   "registry snapshot to use, which also selects the cache generation",
			Sources: cli.NewValueSourceChain(append(
				[]cli.ValueSource{cli.EnvVar("NUTRICTL_API_VERSION")},
				configSources(m, ns, "api_version")...)...),
			Value: provider.DefaultAPIVersion,
			Validator: func(value string) error {
				return FlagValidators(value, APIVersionValidator)
			},
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "registry API root",
			Sources: cli.NewValueSourceChain(append(
				[]cli.ValueSource{cli.EnvVar("NUTRICTL_BASE_URL")},
				configSources(m, ns, "base_url")...)...),
			Value: provider.DefaultBaseURL,
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "directory holding downloaded feeds and the cache database",
			Sources: cli.NewValueSourceChain(append(
				[]cli.ValueSource{cli.EnvVar("NUTRICTL_DATA_DIR")},
				configSources(m, ns, "data_dir")...)...),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "HTTP timeout for feed downloads, 0 for none",
			Sources: cli.NewValueSourceChain(append(
				[]cli.ValueSource{cli.EnvVar("NUTRICTL_TIMEOUT")},
				configSources(m, ns, "timeout")...)...),
		},
		&cli.IntFlag{
			Name:  "suggest-limit",
			Usage: "maximum number of suggested names",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("suggest.limit", altsrc.StringSourcer(m.Config.Source)),
			),
			Value: provider.DefaultSuggestLimit,
			Validator: func(value int) error {
				return FlagValidators(value, PositiveValidator)
			},
		},
	}
}

// pathHas reports whether target is an executable on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
