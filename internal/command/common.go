// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"reflect"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/nutrictl/internal/attrs"
	"github.com/staranto/nutrictl/internal/meta"
	"github.com/staranto/nutrictl/internal/output"
	"github.com/staranto/nutrictl/internal/provider"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr nutrictl-<subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if !cmd.Bool("tldr") {
		return false
	}
	if _, err := exec.LookPath("tldr"); err == nil {
		m := GetMeta(cmd)
		c := exec.CommandContext(ctx, "tldr", "nutrictl-"+subcmd)
		c.Stdout = m.Stdout
		c.Stderr = m.Stderr
		_ = c.Run()
	}
	return true
}

// DumpSchemaIfRequested prints the queryable attributes of the provided type
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(GetMeta(cmd).Stdout, t)
		return true
	}
	return false
}

// ShowExamplesIfRequested prints examples when --examples is set, and returns
// true if it handled the request.
func ShowExamplesIfRequested(cmd *cli.Command, examples [][2]string) bool {
	if cmd.Bool("examples") {
		output.DumpExamples(GetMeta(cmd).Stdout, examples)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (attrs.AttrList, error) {
	var al attrs.AttrList
	for _, d := range defaults {
		if err := al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, fmt.Errorf("--attrs: %w", err)
		}
	}
	if err := al.SetGlobalTransformSpec(); err != nil {
		return nil, err
	}
	return al, nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// NewProvider builds the provider selected by the provider flags. An unknown
// provider fails here, before any network or cache activity.
func NewProvider(cmd *cli.Command) (provider.Provider, error) {
	name := cmd.String("provider")
	log.WithFields(log.Fields{
		"provider":    name,
		"api_version": cmd.String("api-version"),
		"data_dir":    cmd.String("data-dir"),
	}).Debug("opening provider")

	return provider.New(name,
		provider.WithAPIVersion(cmd.String("api-version")),
		provider.WithBaseURL(cmd.String("base-url")),
		provider.WithDataDir(cmd.String("data-dir")),
		provider.WithHTTPClient(&http.Client{Timeout: cmd.Duration("timeout")}),
		provider.WithSuggestLimit(cmd.Int("suggest-limit")),
	)
}

// FoodName joins the positional args so that multi-word names need no
// quoting: `nutrictl lookup Nöt talg`.
func FoodName(cmd *cli.Command) string {
	return strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
}

// NotFoundError is returned when no food matches the requested name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no food named %q", e.Name)
}

// CommandBuilder constructs a cli.Command using a consistent pattern. The
// builder wires metadata, adds the tldr and examples flags, applies the flags
// of the command's kind and sets up validators.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
	Commands  []*cli.Command
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags:    append(cb.Flags, newTldrFlag(), newExamplesFlag()),
		Commands: cb.Commands,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: cb.Action,
	}
}

// GlobalFlagsValidator checks flag combinations that a single flag's
// validator cannot.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.IsSet("filter") && c.String("output") == "raw" {
		return fmt.Errorf("--filter cannot be used with --output raw")
	}
	return nil
}
