// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/v2"
	"gopkg.in/yaml.v2"

	"github.com/staranto/nutrictl/internal/nutrition"
)

// WriteFacts renders the facts of one food. Text output is one
// "attribute: magnitude unit" line per present attribute, in attribute
// order; json, yaml and raw render the whole document in canonical units.
func WriteFacts(w io.Writer, facts nutrition.Facts, opts Options) error {
	switch opts.Output {
	case "json", "raw":
		out, err := json.Marshal(facts)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", facts.Name(), err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(facts)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", facts.Name(), err)
		}
		_, err = w.Write(out)
		return err
	}

	if opts.Titles {
		title := lipgloss.NewStyle()
		if opts.Color {
			header, _, _ := getColors("colors")
			title = title.Foreground(lipgloss.Color(header)).Bold(true)
		}
		if _, err := fmt.Fprintln(w, title.Render(fmt.Sprintf("%s (%d)", facts.Name(), facts.Number()))); err != nil {
			return err
		}
	}

	for _, v := range facts.Values() {
		q, err := v.Canonical()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", v.Attribute, q); err != nil {
			return err
		}
	}
	return nil
}

// WriteNames renders a list of food names, one per line for text output.
func WriteNames(w io.Writer, names []string, opts Options) error {
	if names == nil {
		names = []string{}
	}

	switch opts.Output {
	case "json", "raw":
		out, err := json.Marshal(names)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(names)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}

	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
