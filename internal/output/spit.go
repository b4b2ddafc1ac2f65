// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/nutrictl/internal/attrs"
	"github.com/staranto/nutrictl/internal/config"
	"github.com/staranto/nutrictl/internal/filters"
)

// Options control how a dataset is filtered, sorted and rendered.
type Options struct {
	// Output is one of text, json, yaml or raw.
	Output string
	Filter string
	Sort   string
	Color  bool
	Titles bool
}

// OptionsFromCommand collects the output flags of cmd.
func OptionsFromCommand(cmd *cli.Command) Options {
	return Options{
		Output: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Color:  cmd.Bool("color"),
		Titles: cmd.Bool("titles"),
	}
}

// SliceDiceSpit filters, transforms, sorts and renders raw, a JSON array of
// rows, according to attrs and opts.
func SliceDiceSpit(raw []byte, attrs attrs.AttrList, opts Options, w io.Writer) error {
	// If raw, just dump it and go home.
	if opts.Output == "raw" {
		_, err := w.Write(raw)
		return err
	}

	// Filter first so the remaining steps work on a smaller dataset.
	dataset := filters.FilterDataset(gjson.ParseBytes(raw), attrs, opts.Filter)

	for _, row := range dataset {
		for _, attr := range attrs {
			if attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	SortDataset(dataset, opts.Sort)
	log.Debugf("rendering %d rows as %q", len(dataset), opts.Output)

	switch opts.Output {
	case "json":
		out, err := json.Marshal(visible(dataset, attrs))
		if err != nil {
			return fmt.Errorf("marshaling rows: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(visible(dataset, attrs))
		if err != nil {
			return fmt.Errorf("marshaling rows: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		TableWriter(dataset, attrs, opts, w)
	}

	return nil
}

// visible drops the columns that were only wanted for filtering and sorting.
// A missing value stays absent instead of becoming null.
func visible(rows []map[string]interface{}, attrs attrs.AttrList) []map[string]interface{} {
	included := attrs.Included()
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		v := make(map[string]interface{}, len(included))
		for _, attr := range included {
			if value := row[attr.OutputKey]; value != nil {
				v[attr.OutputKey] = value
			}
		}
		out = append(out, v)
	}
	return out
}

// TableWriter renders the result set in a tabular form honoring color,
// titles and padding options.
func TableWriter(
	resultSet []map[string]interface{},
	attrs attrs.AttrList,
	opts Options,
	w io.Writer) {

	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 1)

	var rows [][]string
	for _, result := range resultSet {
		row := make([]string, 0, len(attrs))
		for _, attr := range attrs.Included() {
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		var headers []string
		for _, attr := range attrs.Included() {
			headers = append(headers, attr.OutputKey)
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided for nil and the empty string.
// Zero numbers are real measurements and are printed as such.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		if value == "" {
			return emptyValue[0]
		}
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return humanize.FtoaWithDigits(value, 3)
	case bool:
		return strconv.FormatBool(value)
	default:
		if rv := reflect.ValueOf(value); (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.Len() == 0 {
			return emptyValue[0]
		}
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}

// DumpExamples renders a table of example command usages.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}

	var rows [][]string
	for _, ex := range examples {
		rows = append(rows, []string{ex[0], ex[1]})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers("Command", "Description").
		BorderHeader(false).
		Rows(rows...)

	fmt.Fprintln(w, t)
}
