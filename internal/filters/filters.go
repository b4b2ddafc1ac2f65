// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/nutrictl/internal/attrs"
	"github.com/staranto/nutrictl/internal/nutrition"
)

// filterRegex splits a filter expression into key, operator and target.
// Operators are one of = ^ ~ < > @ or /, optionally prefixed with '!'.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// targetRegex splits a numeric target into magnitude and optional unit, as in
// "1000", "2.5g" or "300 mg".
var targetRegex = regexp.MustCompile(`^\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)\s*(\S*)\s*$`)

// Filter represents a single parsed --filter expression including the key,
// operand, optional negation and target value.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Malformed expressions are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	delim := ","
	if d, ok := os.LookupEnv("NUTRICTL_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, expr := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(expr)
		if parts == nil || strings.TrimSpace(parts[1]) == "" {
			log.Error("invalid filter: " + expr)
			continue
		}

		operand, negate := strings.CutPrefix(parts[2], "!")
		filters = append(filters, Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  negate,
			Operand: operand,
			Target:  parts[3],
		})
	}

	return filters
}

// FilterDataset returns the rows of candidates that pass every filter in
// spec, each reduced to the keys named by attrs.
func FilterDataset(candidates gjson.Result, attrs attrs.AttrList, spec string) []map[string]interface{} {
	//nolint:prealloc // Don't prealloc because we don't know what len will be.
	var filteredResults []map[string]interface{}

	filters := BuildFilters(spec)

	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, attrs, filters) {
			continue
		}

		// Transforms are applied downstream during output formatting.
		result := make(map[string]interface{}, len(attrs))
		for _, attr := range attrs {
			result[attr.OutputKey] = candidate.Get(attr.Key).Value()
		}
		filteredResults = append(filteredResults, result)
	}

	return filteredResults
}

// applyFilters returns true if the candidate row matches all of the provided
// filters. A filter key is matched against the attrs' output keys first and
// then used as a row path as is, so any attribute can be filtered on without
// being displayed.
func applyFilters(candidate gjson.Result, attrs attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		key := filter.Key
		for _, attr := range attrs {
			if attr.OutputKey == filter.Key {
				key = attr.Key
				break
			}
		}

		// A missing value fails the row. An attribute the registry did not
		// report is neither above nor below any threshold.
		value := candidate.Get(key)
		if !value.Exists() || value.Type == gjson.Null {
			return false
		}

		var ok bool
		switch value.Type {
		case gjson.Number:
			ok = checkNumericOperand(key, value.Float(), filter)
		case gjson.String:
			ok = checkStringOperand(value.String(), filter)
		case gjson.True, gjson.False:
			ok = checkStringOperand(value.String(), filter)
		default:
			ok = checkContainsOperand(value, filter)
		}

		if !ok {
			return false
		}
	}

	return true
}

// checkContainsOperand evaluates '@' against array and object values.
func checkContainsOperand(value gjson.Result, filter Filter) bool {
	if filter.Operand != "@" {
		log.Errorf("unsupported operand %s for %s", filter.Operand, value.Type)
		return false
	}

	found := false
	switch {
	case value.IsArray():
		for _, item := range value.Array() {
			if item.String() == filter.Target {
				found = true
				break
			}
		}
	case value.IsObject():
		found = value.Get(gjson.Escape(filter.Target)).Exists()
	default:
		log.Errorf("unsupported type for contains filtering: %s", value.Type)
		return false
	}

	return found != filter.Negate
}

// checkNumericOperand compares a number against the filter target. A target
// may carry a unit, in which case it is converted to the canonical unit of
// the attribute named by key before comparing: "energy>1000kJ", "iron<2mg".
func checkNumericOperand(key string, value float64, filter Filter) bool {
	tgt, err := parseTarget(key, filter.Target)
	if err != nil {
		log.WithError(err).Error("invalid numeric target: " + filter.Target)
		return false
	}

	var result bool
	switch filter.Operand {
	case "=":
		result = value == tgt
	case ">":
		result = value > tgt
	case "<":
		result = value < tgt
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}

	return result != filter.Negate
}

func parseTarget(key, target string) (float64, error) {
	parts := targetRegex.FindStringSubmatch(target)
	if parts == nil {
		return 0, fmt.Errorf("not a number: %q", target)
	}

	magnitude, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	if parts[2] == "" {
		return magnitude, nil
	}

	unit, err := nutrition.ParseUnit(parts[2])
	if err != nil {
		return 0, err
	}
	attribute, err := nutrition.ParseAttribute(key)
	if err != nil {
		return 0, fmt.Errorf("unit %s given for %s: %w", unit, key, err)
	}
	q, err := nutrition.CanonicalQuantity(attribute, magnitude, unit)
	if err != nil {
		return 0, err
	}
	return q.Magnitude, nil
}

// checkStringOperand evaluates a string comparison style filter against the
// provided value using the operand semantics.
func checkStringOperand(value string, filter Filter) bool {
	var result bool
	switch filter.Operand {
	case "=":
		result = value == filter.Target
	case "~":
		result = strings.EqualFold(value, filter.Target)
	case "^":
		result = strings.HasPrefix(value, filter.Target)
	case ">":
		result = value > filter.Target
	case "<":
		result = value < filter.Target
	case "@":
		result = strings.Contains(value, filter.Target)
	case "/":
		re, err := regexp.Compile(filter.Target)
		if err != nil {
			log.Error("invalid regex: " + filter.Target)
			return false
		}
		result = re.MatchString(value)
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}

	return result != filter.Negate
}
