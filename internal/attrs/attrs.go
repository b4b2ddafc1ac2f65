// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package attrs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var lengthRe = regexp.MustCompile(`-?\d+`)

// Attr represents one column of tabular output. Rows are flat JSON objects
// keyed by food field (name, number) and nutrition attribute (energy, fat...).
type Attr struct {
	// The gjson path to extract from each row.
	Key string
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool
	// The key to use in the output. This is also the column title when
	// output=text.
	OutputKey string
	// Transformation spec to apply to the output value.
	TransformSpec string
}

// Transform applies the spec to value. Case (l/u) and length (N keeps the
// first N runes, -N elides the middle) apply to strings; a length applied to
// a number rounds it to that many decimals.
func (a *Attr) Transform(value interface{}) interface{} {
	digits, hasDigits := a.lastLength()

	if f, ok := value.(float64); ok {
		if !hasDigits {
			return f
		}
		scale := math.Pow(10, math.Abs(float64(digits)))
		return math.Round(f*scale) / scale
	}

	result, ok := value.(string)
	if !ok {
		return value
	}

	// We need to know which case transformation appears last. This covers the
	// case where there has been a global case transformation prepended to the
	// attrs transformation and, thus, allows the attr's to carry more weight.
	// IOW...  --attrs '*::U,name::l' will be lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	if hasDigits {
		runes := []rune(result)
		abs := digits
		if abs < 0 {
			abs = -abs
		}
		if len(runes) > abs {
			if digits < 0 {
				keep := abs/2 - 1
				if keep < 1 {
					keep = 1
				}
				result = string(runes[:keep]) + ".." + string(runes[len(runes)-keep:])
			} else {
				result = string(runes[:abs])
			}
		}
	}

	return result
}

// lastLength returns the last number in the spec. A more specific length
// appended after a global one overrides it.
func (a *Attr) lastLength() (int, bool) {
	match := lengthRe.FindAllString(a.TransformSpec, -1)
	if len(match) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(match[len(match)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}

type AttrList []Attr

// Return a string representation of the AttrList.  This should match the format
// of the original --attrs flag.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Parse each spec from the --attrs flag and add it to the AttrList.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

	// There are three : delimited fields in each spec. The first is the key to
	// extract from the row. The second is the key to use in the output. The
	// third is the transformation spec to apply to the output value. The latter
	// two are optional. The output key will default to the last section of the
	// row key.
specloop:
	for _, spec := range strings.Split(value, ",") {
		attr := Attr{
			Include: true,
		}

		fields := strings.Split(spec, ":")

		// If the key begins with a !, it is excluded from the output.
		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		attr.Key = strings.TrimPrefix(attr.Key, ".")

		if attr.Key == "" {
			return fmt.Errorf("empty attribute in spec %q", spec)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 || strings.TrimSpace(fields[outputIdx]) == "" {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// If the attr already exists in the list (because it's one of the defaults
		// for cmd or the user double-entered it) just apply the OutputKey, Include
		// and TransformSpec to the existing Attr.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec inserts a global transform spec into the front of all
// attrs in the list.
func (alist *AttrList) SetGlobalTransformSpec() error {
	spec := ""

	// Find the global transform spec.  If there is more than one, we're not
	// dealing with it and just taking the first.
	for a := range *alist {
		if (*alist)[a].Key == "*" {
			spec = (*alist)[a].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for a := range *alist {
		(*alist)[a].TransformSpec = spec + "," + (*alist)[a].TransformSpec
	}

	return nil
}

func (a *AttrList) Type() string {
	return "list"
}

// Included returns the attrs that are rendered, in order.
func (a AttrList) Included() []Attr {
	var out []Attr
	for _, attr := range a {
		if attr.Include {
			out = append(out, attr)
		}
	}
	return out
}
