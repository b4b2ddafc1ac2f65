// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/nutrictl/internal/nutrition"
)

// Tag is one queryable column discovered from a struct's json tags
// (--schema flag).
type Tag struct {
	Name string
	// Unit is the canonical unit for nutrition attributes, empty otherwise.
	Unit string
}

// NewTag constructs a Tag from a raw json tag value and an optional holder
// prefix used to build hierarchical attribute names.
func NewTag(h string, s string) Tag {
	name, _, _ := strings.Cut(s, ",")
	if name == "" || name == "-" {
		return Tag{}
	}

	if h != "" {
		name = h + "." + name
	}

	tag := Tag{Name: name}
	if a, err := nutrition.ParseAttribute(name); err == nil {
		tag.Unit = a.CanonicalUnit().Symbol
	}
	return tag
}

// Print renders the tag into its display form.
func (t Tag) Print() string {
	if t.Unit == "" {
		return t.Name
	}
	return fmt.Sprintf("%s (%s)", t.Name, t.Unit)
}

// DumpSchema prints the columns of typ available to --attrs, --filter and
// --sort.
func DumpSchema(w io.Writer, typ reflect.Type) {
	tags := DumpSchemaWalker("", typ, 0)
	if len(tags) == 0 {
		log.Debugf("no tags found for type: %s", typ.Name())
		return
	}

	// Plain columns first, then the nutrition attributes, each in field order.
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Unit == "" && tags[j].Unit != ""
	})

	fmt.Fprintln(w, "Schema for", typ.Name(), "--")
	for _, tag := range tags {
		fmt.Fprintln(w, tag.Print())
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w,
		`Attributes are stored in the unit shown. Filters may name another unit of
the same kind, as in --filter 'iron<2000µg' or --filter 'energy>200kcal'.`)
}

const maxSchemaDepth = 1

// DumpSchemaWalker recursively walks a struct type discovering json tags.
func DumpSchemaWalker(holder string, typ reflect.Type, depth int) []Tag {
	tags := make([]Tag, 0)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		tagValue, ok := field.Tag.Lookup("json")
		if !ok {
			continue
		}

		tag := NewTag(holder, tagValue)
		if tag.Name == "" {
			continue
		}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && depth < maxSchemaDepth {
			tags = append(tags, DumpSchemaWalker(tag.Name, ft, depth+1)...)
			continue
		}

		tags = append(tags, tag)
	}

	return tags
}
