// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type sortKey struct {
	name       string
	descending bool
	collator   *collate.Collator
}

// SortDataset sorts rows in place by the comma separated keys in spec. A key
// prefixed with '-' sorts descending, one prefixed with '!' compares strings
// case sensitively. Prefixes may be combined ("-!name"). Strings are ordered
// the Swedish way so that å, ä and ö follow z. Rows missing a key sort last
// regardless of direction.
func SortDataset(rows []map[string]interface{}, spec string) {
	if spec == "" {
		return
	}

	var keys []sortKey
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		k := sortKey{}
		caseSensitive := false
		for len(field) > 0 && (field[0] == '-' || field[0] == '!') {
			if field[0] == '-' {
				k.descending = true
			} else {
				caseSensitive = true
			}
			field = field[1:]
		}
		if field == "" {
			continue
		}
		k.name = field
		if caseSensitive {
			k.collator = collate.New(language.Swedish)
		} else {
			k.collator = collate.New(language.Swedish, collate.IgnoreCase)
		}
		keys = append(keys, k)
	}

	slices.SortStableFunc(rows, func(a, b map[string]interface{}) int {
		for _, k := range keys {
			if c := k.compare(a[k.name], b[k.name]); c != 0 {
				return c
			}
		}
		return 0
	})
}

func (k sortKey) compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	var c int
	fa, aNum := a.(float64)
	fb, bNum := b.(float64)
	switch {
	case aNum && bNum:
		c = cmp.Compare(fa, fb)
	case aNum:
		c = -1
	case bNum:
		c = 1
	default:
		c = k.collator.CompareString(InterfaceToString(a), InterfaceToString(b))
	}

	if k.descending {
		return -c
	}
	return c
}
