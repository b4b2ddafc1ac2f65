// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package nutrition

import (
	"encoding/json"
)

// Facts are the nutrition facts of one food item as reported by a registry.
// Attributes the registry did not report are absent, not zero. A Facts value
// is never modified after NewFacts returns it.
type Facts struct {
	name   string
	number int
	values map[Attribute]Value
}

// NewFacts builds Facts from values. Values with an invalid attribute are
// dropped; a later value for the same attribute replaces an earlier one.
func NewFacts(name string, number int, values ...Value) Facts {
	f := Facts{
		name:   name,
		number: number,
		values: make(map[Attribute]Value, len(values)),
	}
	for _, v := range values {
		if !v.Attribute.Valid() {
			continue
		}
		f.values[v.Attribute] = v
	}
	return f
}

// Name is the food's name as the registry spells it.
func (f Facts) Name() string { return f.name }

// Number is the registry's own identifier for the food.
func (f Facts) Number() int { return f.number }

// Len is the number of attributes present.
func (f Facts) Len() int { return len(f.values) }

// Get returns the value reported for a, if any.
func (f Facts) Get(a Attribute) (Value, bool) {
	v, ok := f.values[a]
	return v, ok
}

// Values returns the present values in attribute declaration order.
func (f Facts) Values() []Value {
	out := make([]Value, 0, len(f.values))
	for _, a := range Attributes() {
		if v, ok := f.values[a]; ok {
			out = append(out, v)
		}
	}
	return out
}

type quantityDoc struct {
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
	Unit      string  `json:"unit" yaml:"unit"`
}

type factsDoc struct {
	Name   string                 `json:"name" yaml:"name"`
	Number int                    `json:"number" yaml:"number"`
	Facts  map[string]quantityDoc `json:"facts" yaml:"facts"`
}

func (f Facts) document() (factsDoc, error) {
	doc := factsDoc{
		Name:   f.name,
		Number: f.number,
		Facts:  make(map[string]quantityDoc, len(f.values)),
	}
	for _, v := range f.Values() {
		q, err := v.Canonical()
		if err != nil {
			return factsDoc{}, err
		}
		doc.Facts[v.Attribute.String()] = quantityDoc{Magnitude: q.Magnitude, Unit: q.Unit.Symbol}
	}
	return doc, nil
}

// MarshalJSON renders every value in canonical units.
func (f Facts) MarshalJSON() ([]byte, error) {
	doc, err := f.document()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// MarshalYAML renders every value in canonical units.
func (f Facts) MarshalYAML() (interface{}, error) {
	return f.document()
}
