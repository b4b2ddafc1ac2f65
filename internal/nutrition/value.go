// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package nutrition

import (
	"strconv"
)

// Quantity is a magnitude paired with the unit it is expressed in.
type Quantity struct {
	Magnitude float64
	Unit      Unit
}

func (q Quantity) String() string {
	return strconv.FormatFloat(q.Magnitude, 'f', -1, 64) + " " + q.Unit.Symbol
}

// Value is one reported fact for an attribute. A zero Unit means the
// magnitude is already in the attribute's canonical unit.
type Value struct {
	Attribute Attribute
	Magnitude float64
	Unit      Unit
}

// NewValue builds a Value whose magnitude is already canonical.
func NewValue(a Attribute, magnitude float64) Value {
	return Value{Attribute: a, Magnitude: magnitude}
}

// Canonical returns v expressed in its attribute's canonical unit.
func (v Value) Canonical() (Quantity, error) {
	return CanonicalQuantity(v.Attribute, v.Magnitude, v.Unit)
}

// CanonicalQuantity converts magnitude, given in unit, to the canonical unit
// of a. An omitted (zero) unit is trusted as canonical. A unit of a different
// dimension than the canonical one fails with *IncompatibleUnitError.
func CanonicalQuantity(a Attribute, magnitude float64, unit Unit) (Quantity, error) {
	canonical := a.CanonicalUnit()
	if canonical.IsZero() {
		return Quantity{}, &IncompatibleUnitError{Attribute: a, From: unit, To: canonical}
	}
	if unit.IsZero() {
		return Quantity{Magnitude: magnitude, Unit: canonical}, nil
	}

	m, err := Convert(magnitude, unit, canonical)
	if err != nil {
		return Quantity{}, &IncompatibleUnitError{Attribute: a, From: unit, To: canonical}
	}
	return Quantity{Magnitude: m, Unit: canonical}, nil
}
