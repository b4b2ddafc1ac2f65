// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package nutrition

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownUnit is returned when a unit label is not in the unit table.
var ErrUnknownUnit = errors.New("unknown unit")

// Dimension is the physical dimension a Unit measures. Conversion is only
// defined between units of the same dimension.
type Dimension int

const (
	DimensionNone Dimension = iota
	DimensionMass
	DimensionEnergy
)

func (d Dimension) String() string {
	switch d {
	case DimensionMass:
		return "mass"
	case DimensionEnergy:
		return "energy"
	default:
		return "none"
	}
}

// Unit is a unit of measure. The zero Unit means "no unit given" and is
// treated by the conversion functions as the attribute's canonical unit.
//
// scale is the size of one Unit expressed in the dimension's base unit
// (micrograms for mass, joules for energy). Base units were picked so the
// common nutrition units have integral scales and conversions between them
// stay exact.
type Unit struct {
	Symbol    string
	Dimension Dimension
	scale     float64
}

var (
	Microgram = Unit{Symbol: "µg", Dimension: DimensionMass, scale: 1}
	Milligram = Unit{Symbol: "mg", Dimension: DimensionMass, scale: 1e3}
	Gram      = Unit{Symbol: "g", Dimension: DimensionMass, scale: 1e6}
	Kilogram  = Unit{Symbol: "kg", Dimension: DimensionMass, scale: 1e9}

	Joule       = Unit{Symbol: "J", Dimension: DimensionEnergy, scale: 1}
	Kilojoule   = Unit{Symbol: "kJ", Dimension: DimensionEnergy, scale: 1e3}
	Calorie     = Unit{Symbol: "cal", Dimension: DimensionEnergy, scale: 4.184}
	Kilocalorie = Unit{Symbol: "kcal", Dimension: DimensionEnergy, scale: 4184}
)

// unitsBySymbol maps every accepted label, aliases included, to its Unit.
var unitsBySymbol = map[string]Unit{
	"µg":   Microgram,
	"μg":   Microgram, // Greek mu, U+03BC
	"ug":   Microgram,
	"mcg":  Microgram,
	"mg":   Milligram,
	"g":    Gram,
	"kg":   Kilogram,
	"J":    Joule,
	"kJ":   Kilojoule,
	"cal":  Calorie,
	"kcal": Kilocalorie,
}

// IsZero reports whether u is the "no unit given" value.
func (u Unit) IsZero() bool {
	return u == Unit{}
}

func (u Unit) String() string {
	return u.Symbol
}

// Is reports whether u and o are the same unit. Aliases parse to the same
// Unit so they compare equal.
func (u Unit) Is(o Unit) bool {
	return u == o
}

// ParseUnit resolves a unit label as reported by the registry. Labels are
// case sensitive (mg and Mg are not the same thing) but surrounding spaces
// are ignored.
func ParseUnit(label string) (Unit, error) {
	label = strings.TrimSpace(label)
	if u, ok := unitsBySymbol[label]; ok {
		return u, nil
	}
	return Unit{}, fmt.Errorf("%q: %w", label, ErrUnknownUnit)
}

// Convert expresses magnitude, given in from, in the unit to. It fails with
// an *IncompatibleUnitError when the two units measure different
// dimensions.
func Convert(magnitude float64, from, to Unit) (float64, error) {
	if from.Is(to) {
		return magnitude, nil
	}
	if from.Dimension != to.Dimension || from.Dimension == DimensionNone {
		return 0, &IncompatibleUnitError{From: from, To: to}
	}
	// Multiply first so integral scales give exact results (1000 mg -> 1 g).
	return magnitude * from.scale / to.scale, nil
}

// IncompatibleUnitError reports an attempt to convert between units of
// different dimensions, such as grams to kilojoules.
type IncompatibleUnitError struct {
	Attribute Attribute
	From      Unit
	To        Unit
}

func (e *IncompatibleUnitError) Error() string {
	msg := fmt.Sprintf("cannot convert %s (%s) to %s (%s)",
		e.From.Symbol, e.From.Dimension, e.To.Symbol, e.To.Dimension)
	if e.Attribute.Valid() {
		return e.Attribute.String() + ": " + msg
	}
	return msg
}
