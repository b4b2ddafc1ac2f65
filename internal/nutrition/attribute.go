// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package nutrition

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAttribute is returned when a name does not match any Attribute.
var ErrUnknownAttribute = errors.New("unknown nutrition attribute")

// Attribute identifies one nutrition fact. The set is closed; the zero value
// is not a valid Attribute.
type Attribute int

const (
	Energy Attribute = iota + 1
	Fat
	Saturates
	Carbohydrates
	Sugars
	Protein
	Phosphorous
	Iodine
	Iron
	Calcium
	Potassium
	Magnesium
	Sodium
	Salt
	Selenium
	Zinc

	attributeEnd
)

type attributeInfo struct {
	name      string
	canonical Unit
}

// attributeTable is indexed by Attribute. Index 0 is the invalid zero value.
var attributeTable = [attributeEnd]attributeInfo{
	Energy:        {"energy", Kilojoule},
	Fat:           {"fat", Gram},
	Saturates:     {"saturates", Gram},
	Carbohydrates: {"carbohydrates", Gram},
	Sugars:        {"sugars", Gram},
	Protein:       {"protein", Gram},
	Phosphorous:   {"phosphorous", Milligram},
	Iodine:        {"iodine", Microgram},
	Iron:          {"iron", Milligram},
	Calcium:       {"calcium", Milligram},
	Potassium:     {"potassium", Milligram},
	Magnesium:     {"magnesium", Milligram},
	Sodium:        {"sodium", Milligram},
	Salt:          {"salt", Gram},
	Selenium:      {"selenium", Microgram},
	Zinc:          {"zinc", Milligram},
}

// Attributes returns every Attribute in declaration order. The slice is a
// fresh copy on each call.
func Attributes() []Attribute {
	all := make([]Attribute, 0, attributeEnd-1)
	for a := Energy; a < attributeEnd; a++ {
		all = append(all, a)
	}
	return all
}

// Valid reports whether a is a member of the closed attribute set.
func (a Attribute) Valid() bool {
	return a >= Energy && a < attributeEnd
}

func (a Attribute) String() string {
	if !a.Valid() {
		return fmt.Sprintf("attribute(%d)", int(a))
	}
	return attributeTable[a].name
}

// CanonicalUnit is the unit every value of a is normalized to. It returns
// the zero Unit for an invalid Attribute.
func (a Attribute) CanonicalUnit() Unit {
	if !a.Valid() {
		return Unit{}
	}
	return attributeTable[a].canonical
}

// ParseAttribute maps a name such as "fat" or "Protein" to its Attribute.
func ParseAttribute(name string) (Attribute, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a := Energy; a < attributeEnd; a++ {
		if attributeTable[a].name == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownAttribute)
}

// MarshalText lets an Attribute be used as a JSON/YAML map key.
func (a Attribute) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%d: %w", int(a), ErrUnknownAttribute)
	}
	return []byte(a.String()), nil
}

func (a *Attribute) UnmarshalText(text []byte) error {
	parsed, err := ParseAttribute(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
