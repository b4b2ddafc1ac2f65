// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/staranto/nutrictl/internal/nutrition"
	"github.com/staranto/nutrictl/internal/registry"
)

// Food is one cached row. Each attribute has its own nullable column holding
// the magnitude in the attribute's canonical unit; NULL means the registry
// did not report it.
type Food struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	Name   string `gorm:"not null;index" json:"name"`
	Number int    `gorm:"not null" json:"number"`
	// Folded is Name case-folded, for substring search.
	Folded string `gorm:"not null;index" json:"-"`

	Energy        *float64 `json:"energy,omitempty"`
	Fat           *float64 `json:"fat,omitempty"`
	Saturates     *float64 `json:"saturates,omitempty"`
	Carbohydrates *float64 `json:"carbohydrates,omitempty"`
	Sugars        *float64 `json:"sugars,omitempty"`
	Protein       *float64 `json:"protein,omitempty"`
	Phosphorous   *float64 `json:"phosphorous,omitempty"`
	Iodine        *float64 `json:"iodine,omitempty"`
	Iron          *float64 `json:"iron,omitempty"`
	Calcium       *float64 `json:"calcium,omitempty"`
	Potassium     *float64 `json:"potassium,omitempty"`
	Magnesium     *float64 `json:"magnesium,omitempty"`
	Sodium        *float64 `json:"sodium,omitempty"`
	Salt          *float64 `json:"salt,omitempty"`
	Selenium      *float64 `json:"selenium,omitempty"`
	Zinc          *float64 `json:"zinc,omitempty"`
}

// TableName keeps the table name stable regardless of the struct name.
func (Food) TableName() string {
	return "food_nutrition_facts"
}

func (f *Food) column(a nutrition.Attribute) **float64 {
	switch a {
	case nutrition.Energy:
		return &f.Energy
	case nutrition.Fat:
		return &f.Fat
	case nutrition.Saturates:
		return &f.Saturates
	case nutrition.Carbohydrates:
		return &f.Carbohydrates
	case nutrition.Sugars:
		return &f.Sugars
	case nutrition.Protein:
		return &f.Protein
	case nutrition.Phosphorous:
		return &f.Phosphorous
	case nutrition.Iodine:
		return &f.Iodine
	case nutrition.Iron:
		return &f.Iron
	case nutrition.Calcium:
		return &f.Calcium
	case nutrition.Potassium:
		return &f.Potassium
	case nutrition.Magnesium:
		return &f.Magnesium
	case nutrition.Sodium:
		return &f.Sodium
	case nutrition.Salt:
		return &f.Salt
	case nutrition.Selenium:
		return &f.Selenium
	case nutrition.Zinc:
		return &f.Zinc
	}
	return nil
}

// Value returns the canonical magnitude stored for a.
func (f *Food) Value(a nutrition.Attribute) (float64, bool) {
	col := f.column(a)
	if col == nil || *col == nil {
		return 0, false
	}
	return **col, true
}

// SetValue stores a canonical magnitude for a. Invalid attributes are ignored.
func (f *Food) SetValue(a nutrition.Attribute, magnitude float64) {
	if col := f.column(a); col != nil {
		*col = &magnitude
	}
}

// Facts wraps the row as nutrition facts. Stored magnitudes are canonical so
// the values carry no unit of their own.
func (f *Food) Facts() nutrition.Facts {
	var values []nutrition.Value
	for _, a := range nutrition.Attributes() {
		if m, ok := f.Value(a); ok {
			values = append(values, nutrition.NewValue(a, m))
		}
	}
	return nutrition.NewFacts(f.Name, f.Number, values...)
}

// FoodFromRecord converts a parsed record to a row, normalizing every value
// to its canonical unit and the name to Unicode NFC.
func FoodFromRecord(rec registry.Record) (Food, error) {
	food := Food{
		Name:   NormalizeName(rec.Name),
		Number: rec.Number,
	}
	for _, v := range rec.Values {
		q, err := nutrition.CanonicalQuantity(v.Attribute, v.Magnitude, v.Unit)
		if err != nil {
			return Food{}, err
		}
		food.SetValue(v.Attribute, q.Magnitude)
	}
	return food, nil
}

// NormalizeName puts a food name in NFC so that names typed on terminals
// producing decomposed characters (a + combining ring) match the registry's
// precomposed spelling (å).
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// FoldName is the case-insensitive form of a name. Unlike SQLite's LIKE it
// folds Å, Ä and Ö as well as ASCII.
func FoldName(name string) string {
	return norm.NFC.String(cases.Fold().String(NormalizeName(name)))
}
