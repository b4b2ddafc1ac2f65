// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"golang.org/x/net/html/charset"

	"github.com/staranto/nutrictl/internal/nutrition"
)

const foodTag = "Livsmedel"

// ShortCodes maps each attribute to the Forkortning labels the registry tags
// its values with. Energy is reported twice (kcal and kJ) under the same
// code, so the unit is what picks the right entry.
var ShortCodes = map[nutrition.Attribute][]string{
	nutrition.Energy:        {"Ener", "Enkj"},
	nutrition.Fat:           {"Fett"},
	nutrition.Saturates:     {"Mfet"},
	nutrition.Carbohydrates: {"Kolh"},
	nutrition.Sugars:        {"Mono/disack"},
	nutrition.Protein:       {"Prot"},
	nutrition.Phosphorous:   {"P"},
	nutrition.Iodine:        {"I"},
	nutrition.Iron:          {"Fe"},
	nutrition.Calcium:       {"Ca"},
	nutrition.Potassium:     {"K"},
	nutrition.Magnesium:     {"Mg"},
	nutrition.Sodium:        {"Na"},
	nutrition.Salt:          {"NaCl"},
	nutrition.Selenium:      {"Se"},
	nutrition.Zinc:          {"Zn"},
}

// RawValue is one attribute value as found in the feed, already matched
// against the attribute's canonical unit.
type RawValue struct {
	Attribute nutrition.Attribute
	Magnitude float64
	Unit      nutrition.Unit
}

// Record is the parsed form of one food element.
type Record struct {
	Number int
	Name   string
	Values []RawValue
}

// Get returns the value for a, if the food element reported one.
func (r Record) Get(a nutrition.Attribute) (RawValue, bool) {
	for _, v := range r.Values {
		if v.Attribute == a {
			return v, true
		}
	}
	return RawValue{}, false
}

type foodElement struct {
	Number    *string           `xml:"Nummer"`
	Name      *string           `xml:"Namn"`
	Nutrition *nutritionSection `xml:"Naringsvarden"`
}

type nutritionSection struct {
	Entries []nutritionEntry `xml:"Naringsvarde"`
}

type nutritionEntry struct {
	Name  string `xml:"Namn"`
	Code  string `xml:"Forkortning"`
	Value string `xml:"Varde"`
	Unit  string `xml:"Enhet"`
}

// Parse streams the food elements of a nutrition values feed. Elements
// without a nutrition section are skipped silently. A *MissingFieldError or
// *MalformedValueError is yielded in place of the record it concerns and
// iteration continues if the consumer keeps ranging; XML syntax errors end
// the sequence.
func Parse(r io.Reader) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		dec := xml.NewDecoder(r)
		dec.CharsetReader = charset.NewReaderLabel
		for {
			tok, err := dec.Token()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Record{}, fmt.Errorf("failed to read feed: %w", err))
				return
			}

			start, ok := tok.(xml.StartElement)
			if !ok || start.Name.Local != foodTag {
				continue
			}

			var elem foodElement
			if err := dec.DecodeElement(&elem, &start); err != nil {
				yield(Record{}, fmt.Errorf("failed to decode <%s>: %w", foodTag, err))
				return
			}

			if elem.Nutrition == nil {
				continue
			}

			rec, err := elem.record(dec.InputOffset())
			if !yield(rec, err) {
				return
			}
		}
	}
}

// ParseFile is Parse over a file on disk. The file is opened each time the
// sequence is ranged over, so the sequence can be replayed.
func ParseFile(path string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(Record{}, fmt.Errorf("failed to open feed: %w", err))
			return
		}
		defer f.Close()

		for rec, err := range Parse(f) {
			if !yield(rec, err) {
				return
			}
		}
	}
}

func (e foodElement) record(offset int64) (Record, error) {
	// An empty tag identifies nothing, same as a missing one.
	if e.Number == nil || strings.TrimSpace(*e.Number) == "" {
		return Record{}, &MissingFieldError{Field: "Nummer", Offset: offset}
	}
	if e.Name == nil || strings.TrimSpace(*e.Name) == "" {
		return Record{}, &MissingFieldError{Field: "Namn", Offset: offset}
	}

	name := strings.TrimSpace(*e.Name)
	number, err := strconv.Atoi(strings.TrimSpace(*e.Number))
	if err != nil {
		return Record{}, &MalformedValueError{Food: name, Field: "Nummer", Raw: *e.Number, Err: errors.Unwrap(err)}
	}

	rec := Record{Number: number, Name: name}
	for _, a := range nutrition.Attributes() {
		entry, unit, ok := e.Nutrition.find(a)
		if !ok {
			continue
		}
		magnitude, err := ParseNumber(entry.Value)
		if err != nil {
			var malformed *MalformedValueError
			if errors.As(err, &malformed) {
				malformed.Food = name
				malformed.Field = a.String()
			}
			return Record{}, err
		}
		rec.Values = append(rec.Values, RawValue{Attribute: a, Magnitude: magnitude, Unit: unit})
	}

	return rec, nil
}

// find returns the first entry whose short code belongs to a and whose unit
// is a's canonical unit.
func (s *nutritionSection) find(a nutrition.Attribute) (nutritionEntry, nutrition.Unit, bool) {
	codes := ShortCodes[a]
	canonical := a.CanonicalUnit()

	for _, entry := range s.Entries {
		if !hasCode(codes, entry.Code) {
			continue
		}
		unit, err := nutrition.ParseUnit(entry.Unit)
		if err != nil {
			log.Debugf("%s: skipping %s entry: %v", a, entry.Code, err)
			continue
		}
		if !unit.Is(canonical) {
			log.Debugf("%s: skipping %s entry in %s, want %s", a, entry.Code, unit, canonical)
			continue
		}
		return entry, unit, true
	}

	return nutritionEntry{}, nutrition.Unit{}, false
}

func hasCode(codes []string, code string) bool {
	code = strings.TrimSpace(code)
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
