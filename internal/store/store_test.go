// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package store

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/nutrictl/internal/nutrition"
	"github.com/staranto/nutrictl/internal/registry"
)

func seqOf(foods ...Food) iter.Seq2[Food, error] {
	return func(yield func(Food, error) bool) {
		for _, f := range foods {
			if !yield(f, nil) {
				return
			}
		}
	}
}

func food(name string, number int, values map[nutrition.Attribute]float64) Food {
	f := Food{Name: name, Number: number}
	for a, v := range values {
		f.SetValue(a, v)
	}
	return f
}

func newStore(t *testing.T, foods ...Food) *Store {
	t.Helper()
	s, err := Create(filepath.Join(t.TempDir(), "foods.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	n, err := s.InsertAll(context.Background(), seqOf(foods...))
	require.NoError(t, err)
	require.Equal(t, len(foods), n)
	return s
}

func TestCreate_RefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foods.db")
	s, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Create(path)
	assert.ErrorIs(t, err, ErrStoreExists)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "foods.db"))
	assert.ErrorIs(t, err, ErrStoreMissing)
}

func TestFindExact(t *testing.T) {
	ctx := context.Background()
	s := newStore(t,
		food("Apple", 100, map[nutrition.Attribute]float64{nutrition.Fat: 0.2}),
		food("Apple", 999, nil),
		food("Äpple", 104, map[nutrition.Attribute]float64{nutrition.Sugars: 9}),
	)

	got, ok, err := s.FindExact(ctx, "Apple")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100, got.Number, "first in registry order wins")

	fat, ok := got.Value(nutrition.Fat)
	require.True(t, ok)
	assert.Equal(t, 0.2, fat)
	_, ok = got.Value(nutrition.Protein)
	assert.False(t, ok)

	// Decomposed A + combining diaeresis finds the precomposed row.
	got, ok, err = s.FindExact(ctx, "A\u0308pple")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 104, got.Number)

	_, ok, err = s.FindExact(ctx, "Nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindLike(t *testing.T) {
	ctx := context.Background()
	s := newStore(t,
		food("Apple", 100, nil),
		food("Pineapple", 101, nil),
		food("Banana", 102, nil),
		food("100% juice", 103, nil),
	)

	names, err := s.FindLike(ctx, "appl")
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Pineapple"}, names)

	names, err = s.FindLike(ctx, "%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100% juice"}, names, "wildcards are literal")

	names, err = s.FindLike(ctx, "kiwi")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFindLike_FoldsSwedishLetters(t *testing.T) {
	ctx := context.Background()
	s := newStore(t,
		food("Äpple m. skal", 1, nil),
		food("Ärtsoppa", 2, nil),
		food("ÅKERBÄR", 3, nil),
		food("Apple", 4, nil),
	)

	tests := []struct {
		fragment string
		want     []string
	}{
		{fragment: "äpple", want: []string{"Äpple m. skal"}},
		{fragment: "ÄRTSOPPA", want: []string{"Ärtsoppa"}},
		{fragment: "åkerbär", want: []string{"ÅKERBÄR"}},
		{fragment: "apple", want: []string{"Apple"}},
	}
	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			names, err := s.FindLike(ctx, tt.fragment)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names)
		})
	}

	foods, err := s.Search(ctx, "ärt", 0)
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Ärtsoppa", foods[0].Name)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t,
		food("Apple", 100, nil),
		food("Pineapple", 101, nil),
		food("Banana", 102, nil),
	)

	all, err := s.Search(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := s.Search(ctx, "a", 2)
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "Apple", some[0].Name)
}

func TestInsertAll_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s, err := Create(filepath.Join(t.TempDir(), "foods.db"))
	require.NoError(t, err)
	defer s.Close()

	boom := errors.New("boom")
	seq := func(yield func(Food, error) bool) {
		if !yield(food("Apple", 1, nil), nil) {
			return
		}
		yield(Food{}, boom)
	}

	_, err = s.InsertAll(ctx, seq)
	assert.ErrorIs(t, err, boom)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertAll_Batches(t *testing.T) {
	foods := make([]Food, 0, insertBatchSize*2+1)
	for i := 0; i < cap(foods); i++ {
		foods = append(foods, food("food", i, nil))
	}
	s := newStore(t, foods...)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, len(foods), n)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "foods.db")

	s, err := Create(path)
	require.NoError(t, err)
	_, err = s.InsertAll(ctx, seqOf(food("Apple", 100, nil)))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.FindExact(ctx, "Apple")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFoodFromRecord(t *testing.T) {
	rec := registry.Record{
		Number: 7,
		Name:   "Kärnmjölk",
		Values: []registry.RawValue{
			{Attribute: nutrition.Fat, Magnitude: 1500, Unit: nutrition.Milligram},
			{Attribute: nutrition.Iron, Magnitude: 0.5},
		},
	}

	f, err := FoodFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, "Kärnmjölk", f.Name)

	fat, ok := f.Value(nutrition.Fat)
	require.True(t, ok)
	assert.Equal(t, 1.5, fat)

	facts := f.Facts()
	assert.Equal(t, 2, facts.Len())

	rec.Values = append(rec.Values, registry.RawValue{Attribute: nutrition.Zinc, Magnitude: 1, Unit: nutrition.Kilojoule})
	_, err = FoodFromRecord(rec)
	var incompatible *nutrition.IncompatibleUnitError
	assert.True(t, errors.As(err, &incompatible))
}
