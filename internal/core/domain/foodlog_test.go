package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMealLabel(t *testing.T) {
	assert.Equal(t, "breakfast", NormalizeMealLabel("  Breakfast "))
	assert.Equal(t, "", NormalizeMealLabel(""))
	assert.Equal(t, "second lunch", NormalizeMealLabel("Second Lunch"))
}

func TestEffectiveEntries(t *testing.T) {
	entries := []FoodLogEntry{
		{ID: "a", Kind: EntryMeal},
		{ID: "b", Kind: EntryMeal},
		{ID: "c", Kind: EntryMeal, Supersedes: "b"},
		{ID: "d", Kind: EntryVoid, Supersedes: "a"},
		{ID: "e", Kind: EntryMeal},
	}
	superseded := map[string]string{"a": "d", "b": "c"}

	got := EffectiveEntries(entries, superseded)

	assert.Equal(t, []string{"c", "e"}, EntryIDs(got))
}

func TestEffectiveEntries_NothingSuperseded(t *testing.T) {
	entries := []FoodLogEntry{{ID: "a", Kind: EntryMeal}, {ID: "b", Kind: EntryMeal}}
	assert.Len(t, EffectiveEntries(entries, nil), 2)
}

func TestFoodLogEntry_IsVoid(t *testing.T) {
	assert.True(t, (&FoodLogEntry{Kind: EntryVoid}).IsVoid())
	assert.False(t, (&FoodLogEntry{Kind: EntryMeal}).IsVoid())
}
