package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
)

func item(id, name string) catalog.Entity {
	return catalog.Item{BaseEntity: catalog.BaseEntity{EntityID: id, EntityName: name}}
}

var fuzzyEntities = []catalog.Entity{
	item("lucky-clover", "Lucky Clover"),
	item("iron-anvil", "Iron Anvil"),
	item("wizard-hat", "Wizard Hat"),
}

func TestFuzzyMatchExact(t *testing.T) {
	res, ok := FuzzyMatch("Lucky Clover", fuzzyEntities, 0.60)
	require.True(t, ok)
	assert.Equal(t, "lucky-clover", res.Entity.ID())
	assert.Equal(t, 1.0, res.Score)
}

func TestFuzzyMatchNormalizesNoise(t *testing.T) {
	// Punctuation and case noise around an otherwise clean read.
	res, ok := FuzzyMatch("  LUCKY   CLOVER!! ", fuzzyEntities, 0.60)
	require.True(t, ok)
	assert.Equal(t, "lucky-clover", res.Entity.ID())
	assert.Equal(t, 1.0, res.Score)
}

func TestFuzzyMatchGarbledRead(t *testing.T) {
	// One substitution in a 12-character name still clears the cutoff.
	res, ok := FuzzyMatch("lucky ciover", fuzzyEntities, 0.60)
	require.True(t, ok)
	assert.Equal(t, "lucky-clover", res.Entity.ID())
	assert.Less(t, res.Score, 1.0)
	assert.Greater(t, res.Score, 0.90)
}

func TestFuzzyMatchBestAcrossLines(t *testing.T) {
	text := "level 12\niron anvil\n+5% damage"
	res, ok := FuzzyMatch(text, fuzzyEntities, 0.60)
	require.True(t, ok)
	assert.Equal(t, "iron-anvil", res.Entity.ID())
}

func TestFuzzyMatchCutoffRejects(t *testing.T) {
	_, ok := FuzzyMatch("zzzzqqqq", fuzzyEntities, 0.60)
	assert.False(t, ok)

	// Same text passes with a permissive cutoff.
	_, ok = FuzzyMatch("zzzzqqqq", fuzzyEntities, 0.0)
	assert.True(t, ok)
}

func TestFuzzyMatchEmptyInputs(t *testing.T) {
	_, ok := FuzzyMatch("", fuzzyEntities, 0.60)
	assert.False(t, ok)

	_, ok = FuzzyMatch("\n \n", fuzzyEntities, 0.60)
	assert.False(t, ok)

	_, ok = FuzzyMatch("lucky clover", nil, 0.60)
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "lucky clover", normalize(" Lucky,  Clover! "))
	assert.Equal(t, "x2", normalize("x2"))
	assert.Equal(t, "", normalize("!!!"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("anvil", "anvil"))
	assert.Equal(t, 0.0, similarity("", "anvil"))
	assert.InDelta(t, 0.8, similarity("anvil", "anvil"[:4]+"x"), 1e-9)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("clover", "clover"))
	assert.Equal(t, 1, levenshtein("clover", "ciover"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 5, levenshtein("", "anvil"))
}
