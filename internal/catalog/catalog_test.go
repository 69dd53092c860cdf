package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntities() []Entity {
	return []Entity{
		Item{BaseEntity: BaseEntity{EntityID: "clover", EntityName: "Lucky Clover", Tier: RarityCommon}, MaxStacks: 5},
		Item{BaseEntity: BaseEntity{EntityID: "anvil", EntityName: "Iron Anvil", Tier: RarityRare}},
		Weapon{BaseEntity: BaseEntity{EntityID: "bonk-hammer", EntityName: "Bonk Hammer", Tier: RarityEpic}, Evolved: true},
		Tome{BaseEntity: BaseEntity{EntityID: "haste", EntityName: "Tome of Haste", Tier: RarityUncommon}, MaxLevel: 5},
		Character{BaseEntity: BaseEntity{EntityID: "bonk", EntityName: "Sir Bonk", Tier: RarityCommon}},
		Shrine{BaseEntity: BaseEntity{EntityID: "luck-shrine", EntityName: "Shrine of Luck", Tier: RarityLegendary}},
	}
}

func TestNewIndexesByKindAndID(t *testing.T) {
	c := New(sampleEntities())

	assert.Equal(t, 6, c.Len())
	assert.Len(t, c.ByKind(KindItem), 2)
	assert.Len(t, c.ByKind(KindWeapon), 1)
	assert.Len(t, c.ByKind(KindTome), 1)
	assert.Len(t, c.ByKind(KindCharacter), 1)
	assert.Len(t, c.ByKind(KindShrine), 1)

	e := c.ByID("bonk-hammer")
	require.NotNil(t, e)
	assert.Equal(t, "Bonk Hammer", e.Name())
	assert.Equal(t, KindWeapon, e.Kind())
	assert.Equal(t, RarityEpic, e.Rarity())

	assert.Nil(t, c.ByID("missing"))
}

func TestNewSkipsInvalidEntries(t *testing.T) {
	c := New([]Entity{
		nil,
		Item{BaseEntity: BaseEntity{EntityID: "", EntityName: "No ID"}},
		Item{BaseEntity: BaseEntity{EntityID: "ok", EntityName: "OK"}},
	})
	assert.Equal(t, 1, c.Len())
}

func TestNewDuplicateIDReplacesEarlier(t *testing.T) {
	c := New([]Entity{
		Item{BaseEntity: BaseEntity{EntityID: "clover", EntityName: "Old Clover"}},
		Item{BaseEntity: BaseEntity{EntityID: "clover", EntityName: "New Clover"}},
	})
	assert.Equal(t, "New Clover", c.ByID("clover").Name())
}

func TestByName(t *testing.T) {
	c := New(sampleEntities())

	e := c.ByName("lucky clover")
	require.NotNil(t, e)
	assert.Equal(t, "clover", e.ID())

	assert.Nil(t, c.ByName("nonexistent"))
}

func TestAll(t *testing.T) {
	c := New(sampleEntities())
	all := c.All()
	assert.Len(t, all, 6)

	// Kind order is stable: items first, shrines last.
	assert.Equal(t, KindItem, all[0].Kind())
	assert.Equal(t, KindShrine, all[len(all)-1].Kind())
}

func TestParseRarity(t *testing.T) {
	for want, label := range map[Rarity]string{
		RarityCommon:    "common",
		RarityUncommon:  "Uncommon",
		RarityRare:      " rare ",
		RarityEpic:      "EPIC",
		RarityLegendary: "legendary",
	} {
		got, ok := ParseRarity(label)
		assert.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}

	r, ok := ParseRarity("mythic")
	assert.False(t, ok)
	assert.Equal(t, RarityCommon, r)
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "weapon", KindWeapon.String())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.Equal(t, "legendary", RarityLegendary.String())
	assert.Equal(t, "unknown", Rarity(99).String())
}

func TestLoadFromFile(t *testing.T) {
	data := `[
		{"kind": "item", "id": "clover", "name": "Lucky Clover", "rarity": "common", "max_stacks": 5},
		{"kind": "weapon", "id": "bonk-hammer", "name": "Bonk Hammer", "rarity": "epic", "evolved": true},
		{"kind": "tome", "id": "haste", "name": "Tome of Haste", "rarity": "uncommon", "max_level": 5},
		{"kind": "character", "id": "bonk", "name": "Sir Bonk", "rarity": "common", "title": "The Relentless"},
		{"kind": "shrine", "id": "luck-shrine", "name": "Shrine of Luck", "rarity": "legendary"},
		{"kind": "mount", "id": "pony", "name": "Pony", "rarity": "common"}
	]`
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5, c.Len(), "unknown kinds are skipped")
	assert.Nil(t, c.ByID("pony"))

	item, ok := c.ByID("clover").(Item)
	require.True(t, ok)
	assert.Equal(t, 5, item.MaxStacks)

	weapon, ok := c.ByID("bonk-hammer").(Weapon)
	require.True(t, ok)
	assert.True(t, weapon.Evolved)
	assert.Equal(t, RarityEpic, weapon.Rarity())

	char, ok := c.ByID("bonk").(Character)
	require.True(t, ok)
	assert.Equal(t, "The Relentless", char.Title)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadFromFile(bad)
	require.Error(t, err)
}
