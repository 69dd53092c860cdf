// Package catalog provides the closed set of known game entities that
// screenshot detection matches against.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// MaxItemSlots is the maximum number of item slots the hotbar can hold.
const MaxItemSlots = 12

// Kind identifies which variant an entity is.
type Kind int

const (
	KindItem Kind = iota
	KindWeapon
	KindTome
	KindCharacter
	KindShrine
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindWeapon:
		return "weapon"
	case KindTome:
		return "tome"
	case KindCharacter:
		return "character"
	case KindShrine:
		return "shrine"
	default:
		return "unknown"
	}
}

// Rarity is an entity's rarity tier, ordered from most to least common.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
)

var rarityNames = map[Rarity]string{
	RarityCommon:    "common",
	RarityUncommon:  "uncommon",
	RarityRare:      "rare",
	RarityEpic:      "epic",
	RarityLegendary: "legendary",
}

func (r Rarity) String() string {
	if name, ok := rarityNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRarity maps a rarity label to its tier. The second return is false
// for unrecognized labels so callers can fall back to a default policy.
func ParseRarity(s string) (Rarity, bool) {
	for r, name := range rarityNames {
		if name == strings.ToLower(strings.TrimSpace(s)) {
			return r, true
		}
	}
	return RarityCommon, false
}

// Entity is the minimal capability set shared by all catalog variants.
type Entity interface {
	ID() string
	Name() string
	Rarity() Rarity
	Kind() Kind
}

// BaseEntity provides the common fields of every catalog entry.
type BaseEntity struct {
	EntityID   string `json:"id"`
	EntityName string `json:"name"`
	Tier       Rarity `json:"rarity"`
}

func (e BaseEntity) ID() string     { return e.EntityID }
func (e BaseEntity) Name() string   { return e.EntityName }
func (e BaseEntity) Rarity() Rarity { return e.Tier }

// Item is a stackable passive pickup shown in the hotbar.
type Item struct {
	BaseEntity
	MaxStacks int `json:"max_stacks,omitempty"`
}

func (Item) Kind() Kind { return KindItem }

// Weapon occupies one slot of the weapon row.
type Weapon struct {
	BaseEntity
	Evolved bool `json:"evolved,omitempty"`
}

func (Weapon) Kind() Kind { return KindWeapon }

// Tome occupies one slot of the tome row.
type Tome struct {
	BaseEntity
	MaxLevel int `json:"max_level,omitempty"`
}

func (Tome) Kind() Kind { return KindTome }

// Character is a playable character shown in the portrait region.
type Character struct {
	BaseEntity
	Title string `json:"title,omitempty"`
}

func (Character) Kind() Kind { return KindCharacter }

// Shrine is a map shrine; never slot-matched but part of the closed catalog.
type Shrine struct {
	BaseEntity
	Blessing string `json:"blessing,omitempty"`
}

func (Shrine) Kind() Kind { return KindShrine }

// Catalog is an immutable collection of known entities, indexed by kind.
type Catalog struct {
	byKind map[Kind][]Entity
	byID   map[string]Entity
}

// New builds a catalog from a flat entity list. Later duplicates of an ID
// replace earlier ones.
func New(entities []Entity) *Catalog {
	c := &Catalog{
		byKind: make(map[Kind][]Entity),
		byID:   make(map[string]Entity),
	}
	for _, e := range entities {
		if e == nil || e.ID() == "" {
			continue
		}
		c.byKind[e.Kind()] = append(c.byKind[e.Kind()], e)
		c.byID[e.ID()] = e
	}
	return c
}

// ByKind returns all entities of one kind. The returned slice is shared;
// callers must not modify it.
func (c *Catalog) ByKind(k Kind) []Entity {
	return c.byKind[k]
}

// ByID returns the entity with the given ID, or nil.
func (c *Catalog) ByID(id string) Entity {
	return c.byID[id]
}

// ByName returns the entity whose name matches case-insensitively, or nil.
func (c *Catalog) ByName(name string) Entity {
	for _, entities := range c.byKind {
		for _, e := range entities {
			if strings.EqualFold(e.Name(), name) {
				return e
			}
		}
	}
	return nil
}

// All returns every entity in the catalog.
func (c *Catalog) All() []Entity {
	var all []Entity
	for k := KindItem; k <= KindShrine; k++ {
		all = append(all, c.byKind[k]...)
	}
	return all
}

// Len returns the total number of entities.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// fileEntity is the on-disk representation of one catalog entry.
type fileEntity struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rarity    string `json:"rarity"`
	MaxStacks int    `json:"max_stacks,omitempty"`
	Evolved   bool   `json:"evolved,omitempty"`
	MaxLevel  int    `json:"max_level,omitempty"`
	Title     string `json:"title,omitempty"`
	Blessing  string `json:"blessing,omitempty"`
}

// LoadFromFile loads a catalog from a JSON file containing a flat entity
// array. Entries with an unrecognized kind are skipped.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []fileEntity
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}

	entities := make([]Entity, 0, len(raw))
	for _, fe := range raw {
		rarity, _ := ParseRarity(fe.Rarity)
		base := BaseEntity{EntityID: fe.ID, EntityName: fe.Name, Tier: rarity}
		switch strings.ToLower(fe.Kind) {
		case "item":
			entities = append(entities, Item{BaseEntity: base, MaxStacks: fe.MaxStacks})
		case "weapon":
			entities = append(entities, Weapon{BaseEntity: base, Evolved: fe.Evolved})
		case "tome":
			entities = append(entities, Tome{BaseEntity: base, MaxLevel: fe.MaxLevel})
		case "character":
			entities = append(entities, Character{BaseEntity: base, Title: fe.Title})
		case "shrine":
			entities = append(entities, Shrine{BaseEntity: base, Blessing: fe.Blessing})
		default:
			fmt.Printf("[Catalog] Skipping entry %q with unknown kind %q\n", fe.ID, fe.Kind)
		}
	}

	return New(entities), nil
}
