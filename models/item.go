// Package models defines data structures for the item scraper.
package models

import (
	"path"
	"strings"
)

// Archetype selects which of the two fixed output schemas applies to an item.
type Archetype int

const (
	// Weapon covers items whose Type matches one of the weapon tokens.
	Weapon Archetype = iota
	// Equipment covers everything else, including items without a Type.
	Equipment
)

// String returns a lowercase label suitable for logs and metrics.
func (a Archetype) String() string {
	if a == Weapon {
		return "weapon"
	}
	return "equipment"
}

// Dir returns the output subdirectory for the archetype.
func (a Archetype) Dir() string {
	if a == Weapon {
		return "weapons"
	}
	return "equipment"
}

var weaponFields = []string{
	"Name", "Type", "Damage", "Delay", "Stats", "Classes", "Races",
	"Effect", "WT", "Size", "Slot", "Magic Item", "Lore Item",
	"No Drop", "30d Avg", "90d Avg", "All Time Avg",
}

var equipmentFields = []string{
	"Name", "Type", "Slot", "AC", "Stats", "Classes", "Races",
	"Effect", "WT", "Size", "Magic Item", "Lore Item",
	"No Drop", "30d Avg", "90d Avg", "All Time Avg",
}

// Fields returns the ordered column schema for the archetype. The slice is
// shared; callers must not mutate it.
func (a Archetype) Fields() []string {
	if a == Weapon {
		return weaponFields
	}
	return equipmentFields
}

// Item is a single scraped wiki item. Attributes are assigned once by
// ClassifyItem and not mutated afterwards.
type Item struct {
	Name       string
	Archetype  Archetype
	Attributes map[string]string
}

// Row projects the item onto its archetype's column schema: the name first,
// then one attribute lookup per schema field. Missing attributes render as
// empty strings.
func (it *Item) Row() []string {
	fields := it.Archetype.Fields()
	row := make([]string, len(fields))
	row[0] = it.Name
	for i, field := range fields[1:] {
		row[i+1] = it.Attributes[field]
	}
	return row
}

// weaponTypeTokens is the fixed token list used to recognize weapons from the
// Type attribute. Matching is substring containment on the lowercased value.
var weaponTypeTokens = []string{"1h", "2h", "bow", "throwing", "piercing", "blunt", "slashing"}

// ClassifyItem builds the typed record for a scraped item. An item is a
// Weapon when any weapon token appears in its Type attribute (lowercased);
// everything else, including items without a Type, is Equipment.
//
// This is a deliberately lossy heuristic: a Type string that incidentally
// contains a token (e.g. "Elbow Guard" contains "bow") is classified as a
// weapon. Any single match selects Weapon; there is no precedence among
// tokens.
func ClassifyItem(name string, attrs map[string]string) *Item {
	archetype := Equipment
	itemType := strings.ToLower(attrs["Type"])
	for _, token := range weaponTypeTokens {
		if strings.Contains(itemType, token) {
			archetype = Weapon
			break
		}
	}
	return &Item{
		Name:       name,
		Archetype:  archetype,
		Attributes: attrs,
	}
}

// weaponBuckets maps Type tokens to weapon output files. Entries are ordered:
// damage-style tokens are checked before handedness so "1H Slashing" lands in
// Slashing rather than 1H_Weapons.
var weaponBuckets = []struct {
	token string
	file  string
}{
	{"piercing", "Piercing"},
	{"blunt", "Blunt"},
	{"slashing", "Slashing"},
	{"bow", "Bows"},
	{"throwing", "Throwing"},
	{"1h", "1H_Weapons"},
	{"2h", "2H_Weapons"},
}

// equipmentBuckets maps lowercased Slot values to equipment output files.
var equipmentBuckets = map[string]string{
	"arms":      "Arms",
	"back":      "Back",
	"chest":     "Chest",
	"ear":       "Ears",
	"face":      "Face",
	"feet":      "Feet",
	"fingers":   "Fingers",
	"hands":     "Hands",
	"head":      "Head",
	"legs":      "Legs",
	"neck":      "Neck",
	"shield":    "Shields",
	"shoulders": "Shoulders",
	"waist":     "Waist",
	"wrist":     "Wrist",
}

// BucketFile returns the item's destination file relative to the output
// directory. Weapons bucket by the first matching Type token, equipment by
// exact Slot lookup; anything unmatched goes to misc.
func (it *Item) BucketFile() string {
	name := "misc"
	if it.Archetype == Weapon {
		itemType := strings.ToLower(it.Attributes["Type"])
		for _, bucket := range weaponBuckets {
			if strings.Contains(itemType, bucket.token) {
				name = bucket.file
				break
			}
		}
	} else {
		slot := strings.ToLower(it.Attributes["Slot"])
		if file, ok := equipmentBuckets[slot]; ok {
			name = file
		}
	}
	return path.Join(it.Archetype.Dir(), name+".csv")
}
