package models

import (
	"reflect"
	"testing"
)

func TestClassifyItem(t *testing.T) {
	tests := []struct {
		name     string
		attrs    map[string]string
		expected Archetype
	}{
		{
			name:     "one handed slashing weapon",
			attrs:    map[string]string{"Type": "1H Slashing", "Damage": "7"},
			expected: Weapon,
		},
		{
			name:     "two handed blunt weapon",
			attrs:    map[string]string{"Type": "2H Blunt"},
			expected: Weapon,
		},
		{
			name:     "bow",
			attrs:    map[string]string{"Type": "Bow"},
			expected: Weapon,
		},
		{
			name:     "throwing weapon mixed case",
			attrs:    map[string]string{"Type": "THROWING"},
			expected: Weapon,
		},
		{
			name:     "armor type",
			attrs:    map[string]string{"Type": "Armor", "Slot": "Head", "AC": "5"},
			expected: Equipment,
		},
		{
			name:     "missing type defaults to equipment",
			attrs:    map[string]string{"Slot": "Head", "AC": "5"},
			expected: Equipment,
		},
		{
			name:     "empty attributes",
			attrs:    map[string]string{},
			expected: Equipment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := ClassifyItem("Test Item", tt.attrs)
			if item.Archetype != tt.expected {
				t.Fatalf("archetype = %v, want %v", item.Archetype, tt.expected)
			}
			if item.Name != "Test Item" {
				t.Fatalf("name = %q, want %q", item.Name, "Test Item")
			}
		})
	}
}

func TestClassifyItemDeterministic(t *testing.T) {
	attrs := map[string]string{"Type": "1H Slashing", "Damage": "7", "Delay": "24"}

	first := ClassifyItem("Rusty Sword", attrs)
	second := ClassifyItem("Rusty Sword", attrs)

	if first.Archetype != second.Archetype {
		t.Fatalf("archetypes differ: %v vs %v", first.Archetype, second.Archetype)
	}
	if !reflect.DeepEqual(first.Row(), second.Row()) {
		t.Fatalf("rows differ: %v vs %v", first.Row(), second.Row())
	}
}

func TestBucketFile(t *testing.T) {
	tests := []struct {
		name     string
		item     *Item
		expected string
	}{
		{
			name:     "weapon style token wins over handedness",
			item:     &Item{Name: "Rusty Sword", Archetype: Weapon, Attributes: map[string]string{"Type": "1H Slashing"}},
			expected: "weapons/Slashing.csv",
		},
		{
			name:     "plain handedness",
			item:     &Item{Name: "Club", Archetype: Weapon, Attributes: map[string]string{"Type": "1H"}},
			expected: "weapons/1H_Weapons.csv",
		},
		{
			name:     "throwing",
			item:     &Item{Name: "Shuriken", Archetype: Weapon, Attributes: map[string]string{"Type": "Throwing"}},
			expected: "weapons/Throwing.csv",
		},
		{
			name:     "weapon without known token",
			item:     &Item{Name: "Oddity", Archetype: Weapon, Attributes: map[string]string{}},
			expected: "weapons/misc.csv",
		},
		{
			name:     "equipment slot exact match",
			item:     &Item{Name: "Cap", Archetype: Equipment, Attributes: map[string]string{"Slot": "Head", "AC": "5"}},
			expected: "equipment/Head.csv",
		},
		{
			name:     "equipment slot case folded",
			item:     &Item{Name: "Boots", Archetype: Equipment, Attributes: map[string]string{"Slot": "FEET"}},
			expected: "equipment/Feet.csv",
		},
		{
			name:     "unknown slot falls to misc",
			item:     &Item{Name: "Trinket", Archetype: Equipment, Attributes: map[string]string{"Slot": "Pocket"}},
			expected: "equipment/misc.csv",
		},
		{
			name:     "missing slot falls to misc",
			item:     &Item{Name: "Trinket", Archetype: Equipment, Attributes: map[string]string{}},
			expected: "equipment/misc.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.BucketFile(); got != tt.expected {
				t.Fatalf("BucketFile() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRowProjection(t *testing.T) {
	item := ClassifyItem("Cloth Cap", map[string]string{
		"Slot": "Head",
		"AC":   "2",
		"WT":   "0.4",
	})

	row := item.Row()
	fields := item.Archetype.Fields()
	if len(row) != len(fields) {
		t.Fatalf("row length = %d, want %d", len(row), len(fields))
	}
	if row[0] != "Cloth Cap" {
		t.Fatalf("row[0] = %q, want item name first", row[0])
	}

	for i, field := range fields[1:] {
		want := item.Attributes[field]
		if row[i+1] != want {
			t.Fatalf("row[%d] (%s) = %q, want %q", i+1, field, row[i+1], want)
		}
	}

	// Fields absent from the attribute map render as empty strings.
	for i, field := range fields {
		if field == "AC" && row[i] != "2" {
			t.Fatalf("AC column = %q, want %q", row[i], "2")
		}
		if field == "Effect" && row[i] != "" {
			t.Fatalf("missing attribute column %q = %q, want empty", field, row[i])
		}
	}
}

func TestArchetypeFieldsStable(t *testing.T) {
	if weaponFields[0] != "Name" || equipmentFields[0] != "Name" {
		t.Fatalf("schemas must lead with Name")
	}
	if got := Weapon.Dir(); got != "weapons" {
		t.Fatalf("Weapon.Dir() = %q, want weapons", got)
	}
	if got := Equipment.Dir(); got != "equipment" {
		t.Fatalf("Equipment.Dir() = %q, want equipment", got)
	}
}
