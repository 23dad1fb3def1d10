package parser

import (
	"errors"
	"testing"
)

func TestParseAttributes(t *testing.T) {
	page := `
<html><body>
<div id="mw-content-text">
  <div class="infobox">
    <table>
      <tr><td> Type </td><td> 1H Slashing </td></tr>
      <tr><td>Damage</td><td>7</td></tr>
      <tr><td>Delay</td><td>24</td></tr>
      <tr><td>Header only</td></tr>
      <tr><td>A</td><td>B</td><td>C</td></tr>
    </table>
  </div>
</div>
</body></html>`

	attrs, err := ParseAttributes([]byte(page))
	if err != nil {
		t.Fatalf("parse attributes: %v", err)
	}

	expected := map[string]string{
		"Type":   "1H Slashing",
		"Damage": "7",
		"Delay":  "24",
	}
	if len(attrs) != len(expected) {
		t.Fatalf("attrs=%v, want %v", attrs, expected)
	}
	for key, want := range expected {
		if attrs[key] != want {
			t.Fatalf("attrs[%q] = %q, want %q", key, attrs[key], want)
		}
	}
}

func TestParseAttributesLastOccurrenceWins(t *testing.T) {
	page := `
<div class="infobox"><table>
  <tr><td>Type</td><td>Armor</td></tr>
  <tr><td>Type</td><td>1H Blunt</td></tr>
</table></div>`

	attrs, err := ParseAttributes([]byte(page))
	if err != nil {
		t.Fatalf("parse attributes: %v", err)
	}
	if attrs["Type"] != "1H Blunt" {
		t.Fatalf("Type = %q, want last occurrence %q", attrs["Type"], "1H Blunt")
	}
}

func TestParseAttributesNoInfobox(t *testing.T) {
	page := `<html><body><div id="mw-content-text"><p>Redirect page</p></div></body></html>`

	attrs, err := ParseAttributes([]byte(page))
	if !errors.Is(err, ErrNoInfobox) {
		t.Fatalf("err = %v, want ErrNoInfobox", err)
	}
	if attrs != nil {
		t.Fatalf("attrs = %v, want nil", attrs)
	}
}

func TestParseAttributesEmptyInfobox(t *testing.T) {
	attrs, err := ParseAttributes([]byte(`<div class="infobox"></div>`))
	if err != nil {
		t.Fatalf("parse attributes: %v", err)
	}
	if len(attrs) != 0 {
		t.Fatalf("attrs = %v, want empty map", attrs)
	}
}

func TestItemNameFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "underscores to spaces",
			url:      "https://wiki.example.test/Rusty_Short_Sword",
			expected: "Rusty Short Sword",
		},
		{
			name:     "single word",
			url:      "https://wiki.example.test/Club",
			expected: "Club",
		},
		{
			name:     "bare path",
			url:      "/Cloth_Cap",
			expected: "Cloth Cap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemNameFromURL(tt.url); got != tt.expected {
				t.Fatalf("ItemNameFromURL(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}
