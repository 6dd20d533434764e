package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountyRegistry(t *testing.T) {
	assert.Len(t, Counties, 47)

	seen := make(map[string]bool)
	for _, name := range CountyNames() {
		assert.False(t, seen[name], "duplicate county %s", name)
		seen[name] = true
	}
}

func TestCanonicalCounty(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{name: "Exact", input: "Nairobi", expected: "Nairobi", ok: true},
		{name: "Lower case", input: "uasin gishu", expected: "Uasin Gishu", ok: true},
		{name: "Padded", input: "  Kiambu ", expected: "Kiambu", ok: true},
		{name: "En dash", input: "Taita–Taveta", expected: "Taita-Taveta", ok: true},
		{name: "Apostrophe", input: "MURANG'A", expected: "Murang'a", ok: true},
		{name: "Unknown", input: "Amsterdam", ok: false},
		{name: "Empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalCounty(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
