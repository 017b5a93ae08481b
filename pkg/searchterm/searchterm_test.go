// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package searchterm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farmlink/gateway/pkg/searchterm"
)

/*
TestNormalize covers the full canonicalization pipeline: accents, case,
and whitespace.
*/
func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "tomato", "tomato"},
		{"uppercase", "TOMATO", "tomato"},
		{"accents", "Café Maïs", "cafe mais"},
		{"surrounding_space", "  heirloom seeds  ", "heirloom seeds"},
		{"internal_space_runs", "heirloom    seeds", "heirloom seeds"},
		{"tabs_and_newlines", "heirloom \t\n seeds", "heirloom seeds"},
		{"empty", "", ""},
		{"only_whitespace", "   ", ""},
		{"mixed_everything", "  CAFÉ   au  LAIT ", "cafe au lait"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, searchterm.Normalize(tt.input))
		})
	}
}

/*
TestNormalize_Idempotent verifies that normalizing an already-normalized
query changes nothing.
*/
func TestNormalize_Idempotent(t *testing.T) {
	once := searchterm.Normalize("Crème Fraîche  du  Marché")
	twice := searchterm.Normalize(once)
	assert.Equal(t, once, twice)
}
