// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

// Package searchterm normalizes free-text search queries before they are
// sent to the marketplace backend.
//
// # Usage
//
// Search boxes feed raw keystrokes through a debouncer into a list filter.
// This package makes the resulting query stable: "Café  MAIZE " and
// "cafe maize" hit the same backend query and therefore the same results.
package searchterm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// multiSpace collapses runs of whitespace into a single space.
var multiSpace = regexp.MustCompile(`\s{2,}`)

// Normalize converts an arbitrary Unicode query into its canonical form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Collapses internal whitespace and trims the ends.
func Normalize(query string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, query)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Collapse whitespace
	result = multiSpace.ReplaceAllString(result, " ")

	return strings.TrimSpace(result)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
