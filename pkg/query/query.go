// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

// Package query parses loosely-typed filter values arriving from the web client.
package query

import (
	"strconv"
	"strings"
)

// CSV parses a comma-separated filter value into a trimmed slice of strings.
// Empty entries are dropped safely.
func CSV(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// CanonicalCSV re-joins a comma-separated filter value with entries trimmed
// and empties dropped, so "a, b,,c " and "a,b,c" produce the same filter.
func CanonicalCSV(val string) string {
	return strings.Join(CSV(val), ",")
}

// Decimal reports whether a filter value parses as a decimal number.
// Used for price bounds, where unparseable input is dropped, not errored.
func Decimal(val string) bool {
	_, err := strconv.ParseFloat(val, 64)
	return err == nil
}
