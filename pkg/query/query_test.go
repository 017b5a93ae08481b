// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farmlink/gateway/pkg/query"
)

func TestCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "irrigation", []string{"irrigation"}},
		{"multiple", "soil,pests,compost", []string{"soil", "pests", "compost"}},
		{"padded", " soil , pests ", []string{"soil", "pests"}},
		{"empty_entries", "soil,,pests,", []string{"soil", "pests"}},
		{"only_commas", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, query.CSV(tt.input))
		})
	}
}

func TestCanonicalCSV(t *testing.T) {
	assert.Equal(t, "soil,pests", query.CanonicalCSV(" soil ,, pests "))
	assert.Equal(t, "", query.CanonicalCSV(",,"))
	assert.Equal(t, query.CanonicalCSV("a,b,c"), query.CanonicalCSV(" a , b ,c"))
}

func TestDecimal(t *testing.T) {
	assert.True(t, query.Decimal("12.50"))
	assert.True(t, query.Decimal("0"))
	assert.True(t, query.Decimal("-3.2"))
	assert.False(t, query.Decimal("abc"))
	assert.False(t, query.Decimal("12,50"))
	assert.False(t, query.Decimal(""))
}
