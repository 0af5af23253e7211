package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowthPercent(t *testing.T) {
	testCases := []struct {
		name     string
		current  Money
		previous Money
		expected string
	}{
		{"No history", 0, 0, "0"},
		{"First revenue month", 1500000, 0, "100"},
		{"Doubled", 2000000, 1000000, "100"},
		{"Dropped by a third", 200000, 300000, "-33.33"},
		{"Small gain", 1543000, 1500000, "2.87"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GrowthPercent(tc.current, tc.previous).String())
		})
	}
}
