package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfidence(t *testing.T) {
	cases := map[string]Confidence{
		"high":      ConfidenceHigh,
		" Medium ":  ConfidenceMedium,
		"LOW":       ConfidenceLow,
		"not_found": ConfidenceNotFound,
		"not found": ConfidenceNotFound,
	}
	for in, want := range cases {
		got, ok := ParseConfidence(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "certain", "very high"} {
		_, ok := ParseConfidence(in)
		require.False(t, ok, in)
	}
}
