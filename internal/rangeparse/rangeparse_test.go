package rangeparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIPv4SlashThirty(t *testing.T) {
	// Scenario 1: -a 10.0.0.0/30, broadcast excluded -> 10.0.0.0..10.0.0.2.
	r, err := Parse("10.0.0.0/30", 0)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.0", r.Start.String())
	require.Equal(t, "10.0.0.2", r.End.String())
	require.Equal(t, 32, r.Prefix)
}

func TestParseIPv6WithSubHostPrefix(t *testing.T) {
	// Scenario 3: -a 2001:db8::/126 -p 128 -> ::, ::1, ::2 (broadcast excluded).
	r, err := Parse("2001:db8::/126", 128)
	require.NoError(t, err)
	require.Equal(t, "2001:db8::", r.Start.String())
	require.Equal(t, "2001:db8::2", r.End.String())
}

func TestParseSubPrefixAllocation(t *testing.T) {
	// Scenario 4: -a 2001:db8::/120 -p 124 -> 16 sub-prefixes, no exclusion.
	r, err := Parse("2001:db8::/120", 124)
	require.NoError(t, err)
	require.Equal(t, "2001:db8::", r.Start.String())
	require.Equal(t, "2001:db8::f0", r.End.String())
	require.Equal(t, 124, r.Prefix)
}

func TestParseSingleHostSlash32(t *testing.T) {
	r, err := Parse("10.0.0.1/32", 0)
	require.NoError(t, err)
	require.Equal(t, r.Start.String(), r.End.String())
}

func TestParseBareHost(t *testing.T) {
	r, err := Parse("10.0.0.1", 0)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", r.Start.String())
	require.Equal(t, "10.0.0.1", r.End.String())
	require.Equal(t, 32, r.Prefix)
}

func TestParseExplicitRange(t *testing.T) {
	r, err := Parse("10.0.0.1-10.0.0.5", 0)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", r.Start.String())
	require.Equal(t, "10.0.0.5", r.End.String())
}

func TestParseExplicitRangeStartAfterEndIsError(t *testing.T) {
	_, err := Parse("10.0.0.5-10.0.0.1", 0)
	require.Error(t, err)
}

func TestParseFamilyMismatchIsError(t *testing.T) {
	_, err := Parse("10.0.0.1-::1", 0)
	require.Error(t, err)
}

func TestParsePrefixOutOfBoundsIsError(t *testing.T) {
	_, err := Parse("10.0.0.0/24", 40)
	require.Error(t, err)
}

func TestParsePrefixSmallerThanNetworkIsError(t *testing.T) {
	_, err := Parse("10.0.0.0/24", 16)
	require.Error(t, err)
}

func TestParsePrefixSpanTooLargeIsError(t *testing.T) {
	_, err := Parse("::/0", 65)
	require.Error(t, err)
}

func TestParseMalformedRangeIsError(t *testing.T) {
	_, err := Parse("not-an-address", 0)
	require.Error(t, err)
}
