package rangeiter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cjbrigato/ippoolctl/internal/rangeparse"
)

func drive(t *testing.T, rangeText string, allocPrefix int) []string {
	t.Helper()
	r, err := rangeparse.Parse(rangeText, allocPrefix)
	require.NoError(t, err)

	it := New(r.Start, r.End, r.Prefix)
	var out []string
	current := r.Start
	for {
		out = append(out, current.String())
		next, more := it.Next(current)
		if !more {
			break
		}
		current = next
	}
	return out
}

func TestIteratesEveryAddressInSlashThirty(t *testing.T) {
	got := drive(t, "10.0.0.0/30", 0)
	require.Equal(t, []string{"10.0.0.0", "10.0.0.1", "10.0.0.2"}, got)
}

func TestIteratesSubPrefixBlocks(t *testing.T) {
	got := drive(t, "2001:db8::/120", 124)
	require.Len(t, got, 16)
	require.Equal(t, "2001:db8::", got[0])
	require.Equal(t, "2001:db8::f0", got[15])
}

func TestSingleAddressYieldsOneStep(t *testing.T) {
	got := drive(t, "10.0.0.1/32", 0)
	require.Equal(t, []string{"10.0.0.1"}, got)
}
