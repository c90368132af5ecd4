package opdriver

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cjbrigato/ippoolctl/internal/ipaddr"
	"github.com/cjbrigato/ippoolctl/internal/leaseproc"
)

func mustAddr(t *testing.T, s string) ipaddr.Addr {
	t.Helper()
	n, err := netip.ParseAddr(s)
	require.NoError(t, err)
	a, err := ipaddr.FromNetip(n)
	require.NoError(t, err)
	return a
}

func TestFormatAggregateActions(t *testing.T) {
	require.Equal(t, []string{"Added 3"}, Format(Result{Kind: Add, Count: 3}, time.Now()))
	require.Equal(t, []string{"Removed 1"}, Format(Result{Kind: Remove, Count: 1}, time.Now()))
	require.Equal(t, []string{"Released 1"}, Format(Result{Kind: Release, Count: 1}, time.Now()))
}

func TestFormatShowJustAddedLease(t *testing.T) {
	// Scenario 5: a just-added lease has next_event=0, so it reports
	// expired with no timestamp/device/gateway printed.
	now := time.Now()
	r := Result{Kind: Show, Leases: []leaseproc.Lease{{
		Address:   mustAddr(t, "10.0.0.1"),
		NextEvent: 0,
	}}}
	lines := Format(r, now)
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "10.0.0.1")
	require.Contains(t, lines[0], "expired")
	require.NotContains(t, lines[0], "lease expired")
	require.NotContains(t, lines[0], "device")
}

func TestFormatShowActiveLease(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour).Unix()
	r := Result{Kind: Show, Leases: []leaseproc.Lease{{
		Address:   mustAddr(t, "10.0.0.1"),
		NextEvent: future,
		Device:    "dev1",
		Gateway:   "gw1",
		Range:     "r1",
	}}}
	lines := Format(r, now)
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "active")
	require.Contains(t, lines[0], "lease expires")
	require.Contains(t, lines[0], "device id dev1")
	require.Contains(t, lines[0], "gateway id gw1")
	require.Contains(t, lines[0], "range r1")
}

func TestFormatShowExpiredLeaseUsesPastLabels(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour).Unix()
	r := Result{Kind: Show, Leases: []leaseproc.Lease{{
		Address:   mustAddr(t, "10.0.0.1"),
		NextEvent: past,
		Device:    "dev1",
	}}}
	lines := Format(r, now)
	require.Contains(t, lines[0], "lease expired")
	require.Contains(t, lines[0], "last device id dev1")
}
