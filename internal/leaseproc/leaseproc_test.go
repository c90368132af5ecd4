package leaseproc

import (
	"context"
	"net/netip"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/cjbrigato/ippoolctl/internal/ipaddr"
)

func mustAddr(t *testing.T, s string) ipaddr.Addr {
	t.Helper()
	n, err := netip.ParseAddr(s)
	require.NoError(t, err)
	a, err := ipaddr.FromNetip(n)
	require.NoError(t, err)
	return a
}

// execCmd builds a *redis.Cmd whose Result() returns the given EXEC array,
// simulating what a completed pipeline leaves behind for a MULTI/EXEC
// command sequence.
func execCmd(vals []any) *redis.Cmd {
	cmd := redis.NewCmd(context.Background())
	cmd.SetVal(vals)
	return cmd
}

func intCmd(n int64) *redis.Cmd {
	cmd := redis.NewCmd(context.Background())
	cmd.SetVal(n)
	return cmd
}

func TestProcessAddCountsNewlyAdded(t *testing.T) {
	acc := &CountAccumulator{}
	proc := ProcessAdd(nil, acc)

	addr := mustAddr(t, "10.0.0.1")
	replies := []redis.Cmder{
		intCmd(0), // MULTI ack placeholder, not inspected
		intCmd(0), // ZADD queued ack placeholder, not inspected
		intCmd(0), // HSET queued ack placeholder, not inspected
		execCmd([]any{int64(1)}),
	}
	proc(addr, replies)
	require.EqualValues(t, 1, acc.Count)
}

func TestProcessAddSkipsAlreadyPresent(t *testing.T) {
	acc := &CountAccumulator{}
	proc := ProcessAdd(nil, acc)
	proc(mustAddr(t, "10.0.0.1"), []redis.Cmder{execCmd([]any{int64(0)})})
	require.EqualValues(t, 0, acc.Count)
}

func TestProcessCountAggregates(t *testing.T) {
	acc := &CountAccumulator{}
	proc := ProcessCount(nil, acc)
	proc(mustAddr(t, "10.0.0.1"), []redis.Cmder{intCmd(1)})
	proc(mustAddr(t, "10.0.0.2"), []redis.Cmder{intCmd(0)})
	require.EqualValues(t, 1, acc.Count)
}

func TestProcessShowBuildsLease(t *testing.T) {
	acc := &LeaseAccumulator{}
	proc := ProcessShow(nil, acc)

	addr := mustAddr(t, "10.0.0.1")
	replies := []redis.Cmder{
		execCmd([]any{"1700000000", "dev1", "gw1", "r1"}),
	}
	proc(addr, replies)

	require.Len(t, acc.Leases, 1)
	require.Equal(t, int64(1700000000), acc.Leases[0].NextEvent)
	require.Equal(t, "dev1", acc.Leases[0].Device)
	require.Equal(t, "gw1", acc.Leases[0].Gateway)
	require.Equal(t, "r1", acc.Leases[0].Range)
}

func TestProcessShowHandlesNullDeviceGatewayRange(t *testing.T) {
	acc := &LeaseAccumulator{}
	proc := ProcessShow(nil, acc)
	proc(mustAddr(t, "10.0.0.1"), []redis.Cmder{execCmd([]any{"1700000000", nil, nil, nil})})

	require.Len(t, acc.Leases, 1)
	require.EqualValues(t, 1700000000, acc.Leases[0].NextEvent)
	require.Empty(t, acc.Leases[0].Device)
	require.Empty(t, acc.Leases[0].Gateway)
	require.Empty(t, acc.Leases[0].Range)
}

func TestProcessShowSkipsNilScore(t *testing.T) {
	// Scenario 6: SHOW on an address absent from the pool ZSET (removed,
	// or never added) must report nothing, not a phantom expired lease.
	acc := &LeaseAccumulator{}
	proc := ProcessShow(nil, acc)
	proc(mustAddr(t, "10.0.0.1"), []redis.Cmder{execCmd([]any{nil, nil, nil, nil})})

	require.Empty(t, acc.Leases)
}

func TestProcessShowSkipsMalformedReply(t *testing.T) {
	acc := &LeaseAccumulator{}
	proc := ProcessShow(nil, acc)
	proc(mustAddr(t, "10.0.0.1"), []redis.Cmder{execCmd([]any{"not-a-number", nil, nil, nil})})
	require.Empty(t, acc.Leases)
}
