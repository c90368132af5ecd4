// Package redisops builds the exact Redis command sequences the tool's
// four actions issue, and the two Lua scripts (REMOVE, RELEASE) that make
// them atomic per address.
package redisops

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/cjbrigato/ippoolctl/internal/ipaddr"
	"github.com/cjbrigato/ippoolctl/internal/keys"
)

// ReplyCounts per address, fixed so the pipeline driver can demux replies
// positionally without inspecting their contents.
const (
	AddReplyCount     = 4
	RemoveReplyCount  = 1
	ReleaseReplyCount = 1
	ShowReplyCount    = 6
)

// EnqueueAdd queues MULTI; ZADD NX; HSET range; EXEC for one address.
//
// Each command is queued via the generic Do so its reply type is a plain
// *redis.Cmd: while queued inside MULTI, the server answers each of them
// with a +QUEUED status rather than the reply their command would
// normally produce, and a typed command (e.g. *redis.IntCmd for ZADD)
// would fail to parse that. Only the EXEC reply, whose array is decoded
// by internal/leaseproc, carries the real per-command results.
func EnqueueAdd(ctx context.Context, p redis.Pipeliner, poolID, rangeID string, addr ipaddr.Addr) {
	poolKey := keys.Pool(poolID)
	addrKey := keys.Address(poolID, addr)
	member := keys.AddressText(addr)

	p.Do(ctx, "MULTI")
	p.Do(ctx, "ZADD", poolKey, "NX", 0, member)
	p.Do(ctx, "HSET", addrKey, "range", rangeID)
	p.Do(ctx, "EXEC")
}

// EnqueueRemove queues the REMOVE script invocation for one address.
func EnqueueRemove(ctx context.Context, p redis.Pipeliner, poolID, _ string, addr ipaddr.Addr) {
	member := keys.AddressText(addr)
	removeScript.Eval(ctx, p, []string{poolID}, member)
}

// EnqueueRelease queues the RELEASE script invocation for one address.
func EnqueueRelease(ctx context.Context, p redis.Pipeliner, poolID, _ string, addr ipaddr.Addr) {
	member := keys.AddressText(addr)
	releaseScript.Eval(ctx, p, []string{poolID}, member)
}

// EnqueueShow queues MULTI; ZSCORE; HGET device; HGET gateway; HGET range; EXEC.
func EnqueueShow(ctx context.Context, p redis.Pipeliner, poolID, _ string, addr ipaddr.Addr) {
	poolKey := keys.Pool(poolID)
	addrKey := keys.Address(poolID, addr)
	member := keys.AddressText(addr)

	p.Do(ctx, "MULTI")
	p.Do(ctx, "ZSCORE", poolKey, member)
	p.Do(ctx, "HGET", addrKey, "device")
	p.Do(ctx, "HGET", addrKey, "gateway")
	p.Do(ctx, "HGET", addrKey, "range")
	p.Do(ctx, "EXEC")
}
