// Package pipeline implements the batch driver at the heart of the tool:
// for each Operation it enqueues commands for a bounded run of addresses,
// flushes the pipeline, and either demuxes the replies to the operation's
// processor or rewinds and retries after a cluster redirect.
package pipeline

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/cjbrigato/ippoolctl/internal/ipaddr"
	"github.com/cjbrigato/ippoolctl/internal/rangeiter"
)

// MaxPipelined bounds the number of replies owed before a batch is flushed,
// keeping peak memory at O(MaxPipelined) regardless of range size.
const MaxPipelined = 1000

// RedirectKind distinguishes a cluster MOVED redirect (the slot
// permanently lives elsewhere) from an ASK redirect (a single-request
// migration hint).
type RedirectKind int

const (
	// RedirectMoved indicates the slot has permanently moved.
	RedirectMoved RedirectKind = iota
	// RedirectAsk indicates a transient single-request redirect during
	// slot migration.
	RedirectAsk
)

// Redirect is the result of classifying a failed pipeline execution as a
// cluster slot redirect.
type Redirect struct {
	Kind RedirectKind
	Slot int
	Addr string
}

// ClusterState is the capability the hard core depends on to run a
// pipeline against a cluster node and react to redirects. It is the only
// contact point between this package and a concrete Redis client, so the
// driver stays testable against a fake.
type ClusterState interface {
	// Init resolves and caches the node that currently owns poolKey's
	// slot. Drive calls it once at the top of every batch.
	Init(ctx context.Context, poolKey []byte) error
	// Pipeline returns a fresh pipeliner bound to the currently resolved
	// node.
	Pipeline() redis.Pipeliner
	// Classify inspects a pipeline execution error and reports whether
	// it is a cluster redirect.
	Classify(err error) (Redirect, bool)
	// Advance repoints the state at the redirect's target node for the
	// next attempt.
	Advance(ctx context.Context, redirect Redirect) error
}

// Action bundles the two operations §9's "polymorphic action abstraction"
// calls for: Enqueue queues the commands for one address on p and reports
// how many replies it owes; Process consumes exactly that many replies,
// taken from the flushed batch in address order.
type Action struct {
	// Name identifies the action for logging ("ADD", "REMOVE", "RELEASE", "SHOW").
	Name string
	// ReplyCount is the fixed number of replies each address contributes.
	ReplyCount int
	// Enqueue queues the commands for addr on p.
	Enqueue func(ctx context.Context, p redis.Pipeliner, poolID, rangeID string, addr ipaddr.Addr)
	// Process consumes this address's slice of the flushed replies.
	Process func(addr ipaddr.Addr, replies []redis.Cmder)
}

// Operation is one command-line action against one address range.
type Operation struct {
	PoolID  string
	RangeID string
	Start   ipaddr.Addr
	End     ipaddr.Addr
	Prefix  int
	Action  Action
	// MaxPipelined overrides MaxPipelined for this Operation; zero means
	// use the package default.
	MaxPipelined int
}

// Drive runs op to completion against cs, following §4.6 exactly: the
// cluster-slot state is re-resolved once at the top of every batch (not
// on every redirect retry within it), batches are bounded by
// MaxPipelined replies, a redirect rewinds to the last acknowledged
// address and repoints cs at the redirect target via Advance, and replies
// are demuxed to
// op.Action.Process in address order once a batch succeeds.
func Drive(ctx context.Context, cs ClusterState, op Operation, logf func(format string, args ...any)) error {
	poolKey := keyForInit(op.PoolID)

	limit := op.MaxPipelined
	if limit <= 0 {
		limit = MaxPipelined
	}

	it := rangeiter.New(op.Start, op.End, op.Prefix)
	acked := op.Start

	for {
		if err := cs.Init(ctx, poolKey); err != nil {
			return err
		}

		var addrs []ipaddr.Addr
		cursor := acked
		more := true
		owed := 0
		for owed < limit && more {
			addrs = append(addrs, cursor)
			owed += op.Action.ReplyCount
			cursor, more = it.Next(cursor)
		}
		if len(addrs) == 0 {
			return nil
		}

		var replies []redis.Cmder
		for {
			p := cs.Pipeline()
			for _, addr := range addrs {
				op.Action.Enqueue(ctx, p, op.PoolID, op.RangeID, addr)
			}

			var err error
			replies, err = p.Exec(ctx)
			if err == nil {
				break
			}
			redirect, ok := cs.Classify(err)
			if !ok {
				return err
			}
			if logf != nil {
				logf("cluster redirect during batch, rewinding to %s", acked)
			}
			if aerr := cs.Advance(ctx, redirect); aerr != nil {
				return aerr
			}
		}

		for i, addr := range addrs {
			lo := i * op.Action.ReplyCount
			hi := lo + op.Action.ReplyCount
			if hi > len(replies) {
				break
			}
			op.Action.Process(addr, replies[lo:hi])
		}

		last := addrs[len(addrs)-1]
		if !more {
			acked = last
			return nil
		}
		acked = cursor
	}
}

func keyForInit(poolID string) []byte {
	return []byte("{" + poolID + "}:pool")
}
