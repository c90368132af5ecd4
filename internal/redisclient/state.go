// Package redisclient is the concrete pipeline.ClusterState implementation:
// it resolves which cluster node currently owns a pool's slot, hands back
// a pipeliner bound to that node, and classifies/reacts to MOVED and ASK
// redirects the way a Redis Cluster client is expected to.
package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/cjbrigato/ippoolctl/internal/pipeline"
)

// State tracks which cluster node a pool's keys currently live on, across
// every Operation of a run. It talks to individual node clients
// rather than go-redis's own *redis.ClusterClient, because the driver in
// internal/pipeline needs to control the redirect/rewind loop itself
// (see §4.6) instead of delegating it to a transparent retry layer.
type State struct {
	seeds []string
	dial  func(addr string) *redis.Client

	nodes  map[string]*redis.Client
	shards []shard

	current *redis.Client
	slot    int
}

type shard struct {
	startSlot, endSlot int
	master             string
}

// New builds a State that dials cluster nodes on demand starting from the
// given seed addresses (host:port). dial may be nil to use a plain
// redis.NewClient per address.
func New(seeds []string, dial func(addr string) *redis.Client) *State {
	if dial == nil {
		dial = func(addr string) *redis.Client {
			return redis.NewClient(&redis.Options{Addr: addr})
		}
	}
	return &State{
		seeds: seeds,
		dial:  dial,
		nodes: make(map[string]*redis.Client),
	}
}

// Init resolves and caches the master node currently owning poolKey's
// slot, using CLUSTER SLOTS against the first reachable seed.
func (s *State) Init(ctx context.Context, poolKey []byte) error {
	if len(s.shards) == 0 {
		if err := s.loadShards(ctx); err != nil {
			return err
		}
	}
	s.slot = slotForKey(string(poolKey))
	addr, err := s.nodeForSlot(s.slot)
	if err != nil {
		return err
	}
	s.current = s.clientFor(addr)
	return nil
}

// Pipeline returns a fresh non-transactional pipeliner bound to the
// currently resolved node.
func (s *State) Pipeline() redis.Pipeliner {
	return s.current.Pipeline()
}

// Classify inspects a pipeline execution error for a MOVED or ASK
// redirect, per the Redis Cluster wire format:
// "MOVED <slot> <host>:<port>" or "ASK <slot> <host>:<port>".
func (s *State) Classify(err error) (pipeline.Redirect, bool) {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "MOVED "):
		return parseRedirect(msg, pipeline.RedirectMoved)
	case strings.HasPrefix(msg, "ASK "):
		return parseRedirect(msg, pipeline.RedirectAsk)
	default:
		return pipeline.Redirect{}, false
	}
}

// Advance repoints State at the redirect's target node for the next
// attempt, updating the cached shard map when the redirect is permanent
// (MOVED) so subsequent operations resolve the new owner directly.
func (s *State) Advance(ctx context.Context, redirect pipeline.Redirect) error {
	s.current = s.clientFor(redirect.Addr)
	if redirect.Kind == pipeline.RedirectMoved {
		s.rebindSlot(redirect.Slot, redirect.Addr)
	}
	return nil
}

// Close closes every node connection this State has opened.
func (s *State) Close() error {
	var firstErr error
	for _, c := range s.nodes {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *State) clientFor(addr string) *redis.Client {
	if c, ok := s.nodes[addr]; ok {
		return c
	}
	c := s.dial(addr)
	s.nodes[addr] = c
	return c
}

func (s *State) nodeForSlot(slot int) (string, error) {
	for _, sh := range s.shards {
		if slot >= sh.startSlot && slot <= sh.endSlot {
			return sh.master, nil
		}
	}
	return "", fmt.Errorf("redisclient: no master owns slot %d", slot)
}

func (s *State) rebindSlot(slot int, addr string) {
	for i, sh := range s.shards {
		if slot >= sh.startSlot && slot <= sh.endSlot {
			s.shards[i].master = addr
			return
		}
	}
}

// loadShards runs CLUSTER SLOTS against the first reachable seed and
// caches the resulting slot-range-to-master map.
func (s *State) loadShards(ctx context.Context) error {
	var lastErr error
	for _, seed := range s.seeds {
		c := s.clientFor(seed)
		res, err := c.ClusterSlots(ctx).Result()
		if err != nil {
			lastErr = err
			continue
		}
		shards := make([]shard, 0, len(res))
		for _, slotRange := range res {
			if len(slotRange.Nodes) == 0 {
				continue
			}
			master := slotRange.Nodes[0]
			shards = append(shards, shard{
				startSlot: slotRange.Start,
				endSlot:   slotRange.End,
				master:    master.Addr,
			})
		}
		s.shards = shards
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("redisclient: could not load cluster topology: %w", lastErr)
	}
	return fmt.Errorf("redisclient: no seed addresses configured")
}

// parseRedirect parses "<slot> <addr>" out of a MOVED/ASK error message.
func parseRedirect(msg string, kind pipeline.RedirectKind) (pipeline.Redirect, bool) {
	fields := strings.Fields(msg)
	if len(fields) < 3 {
		return pipeline.Redirect{}, false
	}
	slot, err := strconv.Atoi(fields[1])
	if err != nil {
		return pipeline.Redirect{}, false
	}
	return pipeline.Redirect{Kind: kind, Slot: slot, Addr: fields[2]}, true
}
