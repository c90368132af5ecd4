// Package opdriver wires the range parser, pipeline driver and reply
// processors together into the four runnable actions (ADD, REMOVE,
// RELEASE, SHOW), and formats their results the way the CLI prints them.
package opdriver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cjbrigato/ippoolctl/internal/ipaddr"
	"github.com/cjbrigato/ippoolctl/internal/leaseproc"
	"github.com/cjbrigato/ippoolctl/internal/pipeline"
	"github.com/cjbrigato/ippoolctl/internal/rangeparse"
	"github.com/cjbrigato/ippoolctl/internal/redisops"
)

// Kind identifies which of the four actions a Request performs.
type Kind int

const (
	Add Kind = iota
	Remove
	Release
	Show
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "ADD"
	case Remove:
		return "REMOVE"
	case Release:
		return "RELEASE"
	case Show:
		return "SHOW"
	default:
		return "UNKNOWN"
	}
}

// Request is one command-line action: a Kind plus the range text and
// allocation prefix it was given.
type Request struct {
	Kind        Kind
	RangeText   string
	AllocPrefix int
}

// Result is the outcome of running one Request, ready to print.
type Result struct {
	Kind   Kind
	Count  int64
	Leases []leaseproc.Lease
}

// Run executes req against poolID/rangeID over cs, and returns a Result
// carrying either an aggregate count (ADD/REMOVE/RELEASE) or the list of
// leases observed (SHOW). maxPipelined overrides the pipeline driver's
// default batch size; zero keeps the default.
func Run(ctx context.Context, cs pipeline.ClusterState, logger *slog.Logger, poolID, rangeID string, req Request, maxPipelined int) (Result, error) {
	rng, err := rangeparse.Parse(req.RangeText, req.AllocPrefix)
	if err != nil {
		return Result{}, err
	}

	logf := func(format string, args ...any) {
		if logger != nil {
			logger.Debug(fmt.Sprintf(format, args...))
		}
	}

	op := pipeline.Operation{
		PoolID:       poolID,
		RangeID:      rangeID,
		Start:        rng.Start,
		End:          rng.End,
		Prefix:       rng.Prefix,
		MaxPipelined: maxPipelined,
	}

	switch req.Kind {
	case Add:
		acc := &leaseproc.CountAccumulator{}
		op.Action = pipeline.Action{
			Name:       "ADD",
			ReplyCount: redisops.AddReplyCount,
			Enqueue:    redisops.EnqueueAdd,
			Process:    leaseproc.ProcessAdd(logger, acc),
		}
		if err := pipeline.Drive(ctx, cs, op, logf); err != nil {
			return Result{}, err
		}
		return Result{Kind: Add, Count: acc.Count}, nil

	case Remove:
		acc := &leaseproc.CountAccumulator{}
		op.Action = pipeline.Action{
			Name:       "REMOVE",
			ReplyCount: redisops.RemoveReplyCount,
			Enqueue:    redisops.EnqueueRemove,
			Process:    leaseproc.ProcessCount(logger, acc),
		}
		if err := pipeline.Drive(ctx, cs, op, logf); err != nil {
			return Result{}, err
		}
		return Result{Kind: Remove, Count: acc.Count}, nil

	case Release:
		acc := &leaseproc.CountAccumulator{}
		op.Action = pipeline.Action{
			Name:       "RELEASE",
			ReplyCount: redisops.ReleaseReplyCount,
			Enqueue:    redisops.EnqueueRelease,
			Process:    leaseproc.ProcessCount(logger, acc),
		}
		if err := pipeline.Drive(ctx, cs, op, logf); err != nil {
			return Result{}, err
		}
		return Result{Kind: Release, Count: acc.Count}, nil

	case Show:
		acc := &leaseproc.LeaseAccumulator{}
		op.Action = pipeline.Action{
			Name:       "SHOW",
			ReplyCount: redisops.ShowReplyCount,
			Enqueue:    redisops.EnqueueShow,
			Process:    leaseproc.ProcessShow(logger, acc),
		}
		if err := pipeline.Drive(ctx, cs, op, logf); err != nil {
			return Result{}, err
		}
		return Result{Kind: Show, Leases: acc.Leases}, nil

	default:
		return Result{}, fmt.Errorf("opdriver: unknown request kind %v", req.Kind)
	}
}

// Format renders a Result the way the CLI prints it: a single aggregate
// line for ADD/REMOVE/RELEASE, or one line per lease for SHOW, following
// §4.8's active/expired label pairs and omit-if-empty field rules.
func Format(r Result, now time.Time) []string {
	switch r.Kind {
	case Add:
		return []string{fmt.Sprintf("Added %d", r.Count)}
	case Remove:
		return []string{fmt.Sprintf("Removed %d", r.Count)}
	case Release:
		return []string{fmt.Sprintf("Released %d", r.Count)}
	case Show:
		lines := make([]string, 0, len(r.Leases))
		for _, l := range r.Leases {
			lines = append(lines, formatLease(l, now))
		}
		return lines
	default:
		return nil
	}
}

func formatLease(l leaseproc.Lease, now time.Time) string {
	active := l.NextEvent != 0 && now.Unix() <= l.NextEvent

	var b []string
	if l.Range != "" {
		b = append(b, "range "+l.Range)
	}
	b = append(b, addressField(l.Address))

	if active {
		b = append(b, "active")
		b = append(b, "lease expires "+formatTime(l.NextEvent))
		if l.Device != "" {
			b = append(b, "device id "+l.Device)
		}
		if l.Gateway != "" {
			b = append(b, "gateway id "+l.Gateway)
		}
	} else {
		b = append(b, "expired")
		if l.NextEvent != 0 {
			b = append(b, "lease expired "+formatTime(l.NextEvent))
		}
		if l.Device != "" {
			b = append(b, "last device id "+l.Device)
		}
		if l.Gateway != "" {
			b = append(b, "last gateway id "+l.Gateway)
		}
	}
	return joinFields(b)
}

func addressField(a ipaddr.Addr) string {
	if a.Prefix != a.Family.Width() {
		return fmt.Sprintf("%s/%d", a, a.Prefix)
	}
	return a.String()
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).Local().Format("2006-01-02 15:04:05 MST")
}

func joinFields(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}
