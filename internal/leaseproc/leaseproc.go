// Package leaseproc implements the per-action reply processors: turning
// the raw redis.Cmder replies a batch produced back into aggregate counts
// or Lease records, tolerating a malformed reply for a single address
// without failing the rest of the batch.
package leaseproc

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/cjbrigato/ippoolctl/internal/ipaddr"
)

// Lease is a single address's current state as reported by SHOW.
type Lease struct {
	Address   ipaddr.Addr
	NextEvent int64
	Device    string
	Gateway   string
	Range     string
}

// CountAccumulator aggregates ADD/REMOVE/RELEASE reply counts.
type CountAccumulator struct {
	Count int64
}

// LeaseAccumulator collects Lease records from SHOW replies in address
// iteration order.
type LeaseAccumulator struct {
	Leases []Lease
}

// ProcessAdd reads the EXEC array reply for one ADD invocation: if
// element 0 is an integer, it is added to the running count.
func ProcessAdd(logger *slog.Logger, acc *CountAccumulator) func(addr ipaddr.Addr, replies []redis.Cmder) {
	return func(addr ipaddr.Addr, replies []redis.Cmder) {
		n, ok := execIntElement(replies, 0)
		if !ok {
			logf(logger, "add: malformed reply for %s", addr)
			return
		}
		acc.Count += n
	}
}

// ProcessCount reads a single integer reply (REMOVE or RELEASE) and adds
// it to the running count.
func ProcessCount(logger *slog.Logger, acc *CountAccumulator) func(addr ipaddr.Addr, replies []redis.Cmder) {
	return func(addr ipaddr.Addr, replies []redis.Cmder) {
		if len(replies) < 1 {
			logf(logger, "count: missing reply for %s", addr)
			return
		}
		cmd, ok := replies[0].(*redis.Cmd)
		if !ok {
			logf(logger, "count: unexpected reply type for %s", addr)
			return
		}
		n, err := cmd.Int64()
		if err != nil {
			logf(logger, "count: non-integer reply for %s: %v", addr, err)
			return
		}
		acc.Count += n
	}
}

// ProcessShow reads the EXEC array reply for one SHOW invocation: element
// 0 is the score (next_event) and must be present, elements 1..3 are
// device/gateway/range as nullable strings. A malformed reply, including
// a nil score for an address absent from the pool, is skipped and logged,
// not fatal.
func ProcessShow(logger *slog.Logger, acc *LeaseAccumulator) func(addr ipaddr.Addr, replies []redis.Cmder) {
	return func(addr ipaddr.Addr, replies []redis.Cmder) {
		exec, ok := replies[len(replies)-1].(*redis.Cmd)
		if !ok {
			logf(logger, "show: unexpected EXEC reply type for %s", addr)
			return
		}
		val, err := exec.Result()
		if err != nil {
			logf(logger, "show: EXEC error for %s: %v", addr, err)
			return
		}
		fields, ok := val.([]any)
		if !ok || len(fields) != 4 {
			logf(logger, "show: malformed EXEC array for %s", addr)
			return
		}

		nextEvent, ok := scoreField(fields[0])
		if !ok {
			logf(logger, "show: malformed score for %s", addr)
			return
		}
		device := stringOrEmpty(fields[1])
		gateway := stringOrEmpty(fields[2])
		rng := stringOrEmpty(fields[3])

		acc.Leases = append(acc.Leases, Lease{
			Address:   addr,
			NextEvent: nextEvent,
			Device:    device,
			Gateway:   gateway,
			Range:     rng,
		})
	}
}

// execIntElement reads element idx of the array reply held by an EXEC
// command (the last entry of replies) and reports whether it decoded as
// an integer.
func execIntElement(replies []redis.Cmder, idx int) (int64, bool) {
	if len(replies) == 0 {
		return 0, false
	}
	exec, ok := replies[len(replies)-1].(*redis.Cmd)
	if !ok {
		return 0, false
	}
	val, err := exec.Result()
	if err != nil {
		return 0, false
	}
	arr, ok := val.([]any)
	if !ok || idx >= len(arr) {
		return 0, false
	}
	return toInt64(arr[idx])
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// scoreField decodes a ZSCORE reply element, which go-redis surfaces as a
// string holding a floating-point score; the pool only ever stores
// integer-valued Unix timestamps in it. A nil element means the address is
// absent from the pool ZSET (removed, or never added), and is reported as
// a decode failure so ProcessShow drops the record entirely rather than
// synthesizing a phantom lease with next_event=0.
func scoreField(v any) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

func stringOrEmpty(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func logf(logger *slog.Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...))
}
