// Command ippoolctl is the administrative CLI for a Redis-backed IP
// address lease pool: it ADDs, REMOVEs, RELEASEs and SHOWs addresses or
// sub-prefixes within a range, driving a Redis Cluster deployment via
// pipelined, hash-tag-aware commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cjbrigato/ippoolctl/internal/ippoolerr"
	"github.com/cjbrigato/ippoolctl/internal/opdriver"
	"github.com/cjbrigato/ippoolctl/internal/poolconfig"
	"github.com/cjbrigato/ippoolctl/internal/redisclient"
)

const usage = `usage: ippoolctl [options] <server[:port]> <pool> [<range-id>]

<range-id>, if given, is stamped on every operation as its lease range
identifier.

Options (repeatable, applied in the order given):
  -a <prefix>   append an ADD operation
  -d <prefix>   append a REMOVE operation
  -r <prefix>   append a RELEASE operation
  -s <prefix>   append a SHOW operation
  -p <N>        set the allocation prefix on the most recently appended operation
  -f <file>     load a configuration file
  -x            increase verbosity (repeatable)
  -i, -I, -S, -o  reserved (not yet implemented); requested operations
                  still run, "NOT YET IMPLEMENTED" is reported after
  -h            print this message and exit 0
`

// opFlag implements flag.Value, appending one Request per occurrence in
// the exact order the option appeared on the command line — flag.FlagSet
// otherwise gives no ordering guarantee across distinct flag names.
type opFlag struct {
	kind     opdriver.Kind
	requests *[]opdriver.Request
}

func (f *opFlag) String() string { return "" }

func (f *opFlag) Set(value string) error {
	*f.requests = append(*f.requests, opdriver.Request{Kind: f.kind, RangeText: value})
	return nil
}

// prefixFlag implements flag.Value for -p, setting the allocation prefix
// on the most recently appended request.
type prefixFlag struct {
	requests *[]opdriver.Request
}

func (f *prefixFlag) String() string { return "" }

func (f *prefixFlag) Set(value string) error {
	if len(*f.requests) == 0 {
		return fmt.Errorf("-p given before any of -a/-d/-r/-s")
	}
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return fmt.Errorf("invalid prefix %q: %w", value, err)
	}
	(*f.requests)[len(*f.requests)-1].AllocPrefix = n
	return nil
}

// verboseFlag counts -x occurrences to step the slog level from Warn
// down through Info to Debug, capping at Debug.
type verboseFlag struct {
	count *int
}

func (f *verboseFlag) String() string { return "" }
func (f *verboseFlag) IsBoolFlag() bool { return true }
func (f *verboseFlag) Set(string) error {
	*f.count++
	return nil
}

// stubFlag records that a reserved option was passed, so main can report
// "NOT YET IMPLEMENTED" after the requested operations have run.
type stubFlag struct {
	seen *bool
}

func (f *stubFlag) String() string { return "" }
func (f *stubFlag) IsBoolFlag() bool { return true }
func (f *stubFlag) Set(string) error {
	*f.seen = true
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("ippoolctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	var requests []opdriver.Request
	var verboseCount int
	var reservedSeen bool
	var configPath string

	fs.Var(&opFlag{kind: opdriver.Add, requests: &requests}, "a", "append an ADD operation")
	fs.Var(&opFlag{kind: opdriver.Remove, requests: &requests}, "d", "append a REMOVE operation")
	fs.Var(&opFlag{kind: opdriver.Release, requests: &requests}, "r", "append a RELEASE operation")
	fs.Var(&opFlag{kind: opdriver.Show, requests: &requests}, "s", "append a SHOW operation")
	fs.Var(&prefixFlag{requests: &requests}, "p", "allocation prefix for the most recent operation")
	fs.Var(&verboseFlag{count: &verboseCount}, "x", "increase verbosity")
	fs.StringVar(&configPath, "f", "", "load a configuration file")
	for _, name := range []string{"i", "I", "S", "o"} {
		fs.Var(&stubFlag{seen: &reservedSeen}, name, "reserved")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return ippoolerr.ExitCode(ippoolerr.Usage("%v", err))
	}

	positional := fs.Args()
	if len(positional) < 2 {
		fs.Usage()
		return ippoolerr.ExitCode(ippoolerr.Usage("expected <server[:port]> <pool> [<range>]"))
	}
	if len(positional) > 3 {
		fs.Usage()
		return ippoolerr.ExitCode(ippoolerr.Usage("too many positional arguments"))
	}
	server := positional[0]
	poolID := positional[1]
	var rangeID string
	if len(positional) == 3 {
		rangeID = positional[2]
	}

	var cfg *poolconfig.Config
	if configPath != "" {
		loaded, err := poolconfig.Load(configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ippoolerr.ExitCode(ippoolerr.FatalRedis(err, "loading config"))
		}
		cfg = loaded
	}
	servers, poolID, pipelineMax := cfg.Merge([]string{server}, poolID, 0)

	level := verbosityLevel(verboseCount)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if len(requests) == 0 {
		fs.Usage()
		return ippoolerr.ExitCode(ippoolerr.Usage("no operations given (need at least one of -a/-d/-r/-s)"))
	}

	cs := redisclient.New(servers, nil)
	defer cs.Close()

	ctx := context.Background()
	now := time.Now()
	for _, req := range requests {
		result, err := opdriver.Run(ctx, cs, logger, poolID, rangeID, req, pipelineMax)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ippoolerr.ExitCode(err)
		}
		for _, line := range opdriver.Format(result, now) {
			fmt.Fprintln(stdout, line)
		}
	}

	if reservedSeen {
		fmt.Fprintln(stderr, "NOT YET IMPLEMENTED")
	}
	return 0
}

func verbosityLevel(count int) slog.Level {
	switch {
	case count <= 0:
		return slog.LevelWarn
	case count == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
