// Package ippoolerr defines the tool's error taxonomy: every error the
// hard core returns implements Kind, so cmd/ippoolctl can map any error to
// its exit code with a single errors.As check instead of string matching or
// panics.
package ippoolerr

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an error into one of the taxonomy members described
// for the CLI's exit-code mapping.
type ErrorKind int

const (
	// KindUsage covers bad options, missing positional args, or a -p flag
	// with no preceding action. Maps to exit code 64.
	KindUsage ErrorKind = iota
	// KindParse covers malformed ranges/addresses, family mismatch,
	// start>end, or an out-of-bounds/too-wide allocation prefix.
	KindParse
	// KindTransientRedis covers connection failures or a cluster
	// redirect encountered mid-batch. The pipeline driver handles these
	// internally by rewinding to the last acknowledged address; they
	// should not normally escape to the CLI layer.
	KindTransientRedis
	// KindFatalRedis covers a cluster state that cannot make progress.
	KindFatalRedis
	// KindReplyShape covers a reply whose shape didn't match what a
	// command builder promised, for a single address. Callers log and
	// skip rather than construct this as a hard error in most paths;
	// it exists for cases where an entire batch's reply is unusable.
	KindReplyShape
)

func (k ErrorKind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindParse:
		return "parse"
	case KindTransientRedis:
		return "transient-redis"
	case KindFatalRedis:
		return "fatal-redis"
	case KindReplyShape:
		return "reply-shape"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carried through the tool. Kind
// determines its exit-code mapping; err, if non-nil, is the underlying
// cause preserved for %w unwrapping.
type Error struct {
	kind ErrorKind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Kind reports the taxonomy member this error belongs to.
func (e *Error) Kind() ErrorKind { return e.kind }

// Unwrap exposes the wrapped cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Usage builds a KindUsage error.
func Usage(format string, args ...any) *Error {
	return &Error{kind: KindUsage, msg: fmt.Sprintf(format, args...)}
}

// Parse builds a KindParse error.
func Parse(format string, args ...any) *Error {
	return &Error{kind: KindParse, msg: fmt.Sprintf(format, args...)}
}

// TransientRedis builds a KindTransientRedis error wrapping cause.
func TransientRedis(cause error, format string, args ...any) *Error {
	return &Error{kind: KindTransientRedis, msg: fmt.Sprintf(format, args...), err: cause}
}

// FatalRedis builds a KindFatalRedis error wrapping cause.
func FatalRedis(cause error, format string, args ...any) *Error {
	return &Error{kind: KindFatalRedis, msg: fmt.Sprintf(format, args...), err: cause}
}

// ReplyShape builds a KindReplyShape error.
func ReplyShape(format string, args ...any) *Error {
	return &Error{kind: KindReplyShape, msg: fmt.Sprintf(format, args...)}
}

// Kinder is implemented by every error this package produces.
type Kinder interface {
	Kind() ErrorKind
}

// ExitCode maps err to the CLI process exit code documented for the error
// taxonomy: 64 for a usage error, 1 for anything else that reaches main,
// 0 if err is nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var k Kinder
	if errors.As(err, &k) && k.Kind() == KindUsage {
		return 64
	}
	return 1
}
