package ippoolerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeUsage(t *testing.T) {
	if got := ExitCode(Usage("bad flag")); got != 64 {
		t.Fatalf("ExitCode(usage) = %d, want 64", got)
	}
}

func TestExitCodeOther(t *testing.T) {
	for _, err := range []error{
		Parse("bad range"),
		TransientRedis(errors.New("boom"), "retry"),
		FatalRedis(errors.New("boom"), "fatal"),
		ReplyShape("bad shape"),
	} {
		if got := ExitCode(err); got != 1 {
			t.Fatalf("ExitCode(%v) = %d, want 1", err, got)
		}
	}
}

func TestExitCodeNil(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("ExitCode(nil) = %d, want 0", got)
	}
}

func TestExitCodeThroughWrap(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", Usage("bad flag"))
	if got := ExitCode(wrapped); got != 64 {
		t.Fatalf("ExitCode(wrapped usage) = %d, want 64", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := TransientRedis(cause, "connect")
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}
