package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), 400},
		{Auth("nope"), 401},
		{Forbidden("nope"), 403},
		{NotFound("memory"), 404},
		{Conflict("already there"), 409},
		{Upstream("s3 down", errors.New("dial tcp")), 503},
		{Internal(errors.New("boom")), 500},
		{errors.New("untagged"), 500},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Fatalf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStatusSeesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("while handling request: %w", NotFound("album"))
	if got := Status(wrapped); got != 404 {
		t.Fatalf("wrapped status = %d, want 404", got)
	}
}

func TestPublicHidesInternals(t *testing.T) {
	err := Upstream("file storage unavailable", errors.New("AccessDenied: key id AKIA..."))
	if msg := Public(err); msg != "file storage unavailable" {
		t.Fatalf("Public leaked: %q", msg)
	}
	if msg := Public(errors.New("pq: connection refused")); msg != "internal error" {
		t.Fatalf("untagged error leaked: %q", msg)
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := Upstream("hint", inner)
	if !errors.Is(err, inner) {
		t.Fatal("wrapped error not reachable via errors.Is")
	}
}

func TestNotFoundMessage(t *testing.T) {
	if got := NotFound("event").Message; got != "event not found" {
		t.Fatalf("message = %q", got)
	}
}
