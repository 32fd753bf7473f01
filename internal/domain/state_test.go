package domain

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	all := []SubmissionStatus{SubmissionPending, SubmissionApproved, SubmissionRejected}
	allowed := map[[2]SubmissionStatus]bool{
		{SubmissionPending, SubmissionApproved}: true,
		{SubmissionPending, SubmissionRejected}: true,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]SubmissionStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" taskcreator ")
	if err != nil {
		t.Fatalf("parse role: %v", err)
	}
	if r != RoleTaskCreator {
		t.Fatalf("expected TaskCreator, got %s", r)
	}
	if _, err := ParseRole("Owner"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestPartialFailureMatchesKind(t *testing.T) {
	err := error(&PartialFailureError{Operation: "approve", Completed: "status", Failed: "payout", Err: ErrUserNotFound})
	if !errors.Is(err, ErrPartialFailure) {
		t.Fatal("expected partial failure kind")
	}
	var pf *PartialFailureError
	if !errors.As(err, &pf) || pf.Completed != "status" {
		t.Fatalf("expected to unwrap partial failure, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	for _, bad := range []string{"", "nope", "@x.io", "a@", "a b@x.io"} {
		if err := ValidateEmail(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	if err := ValidateEmail("w@x.io"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
