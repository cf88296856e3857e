package core

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessageIncludesKindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindHalBindingMissing, "writing audit record", cause)

	if err.Unwrap() != cause {
		t.Error("Unwrap should return the wrapped cause")
	}
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() should not be empty")
	}
	if !strings.Contains(msg, string(KindHalBindingMissing)) {
		t.Errorf("Error() should include the kind, got %q", msg)
	}
	if !strings.Contains(msg, "disk full") {
		t.Errorf("Error() should include the cause, got %q", msg)
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := New(KindPeriodDeviation, "bad period")
	if !Is(err, KindPeriodDeviation) {
		t.Error("Is should match on Kind")
	}
	if Is(err, KindPriorityUnset) {
		t.Error("Is should not match a different Kind")
	}
}

func TestIsFalseForPlainError(t *testing.T) {
	if Is(errors.New("plain"), KindPeriodUnset) {
		t.Error("Is should return false for a non-*Error value")
	}
}
