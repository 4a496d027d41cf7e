package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapKeepsCauseInMessage(t *testing.T) {
	err := Wrap(CodeNetwork, "fetch nonce", fmt.Errorf("connection refused"))
	if err.Error() != "fetch nonce: connection refused" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, err.Cause) {
		t.Fatal("expected cause to be reachable through Unwrap")
	}
}

func TestExitCodeAndIs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New(CodeInsufficientBalance, "Insufficient balance"))
	if got := ExitCode(wrapped); got != int(CodeInsufficientBalance) {
		t.Fatalf("expected exit %d, got %d", CodeInsufficientBalance, got)
	}
	if !Is(wrapped, CodeInsufficientBalance) {
		t.Fatal("expected Is to match wrapped code")
	}
	if Is(wrapped, CodeNetwork) {
		t.Fatal("did not expect network code to match")
	}
	if got := ExitCode(errors.New("plain")); got != int(CodeInternal) {
		t.Fatalf("expected internal exit code for untyped error, got %d", got)
	}
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("expected success exit code, got %d", got)
	}
}

func TestTypeName(t *testing.T) {
	if got := TypeName(CodeUnknownAction); got != "unknown_action" {
		t.Fatalf("unexpected type name: %s", got)
	}
	if got := TypeName(Code(999)); got != "internal_error" {
		t.Fatalf("unexpected fallback type name: %s", got)
	}
}
