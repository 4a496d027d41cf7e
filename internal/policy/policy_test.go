package policy

import (
	"testing"

	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
)

func TestCheckActionAllowed(t *testing.T) {
	if err := CheckActionAllowed(nil, "swap"); err != nil {
		t.Fatalf("unexpected error with empty allowlist: %v", err)
	}
	if err := CheckActionAllowed([]string{" ", ""}, "swap"); err != nil {
		t.Fatalf("blank entries should not restrict: %v", err)
	}
	if err := CheckActionAllowed([]string{"get-balance, swap"}, "swap"); err != nil {
		t.Fatalf("expected action to be allowed: %v", err)
	}
	if err := CheckActionAllowed([]string{"get-balance"}, "transfer"); !clierr.Is(err, clierr.CodeBlocked) {
		t.Fatalf("expected blocked error, got %v", err)
	}
	if err := CheckActionAllowed([]string{"Swap"}, "swap"); err == nil {
		t.Fatal("action names are case-sensitive")
	}
}
