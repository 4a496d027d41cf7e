package id

import "testing"

func TestParseTokenNativeVariants(t *testing.T) {
	for _, input := range []string{"", "  ", NativeTokenAddress, "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"} {
		token, err := ParseToken(input)
		if err != nil {
			t.Fatalf("ParseToken(%q) failed: %v", input, err)
		}
		if !token.Native {
			t.Fatalf("expected %q to parse as native", input)
		}
		if token.Hex() != NativeTokenAddress {
			t.Fatalf("unexpected native hex: %s", token.Hex())
		}
	}
}

func TestParseTokenChecksumsERC20(t *testing.T) {
	token, err := ParseToken("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if token.Native {
		t.Fatal("expected ERC20 token")
	}
	if token.Hex() != "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48" {
		t.Fatalf("expected checksummed address, got %s", token.Hex())
	}
}

func TestParseTokenAndAddressRejectGarbage(t *testing.T) {
	if _, err := ParseToken("usdc"); err == nil {
		t.Fatal("expected invalid token error")
	}
	if _, err := ParseAddress("0x123"); err == nil {
		t.Fatal("expected invalid address error")
	}
}
