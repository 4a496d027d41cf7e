package registry

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
)

func TestResolveNetwork(t *testing.T) {
	n, err := ResolveNetwork("Base", "")
	if err != nil {
		t.Fatalf("ResolveNetwork failed: %v", err)
	}
	if n.ChainID != 8453 || n.ExplorerHost != "basescan.org" {
		t.Fatalf("unexpected base network: %+v", n)
	}

	n, err = ResolveNetwork("", "http://127.0.0.1:8545")
	if err != nil {
		t.Fatalf("ResolveNetwork default failed: %v", err)
	}
	if n.Name != "ethereum" || n.RPCURL != "http://127.0.0.1:8545" {
		t.Fatalf("expected ethereum with rpc override, got %+v", n)
	}

	if _, err := ResolveNetwork("solana", ""); !clierr.Is(err, clierr.CodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestExplorerTxURL(t *testing.T) {
	n, _ := LookupNetwork("polygon")
	if got := n.ExplorerTxURL("0xabc"); got != "https://polygonscan.com/tx/0xabc" {
		t.Fatalf("unexpected explorer url: %s", got)
	}
}

func TestKyberSwapBaseURL(t *testing.T) {
	if got := KyberSwapBaseURL("base", ""); got != "https://aggregator-api.kyberswap.com/base/api/v1" {
		t.Fatalf("unexpected default base url: %s", got)
	}
	if got := KyberSwapBaseURL("ethereum", "http://localhost:9000/"); got != "http://localhost:9000/ethereum/api/v1" {
		t.Fatalf("unexpected override base url: %s", got)
	}
}

func TestGasPolicyApply(t *testing.T) {
	if got := SwapGasPolicy.Apply(100_000); got != 120_000 {
		t.Fatalf("expected 120000, got %d", got)
	}
	if got := ApproveGasPolicy.Apply(50_000); got != 55_000 {
		t.Fatalf("expected 55000, got %d", got)
	}
	if got := (GasPolicy{Multiplier: 0.5}).Apply(1000); got != 1000 {
		t.Fatalf("expected multiplier below one to be ignored, got %d", got)
	}
}

func TestABIConstantsParse(t *testing.T) {
	for _, raw := range []string{ERC20ABI, ERC20DeployABI} {
		if _, err := abi.JSON(strings.NewReader(raw)); err != nil {
			t.Fatalf("parse abi: %v", err)
		}
	}
	parsed, _ := abi.JSON(strings.NewReader(ERC20ABI))
	for _, method := range []string{"balanceOf", "decimals", "symbol", "transfer", "allowance", "approve"} {
		if _, ok := parsed.Methods[method]; !ok {
			t.Fatalf("missing erc20 method %s", method)
		}
	}
}

func TestDeployBytecodeIsHex(t *testing.T) {
	code := common.FromHex(ERC20DeployBytecode)
	if len(code) < 1000 {
		t.Fatalf("unexpected deploy bytecode length: %d", len(code))
	}
}
