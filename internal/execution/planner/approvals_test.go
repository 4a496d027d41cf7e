package planner

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/execution"
	"github.com/ggonzalez94/evm-agent/internal/execution/evmtest"
	"github.com/ggonzalez94/evm-agent/internal/execution/signer"
	"github.com/ggonzalez94/evm-agent/internal/registry"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	token  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	router = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func newManager(t *testing.T, node *evmtest.Node, log *zap.Logger) (*ApprovalManager, common.Address) {
	t.Helper()
	s, err := signer.NewLocalSigner(signer.LocalSignerConfig{PrivateKeyHex: "59c6995e998f97a5a0044976f0945388cf9b7e5e5f4f9d2d9d8f1f5b7f6d11d1"})
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	client, err := execution.Dial(context.Background(),
		registry.Network{Name: "base", RPCURL: node.URL, ChainID: 8453},
		execution.DialOptions{Attempts: 1, PollInterval: 5 * time.Millisecond, ReceiptTimeout: time.Second, Logger: log},
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(client.Close)
	node.AddToken(token, "USDC", 6)
	return NewApprovalManager(execution.NewSubmitter(client, s), log), s.Address()
}

func TestEnsureAllowanceSufficientSubmitsNothing(t *testing.T) {
	cases := []struct{ allowance, required int64 }{{100, 100}, {101, 100}, {1 << 40, 1}}
	for _, tc := range cases {
		node := evmtest.NewNode(t, 8453)
		mgr, owner := newManager(t, node, nil)
		node.SetAllowance(token, owner, router, big.NewInt(tc.allowance))

		res, err := mgr.EnsureAllowance(context.Background(), token, router, big.NewInt(tc.required))
		if err != nil {
			t.Fatalf("EnsureAllowance(%d,%d) failed: %v", tc.allowance, tc.required, err)
		}
		if res.State != ApprovalSufficient || res.TxHash != "" {
			t.Fatalf("expected sufficient without tx, got %+v", res)
		}
		if len(node.Sent()) != 0 {
			t.Fatalf("expected zero transactions, got %d", len(node.Sent()))
		}
	}
}

func TestEnsureAllowanceInsufficientSubmitsExactlyOne(t *testing.T) {
	node := evmtest.NewNode(t, 8453)
	mgr, owner := newManager(t, node, nil)
	node.SetAllowance(token, owner, router, big.NewInt(99))
	node.SetEstimateGas(40_000)

	res, err := mgr.EnsureAllowance(context.Background(), token, router, big.NewInt(100))
	if err != nil {
		t.Fatalf("EnsureAllowance failed: %v", err)
	}
	if res.State != ApprovalConfirmed || res.TxHash == "" {
		t.Fatalf("expected confirmed approval, got %+v", res)
	}
	sent := node.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(sent))
	}
	if *sent[0].To() != token || sent[0].Gas() != 44_000 {
		t.Fatalf("unexpected approval tx: to=%s gas=%d", sent[0].To().Hex(), sent[0].Gas())
	}
	if got := node.Allowance(token, owner, router); got.Int64() != 100 {
		t.Fatalf("expected allowance 100 after approval, got %s", got)
	}
}

func TestEnsureAllowanceRevertIsApprovalFailed(t *testing.T) {
	node := evmtest.NewNode(t, 8453)
	mgr, _ := newManager(t, node, nil)
	node.RevertWhen(func(tx *types.Transaction) bool { return *tx.To() == token })

	res, err := mgr.EnsureAllowance(context.Background(), token, router, big.NewInt(5))
	if !clierr.Is(err, clierr.CodeApprovalFailed) {
		t.Fatalf("expected approval failed error, got %v", err)
	}
	if res.State != ApprovalReverted {
		t.Fatalf("expected reverted state, got %s", res.State)
	}
}

func TestEnsureAllowanceGasFallback(t *testing.T) {
	node := evmtest.NewNode(t, 8453)
	core, logs := observer.New(zap.WarnLevel)
	mgr, _ := newManager(t, node, zap.New(core))
	node.FailEstimateGas("execution reverted")

	if _, err := mgr.EnsureAllowance(context.Background(), token, router, big.NewInt(5)); err != nil {
		t.Fatalf("EnsureAllowance failed: %v", err)
	}
	sent := node.Sent()
	if len(sent) != 1 || sent[0].Gas() != registry.ApproveGasPolicy.Fallback {
		t.Fatalf("expected fallback gas %d, got %+v", registry.ApproveGasPolicy.Fallback, sent)
	}
	if logs.FilterMessage("gas estimation failed, using fallback limit").Len() != 1 {
		t.Fatalf("expected fallback warning to be logged")
	}
}

func TestValidateApprovalCalldata(t *testing.T) {
	amount := big.NewInt(1_000_000)
	data, err := plannerERC20ABI.Pack("approve", router, amount)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if err := validateApprovalCalldata(data, router, amount); err != nil {
		t.Fatalf("expected valid calldata: %v", err)
	}
	if err := validateApprovalCalldata(data, token, amount); err == nil {
		t.Fatal("expected spender mismatch")
	}
	if err := validateApprovalCalldata(data, router, big.NewInt(1)); err == nil {
		t.Fatal("expected amount mismatch")
	}
	transfer, _ := plannerERC20ABI.Pack("transfer", router, amount)
	if err := validateApprovalCalldata(transfer, router, amount); err == nil {
		t.Fatal("expected selector mismatch")
	}
}
