package app

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/evm-agent/internal/execution"
	"github.com/ggonzalez94/evm-agent/internal/execution/evmtest"
	"github.com/ggonzalez94/evm-agent/internal/execution/signer"
	"github.com/ggonzalez94/evm-agent/internal/model"
)

const testKey = "59c6995e998f97a5a0044976f0945388cf9b7e5e5f4f9d2d9d8f1f5b7f6d11d1"

// isolate points every config, cache and credential location at a temp dir.
func isolate(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("XDG_CACHE_HOME", tmp)
	for _, name := range []string{"EVM_PRIVATE_KEY", "ETH_PRIVATE_KEY", "EVM_PRIVATE_KEY_FILE", "EVM_KEYSTORE_PATH", "EVM_MNEMONIC", "EVM_AGENT_NETWORK", "EVM_AGENT_RPC_URL", "EVM_AGENT_ENABLE_ACTIONS"} {
		t.Setenv(name, "")
	}
	t.Chdir(tmp)
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := NewRunnerWithWriters(&stdout, &stderr).Run(append([]string{"--log-level", "error"}, args...))
	return code, stdout.String(), stderr.String()
}

func decodeError(t *testing.T, stderr string) model.ErrorBody {
	t.Helper()
	var env model.Envelope
	if err := json.Unmarshal([]byte(stderr), &env); err != nil {
		t.Fatalf("failed to parse error envelope: %v output=%s", err, stderr)
	}
	if env.Success || env.Error == nil {
		t.Fatalf("expected failure envelope, got %s", stderr)
	}
	return *env.Error
}

func testAccount(t *testing.T) common.Address {
	t.Helper()
	s, err := signer.NewLocalSigner(signer.LocalSignerConfig{PrivateKeyHex: testKey})
	if err != nil {
		t.Fatalf("NewLocalSigner failed: %v", err)
	}
	return s.Address()
}

func TestTrimRootPath(t *testing.T) {
	if got := trimRootPath("evm-agent actions run"); got != "actions run" {
		t.Fatalf("unexpected trim result: %s", got)
	}
}

func TestRunnerActionsListNeedsNoNetwork(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, "actions", "list", "--results-only")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr)
	}
	var items []model.ActionInfo
	if err := json.Unmarshal([]byte(stdout), &items); err != nil {
		t.Fatalf("failed to parse output json: %v output=%s", err, stdout)
	}
	if len(items) != 6 || items[0].Name != "get-token-by-ticker" || items[5].Name != "swap" {
		t.Fatalf("unexpected actions: %+v", items)
	}
}

func TestRunnerUnknownActionExitCode(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, "actions", "run", "launch-rocket", "--params", `{"amount": true}`)
	if code != 22 {
		t.Fatalf("expected exit 22, got %d stderr=%s", code, stderr)
	}
	if body := decodeError(t, stderr); body.Type != "unknown_action" {
		t.Fatalf("unexpected error type: %+v", body)
	}
}

func TestRunnerInvalidParametersBeforeNetwork(t *testing.T) {
	isolate(t)
	// No key and no reachable RPC: validation must fail first.
	code, _, stderr := run(t, "--rpc-url", "http://127.0.0.1:1", "actions", "run", "transfer", "--params", `{"amount": true}`)
	if code != 21 {
		t.Fatalf("expected exit 21, got %d stderr=%s", code, stderr)
	}
	body := decodeError(t, stderr)
	if !strings.Contains(body.Message, "missing required parameter: to_address") || !strings.Contains(body.Message, "invalid type for amount") {
		t.Fatalf("unexpected message: %s", body.Message)
	}
}

func TestRunnerBlockedAction(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, "--enable-actions", "get-balance", "--results-only", "actions", "run", "transfer")
	if code != 16 {
		t.Fatalf("expected exit 16, got %d stderr=%s", code, stderr)
	}
	if stdout != "" {
		t.Fatalf("error output must not go to stdout: %s", stdout)
	}
	if body := decodeError(t, stderr); body.Type != "action_blocked" {
		t.Fatalf("unexpected error type: %+v", body)
	}
}

func TestRunnerUnknownNetworkIsConfigurationError(t *testing.T) {
	isolate(t)
	t.Setenv("EVM_PRIVATE_KEY", testKey)
	code, _, stderr := run(t, "--network", "solana", "actions", "run", "get-address")
	if code != 20 {
		t.Fatalf("expected exit 20, got %d stderr=%s", code, stderr)
	}
}

func TestRunnerNetworksList(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, "--network", "base", "--rpc-url", "http://localhost:8545", "networks", "list", "--results-only")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr)
	}
	var items []model.NetworkInfo
	if err := json.Unmarshal([]byte(stdout), &items); err != nil {
		t.Fatalf("failed to parse output json: %v output=%s", err, stdout)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 networks, got %+v", items)
	}
	for _, n := range items {
		if n.Name == "base" && (!n.Active || n.RPCURL != "http://localhost:8545" || n.ChainID != 8453) {
			t.Fatalf("unexpected active network: %+v", n)
		}
		if n.Name != "base" && n.Active {
			t.Fatalf("only base should be active: %+v", n)
		}
	}
}

func TestRunnerSchemaIncludesActionContracts(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, "schema", "actions", "run", "--results-only")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr)
	}
	var doc struct {
		Command struct {
			Path string `json:"path"`
		} `json:"command"`
		Actions []model.ActionInfo `json:"actions"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("failed to parse schema: %v output=%s", err, stdout)
	}
	if doc.Command.Path != "evm-agent actions run" || len(doc.Actions) != 6 {
		t.Fatalf("unexpected schema: %+v", doc)
	}
}

func TestRunnerGetAddressPlain(t *testing.T) {
	isolate(t)
	node := evmtest.NewNode(t, 1)
	t.Setenv("EVM_PRIVATE_KEY", testKey)

	code, stdout, stderr := run(t, "--rpc-url", node.URL, "--plain", "--results-only", "actions", "run", "get-address")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr)
	}
	if stdout != "Your Ethereum address: "+testAccount(t).Hex()+"\n" {
		t.Fatalf("unexpected output: %q", stdout)
	}
}

func TestRunnerMissingKeyIsSignerError(t *testing.T) {
	isolate(t)
	node := evmtest.NewNode(t, 1)
	code, _, stderr := run(t, "--rpc-url", node.URL, "actions", "run", "get-address")
	if code != 29 {
		t.Fatalf("expected exit 29, got %d stderr=%s", code, stderr)
	}
}

func TestRunnerTransferIsJournaled(t *testing.T) {
	isolate(t)
	node := evmtest.NewNode(t, 1)
	owner := testAccount(t)
	node.SetBalance(owner, new(big.Int).Mul(big.NewInt(10), big.NewInt(1_000_000_000_000_000_000)))
	t.Setenv("EVM_PRIVATE_KEY", testKey)

	recipient := "0x00000000000000000000000000000000000000cc"
	code, stdout, stderr := run(t, "--rpc-url", node.URL, "--results-only", "actions", "run", "transfer", recipient, "1.5")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr)
	}
	var res model.ActionResult
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("failed to parse result: %v output=%s", err, stdout)
	}
	sent := node.Sent()
	if len(sent) != 1 || res.Result != "https://etherscan.io/tx/"+sent[0].Hash().Hex() {
		t.Fatalf("unexpected result %+v for %d txs", res, len(sent))
	}

	code, stdout, stderr = run(t, "--results-only", "history", "list", "--status", "completed")
	if code != 0 {
		t.Fatalf("history list failed: %d stderr=%s", code, stderr)
	}
	var items []execution.Action
	if err := json.Unmarshal([]byte(stdout), &items); err != nil {
		t.Fatalf("failed to parse history: %v output=%s", err, stdout)
	}
	if len(items) != 1 || items[0].IntentType != "transfer" || items[0].InputAmount != "1.5" {
		t.Fatalf("unexpected history: %+v", items)
	}

	code, stdout, stderr = run(t, "--results-only", "history", "show", items[0].ActionID)
	if code != 0 || !strings.Contains(stdout, sent[0].Hash().Hex()) {
		t.Fatalf("history show = %d %s %s", code, stdout, stderr)
	}
}

func TestRunnerInsufficientBalanceExitCode(t *testing.T) {
	isolate(t)
	node := evmtest.NewNode(t, 1)
	t.Setenv("EVM_PRIVATE_KEY", testKey)

	code, _, stderr := run(t, "--rpc-url", node.URL, "actions", "run", "transfer", "--params", `{"to_address":"0x00000000000000000000000000000000000000cc","amount":1}`)
	if code != 23 {
		t.Fatalf("expected exit 23, got %d stderr=%s", code, stderr)
	}
	if body := decodeError(t, stderr); !strings.HasPrefix(body.Message, "Insufficient balance. Required: 1, Available: 0") {
		t.Fatalf("unexpected message: %s", body.Message)
	}
	if node.Calls("eth_sendRawTransaction") != 0 {
		t.Fatal("nothing should be broadcast")
	}
}
