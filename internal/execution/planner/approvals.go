package planner

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/execution"
	"github.com/ggonzalez94/evm-agent/internal/registry"
	"go.uber.org/zap"
)

var (
	plannerERC20ABI = mustPlannerABI(registry.ERC20ABI)
	approveSelector = plannerERC20ABI.Methods["approve"].ID
)

// ApprovalState traces one EnsureAllowance call.
type ApprovalState string

const (
	ApprovalIdle             ApprovalState = "idle"
	ApprovalAllowanceChecked ApprovalState = "allowance_checked"
	ApprovalSufficient       ApprovalState = "sufficient"
	ApprovalSubmitted        ApprovalState = "submitted"
	ApprovalConfirmed        ApprovalState = "confirmed"
	ApprovalReverted         ApprovalState = "reverted"
)

// ApprovalResult reports what EnsureAllowance did. TxHash is empty when the
// existing allowance already covered the requirement.
type ApprovalResult struct {
	State     ApprovalState
	Allowance *big.Int
	TxHash    string
}

// ApprovalManager tops up ERC20 allowances for the submitter's account.
type ApprovalManager struct {
	sub *execution.Submitter
	log *zap.Logger
}

func NewApprovalManager(sub *execution.Submitter, log *zap.Logger) *ApprovalManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApprovalManager{sub: sub, log: log}
}

// EnsureAllowance approves exactly required for spender when the current
// allowance is lower, and blocks until the approval is mined. A reverted
// approval is an ApprovalFailed error.
func (m *ApprovalManager) EnsureAllowance(ctx context.Context, token, spender common.Address, required *big.Int) (ApprovalResult, error) {
	result := ApprovalResult{State: ApprovalIdle}
	if required == nil || required.Sign() <= 0 {
		return result, clierr.New(clierr.CodeInvalidParameters, "approval amount must be a positive integer in base units")
	}
	if spender == (common.Address{}) {
		return result, clierr.New(clierr.CodeInvalidParameters, "approval requires spender address")
	}
	client := m.sub.Client()
	owner := m.sub.Address()

	current, err := client.Allowance(ctx, token, owner, spender)
	if err != nil {
		return result, err
	}
	result.State = ApprovalAllowanceChecked
	result.Allowance = current
	if current.Cmp(required) >= 0 {
		result.State = ApprovalSufficient
		m.log.Debug("allowance sufficient", zap.String("token", token.Hex()), zap.String("spender", spender.Hex()))
		return result, nil
	}

	data, err := plannerERC20ABI.Pack("approve", spender, required)
	if err != nil {
		return result, clierr.Wrap(clierr.CodeInternal, "pack approval calldata", err)
	}
	if err := validateApprovalCalldata(data, spender, required); err != nil {
		return result, err
	}
	gas := client.EstimateGas(ctx, ethereum.CallMsg{From: owner, To: &token, Data: data}, registry.ApproveGasPolicy)

	hash, err := m.sub.Submit(ctx, execution.TxRequest{To: &token, Data: data, Gas: gas})
	if err != nil {
		return result, err
	}
	result.State = ApprovalSubmitted
	result.TxHash = hash.Hex()
	m.log.Info("approval submitted",
		zap.String("token", token.Hex()),
		zap.String("spender", spender.Hex()),
		zap.String("amount", required.String()),
		zap.String("tx_hash", result.TxHash),
	)

	receipt, err := client.WaitReceipt(ctx, hash)
	if err != nil {
		return result, err
	}
	if !receipt.Succeeded() {
		result.State = ApprovalReverted
		return result, clierr.New(clierr.CodeApprovalFailed, fmt.Sprintf("approval transaction %s reverted", result.TxHash))
	}
	result.State = ApprovalConfirmed
	return result, nil
}

// validateApprovalCalldata checks the approve(spender, amount) payload before
// it is signed.
func validateApprovalCalldata(data []byte, spender common.Address, amount *big.Int) error {
	if len(data) < 4 || !bytes.Equal(data[:4], approveSelector) {
		return clierr.New(clierr.CodeInternal, "approval must use ERC20 approve(spender,amount)")
	}
	args, err := plannerERC20ABI.Methods["approve"].Inputs.Unpack(data[4:])
	if err != nil || len(args) != 2 {
		return clierr.New(clierr.CodeInternal, "approval calldata is invalid")
	}
	gotSpender, ok := args[0].(common.Address)
	if !ok || gotSpender != spender {
		return clierr.New(clierr.CodeInternal, "approval spender does not match router")
	}
	gotAmount, ok := args[1].(*big.Int)
	if !ok || gotAmount.Cmp(amount) != 0 {
		return clierr.New(clierr.CodeInternal, "approval amount does not match requirement")
	}
	return nil
}

func mustPlannerABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
