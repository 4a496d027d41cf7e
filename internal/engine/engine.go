// Package engine turns transfer, swap and deploy intents into ordered,
// validated on-chain operations for the configured account.
package engine

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/evm-agent/internal/cache"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/execution"
	"github.com/ggonzalez94/evm-agent/internal/execution/planner"
	"github.com/ggonzalez94/evm-agent/internal/id"
	"github.com/ggonzalez94/evm-agent/internal/model"
	"github.com/ggonzalez94/evm-agent/internal/providers"
	"github.com/ggonzalez94/evm-agent/internal/registry"
	"go.uber.org/zap"
)

// DefaultSlippagePct is used when a swap does not name a slippage.
const DefaultSlippagePct = "0.5"

var (
	erc20ABI  = mustABI(registry.ERC20ABI)
	deployABI = mustABI(registry.ERC20DeployABI)
)

type Options struct {
	Journal *execution.Store
	Cache   *cache.Store
	Logger  *zap.Logger
}

// Engine drives a single account on a single network.
type Engine struct {
	client    *execution.NetworkClient
	sub       *execution.Submitter
	approvals *planner.ApprovalManager
	routes    providers.RouteProvider
	tokens    providers.TokenSearchProvider
	journal   *execution.Store
	cache     *cache.Store
	log       *zap.Logger
}

func New(sub *execution.Submitter, routes providers.RouteProvider, tokens providers.TokenSearchProvider, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		client:    sub.Client(),
		sub:       sub,
		approvals: planner.NewApprovalManager(sub, log.Named("approvals")),
		routes:    routes,
		tokens:    tokens,
		journal:   opts.Journal,
		cache:     opts.Cache,
		log:       log,
	}
}

func (e *Engine) Address() common.Address { return e.sub.Address() }

func (e *Engine) Network() registry.Network { return e.client.Network() }

func (e *Engine) GetAddress() string {
	return "Your Ethereum address: " + e.Address().Hex()
}

// GetBalance reports the account's balance of token (native when empty) as
// a human-readable decimal. Any failure is logged and reported as ok=false.
func (e *Engine) GetBalance(ctx context.Context, token string) (string, bool) {
	ref, err := id.ParseToken(token)
	if err != nil {
		e.log.Warn("balance lookup failed", zap.String("token", token), zap.Error(err))
		return "", false
	}
	raw, decimals, err := e.balanceOf(ctx, ref)
	if err != nil {
		e.log.Warn("balance lookup failed", zap.String("token", ref.String()), zap.Error(err))
		return "", false
	}
	return id.ToHuman(raw, decimals), true
}

// balanceOf returns the raw balance and the token's own decimals, queried
// fresh on every call.
func (e *Engine) balanceOf(ctx context.Context, token id.TokenRef) (*big.Int, int, error) {
	if token.Native {
		bal, err := e.client.NativeBalance(ctx, e.Address())
		return bal, id.NativeDecimals, err
	}
	decimals, err := e.client.TokenDecimals(ctx, token.Address)
	if err != nil {
		return nil, 0, err
	}
	bal, err := e.client.TokenBalance(ctx, token.Address, e.Address())
	if err != nil {
		return nil, 0, err
	}
	return bal, decimals, nil
}

// requireBalance converts amount with token's decimals and fails with
// InsufficientBalance when the account holds less.
func (e *Engine) requireBalance(ctx context.Context, token id.TokenRef, amount string) (*big.Int, *big.Int, int, error) {
	balance, decimals, err := e.balanceOf(ctx, token)
	if err != nil {
		return nil, nil, 0, err
	}
	raw, err := id.ToBaseUnits(amount, decimals)
	if err != nil {
		return nil, nil, 0, err
	}
	if raw.Sign() <= 0 {
		return nil, nil, 0, clierr.New(clierr.CodeInvalidParameters, "amount must be greater than zero")
	}
	if balance.Cmp(raw) < 0 {
		return nil, nil, 0, insufficient(id.ToHuman(raw, decimals), id.ToHuman(balance, decimals))
	}
	return raw, balance, decimals, nil
}

// requireGasHeadroom fails when spending raw native units would leave less
// than gasLimit at the current gas price.
func (e *Engine) requireGasHeadroom(ctx context.Context, raw, balance *big.Int, gasLimit uint64) error {
	gasPrice, err := e.client.GasPrice(ctx)
	if err != nil {
		return err
	}
	gasCost := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
	if new(big.Int).Add(raw, gasCost).Cmp(balance) > 0 {
		return clierr.New(clierr.CodeInsufficientBalance, fmt.Sprintf(
			"Insufficient balance. Required: %s plus %s for gas, Available: %s",
			id.ToHuman(raw, id.NativeDecimals), id.ToHuman(gasCost, id.NativeDecimals), id.ToHuman(balance, id.NativeDecimals)))
	}
	return nil
}

// tokenLabel names token by its symbol when the contract answers symbol().
func (e *Engine) tokenLabel(ctx context.Context, token id.TokenRef) string {
	if token.Native {
		return token.String()
	}
	symbol, err := e.client.TokenSymbol(ctx, token.Address)
	if err != nil || strings.TrimSpace(symbol) == "" {
		return token.Hex()
	}
	return symbol
}

func insufficient(required, available string) error {
	return clierr.New(clierr.CodeInsufficientBalance, fmt.Sprintf("Insufficient balance. Required: %s, Available: %s", required, available))
}

// Transfer sends amount of token (native when empty) to to and returns the
// explorer link without waiting for the receipt. Failures propagate.
func (e *Engine) Transfer(ctx context.Context, to, amount, token string) (string, error) {
	recipient, err := id.ParseAddress(to)
	if err != nil {
		return "", err
	}
	ref, err := id.ParseToken(token)
	if err != nil {
		return "", err
	}
	raw, balance, decimals, err := e.requireBalance(ctx, ref, amount)
	if err != nil {
		return "", err
	}

	var req execution.TxRequest
	if ref.Native {
		if err := e.requireGasHeadroom(ctx, raw, balance, registry.NativeTransferGas); err != nil {
			return "", err
		}
		req = execution.TxRequest{To: &recipient, Value: raw, Gas: registry.NativeTransferGas}
	} else {
		data, err := erc20ABI.Pack("transfer", recipient, raw)
		if err != nil {
			return "", clierr.Wrap(clierr.CodeInternal, "pack transfer calldata", err)
		}
		gas := e.client.EstimateGas(ctx, ethereum.CallMsg{From: e.Address(), To: &ref.Address, Data: data}, registry.TokenTransferGasPolicy)
		req = execution.TxRequest{To: &ref.Address, Data: data, Gas: gas}
	}

	action := e.newAction(execution.IntentTransfer)
	action.ToAddress = recipient.Hex()
	action.TokenIn = ref.Hex()
	action.InputAmount = id.ToHuman(raw, decimals)
	step := action.AddStep(execution.StepTypeTransfer, fmt.Sprintf("Transfer %s %s to %s", action.InputAmount, e.tokenLabel(ctx, ref), recipient.Hex()))
	action.Status = execution.ActionStatusRunning
	e.record(&action)

	hash, err := e.submitStep(ctx, &action, step, req)
	if err != nil {
		action.Fail(err.Error())
		e.record(&action)
		return "", err
	}
	url := e.Network().ExplorerTxURL(hash.Hex())
	action.Steps[step].ExplorerURL = url
	action.Complete(url)
	e.record(&action)
	return url, nil
}

// Swap exchanges amount of tokenIn for tokenOut through the route provider.
// Unlike Transfer it never returns an error: every failure becomes a
// "Swap failed: ..." message carrying the cause.
func (e *Engine) Swap(ctx context.Context, tokenIn, tokenOut, amount, slippagePct string) string {
	action := e.newAction(execution.IntentSwap)
	action.Provider = e.routes.Info().Name
	msg, err := e.swap(ctx, &action, tokenIn, tokenOut, amount, slippagePct)
	if err != nil {
		e.log.Warn("swap failed", zap.String("action_id", action.ActionID), zap.Error(err))
		if action.Status != execution.ActionStatusPlanned {
			action.Fail(err.Error())
			e.record(&action)
		}
		return "Swap failed: " + err.Error()
	}
	action.Complete(msg)
	e.record(&action)
	return msg
}

func (e *Engine) swap(ctx context.Context, action *execution.Action, tokenIn, tokenOut, amount, slippagePct string) (string, error) {
	in, err := id.ParseToken(tokenIn)
	if err != nil {
		return "", err
	}
	out, err := id.ParseToken(tokenOut)
	if err != nil {
		return "", err
	}
	if in == out {
		return "", clierr.New(clierr.CodeInvalidParameters, "token_in and token_out must differ")
	}
	slippageBps, err := SlippageBps(slippagePct)
	if err != nil {
		return "", err
	}
	raw, balance, decimals, err := e.requireBalance(ctx, in, amount)
	if err != nil {
		return "", err
	}
	if in.Native {
		// The swap value and its gas come out of the same balance.
		if err := e.requireGasHeadroom(ctx, raw, balance, registry.SwapGasPolicy.Fallback); err != nil {
			return "", err
		}
	}

	route, err := e.routes.GetRoute(ctx, providers.RouteRequest{
		TokenIn:           in,
		TokenOut:          out,
		AmountInBaseUnits: raw,
		Sender:            e.Address(),
	})
	if err != nil {
		return "", err
	}

	action.TokenIn = in.Hex()
	action.TokenOut = out.Hex()
	action.InputAmount = id.ToHuman(raw, decimals)
	action.SlippageBps = slippageBps
	action.ToAddress = route.RouterAddress.Hex()
	action.Status = execution.ActionStatusRunning
	e.record(action)

	if !in.Native {
		step := action.AddStep(execution.StepTypeApproval, "Approve router for "+e.tokenLabel(ctx, in))
		required := route.AmountIn
		if required == nil || required.Sign() <= 0 {
			required = raw
		}
		res, err := e.approvals.EnsureAllowance(ctx, in.Address, route.RouterAddress, required)
		action.Steps[step].TxHash = res.TxHash
		action.Steps[step].Target = in.Hex()
		if err != nil {
			return "", err
		}
		if res.TxHash == "" {
			action.Steps[step].Status = execution.StepStatusSkipped
		} else {
			action.Steps[step].Status = execution.StepStatusConfirmed
			action.Steps[step].ExplorerURL = e.Network().ExplorerTxURL(res.TxHash)
			e.log.Info("approval confirmed", zap.String("explorer_url", action.Steps[step].ExplorerURL))
		}
		e.record(action)
	}

	calldata, err := e.routes.BuildSwap(ctx, providers.BuildRequest{
		Route:       route,
		Sender:      e.Address(),
		Recipient:   e.Address(),
		SlippageBps: slippageBps,
	})
	if err != nil {
		return "", err
	}

	value := new(big.Int)
	if in.Native {
		value = raw
	}
	router := route.RouterAddress
	gas := e.client.EstimateGas(ctx, ethereum.CallMsg{From: e.Address(), To: &router, Value: value, Data: calldata}, registry.SwapGasPolicy)

	step := action.AddStep(execution.StepTypeSwap, fmt.Sprintf("Swap %s %s for %s via %s", action.InputAmount, e.tokenLabel(ctx, in), e.tokenLabel(ctx, out), action.Provider))
	hash, err := e.submitStep(ctx, action, step, execution.TxRequest{To: &router, Value: value, Data: calldata, Gas: gas})
	if err != nil {
		return "", err
	}
	url := e.Network().ExplorerTxURL(hash.Hex())
	action.Steps[step].ExplorerURL = url
	return "Swap transaction sent! (allow time for scanner to populate it):\nTransaction: " + url, nil
}

// DeployToken deploys the bundled ERC20 with 18 decimals and supply whole
// tokens minted to the account, and waits for the contract address.
func (e *Engine) DeployToken(ctx context.Context, name, symbol, supply string) (string, error) {
	name = strings.TrimSpace(name)
	symbol = strings.TrimSpace(symbol)
	if name == "" || symbol == "" {
		return "", clierr.New(clierr.CodeInvalidParameters, "token name and symbol are required")
	}
	whole, err := id.CanonicalDecimal(supply)
	if err != nil {
		return "", err
	}
	if strings.Contains(whole, ".") {
		return "", clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("supply %q must be a whole number of tokens", supply))
	}
	supplyInt, _ := new(big.Int).SetString(whole, 10)
	if supplyInt.Sign() <= 0 {
		return "", clierr.New(clierr.CodeInvalidParameters, "supply must be greater than zero")
	}

	args, err := deployABI.Pack("", name, symbol, registry.DeployTokenDecimals, supplyInt)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "pack constructor arguments", err)
	}
	data := append(common.FromHex(registry.ERC20DeployBytecode), args...)
	gas := e.client.EstimateGas(ctx, ethereum.CallMsg{From: e.Address(), Data: data}, registry.DeployGasPolicy)

	action := e.newAction(execution.IntentDeploy)
	action.InputAmount = whole
	action.Metadata = map[string]string{"name": name, "symbol": symbol}
	step := action.AddStep(execution.StepTypeDeploy, fmt.Sprintf("Deploy %s (%s)", name, symbol))
	action.Status = execution.ActionStatusRunning
	e.record(&action)

	fail := func(err error) (string, error) {
		action.Fail(err.Error())
		e.record(&action)
		return "", err
	}
	hash, err := e.submitStep(ctx, &action, step, execution.TxRequest{Data: data, Gas: gas})
	if err != nil {
		return fail(err)
	}
	receipt, err := e.client.WaitReceipt(ctx, hash)
	if err != nil {
		return fail(err)
	}
	if !receipt.Succeeded() || receipt.ContractAddress == "" {
		return fail(clierr.New(clierr.CodeNetwork, fmt.Sprintf("deployment transaction %s failed", hash.Hex())))
	}
	action.Steps[step].Status = execution.StepStatusConfirmed
	action.Steps[step].Target = receipt.ContractAddress
	action.Complete(receipt.ContractAddress)
	e.record(&action)
	e.log.Info("token deployed", zap.String("contract", receipt.ContractAddress), zap.String("symbol", symbol))
	return receipt.ContractAddress, nil
}

// GetTokenByTicker resolves ticker to a token address on the active network.
func (e *Engine) GetTokenByTicker(ctx context.Context, ticker string) (string, error) {
	clean := strings.ToLower(strings.TrimSpace(ticker))
	switch clean {
	case "":
		return "", clierr.New(clierr.CodeInvalidParameters, "ticker is required")
	case "eth", "ethereum", "matic":
		return id.NativeTokenAddress, nil
	}
	network := e.Network().Name
	key := cache.TokenKey(network, clean)
	if e.cache != nil {
		var hit model.TokenMatch
		if ok, err := e.cache.GetJSON(key, &hit); err == nil && ok {
			return hit.Address, nil
		}
	}
	if e.tokens == nil {
		return "", clierr.New(clierr.CodeUnsupported, "token search is not configured")
	}
	match, err := e.tokens.FindToken(ctx, network, ticker)
	if err != nil {
		return "", err
	}
	if e.cache != nil {
		if err := e.cache.SetJSON(key, match, cache.TokenLookupTTL); err != nil {
			e.log.Debug("token cache write failed", zap.Error(err))
		}
	}
	return match.Address, nil
}

// SlippageBps converts a percentage such as "0.5" into basis points,
// rounding half up. The percentage must not exceed 100, and a non-zero
// percentage must not round down to 0 bps.
func SlippageBps(pct string) (int64, error) {
	if strings.TrimSpace(pct) == "" {
		pct = DefaultSlippagePct
	}
	bps, err := id.ToBaseUnits(pct, 2)
	if err != nil {
		return 0, clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("invalid slippage %q", pct))
	}
	if cmp, _ := id.CompareDecimal(pct, "100"); cmp > 0 {
		return 0, clierr.New(clierr.CodeInvalidParameters, "slippage must be at most 100 percent")
	}
	if cmp, _ := id.CompareDecimal(pct, "0"); cmp > 0 && bps.Sign() == 0 {
		return 0, clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("slippage %s%% is below 1 basis point", strings.TrimSpace(pct)))
	}
	return bps.Int64(), nil
}

func (e *Engine) submitStep(ctx context.Context, action *execution.Action, step int, req execution.TxRequest) (common.Hash, error) {
	if req.To != nil {
		action.Steps[step].Target = req.To.Hex()
	}
	if req.Value != nil {
		action.Steps[step].Value = req.Value.String()
	}
	action.Steps[step].GasLimit = req.Gas
	hash, err := e.sub.Submit(ctx, req)
	if err != nil {
		return common.Hash{}, err
	}
	action.Steps[step].Status = execution.StepStatusSubmitted
	action.Steps[step].TxHash = hash.Hex()
	e.record(action)
	return hash, nil
}

func (e *Engine) newAction(intent string) execution.Action {
	action := execution.NewAction(intent, e.Network().Name, e.client.ChainID().String())
	action.FromAddress = e.Address().Hex()
	return action
}

// record persists action to the journal. Journal failures never abort an
// on-chain operation.
func (e *Engine) record(action *execution.Action) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Save(*action); err != nil {
		e.log.Warn("journal write failed", zap.String("action_id", action.ActionID), zap.Error(err))
	}
}

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
