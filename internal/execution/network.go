package execution

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/registry"
	"go.uber.org/zap"
)

const (
	defaultConnectAttempts = 3
	defaultConnectBackoff  = time.Second
	defaultPollInterval    = 2 * time.Second
	defaultReceiptTimeout  = 3 * time.Minute
)

var erc20ABI = mustABI(registry.ERC20ABI)

type DialOptions struct {
	Attempts       int
	Backoff        time.Duration
	PollInterval   time.Duration
	ReceiptTimeout time.Duration
	Logger         *zap.Logger
}

// Receipt is the terminal record of a mined transaction.
type Receipt struct {
	TxHash          string `json:"tx_hash"`
	Status          uint64 `json:"status"`
	ContractAddress string `json:"contract_address,omitempty"`
	BlockNumber     uint64 `json:"block_number,omitempty"`
	GasUsed         uint64 `json:"gas_used"`
}

func (r Receipt) Succeeded() bool { return r.Status == types.ReceiptStatusSuccessful }

// NetworkClient owns the RPC connection for one configured network.
// go-ethereum's client does not validate header extraData, so proof-of-authority
// chains need no extra middleware.
type NetworkClient struct {
	network        registry.Network
	eth            *ethclient.Client
	chainID        *big.Int
	pollInterval   time.Duration
	receiptTimeout time.Duration
	log            *zap.Logger
}

// Dial connects to network.RPCURL, probing eth_chainId up to opts.Attempts
// times with a fixed back-off between attempts.
func Dial(ctx context.Context, network registry.Network, opts DialOptions) (*NetworkClient, error) {
	if strings.TrimSpace(network.RPCURL) == "" {
		return nil, clierr.New(clierr.CodeConfiguration, fmt.Sprintf("no rpc endpoint configured for network %s", network.Name))
	}
	if opts.Attempts <= 0 {
		opts.Attempts = defaultConnectAttempts
	}
	if opts.Backoff < 0 {
		opts.Backoff = defaultConnectBackoff
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.ReceiptTimeout <= 0 {
		opts.ReceiptTimeout = defaultReceiptTimeout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("network", network.Name))

	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		client, chainID, err := connect(ctx, network.RPCURL)
		if err == nil {
			if network.ChainID != 0 && chainID.Cmp(big.NewInt(network.ChainID)) != 0 {
				client.Close()
				return nil, clierr.New(clierr.CodeConfiguration, fmt.Sprintf("rpc endpoint reports chain id %s, network %s expects %d", chainID, network.Name, network.ChainID))
			}
			log.Debug("connected to rpc", zap.Int("attempt", attempt), zap.String("chain_id", chainID.String()))
			return &NetworkClient{
				network:        network,
				eth:            client,
				chainID:        chainID,
				pollInterval:   opts.PollInterval,
				receiptTimeout: opts.ReceiptTimeout,
				log:            log,
			}, nil
		}
		lastErr = err
		log.Warn("rpc connection attempt failed", zap.Int("attempt", attempt), zap.Int("max_attempts", opts.Attempts), zap.Error(err))
		if attempt == opts.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, clierr.Wrap(clierr.CodeNetworkInit, "connect rpc", ctx.Err())
		case <-time.After(opts.Backoff):
		}
	}
	return nil, clierr.Wrap(clierr.CodeNetworkInit, fmt.Sprintf("failed to connect to %s after %d attempts", network.Name, opts.Attempts), lastErr)
}

func connect(ctx context.Context, rpcURL string) (*ethclient.Client, *big.Int, error) {
	rpcClient, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, err
	}
	client := ethclient.NewClient(rpcClient)
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, chainID, nil
}

func (c *NetworkClient) Close() {
	if c != nil && c.eth != nil {
		c.eth.Close()
	}
}

func (c *NetworkClient) Network() registry.Network { return c.network }

func (c *NetworkClient) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

func (c *NetworkClient) NativeBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	bal, err := c.eth.BalanceAt(ctx, owner, nil)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeNetwork, "read native balance", err)
	}
	return bal, nil
}

func (c *NetworkClient) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	var out *big.Int
	if err := c.callERC20(ctx, token, &out, "balanceOf", owner); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *NetworkClient) TokenDecimals(ctx context.Context, token common.Address) (int, error) {
	var out uint8
	if err := c.callERC20(ctx, token, &out, "decimals"); err != nil {
		return 0, err
	}
	return int(out), nil
}

func (c *NetworkClient) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	var out string
	if err := c.callERC20(ctx, token, &out, "symbol"); err != nil {
		return "", err
	}
	return out, nil
}

func (c *NetworkClient) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	var out *big.Int
	if err := c.callERC20(ctx, token, &out, "allowance", owner, spender); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *NetworkClient) callERC20(ctx context.Context, token common.Address, out any, method string, args ...any) error {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "pack "+method, err)
	}
	raw, err := c.Call(ctx, ethereum.CallMsg{To: &token, Data: data})
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return clierr.New(clierr.CodeNetwork, fmt.Sprintf("%s returned no data from %s", method, token.Hex()))
	}
	if err := erc20ABI.UnpackIntoInterface(out, method, raw); err != nil {
		return clierr.Wrap(clierr.CodeNetwork, "decode "+method, err)
	}
	return nil
}

func (c *NetworkClient) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeNetwork, "eth_call", err)
	}
	return out, nil
}

func (c *NetworkClient) PendingNonce(ctx context.Context, owner common.Address) (uint64, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, owner)
	if err != nil {
		return 0, clierr.Wrap(clierr.CodeNetwork, "fetch nonce", err)
	}
	return nonce, nil
}

func (c *NetworkClient) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeNetwork, "fetch gas price", err)
	}
	return price, nil
}

// EstimateGas applies policy to the node's estimate. Estimation failures are
// logged and answered with the policy fallback; they never abort the caller.
func (c *NetworkClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg, policy registry.GasPolicy) uint64 {
	estimate, err := c.eth.EstimateGas(ctx, msg)
	if err != nil {
		failure := clierr.Wrap(clierr.CodeGasEstimation, "gas estimation failed", err)
		c.log.Warn("gas estimation failed, using fallback limit",
			zap.String("error_type", clierr.TypeName(failure.Code)),
			zap.Uint64("fallback_gas", policy.Fallback),
			zap.Error(err),
		)
		return policy.Fallback
	}
	return policy.Apply(estimate)
}

func (c *NetworkClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return clierr.Wrap(clierr.CodeNetwork, "broadcast transaction", err)
	}
	return nil
}

// WaitReceipt polls until the transaction is mined or the receipt timeout
// elapses. Transient polling failures are ignored until the deadline.
func (c *NetworkClient) WaitReceipt(ctx context.Context, hash common.Hash) (Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.eth.TransactionReceipt(waitCtx, hash)
		if err == nil && receipt != nil {
			out := Receipt{
				TxHash:  hash.Hex(),
				Status:  receipt.Status,
				GasUsed: receipt.GasUsed,
			}
			if receipt.BlockNumber != nil {
				out.BlockNumber = receipt.BlockNumber.Uint64()
			}
			if receipt.ContractAddress != (common.Address{}) {
				out.ContractAddress = receipt.ContractAddress.Hex()
			}
			return out, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) && waitCtx.Err() == nil {
			c.log.Debug("receipt poll failed", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		}
		select {
		case <-waitCtx.Done():
			return Receipt{}, clierr.Wrap(clierr.CodeTimeout, "timed out waiting for receipt of "+hash.Hex(), waitCtx.Err())
		case <-ticker.C:
		}
	}
}

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
