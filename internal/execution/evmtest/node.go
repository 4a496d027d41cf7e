// Package evmtest provides an in-memory JSON-RPC node for tests. It answers
// the handful of eth_* methods the agent uses, keeps native and ERC20
// balances, applies transfers and approvals from signed raw transactions and
// serves receipts for them.
package evmtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ggonzalez94/evm-agent/internal/registry"
)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// Token is the ERC20 state the node keeps for one contract.
type Token struct {
	Symbol     string
	Decimals   uint8
	Balances   map[common.Address]*big.Int
	Allowances map[common.Address]map[common.Address]*big.Int
}

type receipt struct {
	status          uint64
	contractAddress *common.Address
	gasUsed         uint64
}

type Node struct {
	URL string

	t      testing.TB
	server *httptest.Server
	erc20  abi.ABI

	mu       sync.Mutex
	chainID  *big.Int
	gasPrice *big.Int
	balances map[common.Address]*big.Int
	nonces   map[common.Address]uint64
	tokens   map[common.Address]*Token
	receipts map[common.Hash]receipt
	sent     []*types.Transaction
	calls    map[string]int
	pending  map[common.Hash]int

	estimateGas    uint64
	estimateErr    string
	chainIDFails   int
	receiptDelay   int
	revert         func(tx *types.Transaction) bool
	sendErr        string
	selectorCounts map[string]int
}

// NewNode starts a fake node for chainID. It is closed with the test.
func NewNode(t testing.TB, chainID uint64) *Node {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(registry.ERC20ABI))
	if err != nil {
		t.Fatalf("parse erc20 abi: %v", err)
	}
	n := &Node{
		t:              t,
		erc20:          parsed,
		chainID:        new(big.Int).SetUint64(chainID),
		gasPrice:       big.NewInt(1_000_000_000),
		balances:       map[common.Address]*big.Int{},
		nonces:         map[common.Address]uint64{},
		tokens:         map[common.Address]*Token{},
		receipts:       map[common.Hash]receipt{},
		calls:          map[string]int{},
		pending:        map[common.Hash]int{},
		selectorCounts: map[string]int{},
		estimateGas:    50_000,
	}
	n.server = httptest.NewServer(http.HandlerFunc(n.handle))
	n.URL = n.server.URL
	t.Cleanup(n.server.Close)
	return n
}

func (n *Node) Close() { n.server.Close() }

func (n *Node) ChainID() *big.Int { return new(big.Int).Set(n.chainID) }

func (n *Node) SetGasPrice(wei *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gasPrice = new(big.Int).Set(wei)
}

func (n *Node) GasPrice() *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return new(big.Int).Set(n.gasPrice)
}

func (n *Node) SetBalance(addr common.Address, wei *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.balances[addr] = new(big.Int).Set(wei)
}

func (n *Node) Balance(addr common.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return cloneOrZero(n.balances[addr])
}

// AddToken registers an ERC20 contract at addr.
func (n *Node) AddToken(addr common.Address, symbol string, decimals uint8) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens[addr] = &Token{
		Symbol:     symbol,
		Decimals:   decimals,
		Balances:   map[common.Address]*big.Int{},
		Allowances: map[common.Address]map[common.Address]*big.Int{},
	}
}

func (n *Node) SetTokenBalance(token, owner common.Address, raw *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mustToken(token).Balances[owner] = new(big.Int).Set(raw)
}

func (n *Node) TokenBalance(token, owner common.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return cloneOrZero(n.mustToken(token).Balances[owner])
}

func (n *Node) SetAllowance(token, owner, spender common.Address, raw *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	tok := n.mustToken(token)
	if tok.Allowances[owner] == nil {
		tok.Allowances[owner] = map[common.Address]*big.Int{}
	}
	tok.Allowances[owner][spender] = new(big.Int).Set(raw)
}

func (n *Node) Allowance(token, owner, spender common.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return cloneOrZero(n.mustToken(token).Allowances[owner][spender])
}

// SetEstimateGas fixes the eth_estimateGas answer.
func (n *Node) SetEstimateGas(gas uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.estimateGas = gas
	n.estimateErr = ""
}

// FailEstimateGas makes every eth_estimateGas call return an RPC error.
func (n *Node) FailEstimateGas(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.estimateErr = message
}

// FailChainID makes the next count eth_chainId calls fail.
func (n *Node) FailChainID(count int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chainIDFails = count
}

// FailSend makes eth_sendRawTransaction return an RPC error.
func (n *Node) FailSend(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sendErr = message
}

// DelayReceipts makes each receipt unavailable for the first polls.
func (n *Node) DelayReceipts(polls int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receiptDelay = polls
}

// RevertWhen marks matching transactions as failed in their receipts.
// Reverted transactions do not change balances or allowances.
func (n *Node) RevertWhen(fn func(tx *types.Transaction) bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.revert = fn
}

// Sent returns the broadcast transactions in order.
func (n *Node) Sent() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.sent...)
}

// Calls reports how many times method was requested.
func (n *Node) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

// SelectorCalls reports how many eth_call requests used the named ERC20 method.
func (n *Node) SelectorCalls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.selectorCounts[method]
}

func (n *Node) mustToken(addr common.Address) *Token {
	tok, ok := n.tokens[addr]
	if !ok {
		n.t.Fatalf("evmtest: token %s not registered", addr.Hex())
	}
	return tok
}

func (n *Node) handle(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	result, rpcErr := n.dispatch(req)
	n.mu.Unlock()

	if rpcErr != nil {
		writeError(w, req.ID, rpcErr.code, rpcErr.message)
		return
	}
	writeResult(w, req.ID, result)
}

type rpcError struct {
	code    int
	message string
}

func (n *Node) dispatch(req rpcRequest) (any, *rpcError) {
	switch req.Method {
	case "eth_chainId":
		if n.chainIDFails > 0 {
			n.chainIDFails--
			return nil, &rpcError{-32000, "node warming up"}
		}
		return hexutil.EncodeBig(n.chainID), nil
	case "eth_gasPrice":
		return hexutil.EncodeBig(n.gasPrice), nil
	case "eth_blockNumber":
		return "0x1", nil
	case "eth_getBalance":
		addr, err := paramAddress(req, 0)
		if err != nil {
			return nil, err
		}
		return hexutil.EncodeBig(cloneOrZero(n.balances[addr])), nil
	case "eth_getTransactionCount":
		addr, err := paramAddress(req, 0)
		if err != nil {
			return nil, err
		}
		return hexutil.EncodeUint64(n.nonces[addr]), nil
	case "eth_estimateGas":
		if n.estimateErr != "" {
			return nil, &rpcError{3, n.estimateErr}
		}
		return hexutil.EncodeUint64(n.estimateGas), nil
	case "eth_call":
		return n.call(req)
	case "eth_sendRawTransaction":
		return n.sendRaw(req)
	case "eth_getTransactionReceipt":
		return n.receipt(req)
	default:
		return nil, &rpcError{-32601, fmt.Sprintf("method not supported in test: %s", req.Method)}
	}
}

type callArg struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
}

func (n *Node) call(req rpcRequest) (any, *rpcError) {
	if len(req.Params) == 0 {
		return nil, &rpcError{-32602, "missing call object"}
	}
	var arg callArg
	if err := json.Unmarshal(req.Params[0], &arg); err != nil {
		return nil, &rpcError{-32602, err.Error()}
	}
	if arg.To == nil {
		return nil, &rpcError{-32602, "missing to"}
	}
	var data []byte
	switch {
	case arg.Input != nil:
		data = *arg.Input
	case arg.Data != nil:
		data = *arg.Data
	}
	tok, ok := n.tokens[*arg.To]
	if !ok {
		return "0x", nil
	}
	method, args, rerr := n.decodeCall(data)
	if rerr != nil {
		return nil, rerr
	}
	n.selectorCounts[method.Name]++

	var out []byte
	var err error
	switch method.Name {
	case "balanceOf":
		out, err = method.Outputs.Pack(cloneOrZero(tok.Balances[args[0].(common.Address)]))
	case "decimals":
		out, err = method.Outputs.Pack(tok.Decimals)
	case "symbol":
		out, err = method.Outputs.Pack(tok.Symbol)
	case "allowance":
		owner, spender := args[0].(common.Address), args[1].(common.Address)
		out, err = method.Outputs.Pack(cloneOrZero(tok.Allowances[owner][spender]))
	default:
		return nil, &rpcError{3, "execution reverted"}
	}
	if err != nil {
		return nil, &rpcError{-32603, err.Error()}
	}
	return hexutil.Encode(out), nil
}

func (n *Node) decodeCall(data []byte) (*abi.Method, []any, *rpcError) {
	if len(data) < 4 {
		return nil, nil, &rpcError{3, "execution reverted"}
	}
	method, err := n.erc20.MethodById(data[:4])
	if err != nil {
		return nil, nil, &rpcError{3, "execution reverted: unknown selector"}
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, &rpcError{3, "execution reverted: bad calldata"}
	}
	return method, args, nil
}

func (n *Node) sendRaw(req rpcRequest) (any, *rpcError) {
	if n.sendErr != "" {
		return nil, &rpcError{-32000, n.sendErr}
	}
	var raw hexutil.Bytes
	if len(req.Params) == 0 || json.Unmarshal(req.Params[0], &raw) != nil {
		return nil, &rpcError{-32602, "invalid raw transaction"}
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, &rpcError{-32602, err.Error()}
	}
	from, err := types.Sender(types.LatestSignerForChainID(n.chainID), tx)
	if err != nil {
		return nil, &rpcError{-32000, "invalid sender: " + err.Error()}
	}
	if tx.Nonce() != n.nonces[from] {
		return nil, &rpcError{-32000, fmt.Sprintf("nonce mismatch: have %d want %d", tx.Nonce(), n.nonces[from])}
	}
	n.nonces[from]++
	n.sent = append(n.sent, tx)

	rec := receipt{status: types.ReceiptStatusSuccessful, gasUsed: tx.Gas()}
	if n.revert != nil && n.revert(tx) {
		rec.status = types.ReceiptStatusFailed
	} else {
		n.apply(from, tx, &rec)
	}
	n.receipts[tx.Hash()] = rec
	n.pending[tx.Hash()] = n.receiptDelay
	return tx.Hash().Hex(), nil
}

func (n *Node) apply(from common.Address, tx *types.Transaction, rec *receipt) {
	if tx.To() == nil {
		addr := crypto.CreateAddress(from, tx.Nonce())
		rec.contractAddress = &addr
		return
	}
	if tx.Value() != nil && tx.Value().Sign() > 0 {
		bal := cloneOrZero(n.balances[from])
		n.balances[from] = bal.Sub(bal, tx.Value())
		to := cloneOrZero(n.balances[*tx.To()])
		n.balances[*tx.To()] = to.Add(to, tx.Value())
	}
	tok, ok := n.tokens[*tx.To()]
	if !ok || len(tx.Data()) < 4 {
		return
	}
	method, args, rerr := n.decodeCall(tx.Data())
	if rerr != nil {
		return
	}
	switch method.Name {
	case "approve":
		if tok.Allowances[from] == nil {
			tok.Allowances[from] = map[common.Address]*big.Int{}
		}
		tok.Allowances[from][args[0].(common.Address)] = new(big.Int).Set(args[1].(*big.Int))
	case "transfer":
		to, amount := args[0].(common.Address), args[1].(*big.Int)
		bal := cloneOrZero(tok.Balances[from])
		if bal.Cmp(amount) < 0 {
			rec.status = types.ReceiptStatusFailed
			return
		}
		tok.Balances[from] = bal.Sub(bal, amount)
		dst := cloneOrZero(tok.Balances[to])
		tok.Balances[to] = dst.Add(dst, amount)
	}
}

func (n *Node) receipt(req rpcRequest) (any, *rpcError) {
	var hash common.Hash
	if len(req.Params) == 0 || json.Unmarshal(req.Params[0], &hash) != nil {
		return nil, &rpcError{-32602, "invalid hash"}
	}
	rec, ok := n.receipts[hash]
	if !ok {
		return nil, nil
	}
	if n.pending[hash] > 0 {
		n.pending[hash]--
		return nil, nil
	}
	out := map[string]any{
		"type":              "0x0",
		"status":            hexutil.EncodeUint64(rec.status),
		"cumulativeGasUsed": hexutil.EncodeUint64(rec.gasUsed),
		"gasUsed":           hexutil.EncodeUint64(rec.gasUsed),
		"effectiveGasPrice": hexutil.EncodeBig(n.gasPrice),
		"logsBloom":         hexutil.Encode(make([]byte, types.BloomByteLength)),
		"logs":              []any{},
		"transactionHash":   hash.Hex(),
		"transactionIndex":  "0x0",
		"blockHash":         common.BytesToHash(bytes.Repeat([]byte{0x11}, 32)).Hex(),
		"blockNumber":       "0x1",
	}
	if rec.contractAddress != nil {
		out["contractAddress"] = rec.contractAddress.Hex()
	}
	return out, nil
}

func paramAddress(req rpcRequest, idx int) (common.Address, *rpcError) {
	if len(req.Params) <= idx {
		return common.Address{}, &rpcError{-32602, "missing address"}
	}
	var addr common.Address
	if err := json.Unmarshal(req.Params[idx], &addr); err != nil {
		return common.Address{}, &rpcError{-32602, err.Error()}
	}
	return addr, nil
}

func writeResult(w http.ResponseWriter, id json.RawMessage, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      decodeID(id),
		"result":  result,
	})
}

func writeError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      decodeID(id),
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func decodeID(raw json.RawMessage) any {
	if len(raw) == 0 {
		return 1
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return 1
	}
	return out
}

func cloneOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
