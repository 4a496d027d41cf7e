package model

import "time"

const EnvelopeVersion = "v1"

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type EnvelopeMeta struct {
	RequestID string           `json:"request_id"`
	Timestamp time.Time        `json:"timestamp"`
	Command   string           `json:"command"`
	Network   string           `json:"network,omitempty"`
	Providers []ProviderStatus `json:"providers,omitempty"`
	Cache     CacheStatus      `json:"cache"`
}

type ProviderStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

type CacheStatus struct {
	Status string `json:"status"`
	AgeMS  int64  `json:"age_ms"`
	Stale  bool   `json:"stale"`
}

type ProviderInfo struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	BaseURL      string   `json:"base_url"`
	Capabilities []string `json:"capabilities"`
}

// ActionInfo describes one registered action and its parameter contract.
type ActionInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamInfo `json:"parameters"`
}

type ParamInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Help     string `json:"help,omitempty"`
}

// ActionResult wraps a handler's return value for rendering.
type ActionResult struct {
	Action string `json:"action"`
	Result any    `json:"result"`
}

type NetworkInfo struct {
	Name         string `json:"name"`
	ChainID      int64  `json:"chain_id"`
	RPCURL       string `json:"rpc_url"`
	ExplorerHost string `json:"explorer_host"`
	Active       bool   `json:"active"`
}

// TokenMatch is a ticker lookup hit from a DEX search provider.
type TokenMatch struct {
	Ticker       string  `json:"ticker"`
	Network      string  `json:"network"`
	Address      string  `json:"address"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name,omitempty"`
	PairAddress  string  `json:"pair_address,omitempty"`
	DexID        string  `json:"dex_id,omitempty"`
	LiquidityUSD float64 `json:"liquidity_usd"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
}
