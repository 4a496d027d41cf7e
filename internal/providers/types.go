package providers

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/evm-agent/internal/id"
	"github.com/ggonzalez94/evm-agent/internal/model"
)

type Provider interface {
	Info() model.ProviderInfo
}

// RouteProvider discovers swap routes and builds calldata for them.
type RouteProvider interface {
	Provider
	GetRoute(ctx context.Context, req RouteRequest) (SwapRoute, error)
	BuildSwap(ctx context.Context, req BuildRequest) ([]byte, error)
}

// TokenSearchProvider resolves a ticker to a token contract on a network.
type TokenSearchProvider interface {
	Provider
	FindToken(ctx context.Context, network, ticker string) (model.TokenMatch, error)
}

type RouteRequest struct {
	TokenIn           id.TokenRef
	TokenOut          id.TokenRef
	AmountInBaseUnits *big.Int
	Sender            common.Address
}

// SwapRoute is valid only for the pair, amount and moment it was computed
// for. Refetch it instead of rebuilding a stale one.
type SwapRoute struct {
	RouteSummary  json.RawMessage `json:"route_summary"`
	RouterAddress common.Address  `json:"router_address"`
	TokenIn       string          `json:"token_in"`
	TokenOut      string          `json:"token_out"`
	AmountIn      *big.Int        `json:"amount_in"`
	AmountOut     *big.Int        `json:"amount_out"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

type BuildRequest struct {
	Route       SwapRoute
	Sender      common.Address
	Recipient   common.Address
	SlippageBps int64
}
