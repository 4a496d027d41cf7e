package kyberswap

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/httpx"
	"github.com/ggonzalez94/evm-agent/internal/model"
	"github.com/ggonzalez94/evm-agent/internal/providers"
	"github.com/ggonzalez94/evm-agent/internal/registry"
)

type Client struct {
	http     *httpx.Client
	baseURL  string
	clientID string
	now      func() time.Time
}

// New returns a client for one network's aggregator endpoint. baseOverride
// replaces the public host, mainly for tests.
func New(httpClient *httpx.Client, network, baseOverride, clientID string) *Client {
	if strings.TrimSpace(clientID) == "" {
		clientID = registry.DefaultAggregatorClientID
	}
	return &Client{
		http:     httpClient,
		baseURL:  registry.KyberSwapBaseURL(network, baseOverride),
		clientID: clientID,
		now:      time.Now,
	}
}

func (c *Client) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:         "kyberswap",
		Type:         "swap",
		BaseURL:      c.baseURL,
		Capabilities: []string{"swap.route", "swap.build"},
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type routeData struct {
	RouteSummary  json.RawMessage `json:"routeSummary"`
	RouterAddress string          `json:"routerAddress"`
}

type routeSummary struct {
	TokenIn   string `json:"tokenIn"`
	AmountIn  string `json:"amountIn"`
	TokenOut  string `json:"tokenOut"`
	AmountOut string `json:"amountOut"`
}

type buildData struct {
	Data          string `json:"data"`
	RouterAddress string `json:"routerAddress"`
}

type buildBody struct {
	RouteSummary      json.RawMessage `json:"routeSummary"`
	Sender            string          `json:"sender"`
	Recipient         string          `json:"recipient"`
	SlippageTolerance int64           `json:"slippageTolerance"`
	Deadline          int64           `json:"deadline"`
	Source            string          `json:"source"`
}

// GetRoute asks the aggregator for the best route. Application errors
// (code != 0) are not retried.
func (c *Client) GetRoute(ctx context.Context, req providers.RouteRequest) (providers.SwapRoute, error) {
	if req.AmountInBaseUnits == nil || req.AmountInBaseUnits.Sign() <= 0 {
		return providers.SwapRoute{}, clierr.New(clierr.CodeInvalidParameters, "swap amount must be positive")
	}
	vals := url.Values{}
	vals.Set("tokenIn", req.TokenIn.Hex())
	vals.Set("tokenOut", req.TokenOut.Hex())
	vals.Set("amountIn", req.AmountInBaseUnits.String())
	vals.Set("to", req.Sender.Hex())
	vals.Set("gasInclude", "true")

	var resp envelope
	_, err := httpx.GetJSON(ctx, c.http, c.baseURL+"/routes", vals, c.headers(), &resp)
	if err := checkEnvelope("route", resp, err); err != nil {
		return providers.SwapRoute{}, err
	}

	var data routeData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return providers.SwapRoute{}, clierr.Wrap(clierr.CodeAggregator, "decode kyberswap route", err)
	}
	if len(data.RouteSummary) == 0 || !common.IsHexAddress(data.RouterAddress) {
		return providers.SwapRoute{}, clierr.New(clierr.CodeAggregator, "kyberswap route missing summary or router address")
	}
	var summary routeSummary
	if err := json.Unmarshal(data.RouteSummary, &summary); err != nil {
		return providers.SwapRoute{}, clierr.Wrap(clierr.CodeAggregator, "decode kyberswap route summary", err)
	}
	amountIn, ok := new(big.Int).SetString(summary.AmountIn, 10)
	if !ok {
		// The summary normally echoes the request; fall back to it.
		amountIn = new(big.Int).Set(req.AmountInBaseUnits)
	}
	amountOut, ok := new(big.Int).SetString(summary.AmountOut, 10)
	if !ok {
		amountOut = new(big.Int)
	}

	return providers.SwapRoute{
		RouteSummary:  data.RouteSummary,
		RouterAddress: common.HexToAddress(data.RouterAddress),
		TokenIn:       req.TokenIn.Hex(),
		TokenOut:      req.TokenOut.Hex(),
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		FetchedAt:     c.now().UTC(),
	}, nil
}

// BuildSwap requests executable calldata for route with a deadline
// registry.SwapDeadlineSeconds from now.
func (c *Client) BuildSwap(ctx context.Context, req providers.BuildRequest) ([]byte, error) {
	if len(req.Route.RouteSummary) == 0 {
		return nil, clierr.New(clierr.CodeAggregator, "cannot build swap without a route summary")
	}
	if req.SlippageBps < 0 {
		return nil, clierr.New(clierr.CodeInvalidParameters, "slippage must not be negative")
	}
	recipient := req.Recipient
	if recipient == (common.Address{}) {
		recipient = req.Sender
	}
	body, err := json.Marshal(buildBody{
		RouteSummary:      req.Route.RouteSummary,
		Sender:            req.Sender.Hex(),
		Recipient:         recipient.Hex(),
		SlippageTolerance: req.SlippageBps,
		Deadline:          c.now().Unix() + registry.SwapDeadlineSeconds,
		Source:            c.clientID,
	})
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "marshal kyberswap build request", err)
	}

	var resp envelope
	_, err = httpx.DoBodyJSON(ctx, c.http, http.MethodPost, c.baseURL+"/route/build", body, c.headers(), &resp)
	if err := checkEnvelope("build", resp, err); err != nil {
		return nil, err
	}
	var data buildData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, clierr.Wrap(clierr.CodeAggregator, "decode kyberswap build", err)
	}
	calldata, err := hexutil.Decode(strings.TrimSpace(data.Data))
	if err != nil || len(calldata) == 0 {
		return nil, clierr.New(clierr.CodeAggregator, "kyberswap build returned invalid calldata")
	}
	return calldata, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{"x-client-id": c.clientID}
}

// checkEnvelope prefers the service's own code and message over the HTTP
// status, since the aggregator reports application errors on 4xx bodies too.
func checkEnvelope(op string, resp envelope, httpErr error) error {
	if resp.Code != 0 {
		msg := strings.TrimSpace(resp.Message)
		if msg == "" {
			msg = "unknown error"
		}
		return clierr.New(clierr.CodeAggregator, fmt.Sprintf("kyberswap %s error (code %d): %s", op, resp.Code, msg))
	}
	if httpErr != nil {
		return clierr.Wrap(clierr.CodeAggregator, "kyberswap "+op+" request failed", httpErr)
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return clierr.New(clierr.CodeAggregator, "kyberswap "+op+" response missing data")
	}
	return nil
}
