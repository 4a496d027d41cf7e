package dexscreener

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/httpx"
	"github.com/ggonzalez94/evm-agent/internal/model"
	"github.com/ggonzalez94/evm-agent/internal/registry"
)

type Client struct {
	http    *httpx.Client
	baseURL string
}

func New(httpClient *httpx.Client, baseOverride string) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseOverride), "/")
	if base == "" {
		base = registry.DexScreenerAPIBase
	}
	return &Client{http: httpClient, baseURL: base}
}

func (c *Client) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:         "dexscreener",
		Type:         "token_search",
		BaseURL:      c.baseURL,
		Capabilities: []string{"token.search"},
	}
}

type searchResponse struct {
	Pairs []pair `json:"pairs"`
}

type pair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	Liquidity *struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume *struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
}

func (p pair) liquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.USD
}

func (p pair) volume24h() float64 {
	if p.Volume == nil {
		return 0
	}
	return p.Volume.H24
}

// FindToken searches pairs for ticker and returns the base token of the
// deepest pair on network whose symbol matches. Depth is liquidity times
// 24h volume.
func (c *Client) FindToken(ctx context.Context, network, ticker string) (model.TokenMatch, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return model.TokenMatch{}, clierr.New(clierr.CodeInvalidParameters, "ticker is required")
	}
	vals := url.Values{}
	vals.Set("q", ticker)

	var resp searchResponse
	if _, err := httpx.GetJSON(ctx, c.http, c.baseURL+"/latest/dex/search", vals, nil, &resp); err != nil {
		return model.TokenMatch{}, err
	}

	candidates := make([]pair, 0, len(resp.Pairs))
	for _, p := range resp.Pairs {
		if strings.EqualFold(p.ChainID, network) {
			candidates = append(candidates, p)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].liquidityUSD()*candidates[i].volume24h() > candidates[j].liquidityUSD()*candidates[j].volume24h()
	})
	for _, p := range candidates {
		if !strings.EqualFold(p.BaseToken.Symbol, ticker) || !common.IsHexAddress(p.BaseToken.Address) {
			continue
		}
		return model.TokenMatch{
			Ticker:       ticker,
			Network:      network,
			Address:      common.HexToAddress(p.BaseToken.Address).Hex(),
			Symbol:       p.BaseToken.Symbol,
			Name:         p.BaseToken.Name,
			PairAddress:  p.PairAddress,
			DexID:        p.DexID,
			LiquidityUSD: p.liquidityUSD(),
			Volume24hUSD: p.volume24h(),
		}, nil
	}
	return model.TokenMatch{}, clierr.New(clierr.CodeUnsupported, fmt.Sprintf("no token found for ticker %s on %s", ticker, network))
}
