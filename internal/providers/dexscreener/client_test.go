package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/httpx"
)

const searchBody = `{"pairs":[
 {"chainId":"ethereum","dexId":"uniswap","pairAddress":"0x01","baseToken":{"address":"0x1111111111111111111111111111111111111111","symbol":"PEPE"},"liquidity":{"usd":9000000},"volume":{"h24":9000000}},
 {"chainId":"base","dexId":"aerodrome","pairAddress":"0x02","baseToken":{"address":"0x2222222222222222222222222222222222222222","symbol":"PEPE"},"liquidity":{"usd":1000},"volume":{"h24":10}},
 {"chainId":"base","dexId":"uniswap","pairAddress":"0x03","baseToken":{"address":"0x3333333333333333333333333333333333333333","symbol":"pepe"},"liquidity":{"usd":50000},"volume":{"h24":2000}},
 {"chainId":"base","dexId":"uniswap","pairAddress":"0x04","baseToken":{"address":"0x4444444444444444444444444444444444444444","symbol":"WETH"},"liquidity":{"usd":90000000},"volume":{"h24":90000000}},
 {"chainId":"base","dexId":"baseswap","pairAddress":"0x05","baseToken":{"address":"0x5555555555555555555555555555555555555555","symbol":"PEPE"}}
]}`

func TestFindTokenPicksDeepestMatchingPairOnNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/dex/search" || r.URL.Query().Get("q") != "PEPE" {
			t.Fatalf("unexpected request: %s", r.URL.String())
		}
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	c := New(httpx.New(2*time.Second, 0), srv.URL)
	match, err := c.FindToken(context.Background(), "base", "PEPE")
	if err != nil {
		t.Fatalf("FindToken failed: %v", err)
	}
	if match.Address != "0x3333333333333333333333333333333333333333" {
		t.Fatalf("expected deepest base pair, got %+v", match)
	}
	if match.PairAddress != "0x03" || match.LiquidityUSD != 50000 {
		t.Fatalf("unexpected match metadata: %+v", match)
	}
}

func TestFindTokenNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	c := New(httpx.New(2*time.Second, 0), srv.URL)
	if _, err := c.FindToken(context.Background(), "polygon", "PEPE"); !clierr.Is(err, clierr.CodeUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestFindTokenEmptyPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"schemaVersion":"1.0.0","pairs":null}`))
	}))
	defer srv.Close()

	c := New(httpx.New(2*time.Second, 0), srv.URL)
	if _, err := c.FindToken(context.Background(), "base", "NOPE"); !clierr.Is(err, clierr.CodeUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}
