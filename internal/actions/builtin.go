package actions

import (
	"context"
	"fmt"

	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/id"
)

// Engine is the account-bound operation surface the built-in actions drive.
type Engine interface {
	GetTokenByTicker(ctx context.Context, ticker string) (string, error)
	GetBalance(ctx context.Context, token string) (string, bool)
	Transfer(ctx context.Context, to, amount, token string) (string, error)
	GetAddress() string
	DeployToken(ctx context.Context, name, symbol, supply string) (string, error)
	Swap(ctx context.Context, tokenIn, tokenOut, amount, slippagePct string) string
}

// Builtin returns the built-in action contracts, bound to eng, in the order
// they are exposed. A nil eng yields contracts whose handlers fail, which is
// enough for listing and schema output.
func Builtin(eng Engine) []Action {
	need := func(h func(ctx context.Context, eng Engine, kwargs map[string]any) (any, error)) Handler {
		return func(ctx context.Context, kwargs map[string]any) (any, error) {
			if eng == nil {
				return nil, clierr.New(clierr.CodeConfiguration, "no network connection configured")
			}
			return h(ctx, eng, kwargs)
		}
	}
	return []Action{
		{
			Name:        "get-token-by-ticker",
			Description: "Get token address by ticker symbol",
			Parameters: []Parameter{
				{Name: "ticker", Required: true, Type: TypeString, Help: "Token ticker symbol to look up"},
			},
			Handler: need(func(ctx context.Context, eng Engine, kw map[string]any) (any, error) {
				return eng.GetTokenByTicker(ctx, stringArg(kw, "ticker"))
			}),
		},
		{
			Name:        "get-balance",
			Description: "Get native or token balance",
			Parameters: []Parameter{
				{Name: "token_address", Required: false, Type: TypeString, Help: "Token address; native coin when omitted"},
			},
			Handler: need(func(ctx context.Context, eng Engine, kw map[string]any) (any, error) {
				token := stringArg(kw, "token_address")
				balance, ok := eng.GetBalance(ctx, token)
				// Engine callers see ok=false; action callers get a typed Network error envelope.
				if !ok {
					return nil, clierr.New(clierr.CodeNetwork, fmt.Sprintf("could not read balance of %s", displayToken(token)))
				}
				return balance, nil
			}),
		},
		{
			Name:        "transfer",
			Description: "Send native coin or tokens",
			Parameters: []Parameter{
				{Name: "to_address", Required: true, Type: TypeString, Help: "Recipient address"},
				{Name: "amount", Required: true, Type: TypeNumber, Help: "Amount to transfer"},
				{Name: "token_address", Required: false, Type: TypeString, Help: "Token address; native coin when omitted"},
			},
			Handler: need(func(ctx context.Context, eng Engine, kw map[string]any) (any, error) {
				amount, err := id.NumberToDecimal(kw["amount"])
				if err != nil {
					return nil, err
				}
				return eng.Transfer(ctx, stringArg(kw, "to_address"), amount, stringArg(kw, "token_address"))
			}),
		},
		{
			Name:        "get-address",
			Description: "Get your EVM wallet address",
			Handler: need(func(_ context.Context, eng Engine, _ map[string]any) (any, error) {
				return eng.GetAddress(), nil
			}),
		},
		{
			Name:        "deploy-erc",
			Description: "Deploy an ERC20 token with 18 decimals",
			Parameters: []Parameter{
				{Name: "name", Required: true, Type: TypeString, Help: "Token name"},
				{Name: "symbol", Required: true, Type: TypeString, Help: "Token symbol"},
				{Name: "supply", Required: true, Type: TypeNumber, Help: "Whole-token supply minted to the deployer"},
			},
			Handler: need(func(ctx context.Context, eng Engine, kw map[string]any) (any, error) {
				supply, err := id.NumberToDecimal(kw["supply"])
				if err != nil {
					return nil, err
				}
				return eng.DeployToken(ctx, stringArg(kw, "name"), stringArg(kw, "symbol"), supply)
			}),
		},
		{
			Name:        "swap",
			Description: "Swap tokens through the Kyberswap aggregator",
			Parameters: []Parameter{
				{Name: "token_in", Required: true, Type: TypeString, Help: "Input token address"},
				{Name: "token_out", Required: true, Type: TypeString, Help: "Output token address"},
				{Name: "amount", Required: true, Type: TypeNumber, Help: "Amount of token_in to swap"},
				{Name: "slippage", Required: false, Type: TypeNumber, Help: "Max slippage percentage (default 0.5)"},
			},
			Handler: need(func(ctx context.Context, eng Engine, kw map[string]any) (any, error) {
				amount, err := id.NumberToDecimal(kw["amount"])
				if err != nil {
					return nil, err
				}
				slippage := ""
				if v, ok := kw["slippage"]; ok && v != nil {
					if slippage, err = id.NumberToDecimal(v); err != nil {
						return nil, err
					}
				}
				return eng.Swap(ctx, stringArg(kw, "token_in"), stringArg(kw, "token_out"), amount, slippage), nil
			}),
		},
	}
}

// RegisterBuiltin registers every built-in action bound to eng.
func RegisterBuiltin(r *Registry, eng Engine) {
	for _, action := range Builtin(eng) {
		r.Register(action)
	}
}

func stringArg(kwargs map[string]any, name string) string {
	v, _ := kwargs[name].(string)
	return v
}

func displayToken(token string) string {
	if token == "" {
		return "native coin"
	}
	return token
}
