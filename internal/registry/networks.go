package registry

import (
	"fmt"
	"sort"
	"strings"

	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
)

// Network is an immutable descriptor of a supported EVM chain.
type Network struct {
	Name         string `json:"name"`
	RPCURL       string `json:"rpc_url"`
	ChainID      int64  `json:"chain_id"`
	ExplorerHost string `json:"explorer_host"`
}

const DefaultNetwork = "ethereum"

var networks = map[string]Network{
	"ethereum": {
		Name:         "ethereum",
		RPCURL:       "https://ethereum-rpc.publicnode.com",
		ChainID:      1,
		ExplorerHost: "etherscan.io",
	},
	"base": {
		Name:         "base",
		RPCURL:       "https://mainnet.base.org",
		ChainID:      8453,
		ExplorerHost: "basescan.org",
	},
	"polygon": {
		Name:         "polygon",
		RPCURL:       "https://polygon-rpc.com",
		ChainID:      137,
		ExplorerHost: "polygonscan.com",
	},
}

func LookupNetwork(name string) (Network, bool) {
	n, ok := networks[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

// ResolveNetwork returns the named network, replacing its endpoint when rpcOverride is set.
func ResolveNetwork(name, rpcOverride string) (Network, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultNetwork
	}
	n, ok := LookupNetwork(name)
	if !ok {
		return Network{}, clierr.New(clierr.CodeConfiguration, fmt.Sprintf("invalid network %q; must be one of: %s", name, strings.Join(NetworkNames(), ", ")))
	}
	if override := strings.TrimSpace(rpcOverride); override != "" {
		n.RPCURL = override
	}
	return n, nil
}

func NetworkNames() []string {
	names := make([]string, 0, len(networks))
	for name := range networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Networks() []Network {
	out := make([]Network, 0, len(networks))
	for _, name := range NetworkNames() {
		out = append(out, networks[name])
	}
	return out
}

// ExplorerTxURL builds the block-explorer link for a transaction hash.
func (n Network) ExplorerTxURL(txHash string) string {
	return fmt.Sprintf("https://%s/tx/%s", n.ExplorerHost, txHash)
}
