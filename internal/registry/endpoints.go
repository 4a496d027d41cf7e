package registry

import (
	"fmt"
	"strings"
)

const (
	KyberSwapAPIBase   = "https://aggregator-api.kyberswap.com"
	DexScreenerAPIBase = "https://api.dexscreener.com"

	// DefaultAggregatorClientID is sent as x-client-id and as the build source.
	DefaultAggregatorClientID = "evm-agent"

	// SwapDeadlineSeconds bounds how long built swap calldata stays executable.
	SwapDeadlineSeconds = 1200
)

// KyberSwapBaseURL returns the per-network aggregator base; override replaces the host part.
func KyberSwapBaseURL(network, override string) string {
	base := strings.TrimRight(strings.TrimSpace(override), "/")
	if base == "" {
		base = KyberSwapAPIBase
	}
	return fmt.Sprintf("%s/%s/api/v1", base, network)
}
