package id

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
)

// NativeTokenAddress is the aggregator-wide sentinel for a chain's native coin.
const NativeTokenAddress = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

// NativeDecimals is the precision of every supported chain's native coin.
const NativeDecimals = 18

// TokenRef is either the native coin or an ERC20 contract address.
type TokenRef struct {
	Address common.Address
	Native  bool
}

func NativeToken() TokenRef {
	return TokenRef{Address: common.HexToAddress(NativeTokenAddress), Native: true}
}

// ParseToken accepts an empty value or the native sentinel as the native coin,
// and any other hex address as an ERC20 token.
func ParseToken(input string) (TokenRef, error) {
	clean := strings.TrimSpace(input)
	if clean == "" || strings.EqualFold(clean, NativeTokenAddress) {
		return NativeToken(), nil
	}
	if !common.IsHexAddress(clean) {
		return TokenRef{}, clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("invalid token address %q", input))
	}
	return TokenRef{Address: common.HexToAddress(clean)}, nil
}

// ParseAddress validates a recipient/spender address and returns it checksummed.
func ParseAddress(input string) (common.Address, error) {
	clean := strings.TrimSpace(input)
	if !common.IsHexAddress(clean) {
		return common.Address{}, clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("invalid address %q", input))
	}
	return common.HexToAddress(clean), nil
}

// Hex is the address used on the wire: the sentinel for native, checksummed otherwise.
func (t TokenRef) Hex() string {
	if t.Native {
		return NativeTokenAddress
	}
	return t.Address.Hex()
}

func (t TokenRef) String() string {
	if t.Native {
		return "native"
	}
	return t.Address.Hex()
}
