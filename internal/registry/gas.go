package registry

// GasPolicy is the safety margin applied to a node estimate and the fixed
// limit used when estimation fails.
type GasPolicy struct {
	Multiplier float64
	Fallback   uint64
}

const NativeTransferGas uint64 = 21_000

var (
	ApproveGasPolicy       = GasPolicy{Multiplier: 1.1, Fallback: 100_000}
	SwapGasPolicy          = GasPolicy{Multiplier: 1.2, Fallback: 500_000}
	TokenTransferGasPolicy = GasPolicy{Multiplier: 1.2, Fallback: 100_000}
	DeployGasPolicy        = GasPolicy{Multiplier: 1.2, Fallback: 3_000_000}
)

// Apply scales a raw estimate, never returning less than the estimate itself.
func (p GasPolicy) Apply(estimate uint64) uint64 {
	if p.Multiplier <= 1 {
		return estimate
	}
	scaled := uint64(float64(estimate) * p.Multiplier)
	if scaled < estimate {
		return estimate
	}
	return scaled
}

// DeployTokenDecimals is fixed because deploy-erc defines the token it creates.
const DeployTokenDecimals uint8 = 18
