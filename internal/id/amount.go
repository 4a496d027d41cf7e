package id

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// maxFractionDigits bounds how far ratToDecimal searches for a terminating expansion.
const maxFractionDigits = 78

// ToBaseUnits converts a human-readable decimal amount into integer base units,
// rounding half away from zero at the token's precision.
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, clierr.New(clierr.CodeInvalidParameters, "decimals must be >= 0")
	}
	clean := strings.TrimSpace(amount)
	if !decimalPattern.MatchString(clean) {
		return nil, clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("amount %q must be a non-negative decimal like 1.23", amount))
	}
	rat, ok := new(big.Rat).SetString(clean)
	if !ok {
		return nil, clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("invalid decimal amount %q", amount))
	}
	scaled := new(big.Rat).Mul(rat, new(big.Rat).SetInt(pow10(decimals)))
	return roundHalfUp(scaled), nil
}

// ToHuman renders base units as a canonical decimal string (no trailing zeros).
func ToHuman(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	if raw.Sign() < 0 {
		return "-" + formatDecimal(new(big.Int).Neg(raw).String(), decimals)
	}
	return formatDecimal(raw.String(), decimals)
}

// CanonicalDecimal normalises a decimal string: no leading or trailing zeros.
func CanonicalDecimal(v string) (string, error) {
	clean := strings.TrimSpace(v)
	if !decimalPattern.MatchString(clean) {
		return "", clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("amount %q must be a non-negative decimal like 1.23", v))
	}
	return normalizeDecimal(clean), nil
}

// CompareDecimal compares two non-negative decimal strings exactly.
func CompareDecimal(a, b string) (int, error) {
	ra, ok := new(big.Rat).SetString(strings.TrimSpace(a))
	if !ok {
		return 0, clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("invalid decimal amount %q", a))
	}
	rb, ok := new(big.Rat).SetString(strings.TrimSpace(b))
	if !ok {
		return 0, clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("invalid decimal amount %q", b))
	}
	return ra.Cmp(rb), nil
}

// NumberToDecimal turns a validated numeric action argument into an exact
// non-negative decimal string. Floats use their shortest round-trip form.
func NumberToDecimal(v any) (string, error) {
	var rat *big.Rat
	switch t := v.(type) {
	case json.Number:
		r, ok := new(big.Rat).SetString(t.String())
		if !ok {
			return "", clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("invalid number %q", t.String()))
		}
		rat = r
	case string:
		r, ok := new(big.Rat).SetString(strings.TrimSpace(t))
		if !ok {
			return "", clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("invalid number %q", t))
		}
		rat = r
	case float64:
		r, ok := new(big.Rat).SetString(strconv.FormatFloat(t, 'f', -1, 64))
		if !ok {
			return "", clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("invalid number %v", t))
		}
		rat = r
	case float32:
		r, ok := new(big.Rat).SetString(strconv.FormatFloat(float64(t), 'f', -1, 32))
		if !ok {
			return "", clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("invalid number %v", t))
		}
		rat = r
	case int:
		rat = new(big.Rat).SetInt64(int64(t))
	case int8:
		rat = new(big.Rat).SetInt64(int64(t))
	case int16:
		rat = new(big.Rat).SetInt64(int64(t))
	case int32:
		rat = new(big.Rat).SetInt64(int64(t))
	case int64:
		rat = new(big.Rat).SetInt64(t)
	case uint:
		rat = new(big.Rat).SetUint64(uint64(t))
	case uint8:
		rat = new(big.Rat).SetUint64(uint64(t))
	case uint16:
		rat = new(big.Rat).SetUint64(uint64(t))
	case uint32:
		rat = new(big.Rat).SetUint64(uint64(t))
	case uint64:
		rat = new(big.Rat).SetUint64(t)
	case *big.Rat:
		if t == nil {
			return "", clierr.New(clierr.CodeInvalidParameters, "missing number")
		}
		rat = new(big.Rat).Set(t)
	default:
		return "", clierr.New(clierr.CodeInvalidParameters, fmt.Sprintf("unsupported number type %T", v))
	}
	if rat.Sign() < 0 {
		return "", clierr.New(clierr.CodeInvalidParameters, "amount must be non-negative")
	}
	return ratToDecimal(rat)
}

func ratToDecimal(r *big.Rat) (string, error) {
	if r.IsInt() {
		return r.Num().String(), nil
	}
	scaled := new(big.Rat)
	for digits := 1; digits <= maxFractionDigits; digits++ {
		scaled.Mul(r, new(big.Rat).SetInt(pow10(digits)))
		if scaled.IsInt() {
			return formatDecimal(scaled.Num().String(), digits), nil
		}
	}
	return "", clierr.New(clierr.CodeInvalidParameters, "number has no finite decimal representation")
}

func roundHalfUp(r *big.Rat) *big.Int {
	num := new(big.Int).Set(r.Num())
	den := r.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() == 0 {
		return q
	}
	twice := new(big.Int).Mul(new(big.Int).Abs(rem), big.NewInt(2))
	if twice.Cmp(den) >= 0 {
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func formatDecimal(baseUnits string, decimals int) string {
	n := new(big.Int)
	n.SetString(baseUnits, 10)
	if decimals == 0 {
		return n.String()
	}

	s := n.String()
	if len(s) <= decimals {
		pad := strings.Repeat("0", decimals-len(s)+1)
		s = pad + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

func normalizeDecimal(v string) string {
	if !strings.Contains(v, ".") {
		out := strings.TrimLeft(v, "0")
		if out == "" {
			return "0"
		}
		return out
	}
	parts := strings.SplitN(v, ".", 2)
	intPart := strings.TrimLeft(parts[0], "0")
	if intPart == "" {
		intPart = "0"
	}
	fracPart := strings.TrimRight(parts[1], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}
