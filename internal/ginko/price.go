package ginko

import (
	"fmt"
	"math/big"
	"strings"
)

// Price is an exact fixed-point decimal: value = Mantissa / 10^Scale.
// Mirrors the on-chain Price struct (u64 mantissa, u8 scale). Prices with
// different scales must be normalized before comparison.
type Price struct {
	Mantissa uint64
	Scale    uint8
}

// DefaultPriceDecimals matches the protocol's standard 6-decimal quote scale.
const DefaultPriceDecimals = uint8(6)

// ParsePrice converts a human decimal string into a Price with the given
// scale. Arithmetic is integer-only; the shifted value is floored (round
// toward negative infinity), so excess precision on sell-side prices rounds
// against the seller. That is intentional: it keeps client-side values
// conservative relative to the on-chain comparison.
func ParsePrice(input string, decimals uint8) (Price, error) {
	mantissa, err := parseDecimalFloor(input, int(decimals))
	if err != nil {
		return Price{}, err
	}
	if mantissa.Sign() < 0 {
		return Price{}, fmt.Errorf("%w: price %q is negative", ErrParse, input)
	}
	if !mantissa.IsUint64() {
		return Price{}, fmt.Errorf("%w: price %q overflows u64 at scale %d", ErrParse, input, decimals)
	}
	return Price{Mantissa: mantissa.Uint64(), Scale: decimals}, nil
}

func (p Price) String() string {
	mantissa := new(big.Int).SetUint64(p.Mantissa)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p.Scale)), nil)
	quo, rem := new(big.Int).QuoRem(mantissa, scale, new(big.Int))
	if p.Scale == 0 {
		return quo.String()
	}
	return fmt.Sprintf("%s.%0*d", quo, p.Scale, rem)
}

// parseDecimalFloor computes floor(input * 10^decimals) as a big integer.
// Accepts an optional sign, an integer part, and an optional fraction part.
func parseDecimalFloor(input string, decimals int) (*big.Int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, fmt.Errorf("%w: empty decimal string", ErrParse)
	}

	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot+1:]
	}
	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrParse, input)
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrParse, input)
	}

	digits, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrParse, input)
	}
	if neg {
		digits.Neg(digits)
	}

	// floor(digits * 10^decimals / 10^len(frac)); big.Int.Div floors for a
	// positive divisor.
	digits.Mul(digits, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	return digits.Div(digits, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
