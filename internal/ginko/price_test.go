package ginko

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		input    string
		decimals uint8
		mantissa uint64
	}{
		{"1.2345", 6, 1_234_500},
		{"1.23456789", 6, 1_234_567}, // excess precision floors
		{"0.000001", 6, 1},
		{"0.0000001", 6, 0},
		{"5", 6, 5_000_000},
		{"142.50", 2, 14_250},
		{"0", 6, 0},
		{"1.2345", 0, 1},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			price, err := ParsePrice(tc.input, tc.decimals)
			require.NoError(t, err)
			assert.Equal(t, tc.mantissa, price.Mantissa)
			assert.Equal(t, tc.decimals, price.Scale)
		})
	}
}

func TestParsePriceRejectsNegative(t *testing.T) {
	_, err := ParsePrice("-1.5", DefaultPriceDecimals)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParsePriceRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "abc", "1.2.3", "1,5", "."} {
		_, err := ParsePrice(input, DefaultPriceDecimals)
		assert.ErrorIs(t, err, ErrParse, "input %q", input)
	}
}

func TestParsePriceOverflow(t *testing.T) {
	_, err := ParsePrice("99999999999999999999", 6)
	assert.ErrorIs(t, err, ErrParse)
}

func TestPriceString(t *testing.T) {
	price, err := ParsePrice("1.2345", 6)
	require.NoError(t, err)
	assert.Equal(t, "1.234500", price.String())

	whole := Price{Mantissa: 42, Scale: 0}
	assert.Equal(t, "42", whole.String())
}
