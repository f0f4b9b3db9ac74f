package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	price decimal.Decimal
	qty   int
}

func (l line) Price() decimal.Decimal { return l.price }
func (l line) Qty() int               { return l.qty }

func TestTotalRoundsOnceHalfUp(t *testing.T) {
	lines := []line{
		{price: MustParse("0.125"), qty: 1},
		{price: MustParse("0.125"), qty: 1},
		{price: MustParse("0.005"), qty: 1},
	}
	// per-line rounding would give 0.13 + 0.13 + 0.01 = 0.27
	assert.Equal(t, "0.26", Format(Total(lines)))
}

func TestTotalHalfUp(t *testing.T) {
	assert.Equal(t, "0.13", Format(Total([]line{{price: MustParse("0.125"), qty: 1}})))
	assert.Equal(t, "50.00", Format(Total([]line{{price: MustParse("25.00"), qty: 2}})))
}

func TestTotalOfNothingIsZero(t *testing.T) {
	assert.True(t, Total([]line{}).IsZero())
}

func TestKeyTreatsTrailingZerosAsEqual(t *testing.T) {
	assert.Equal(t, Key(MustParse("25")), Key(MustParse("25.00")))
	assert.NotEqual(t, Key(MustParse("25")), Key(MustParse("25.01")))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("twelve")
	require.Error(t, err)
	_, err = Parse("  ")
	require.Error(t, err)
}

func TestAmountsMarshalAsNumbers(t *testing.T) {
	raw, err := json.Marshal(map[string]decimal.Decimal{"total_price": MustParse("50.00")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_price": 50}`, string(raw))
	assert.NotContains(t, string(raw), `"50`)
}
