package money_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-pe/pkg/money"
)

func TestRound2_MitadLejosDeCero(t *testing.T) {
	assert.Equal(t, "10.13", money.Round2(decimal.RequireFromString("10.125")).String())
	assert.Equal(t, "10.12", money.Round2(decimal.RequireFromString("10.1249")).String())
	assert.Equal(t, "118", money.Round2(decimal.NewFromInt(118)).String())
}

func TestParse_AceptaNumerosYStrings(t *testing.T) {
	cases := map[string]any{
		"float":       2.5,
		"int":         2,
		"string":      " 2.50 ",
		"json.Number": json.Number("2.5"),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := money.Parse(in)
			require.NoError(t, err)
			assert.True(t, d.GreaterThan(decimal.NewFromInt(1)), "valor %v debe parsear", in)
		})
	}
}

func TestParse_RechazaInvalidos(t *testing.T) {
	for _, in := range []any{nil, "", "abc", true, map[string]any{}} {
		_, err := money.Parse(in)
		assert.Error(t, err, "valor %v debe fallar", in)
	}
}

func TestNormalizeRate(t *testing.T) {
	r, err := money.NormalizeRate(decimal.NewFromInt(18))
	require.NoError(t, err)
	assert.Equal(t, "0.18", r.String(), "18 se interpreta como 18%")

	r, err = money.NormalizeRate(decimal.RequireFromString("0.18"))
	require.NoError(t, err)
	assert.Equal(t, "0.18", r.String())

	r, err = money.NormalizeRate(decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, "1", r.String(), "1 ya es fracción")

	_, err = money.NormalizeRate(decimal.NewFromInt(101))
	assert.Error(t, err)
	_, err = money.NormalizeRate(decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestIsSettled(t *testing.T) {
	assert.True(t, money.IsSettled(decimal.Zero))
	assert.True(t, money.IsSettled(decimal.RequireFromString("0.0000001")))
	assert.False(t, money.IsSettled(decimal.RequireFromString("0.01")))
}

func TestWithinLimit(t *testing.T) {
	assert.True(t, money.WithinLimit(decimal.RequireFromString("999999999999.99")))
	assert.True(t, money.WithinLimit(decimal.Zero))
	assert.False(t, money.WithinLimit(decimal.RequireFromString("1000000000000")))
	assert.False(t, money.WithinLimit(decimal.RequireFromString("-1000000000000")))
}
