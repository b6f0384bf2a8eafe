// Package money agrupa las primitivas de redondeo y parseo de montos usadas por el ledger.
// Todos los montos se manejan con shopspring/decimal y se redondean a 2 decimales (céntimos).
package money

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Epsilon tolerancia para comparar saldos: un saldo <= Epsilon se considera cancelado.
var Epsilon = decimal.New(1, -6)

// MaxAmount mayor monto representable en las columnas NUMERIC(14,2) del ledger.
var MaxAmount = decimal.RequireFromString("999999999999.99")

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// WithinLimit indica si el monto cabe en una columna de dinero del ledger.
func WithinLimit(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(MaxAmount)
}

// Round2 redondea a 2 decimales (mitad lejos de cero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Parse convierte un valor de un payload JSON (número, string numérico o json.Number) a decimal.
// Devuelve error si el valor está ausente, vacío, no es numérico o no es finito.
func Parse(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("valor requerido")
	case decimal.Decimal:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, fmt.Errorf("número no finito")
		}
		return decimal.NewFromFloat(x), nil
	case float32:
		return Parse(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case json.Number:
		return parseString(x.String())
	case string:
		return parseString(x)
	default:
		return decimal.Zero, fmt.Errorf("tipo no numérico %T", v)
	}
}

func parseString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("valor vacío")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q no es un número", s)
	}
	return d, nil
}

// NormalizeRate lleva una tasa de impuesto a fracción 0–1.
// Valores > 1 se interpretan como porcentaje (18 → 0.18); valores > 100 o negativos son inválidos.
func NormalizeRate(raw decimal.Decimal) (decimal.Decimal, error) {
	if raw.IsNegative() {
		return decimal.Zero, fmt.Errorf("la tasa no puede ser negativa")
	}
	if raw.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("la tasa %s supera 100", raw.String())
	}
	rate := raw
	if raw.GreaterThan(one) {
		rate = raw.Div(hundred)
	}
	if rate.IsNegative() || rate.GreaterThan(one) {
		return decimal.Zero, fmt.Errorf("la tasa normalizada %s está fuera de [0,1]", rate.String())
	}
	return rate, nil
}

// IsSettled informa si un saldo se considera cancelado (<= Epsilon).
func IsSettled(balance decimal.Decimal) bool {
	return balance.LessThanOrEqual(Epsilon)
}

// NonNegative devuelve d o cero si d es negativo.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Float convierte un monto a float64 con 2 decimales para respuestas JSON.
func Float(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
