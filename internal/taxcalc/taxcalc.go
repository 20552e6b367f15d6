// Package taxcalc computes GST breakdowns. Monetary outputs are rounded to
// two places, half away from zero; rates are never rounded.
package taxcalc

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"gstrates/internal/domain"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Input is a single calculation request.
type Input struct {
	Price float64
	Rate  float64
	// Inclusive means Price already contains the tax.
	Inclusive bool
	// Split treats Rate as one of two equal components (CGST and SGST).
	Split bool
}

// Calculate returns the breakdown for in. Price must be positive and Rate
// non-negative.
func Calculate(in Input) (*domain.Breakdown, error) {
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than zero", domain.ErrInvalidInput)
	}
	if math.IsNaN(in.Rate) || math.IsInf(in.Rate, 0) || in.Rate < 0 {
		return nil, fmt.Errorf("%w: rate must not be negative", domain.ErrInvalidInput)
	}

	effective := in.Rate
	if in.Split {
		effective = 2 * in.Rate
	}

	price := decimal.NewFromFloat(in.Price)
	fraction := decimal.NewFromFloat(effective).Div(hundred)

	var base, tax, total decimal.Decimal
	if in.Inclusive {
		base = price.Div(decimal.NewFromInt(1).Add(fraction))
		tax = price.Sub(base)
		total = price
	} else {
		base = price
		tax = price.Mul(fraction)
		total = base.Add(tax)
	}

	out := &domain.Breakdown{
		Base:          money(base),
		Tax:           money(tax),
		Total:         money(total),
		Rate:          in.Rate,
		EffectiveRate: effective,
		Split:         in.Split,
		Inclusive:     in.Inclusive,
	}
	if in.Split {
		half := money(tax.Div(decimal.NewFromInt(2)))
		out.CGST = half
		out.SGST = half
	}
	return out, nil
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(moneyPlaces).Float64()
	return f
}
