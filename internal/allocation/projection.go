package allocation

import (
	"math"

	"fundpal/internal/models"
)

// weightedReturn is the expected annual return of an allocation map,
// the CAGR of each class weighted by its share.
func (e *Engine) weightedReturn(weights map[string]float64) float64 {
	var total float64
	for class, weight := range weights {
		total += e.catalog.cagr(class) * weight
	}
	return total
}

// futureValue compounds a fixed monthly contribution at the given
// annual return for the given number of years. This is the standard
// SIP formula with contributions at the start of each month:
//
//	FV = P * (((1+r)^n - 1) / r) * (1+r)
//
// where r is the monthly rate and n the number of months. A zero rate
// degenerates to simple accumulation.
func futureValue(monthly, annualReturn float64, years int) float64 {
	r := annualReturn / 12
	n := float64(years * 12)

	if r == 0 {
		return math.Round(monthly * n)
	}

	fv := monthly * ((math.Pow(1+r, n) - 1) / r) * (1 + r)
	return math.Round(fv)
}

// project computes the 3/5/10 year projections for a monthly amount
// against an allocation map. Pure: identical inputs always produce
// identical output.
func (e *Engine) project(monthly float64, weights map[string]float64) []models.Projection {
	annual := e.weightedReturn(weights)

	horizons := []int{3, 5, 10}
	out := make([]models.Projection, 0, len(horizons))
	for _, years := range horizons {
		fv := futureValue(monthly, annual, years)
		principal := monthly * 12 * float64(years)
		out = append(out, models.Projection{
			Years:          years,
			FutureValue:    fv,
			TotalPrincipal: math.Round(principal),
			WealthGained:   math.Round(fv - principal),
		})
	}
	return out
}
