package trading

import (
	"github.com/shopspring/decimal"

	"trade-confirmer/internal/models"
)

// Distribute partitions a flat strike list into leg1 and leg2 strike arrays of
// length n1 and n2.
//
// Three strikes spread over four slots share the middle strike between the
// legs (iron butterfly). Otherwise strikes are taken in order and missing
// slots are zero. A required leg2 that would be all zero copies leg1.
func Distribute(flat []decimal.Decimal, n1, n2 int) ([]decimal.Decimal, []decimal.Decimal) {
	if n1 < 0 {
		n1 = 0
	}
	if n2 < 0 {
		n2 = 0
	}

	if n1+n2 == 4 && len(flat) == 3 {
		return models.Resize(flat[0:2], n1), models.Resize(flat[1:3], n2)
	}

	leg1 := models.Resize(window(flat, 0, n1), n1)
	leg2 := models.Resize(window(flat, n1, n1+n2), n2)
	if n2 > 0 && allZero(leg2) {
		leg2 = models.Resize(leg1, n2)
	}
	return leg1, leg2
}

// window returns values[from:to] clamped to the slice bounds.
func window(values []decimal.Decimal, from, to int) []decimal.Decimal {
	if from >= len(values) {
		return nil
	}
	if to > len(values) {
		to = len(values)
	}
	return values[from:to]
}

func allZero(values []decimal.Decimal) bool {
	for _, v := range values {
		if !v.IsZero() {
			return false
		}
	}
	return true
}
