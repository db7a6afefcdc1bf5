package trading

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func strs(values []decimal.Decimal) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		name     string
		flat     []decimal.Decimal
		n1, n2   int
		wantLeg1 []string
		wantLeg2 []string
	}{
		{"iron butterfly shares the middle strike", decs("10", "12", "14"), 2, 2, []string{"10", "12"}, []string{"12", "14"}},
		{"iron condor", decs("2.5", "3", "4.5", "5"), 2, 2, []string{"2.5", "3"}, []string{"4.5", "5"}},
		{"fence", decs("2.75", "4.25"), 1, 1, []string{"2.75"}, []string{"4.25"}},
		{"single leg", decs("5"), 1, 0, []string{"5"}, []string{}},
		{"spread pads missing strike", decs("3.5"), 2, 0, []string{"3.5", "0"}, []string{}},
		{"extra strikes are dropped", decs("1", "2", "3"), 1, 1, []string{"1"}, []string{"2"}},
		{"one strike for both legs copies leg1", decs("3.75"), 1, 1, []string{"3.75"}, []string{"3.75"}},
		{"zero leg2 copies resized leg1", decs("3.25", "3.5"), 2, 3, []string{"3.25", "3.5"}, []string{"3.25", "3.5", "0"}},
		{"empty input", nil, 2, 2, []string{"0", "0"}, []string{"0", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg1, leg2 := Distribute(tt.flat, tt.n1, tt.n2)
			assert.Equal(t, tt.wantLeg1, strs(leg1))
			assert.Equal(t, tt.wantLeg2, strs(leg2))
		})
	}
}

func TestDistributeDoesNotAliasInput(t *testing.T) {
	flat := decs("1", "2")
	leg1, _ := Distribute(flat, 1, 1)
	leg1[0] = decimal.NewFromInt(99)
	assert.Equal(t, "1", flat[0].String())
}

// Property: when the flat list has exactly n1+n2 strikes (and is not the
// 3-into-4 butterfly case) the legs are the two halves of the list.
func TestProperty_DistributeExactSplit(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	properties.Property("exact-length lists split without padding", prop.ForAll(
		func(n1, n2, seed int) bool {
			flat := make([]decimal.Decimal, n1+n2)
			for i := range flat {
				// strictly positive so the zero-leg2 fallback never applies
				flat[i] = decimal.NewFromInt(int64(seed%500 + 1 + i))
			}
			leg1, leg2 := Distribute(flat, n1, n2)
			if len(leg1) != n1 || len(leg2) != n2 {
				return false
			}
			for i := 0; i < n1; i++ {
				if !leg1[i].Equal(flat[i]) {
					return false
				}
			}
			for i := 0; i < n2; i++ {
				if !leg2[i].Equal(flat[n1+i]) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 3),
		gen.IntRange(0, 3),
		gen.IntRange(0, 1000),
	))

	properties.Property("output lengths always match the requested counts", prop.ForAll(
		func(n1, n2, size int) bool {
			flat := make([]decimal.Decimal, size)
			for i := range flat {
				flat[i] = decimal.NewFromInt(int64(i + 1))
			}
			leg1, leg2 := Distribute(flat, n1, n2)
			return len(leg1) == n1 && len(leg2) == n2
		},
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}
