package notation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-confirmer/internal/catalog"
	apperrors "trade-confirmer/internal/errors"
)

// Property: a notation built from a month code, a slash-separated strike list
// and a call suffix always parses, keeps every strike in order and branches on
// the strike count.
func TestProperty_CallNotationStrikeCountBranch(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	months := []string{"F", "G", "H", "J", "K", "M", "N", "Q", "U", "V", "X", "Z"}
	want := map[int]string{1: catalog.CallOption, 2: catalog.CallSpreadName, 3: catalog.CallFlyName}

	properties.Property("call notation parses with strike-count classification", prop.ForAll(
		func(month, year, count, a, b, c int) bool {
			cents := []int{a, b, c}[:count]
			strikes := make([]string, len(cents))
			for i, v := range cents {
				strikes[i] = fmt.Sprintf("%d.%02d", v/100, v%100)
			}
			raw := fmt.Sprintf("%s%02d %sc x3.50 25d", months[month], year, strings.Join(strikes, "/"))

			p, err := Parse(raw)
			if err != nil {
				t.Logf("Parse(%q): %v", raw, err)
				return false
			}
			if len(p.FlatStrikes) != len(cents) {
				return false
			}
			for i, s := range p.FlatStrikes {
				if s.StringFixed(2) != strikes[i] {
					return false
				}
			}
			return p.StrategyType == want[len(cents)] && p.Delta == 25
		},
		gen.IntRange(0, len(months)-1),
		gen.IntRange(24, 35),
		gen.IntRange(1, 3),
		gen.IntRange(100, 999),
		gen.IntRange(100, 999),
		gen.IntRange(100, 999),
	))

	properties.TestingRun(t)
}

// Property: Parse never panics and either fails with ErrMalformedInput or
// returns a catalog strategy.
func TestProperty_ParseTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	words := gen.OneConstOf("Z25", "JV26", "3.25", "3.25/3.50", "4.00c", "2.75p", "cs", "ps",
		"vs.", "vs", "fence", "strad", "iron", "fly", "x3.31", "27d", "1x2", "LIVE", "(50x)", "call", "put")

	properties.Property("parse is total", prop.ForAll(
		func(parts []string) bool {
			p, err := Parse(strings.Join(parts, " "))
			if err != nil {
				return apperrors.Is(err, apperrors.ErrMalformedInput)
			}
			return catalog.Has(p.StrategyType) && len(p.FlatStrikes) > 0 && p.Lots > 0
		},
		gen.SliceOf(words),
	))

	properties.TestingRun(t)
}
