package notation

import (
	"strings"

	"trade-confirmer/internal/catalog"
)

// sideType is the shape of one side of a versus notation.
type sideType string

const (
	sideCallSpread sideType = "call_spread"
	sidePutSpread  sideType = "put_spread"
	sideStraddle   sideType = "straddle"
	sideStrangle   sideType = "strangle"
	sideCall       sideType = "call"
	sidePut        sideType = "put"
	sideUnknown    sideType = "unknown"
)

type sideClues struct {
	clues
}

func newSideClues(text string, fallbackStrikes int) *sideClues {
	strike, ok := findStrikeToken(strings.Fields(text))
	n := fallbackStrikes
	if ok {
		n = len(strike.values)
	}
	return &sideClues{newClues(text, strike, n)}
}

func (s *sideClues) classify() sideType {
	switch {
	case s.contains("cs", "call spread") || (s.mentionsCall() && s.strikes >= 2):
		return sideCallSpread
	case s.contains("ps", "put spread") || (s.mentionsPut() && s.strikes >= 2):
		return sidePutSpread
	case s.contains("straddle", "strad", "strd"):
		return sideStraddle
	case s.contains("strangle", "strang"):
		return sideStrangle
	case s.mentionsCall():
		return sideCall
	case s.mentionsPut():
		return sidePut
	}
	return sideUnknown
}

// combinations maps left/right side shapes to a strategy. swapSides is set
// when the left side carries the catalog's second leg.
var combinations = map[[2]sideType]ruleResult{
	{sideCallSpread, sidePut}:        {strategy: catalog.ThreeWayCSvP},
	{sidePutSpread, sideCall}:        {strategy: catalog.ThreeWayPSvC},
	{sideStraddle, sideCall}:         {strategy: catalog.ThreeWayStraddleC},
	{sideStraddle, sidePut}:          {strategy: catalog.ThreeWayStraddleP},
	{sideStraddle, sideStraddle}:     {strategy: catalog.StraddleSpread},
	{sidePutSpread, sideCallSpread}:  {strategy: catalog.IronCondor},
	{sideCallSpread, sidePutSpread}:  {strategy: catalog.IronCondor, swapSides: true},
	{sideCallSpread, sideCallSpread}: {strategy: catalog.CallCondor},
	{sidePutSpread, sidePutSpread}:   {strategy: catalog.PutCondor},
	{sideCall, sidePut}:              {strategy: catalog.ConversionReversal},
	{sidePut, sideCall}:              {strategy: catalog.ConversionReversal, swapSides: true},
}

// combineSides looks up a versus pair. Pairs missing from the table are Custom.
func combineSides(left, right sideType) ruleResult {
	if result, ok := combinations[[2]sideType{left, right}]; ok {
		return result
	}
	return ruleResult{strategy: catalog.Custom}
}
