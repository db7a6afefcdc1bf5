package notation

import (
	"strings"

	"trade-confirmer/internal/catalog"
)

// clues are the lower-cased facts the classification rules look at.
type clues struct {
	text    string
	tokens  []string
	suffix  string
	strikes int

	versus      bool
	left, right *sideClues
}

func newClues(text string, strike strikeToken, strikes int) clues {
	lower := strings.ToLower(text)
	return clues{
		text:    lower,
		tokens:  strings.Fields(lower),
		suffix:  strike.suffix,
		strikes: strikes,
	}
}

func (c clues) contains(keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(c.text, kw) {
			return true
		}
	}
	return false
}

func (c clues) hasToken(tokens ...string) bool {
	for _, tok := range c.tokens {
		for _, want := range tokens {
			if tok == want {
				return true
			}
		}
	}
	return false
}

// mentionsCall is true for the word "call", a strike suffix such as "c" or
// "cs", or a standalone "c"/"cs" token.
func (c clues) mentionsCall() bool {
	return c.contains("call") || strings.HasPrefix(c.suffix, "c") || c.hasToken("c", "cs")
}

func (c clues) mentionsPut() bool {
	return c.contains("put") || strings.HasPrefix(c.suffix, "p") || c.hasToken("p", "ps")
}

type ruleResult struct {
	strategy  string
	swapSides bool
}

// rule is one entry of the ordered classification table.
type rule struct {
	name  string
	apply func(c clues) (ruleResult, bool)
}

func keyword(strategy string, keywords ...string) func(c clues) (ruleResult, bool) {
	return func(c clues) (ruleResult, bool) {
		return ruleResult{strategy: strategy}, c.contains(keywords...)
	}
}

// byStrikeCount picks a strategy from the flat strike count: index 0 is one
// strike, index 1 two, and the last entry covers everything above.
func byStrikeCount(c clues, names ...string) ruleResult {
	i := c.strikes - 1
	if i < 0 {
		i = 0
	}
	if i >= len(names) {
		i = len(names) - 1
	}
	return ruleResult{strategy: names[i]}
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{"iron butterfly", keyword(catalog.IronButterfly, "iron butterfly", "iron fly")},
	{"iron condor", keyword(catalog.IronCondor, "iron condor")},
	{"call condor", keyword(catalog.CallCondor, "call condor")},
	{"put condor", keyword(catalog.PutCondor, "put condor")},
	{"call tree", keyword(catalog.CallTreeName, "call tree")},
	{"put tree", keyword(catalog.PutTreeName, "put tree")},
	{"conversion/reversal", keyword(catalog.ConversionReversal, "conversion", "reversal")},
	{"fence", keyword(catalog.FenceName, "fence")},
	{"versus", func(c clues) (ruleResult, bool) {
		if !c.versus {
			return ruleResult{}, false
		}
		return combineSides(c.left.classify(), c.right.classify()), true
	}},
	{"straddle", func(c clues) (ruleResult, bool) {
		if !c.contains("straddle", "strad", "strd") {
			return ruleResult{}, false
		}
		return byStrikeCount(c, catalog.StraddleName, catalog.StraddleSpread), true
	}},
	{"strangle", func(c clues) (ruleResult, bool) {
		if !c.contains("strangle", "strang") {
			return ruleResult{}, false
		}
		return byStrikeCount(c, catalog.StrangleName, catalog.StrangleName, catalog.StrangleSpread), true
	}},
	{"call", func(c clues) (ruleResult, bool) {
		if !c.mentionsCall() {
			return ruleResult{}, false
		}
		return byStrikeCount(c, catalog.CallOption, catalog.CallSpreadName, catalog.CallFlyName), true
	}},
	{"put", func(c clues) (ruleResult, bool) {
		if !c.mentionsPut() {
			return ruleResult{}, false
		}
		return byStrikeCount(c, catalog.PutOption, catalog.PutSpreadName, catalog.PutFlyName), true
	}},
}

func classify(c clues) ruleResult {
	for _, r := range rules {
		if result, ok := r.apply(c); ok {
			return result
		}
	}
	return ruleResult{strategy: catalog.Custom}
}

// RuleNames lists the classification rules in evaluation order.
func RuleNames() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}
