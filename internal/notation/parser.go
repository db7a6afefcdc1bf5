// Package notation parses commodity-options trade shorthand such as
// "U25 2.75/4.25 fence x3.31 27d" into a flat ParsedNotation record.
package notation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/models"
	"trade-confirmer/pkg/utils"
)

// knownExchanges are matched as case-sensitive substrings, first wins.
var knownExchanges = []string{"WTI", "Brent", "NYM/ICE"}

// quarterCodes maps two-letter combined-month codes to display prefixes.
var quarterCodes = map[string]string{
	"FH": "1Q",
	"FG": "Jan/Feb",
	"JM": "2Q",
	"NV": "3Q",
	"VZ": "4Q",
	"XH": "Winter ",
	"JV": "Summer ",
}

var (
	versusPattern     = regexp.MustCompile(`(?i)\bvs\b\.?`)
	expiryPattern     = regexp.MustCompile(`\b[FJNVX]?[FGHJKMNQUVXZ]\d{2}\b`)
	strikePattern     = regexp.MustCompile(`^([\d.]+(?:/[\d.]+)*)([A-Za-z]*)$`)
	underlyingPattern = regexp.MustCompile(`^[xX](\d+(?:\.\d+)?)$`)
	deltaPattern      = regexp.MustCompile(`(?i)\b(\d+)d\b`)
	ratioPattern      = regexp.MustCompile(`^(\d+(?:\.\d+)?)x(\d+(?:\.\d+)?)$`)
	lotsPattern       = regexp.MustCompile(`\((\d+)x\)$`)
	pricePattern      = regexp.MustCompile(`(?i)\b(?:trades?|live)\s+(-?\d*\.?\d+)\b`)
)

// Parse extracts the structured fields of a trade notation and classifies its
// strategy. It fails with ErrMalformedInput when no expiry code or no strike
// token can be found.
func Parse(raw string) (models.ParsedNotation, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return models.ParsedNotation{}, apperrors.NewNotationError(raw, "empty notation")
	}

	p := models.ParsedNotation{
		Raw:      text,
		Exchange: detectExchange(text),
		IsLive:   strings.Contains(strings.ToLower(text), "live"),
		Ratio:    models.DefaultRatio,
		Lots:     models.DefaultLots,
	}

	left, right := text, ""
	if loc := versusPattern.FindStringIndex(text); loc != nil {
		p.IsVersus = true
		left, right = text[:loc[0]], text[loc[1]:]
	}

	expiries := expiryPattern.FindAllString(text, -1)
	if len(expiries) == 0 {
		return models.ParsedNotation{}, apperrors.NewNotationError(raw, "no expiry code found")
	}
	p.Expiry = mapExpiry(expiries[0])
	p.Expiry2 = p.Expiry
	if p.IsVersus && len(expiries) > 1 {
		p.Expiry2 = mapExpiry(expiries[1])
	}

	strikes, ok := findStrikeToken(strings.Fields(text))
	if !ok {
		return models.ParsedNotation{}, apperrors.NewNotationError(raw, "no strike token found")
	}
	p.FlatStrikes = strikes.values
	p.FlatStrikes2 = strikes.values
	if p.IsVersus {
		if second, ok := findStrikeToken(strings.Fields(right)); ok {
			p.FlatStrikes2 = second.values
		}
	}

	p.Underlying, _ = findUnderlying(strings.Fields(text))
	p.Underlying2 = p.Underlying
	if p.IsVersus {
		if u, ok := findUnderlying(strings.Fields(right)); ok {
			p.Underlying2 = u
		}
	}

	deltas := deltaPattern.FindAllStringSubmatch(text, -1)
	if len(deltas) > 0 {
		p.Delta = atoi(deltas[0][1])
		p.Delta2 = p.Delta
	}
	if len(deltas) > 1 {
		p.Delta2 = atoi(deltas[1][1])
	}

	if ratio, ok := findRatio(strings.Fields(text)); ok {
		p.Ratio = ratio
	}
	if m := lotsPattern.FindStringSubmatch(text); m != nil {
		if lots := atoi(m[1]); lots > 0 {
			p.Lots = lots
		}
	}
	if m := pricePattern.FindStringSubmatch(text); m != nil {
		price := utils.ParseDecimal(m[1])
		p.Price = &price
	}

	c := newClues(text, strikes, len(p.FlatStrikes))
	if p.IsVersus {
		c.versus = true
		c.left = newSideClues(left, len(p.FlatStrikes))
		c.right = newSideClues(right, len(p.FlatStrikes2))
	}
	result := classify(c)
	p.StrategyType = result.strategy
	p.LegsSwapped = result.swapSides

	return p, nil
}

func detectExchange(text string) string {
	for _, ex := range knownExchanges {
		if strings.Contains(text, ex) {
			return ex
		}
	}
	return ""
}

func mapExpiry(code string) string {
	letters, year := code[:len(code)-2], code[len(code)-2:]
	if prefix, ok := quarterCodes[letters]; ok {
		return prefix + year
	}
	return code
}

type strikeToken struct {
	values []decimal.Decimal
	suffix string
}

func findStrikeToken(tokens []string) (strikeToken, bool) {
	for _, tok := range tokens {
		if m := strikePattern.FindStringSubmatch(tok); m != nil {
			return strikeToken{
				values: utils.ParseDecimalList(m[1]),
				suffix: strings.ToLower(m[2]),
			}, true
		}
	}
	return strikeToken{}, false
}

func findUnderlying(tokens []string) (decimal.Decimal, bool) {
	for _, tok := range tokens {
		if m := underlyingPattern.FindStringSubmatch(tok); m != nil {
			return utils.ParseDecimal(m[1]), true
		}
	}
	return decimal.Zero, false
}

func findRatio(tokens []string) (string, bool) {
	for _, tok := range tokens {
		m := ratioPattern.FindStringSubmatch(strings.ToLower(tok))
		if m == nil {
			continue
		}
		if utils.ParseDecimal(m[1]).IsPositive() && utils.ParseDecimal(m[2]).IsPositive() {
			return m[1] + "x" + m[2], true
		}
	}
	return "", false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
