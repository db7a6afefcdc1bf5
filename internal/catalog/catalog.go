// Package catalog maps strategy names to their leg structure.
package catalog

import (
	apperrors "trade-confirmer/internal/errors"
)

// OptionType is the kind of option structure a single leg carries.
type OptionType string

const (
	Call       OptionType = "call"
	Put        OptionType = "put"
	CallSpread OptionType = "call spread"
	PutSpread  OptionType = "put spread"
	Straddle   OptionType = "straddle"
	Strangle   OptionType = "strangle"
	CallFly    OptionType = "call fly"
	PutFly     OptionType = "put fly"
	CallTree   OptionType = "call tree"
	PutTree    OptionType = "put tree"
	Fence      OptionType = "fence"
)

var strikeCounts = map[OptionType]int{
	Call:       1,
	Put:        1,
	CallSpread: 2,
	PutSpread:  2,
	Straddle:   2,
	Strangle:   2,
	Fence:      2,
	CallFly:    3,
	PutFly:     3,
	CallTree:   3,
	PutTree:    3,
}

// OptionTypes returns every known leg type.
func OptionTypes() []OptionType {
	return []OptionType{Call, Put, CallSpread, PutSpread, Straddle, Strangle, Fence, CallFly, PutFly, CallTree, PutTree}
}

// Valid reports whether t is a known leg type.
func (t OptionType) Valid() bool {
	_, ok := strikeCounts[t]
	return ok
}

// IsCallFamily reports whether the leg is made of calls.
// Futures hedges on call-family legs go the opposite way to the option.
func (t OptionType) IsCallFamily() bool {
	switch t {
	case Call, CallSpread, CallFly, CallTree:
		return true
	}
	return false
}

// RequiredStrikeCount returns how many strikes a leg of type t holds.
// Unknown types need no strikes.
func RequiredStrikeCount(t OptionType) int {
	return strikeCounts[t]
}

// LegSpec is the default shape of one leg.
type LegSpec struct {
	Type  OptionType `json:"type"`
	IsBuy bool       `json:"is_buy"`
}

// Definition describes a strategy. Leg2 is nil for single-leg strategies.
type Definition struct {
	Name string   `json:"name"`
	Leg1 LegSpec  `json:"leg1"`
	Leg2 *LegSpec `json:"leg2,omitempty"`
}

// HasLeg2 reports whether the strategy has a second leg.
func (d Definition) HasLeg2() bool {
	return d.Leg2 != nil
}

// Strategy names.
const (
	CallOption         = "Call Option"
	PutOption          = "Put Option"
	CallSpreadName     = "Call Spread"
	PutSpreadName      = "Put Spread"
	StraddleName       = "Straddle"
	StrangleName       = "Strangle"
	CallFlyName        = "Call Fly"
	PutFlyName         = "Put Fly"
	CallTreeName       = "Call Tree"
	PutTreeName        = "Put Tree"
	StraddleSpread     = "Straddle Spread"
	StrangleSpread     = "Strangle Spread"
	FenceName          = "Fence"
	ConversionReversal = "Conversion/Reversal"
	IronButterfly      = "Iron Butterfly"
	IronCondor         = "Iron Condor"
	CallCondor         = "Call Condor"
	PutCondor          = "Put Condor"
	ThreeWayCSvP       = "3-Way: Call Spread v Put"
	ThreeWayPSvC       = "3-Way: Put Spread v Call"
	ThreeWayStraddleC  = "3-Way: Straddle v Call"
	ThreeWayStraddleP  = "3-Way: Straddle v Put"
	Custom             = "Custom"
)

func single(t OptionType) [2]*LegSpec {
	return [2]*LegSpec{{Type: t, IsBuy: true}, nil}
}

func pair(t1, t2 OptionType) [2]*LegSpec {
	return [2]*LegSpec{{Type: t1, IsBuy: true}, {Type: t2, IsBuy: false}}
}

// table is in display order.
var table = []struct {
	name string
	legs [2]*LegSpec
}{
	{CallOption, single(Call)},
	{PutOption, single(Put)},
	{CallSpreadName, single(CallSpread)},
	{PutSpreadName, single(PutSpread)},
	{StraddleName, single(Straddle)},
	{StrangleName, single(Strangle)},
	{CallFlyName, single(CallFly)},
	{PutFlyName, single(PutFly)},
	{CallTreeName, single(CallTree)},
	{PutTreeName, single(PutTree)},
	{StraddleSpread, pair(Straddle, Straddle)},
	{StrangleSpread, pair(Strangle, Strangle)},
	{FenceName, pair(Put, Call)},
	{ConversionReversal, pair(Call, Put)},
	{IronButterfly, pair(PutSpread, CallSpread)},
	{IronCondor, pair(PutSpread, CallSpread)},
	{CallCondor, pair(CallSpread, CallSpread)},
	{PutCondor, pair(PutSpread, PutSpread)},
	{ThreeWayCSvP, pair(CallSpread, Put)},
	{ThreeWayPSvC, pair(PutSpread, Call)},
	{ThreeWayStraddleC, pair(Straddle, Call)},
	{ThreeWayStraddleP, pair(Straddle, Put)},
	{Custom, pair(Call, Put)},
}

var definitions = buildIndex()

func buildIndex() map[string]Definition {
	index := make(map[string]Definition, len(table))
	for _, entry := range table {
		if entry.legs[0] == nil {
			panic("catalog: strategy without leg1: " + entry.name)
		}
		if _, dup := index[entry.name]; dup {
			panic("catalog: duplicate strategy: " + entry.name)
		}
		def := Definition{Name: entry.name, Leg1: *entry.legs[0]}
		if entry.legs[1] != nil {
			leg2 := *entry.legs[1]
			def.Leg2 = &leg2
		}
		for _, spec := range []*LegSpec{&def.Leg1, def.Leg2} {
			if spec != nil && !spec.Type.Valid() {
				panic("catalog: unknown leg type " + string(spec.Type) + " in " + entry.name)
			}
		}
		index[entry.name] = def
	}
	return index
}

// LegSpecs returns the definition for a strategy name.
func LegSpecs(name string) (Definition, error) {
	def, ok := definitions[name]
	if !ok {
		return Definition{}, apperrors.NewStrategyError(name)
	}
	if def.Leg2 != nil {
		leg2 := *def.Leg2
		def.Leg2 = &leg2
	}
	return def, nil
}

// Has reports whether name is in the catalog.
func Has(name string) bool {
	_, ok := definitions[name]
	return ok
}

// Names returns all strategy names in display order.
func Names() []string {
	names := make([]string, len(table))
	for i, entry := range table {
		names[i] = entry.name
	}
	return names
}

// Definitions returns every strategy definition in display order.
func Definitions() []Definition {
	defs := make([]Definition, 0, len(table))
	for _, name := range Names() {
		def, _ := LegSpecs(name)
		defs = append(defs, def)
	}
	return defs
}
