// Package tier maps a live value (valuation or cumulative volume) onto one of
// eight fixed tiers.
package tier

import (
	"errors"
	"fmt"

	"safepump/native/common"
)

// Size is the number of tiers in every ladder.
const Size = 8

// Rule selects how a value that sits between thresholds resolves to a tier.
type Rule uint8

const (
	// RuleHighestAtOrBelow picks the highest index whose threshold is <= the
	// value, defaulting to 0. The result is monotonic in the value.
	RuleHighestAtOrBelow Rule = iota
	// RuleFirstAtOrBelow scans ascending and picks the first index whose
	// threshold is <= the value, defaulting to the top index. Kept for the
	// call sites that have always resolved tiers this way.
	RuleFirstAtOrBelow
)

func (r Rule) String() string {
	switch r {
	case RuleHighestAtOrBelow:
		return "highest-at-or-below"
	case RuleFirstAtOrBelow:
		return "first-at-or-below"
	default:
		return fmt.Sprintf("rule(%d)", uint8(r))
	}
}

var errUnsortedLadder = errors.New("tier: thresholds must be strictly ascending")

// Ladder pairs eight ascending thresholds with the values granted at each tier.
type Ladder struct {
	Thresholds [Size]uint64
	Values     [Size]uint64
	Rule       Rule
}

// Validate checks that thresholds ascend strictly.
func (l Ladder) Validate() error {
	for i := 1; i < Size; i++ {
		if l.Thresholds[i] <= l.Thresholds[i-1] {
			return fmt.Errorf("%w: index %d", errUnsortedLadder, i)
		}
	}
	return nil
}

// Index resolves value to a tier index according to the ladder's rule.
func (l Ladder) Index(value uint64) int {
	if l.Rule == RuleFirstAtOrBelow {
		for i, threshold := range l.Thresholds {
			if threshold <= value {
				return i
			}
		}
		return Size - 1
	}
	idx := 0
	for i, threshold := range l.Thresholds {
		if threshold <= value {
			idx = i
		}
	}
	return idx
}

// Lookup returns the tier value granted for value.
func (l Ladder) Lookup(value uint64) uint64 {
	return l.Values[l.Index(value)]
}

// Valuation returns reserveSOL * totalSupply / reserveTokens, or zero when no
// tokens are in reserve.
func Valuation(reserveSOL, totalSupply, reserveTokens uint64) (uint64, error) {
	if reserveTokens == 0 {
		return 0, nil
	}
	return common.MulDiv(reserveSOL, totalSupply, reserveTokens)
}
