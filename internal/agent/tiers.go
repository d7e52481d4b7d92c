package agent

import "math/big"

// Tier is one of the five autonomous-creation tiers in the policy
// table.
type Tier string

const (
	TierMicro  Tier = "MICRO"
	TierSmall  Tier = "SMALL"
	TierMedium Tier = "MEDIUM"
	TierLarge  Tier = "LARGE"
	TierWhale  Tier = "WHALE"
)

// Availability names when a tier is eligible for selection.
type Availability int

const (
	AlwaysAvailable Availability = iota
	PeakOnly
	PeakWithSmallFillTrigger // peak, cumulative SMALL fill rate >= 0.5
	WeekendPeakWithFillTrigger
)

// TierPolicy is one row of the bit-exact tier table.
type TierPolicy struct {
	Tier            Tier
	EntryFeeMin     *big.Int // inclusive
	EntryFeeMax     *big.Int // exclusive
	PlayerCounts    []int
	ProtocolFeeBps  int
	Availability    Availability
}

func pow10(exp int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil)
}

// TierTable is the policy table, expressed as a Go literal so it is
// bit-exact and test-seedable. The table is used verbatim rather than
// empirically reweighted at runtime.
var TierTable = []TierPolicy{
	{
		Tier:           TierMicro,
		EntryFeeMin:    pow10(15),
		EntryFeeMax:    pow10(16),
		PlayerCounts:   []int{4, 8, 16},
		ProtocolFeeBps: 200,
		Availability:   AlwaysAvailable,
	},
	{
		Tier:           TierSmall,
		EntryFeeMin:    pow10(16),
		EntryFeeMax:    pow10(17),
		PlayerCounts:   []int{4, 8, 16},
		ProtocolFeeBps: 250,
		Availability:   AlwaysAvailable,
	},
	{
		Tier:           TierMedium,
		EntryFeeMin:    pow10(17),
		EntryFeeMax:    pow10(18),
		PlayerCounts:   []int{4, 8},
		ProtocolFeeBps: 250,
		Availability:   PeakOnly,
	},
	{
		Tier:           TierLarge,
		EntryFeeMin:    pow10(18),
		EntryFeeMax:    pow10(19),
		PlayerCounts:   []int{4, 8},
		ProtocolFeeBps: 300,
		Availability:   PeakWithSmallFillTrigger,
	},
	{
		Tier:           TierWhale,
		EntryFeeMin:    pow10(19),
		EntryFeeMax:    nil, // unbounded above
		PlayerCounts:   []int{4},
		ProtocolFeeBps: 300,
		Availability:   WeekendPeakWithFillTrigger,
	},
}

// PolicyFor looks up a tier's table row.
func PolicyFor(t Tier) (TierPolicy, bool) {
	for _, p := range TierTable {
		if p.Tier == t {
			return p, true
		}
	}
	return TierPolicy{}, false
}
