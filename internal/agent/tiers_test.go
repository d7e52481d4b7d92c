package agent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyFor_FindsEachTableRow(t *testing.T) {
	for _, tier := range []Tier{TierMicro, TierSmall, TierMedium, TierLarge, TierWhale} {
		p, ok := PolicyFor(tier)
		require.True(t, ok, "tier %s must be in the table", tier)
		require.Equal(t, tier, p.Tier)
	}
}

func TestPolicyFor_UnknownTierNotFound(t *testing.T) {
	_, ok := PolicyFor(Tier("NOT_A_TIER"))
	require.False(t, ok)
}

func TestTierTable_FeeRangesAreContiguousAndIncreasing(t *testing.T) {
	for i := 1; i < len(TierTable); i++ {
		prev := TierTable[i-1]
		cur := TierTable[i]
		require.NotNil(t, prev.EntryFeeMax, "only the final tier may be unbounded above")
		require.Equal(t, 0, prev.EntryFeeMax.Cmp(cur.EntryFeeMin),
			"%s max must equal %s min so the fee ranges tile without gaps or overlap", prev.Tier, cur.Tier)
	}
	require.Nil(t, TierTable[len(TierTable)-1].EntryFeeMax, "WHALE is unbounded above")
}
