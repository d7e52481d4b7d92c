package agent

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestClassifyTime_PeakWindow(t *testing.T) {
	peak := time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC)
	offPeak := time.Date(2026, 3, 5, 6, 0, 0, 0, time.UTC)

	require.True(t, ClassifyTime(peak).Peak)
	require.False(t, ClassifyTime(offPeak).Peak)
}

func TestClassifyTime_WeekendDetection(t *testing.T) {
	saturday := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC) // a Saturday
	wednesday := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	require.True(t, ClassifyTime(saturday).Weekend)
	require.False(t, ClassifyTime(wednesday).Weekend)
}

func TestFillStats_RecordFillTracksRateAndResetsOnSuccess(t *testing.T) {
	fs := NewFillStats()
	fs.RecordFill(TierSmall, true)
	fs.RecordFill(TierSmall, true)
	fs.RecordFill(TierSmall, false)
	require.InDelta(t, 2.0/3.0, fs.FillRate(TierSmall), 1e-9)

	fs.RecordFill(TierSmall, true)
	require.Equal(t, 0, fs.ConsecutiveFailures[TierSmall])
}

func TestFillStats_ThreeConsecutiveFailuresPausesTwoCycles(t *testing.T) {
	fs := NewFillStats()
	fs.RecordFill(TierMicro, false)
	fs.RecordFill(TierMicro, false)
	require.Equal(t, 0, fs.PausedCyclesLeft[TierMicro])
	fs.RecordFill(TierMicro, false)
	require.Equal(t, 2, fs.PausedCyclesLeft[TierMicro])

	fs.TickCycle()
	require.Equal(t, 1, fs.PausedCyclesLeft[TierMicro])
	fs.TickCycle()
	require.Equal(t, 0, fs.PausedCyclesLeft[TierMicro])
}

func TestEligible_MicroAndSmallAlwaysAvailable(t *testing.T) {
	fs := NewFillStats()
	offPeak := TimeClass{Peak: false, Weekend: false}
	microPolicy, _ := PolicyFor(TierMicro)
	smallPolicy, _ := PolicyFor(TierSmall)
	require.True(t, eligible(microPolicy, offPeak, fs))
	require.True(t, eligible(smallPolicy, offPeak, fs))
}

func TestEligible_MediumRequiresPeak(t *testing.T) {
	fs := NewFillStats()
	mediumPolicy, _ := PolicyFor(TierMedium)
	require.False(t, eligible(mediumPolicy, TimeClass{Peak: false}, fs))
	require.True(t, eligible(mediumPolicy, TimeClass{Peak: true}, fs))
}

func TestEligible_LargeRequiresPeakAndSmallFillTrigger(t *testing.T) {
	fs := NewFillStats()
	largePolicy, _ := PolicyFor(TierLarge)
	require.False(t, eligible(largePolicy, TimeClass{Peak: true}, fs), "no small-tier attempts yet")

	for i := 0; i < 10; i++ {
		fs.RecordFill(TierSmall, true)
	}
	require.True(t, eligible(largePolicy, TimeClass{Peak: true}, fs))
	require.False(t, eligible(largePolicy, TimeClass{Peak: false}, fs), "still requires peak")
}

func TestEligible_WhaleRequiresWeekendPeakAndHighWhaleFillRate(t *testing.T) {
	fs := NewFillStats()
	whalePolicy, _ := PolicyFor(TierWhale)
	tc := TimeClass{Peak: true, Weekend: true}
	require.False(t, eligible(whalePolicy, tc, fs), "no whale attempts yet")

	for i := 0; i < 10; i++ {
		fs.RecordFill(TierWhale, true)
	}
	require.True(t, eligible(whalePolicy, tc, fs))
	require.False(t, eligible(whalePolicy, TimeClass{Peak: true, Weekend: false}, fs))
}

func TestEligible_PausedTierIsNeverEligible(t *testing.T) {
	fs := NewFillStats()
	fs.PausedCyclesLeft[TierMicro] = 1
	microPolicy, _ := PolicyFor(TierMicro)
	require.False(t, eligible(microPolicy, TimeClass{}, fs))
}

func TestChooseTier_ReturnsFalseWhenNoTierEligible(t *testing.T) {
	fs := NewFillStats()
	for _, p := range TierTable {
		fs.PausedCyclesLeft[p.Tier] = 1
	}
	_, ok := ChooseTier(TimeClass{}, fs, fixedRNG(1))
	require.False(t, ok)
}

func TestChooseTier_OffPeakOnlySelectsAlwaysAvailableTiers(t *testing.T) {
	fs := NewFillStats()
	tc := TimeClass{Peak: false, Weekend: false}
	for i := 0; i < 50; i++ {
		tier, ok := ChooseTier(tc, fs, fixedRNG(uint64(i)))
		require.True(t, ok)
		require.Contains(t, []Tier{TierMicro, TierSmall}, tier)
	}
}

func TestChooseTier_IsDeterministicForAFixedRNGStream(t *testing.T) {
	fs := NewFillStats()
	tc := TimeClass{Peak: false}
	a, okA := ChooseTier(tc, fs, fixedRNG(42))
	b, okB := ChooseTier(tc, fs, fixedRNG(42))
	require.True(t, okA)
	require.True(t, okB)
	require.Equal(t, a, b)
}

func TestSampleParams_MaxPlayersComesFromTable(t *testing.T) {
	p, _ := PolicyFor(TierMicro)
	rng := fixedRNG(7)
	for i := 0; i < 20; i++ {
		_, maxPlayers := SampleParams(p, rng)
		require.Contains(t, p.PlayerCounts, maxPlayers)
	}
}

func TestSampleParams_EntryFeeWithinBoundedTierRange(t *testing.T) {
	p, _ := PolicyFor(TierSmall)
	rng := fixedRNG(9)
	for i := 0; i < 50; i++ {
		fee, _ := SampleParams(p, rng)
		require.True(t, fee.Cmp(p.EntryFeeMin) >= 0)
		require.True(t, fee.Cmp(p.EntryFeeMax) < 0)
	}
}

func TestSampleParams_WhaleEntryFeeStaysAboveFloor(t *testing.T) {
	p, _ := PolicyFor(TierWhale)
	rng := fixedRNG(11)
	for i := 0; i < 50; i++ {
		fee, maxPlayers := SampleParams(p, rng)
		require.True(t, fee.Cmp(p.EntryFeeMin) >= 0)
		require.Equal(t, 4, maxPlayers)
	}
}

func TestDecide_CreatesWhenBelowMinimumActive(t *testing.T) {
	d := Decide(TimeClass{}, 1, TierMicro, 0)
	require.True(t, d.Create)
}

func TestDecide_CreatesDuringPeakHeadroom(t *testing.T) {
	d := Decide(TimeClass{Peak: true}, 3, TierMicro, 0)
	require.True(t, d.Create)
}

func TestDecide_CreatesOnHighTierConfidence(t *testing.T) {
	d := Decide(TimeClass{Peak: false}, 4, TierMicro, 0.8)
	require.True(t, d.Create)
}

func TestDecide_DoesNotCreateWhenNoTriggerMet(t *testing.T) {
	d := Decide(TimeClass{Peak: false}, 4, TierMicro, 0.2)
	require.False(t, d.Create)
}

func TestDecide_DoesNotExceedMaxActiveEvenWithHighConfidence(t *testing.T) {
	d := Decide(TimeClass{Peak: false}, maxActive, TierMicro, 0.99)
	require.False(t, d.Create)
}

func TestNextTournamentAt_PeakWindowIsFiveToFifteenMinutes(t *testing.T) {
	now := time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC)
	tc := TimeClass{Peak: true}
	for i := 0; i < 50; i++ {
		next := NextTournamentAt(now, tc, fixedRNG(uint64(i)))
		delta := next.Sub(now)
		require.True(t, delta >= 5*time.Minute && delta <= 15*time.Minute, "delta=%s", delta)
	}
}

func TestNextTournamentAt_OffPeakWindowIsFifteenToThirtyMinutes(t *testing.T) {
	now := time.Date(2026, 3, 5, 3, 0, 0, 0, time.UTC)
	tc := TimeClass{Peak: false}
	for i := 0; i < 50; i++ {
		next := NextTournamentAt(now, tc, fixedRNG(uint64(i)))
		delta := next.Sub(now)
		require.True(t, delta >= 15*time.Minute && delta <= 30*time.Minute, "delta=%s", delta)
	}
}
