package agent

import (
	"math/big"
	"math/rand/v2"
	"time"
)

// TimeClass is the wall-clock classification used by tier eligibility.
type TimeClass struct {
	Peak    bool
	Weekend bool
}

// ClassifyTime implements "peak ∈ {peak_hours (14:00–23:00 UTC),
// off_peak}, weekend ∈ {yes, no}".
func ClassifyTime(now time.Time) TimeClass {
	u := now.UTC()
	hour := u.Hour()
	peak := hour >= 14 && hour < 23
	wd := u.Weekday()
	weekend := wd == time.Saturday || wd == time.Sunday
	return TimeClass{Peak: peak, Weekend: weekend}
}

// FillStats is the recent-fill-rate bookkeeping per tier the agent
// reads at the top of each cycle.
type FillStats struct {
	// Fills/Attempts are cumulative per-tier counts since NewFillStats;
	// they are not limited to a trailing time window.
	Fills    map[Tier]int
	Attempts map[Tier]int

	// ConsecutiveFailures drives the safety rail: a tier with >= 3
	// consecutive failed fills is paused for the next two cycles.
	ConsecutiveFailures map[Tier]int
	PausedCyclesLeft    map[Tier]int
}

// NewFillStats returns zeroed stats for every tier in TierTable.
func NewFillStats() *FillStats {
	fs := &FillStats{
		Fills:               make(map[Tier]int),
		Attempts:            make(map[Tier]int),
		ConsecutiveFailures: make(map[Tier]int),
		PausedCyclesLeft:    make(map[Tier]int),
	}
	for _, p := range TierTable {
		fs.Fills[p.Tier] = 0
		fs.Attempts[p.Tier] = 0
		fs.ConsecutiveFailures[p.Tier] = 0
		fs.PausedCyclesLeft[p.Tier] = 0
	}
	return fs
}

// FillRate returns fills/attempts for a tier, or 0 if no attempts yet.
func (fs *FillStats) FillRate(t Tier) float64 {
	a := fs.Attempts[t]
	if a == 0 {
		return 0
	}
	return float64(fs.Fills[t]) / float64(a)
}

// RecordFill adds one attempt (and, on success, one fill) to the tier's
// cumulative counts and resets the consecutive failure counter on
// success.
func (fs *FillStats) RecordFill(t Tier, filled bool) {
	fs.Attempts[t]++
	if filled {
		fs.Fills[t]++
		fs.ConsecutiveFailures[t] = 0
		return
	}
	fs.ConsecutiveFailures[t]++
	if fs.ConsecutiveFailures[t] >= 3 {
		fs.PausedCyclesLeft[t] = 2
	}
}

// TickCycle decrements any pause counters; call once per cycle, after
// that cycle's eligibility checks, so a tier paused with 2 cycles left
// is skipped by the next two cycles.
func (fs *FillStats) TickCycle() {
	for t, left := range fs.PausedCyclesLeft {
		if left > 0 {
			fs.PausedCyclesLeft[t] = left - 1
		}
	}
}

// eligible applies each tier's per-tier availability rule given the
// current time classification and fill-rate window.
func eligible(p TierPolicy, tc TimeClass, fs *FillStats) bool {
	if fs.PausedCyclesLeft[p.Tier] > 0 {
		return false
	}
	switch p.Availability {
	case AlwaysAvailable:
		return true
	case PeakOnly:
		return tc.Peak
	case PeakWithSmallFillTrigger:
		return tc.Peak && fs.FillRate(TierSmall) >= 0.5
	case WeekendPeakWithFillTrigger:
		return tc.Weekend && tc.Peak && fs.FillRate(TierWhale) >= 0.7
	default:
		return false
	}
}

// ChooseTier does weighted selection among eligible tiers, biased
// toward higher recent fill rate. Tiers with no
// attempts yet get a neutral weight of 1 so a cold start can still
// select them.
func ChooseTier(tc TimeClass, fs *FillStats, rng *rand.Rand) (Tier, bool) {
	type weighted struct {
		tier   Tier
		weight float64
	}
	var candidates []weighted
	total := 0.0
	for _, p := range TierTable {
		if !eligible(p, tc, fs) {
			continue
		}
		w := fs.FillRate(p.Tier)
		if fs.Attempts[p.Tier] == 0 {
			w = 1.0
		} else {
			w += 0.1 // keep a nonzero floor so a cold tier streak isn't locked out forever
		}
		candidates = append(candidates, weighted{tier: p.Tier, weight: w})
		total += w
	}
	if len(candidates) == 0 {
		return "", false
	}
	r := rng.Float64() * total
	acc := 0.0
	for _, c := range candidates {
		acc += c.weight
		if r <= acc {
			return c.tier, true
		}
	}
	return candidates[len(candidates)-1].tier, true
}

// SampleParams samples an entry fee and max player count from the
// chosen tier's range.
func SampleParams(p TierPolicy, rng *rand.Rand) (entryFee *big.Int, maxPlayers int) {
	maxPlayers = p.PlayerCounts[rng.IntN(len(p.PlayerCounts))]

	lo := p.EntryFeeMin
	var hi *big.Int
	if p.EntryFeeMax != nil {
		hi = p.EntryFeeMax
	} else {
		// WHALE has no upper bound; sample within a decade above its
		// floor so the value stays finite and plausible.
		hi = new(big.Int).Mul(lo, big.NewInt(10))
	}
	span := new(big.Int).Sub(hi, lo)
	if span.Sign() <= 0 {
		return new(big.Int).Set(lo), maxPlayers
	}
	// span rarely fits in a uint64 at WHALE scale; draw a random offset
	// via a big.Int bounded by span using the agent's own RNG as an
	// entropy source, not math/rand/v2's package-level big helpers
	// (which don't take a custom source).
	offset := randBigInt(rng, span)
	entryFee = new(big.Int).Add(lo, offset)
	return entryFee, maxPlayers
}

func randBigInt(rng *rand.Rand, max *big.Int) *big.Int {
	if max.Sign() <= 0 {
		return big.NewInt(0)
	}
	bits := max.BitLen()
	bytes := (bits + 7) / 8
	buf := make([]byte, bytes)
	for {
		for i := range buf {
			buf[i] = byte(rng.IntN(256))
		}
		candidate := new(big.Int).SetBytes(buf)
		if candidate.Cmp(max) < 0 {
			return candidate
		}
	}
}

// Decision is the outcome of one creation-cycle evaluation.
type Decision struct {
	Create bool
	Tier   Tier
	Reason string
}

const (
	minActive = 2
	maxActive = 5
)

// Decide runs the creation decision ladder.
func Decide(tc TimeClass, activeCount int, tier Tier, fillRate float64) Decision {
	if activeCount < minActive {
		return Decision{Create: true, Tier: tier, Reason: "active_count below minimum"}
	}
	if tc.Peak && activeCount < maxActive-1 {
		return Decision{Create: true, Tier: tier, Reason: "peak hours headroom"}
	}
	if fillRate >= 0.7 && activeCount < maxActive {
		return Decision{Create: true, Tier: tier, Reason: "tier confidence high"}
	}
	return Decision{Create: false, Tier: tier, Reason: "no trigger met"}
}

// NextTournamentAt computes the post-finalize countdown: now + a
// uniform 5-15 minute draw during peak hours, or 15-30 minutes off-peak.
func NextTournamentAt(now time.Time, tc TimeClass, rng *rand.Rand) time.Time {
	var lo, hi float64
	if tc.Peak {
		lo, hi = 5, 15
	} else {
		lo, hi = 15, 30
	}
	minutes := lo + rng.Float64()*(hi-lo)
	return now.Add(time.Duration(minutes * float64(time.Minute)))
}
