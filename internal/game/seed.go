package game

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// domainSeparatedHash hashes a fixed domain string, then length-prefixed
// fields, so no two differently-shaped inputs can collide by
// concatenation ambiguity. (The signer's canonical digest in
// internal/signer/digest.go is domain-separated too, but through EIP-712
// type hashes and fixed 32-byte words rather than length prefixes.)
func domainSeparatedHash(domain string, fields ...[]byte) [32]byte {
	h := sha256.New()
	writeLenPrefixed(h, []byte(domain))
	for _, f := range fields {
		writeLenPrefixed(h, f)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeLenPrefixed(h interface{ Write([]byte) (int, error) }, b []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	h.Write(lenBuf[:])
	h.Write(b)
}

// DeriveGameSeed derives the top-level game seed once, at game
// creation, from (arenaID, createdAt, gameType). Per-round sub-seeds
// are then derived from that seed plus the round number (see
// RoundSeed), so a replay needs only the top-level seed and the
// recorded move stream to reproduce every round.
func DeriveGameSeed(arenaID string, createdAt time.Time, gameType Type) [32]byte {
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(createdAt.UnixNano()))
	return domainSeparatedHash("clawarena/v1/game-seed",
		[]byte(arenaID),
		tsBuf[:],
		[]byte(gameType),
	)
}

// RoundSeed derives a per-round sub-seed so each round's randomness
// (prediction's target, speed's challenge selection, blackjack's shoe) is
// independent yet fully determined by the game seed and round number.
func RoundSeed(gameSeed [32]byte, round int) [32]byte {
	var roundBuf [4]byte
	binary.BigEndian.PutUint32(roundBuf[:], uint32(round))
	return domainSeparatedHash("clawarena/v1/round-seed", gameSeed[:], roundBuf[:])
}

// NewRNG builds a deterministic math/rand/v2 source from a 32-byte
// seed. ChaCha8 is math/rand/v2's only seedable, reproducible-across-
// versions generator, which is what makes auto-play and replay
// reproducible from a documented seed derivation.
func NewRNG(seed [32]byte) *rand.Rand {
	return rand.New(rand.NewChaCha8(seed))
}
