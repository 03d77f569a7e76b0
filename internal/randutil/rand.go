// Package randutil builds the seeded random sources used for deck shuffles.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Every shuffle in a table derives from one of these so a seed replays the
// same sequence of hands.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// TimeSeed returns a seed derived from the wall clock, for callers that did
// not ask for a deterministic run.
func TimeSeed() int64 {
	return time.Now().UnixNano()
}

// Derive returns a child seed for stream i of a parent seed, so independent
// tables driven from one run seed do not share a shuffle sequence.
func Derive(seed int64, i int) int64 {
	return int64(mix(uint64(seed) + uint64(i+1)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
