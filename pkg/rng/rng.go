// Package rng provides the engine's deterministic random number generator.
//
// Every stochastic decision in the engine (go-to selection, check rolls,
// frequency-weighted choice sampling, card draws) routes through a Generator
// so that a saved game resumed from its serialized state replays the exact
// same stream of random numbers.
package rng

import (
	"fmt"
	"math"
	"sync"
	"time"
	"unicode/utf16"
)

// Generator is a five-word xorshift generator (Marsaglia, "Xorshift RNGs",
// Journal of Statistical Software 8(14), 2003). Its full internal state is
// five 32-bit words, all of which serialize into a save file.
type Generator struct {
	v, w, x, y, z uint32
}

// Initial word values before seeds are folded in. These must never be all
// zero or the generator degenerates.
const (
	initV = 886756453
	initW = 88675123
	initX = 123456789
	initY = 362436069
	initZ = 521288629
)

const twoPow32 = 4294967296.0

// FromSeeds builds a generator from a sequence of seed values. Each seed is
// hashed with a multiplicative string hash and XOR-folded into all five
// words. Seed order matters: [a, b] and [b, a] generally produce different
// streams.
func FromSeeds(seeds ...any) *Generator {
	g := &Generator{v: initV, w: initW, x: initX, y: initY, z: initZ}
	for _, seed := range seeds {
		h := uint32(hashSeed(fmt.Sprint(seed)) * twoPow32)
		g.v ^= h
		g.w ^= h
		g.x ^= h
		g.y ^= h
		g.z ^= h
	}
	return g
}

// FromState reconstructs a generator from a previously captured state.
// FromState(g.State()) continues g's output stream exactly.
func FromState(state [5]uint32) *Generator {
	return &Generator{v: state[0], w: state[1], x: state[2], y: state[3], z: state[4]}
}

// State returns the five internal words for serialization.
func (g *Generator) State() [5]uint32 {
	return [5]uint32{g.v, g.w, g.x, g.y, g.z}
}

// Uint32 advances the generator and returns the next 32-bit value.
func (g *Generator) Uint32() uint32 {
	t := g.x ^ (g.x >> 7)
	g.x = g.y
	g.y = g.z
	g.z = g.w
	g.w = g.v
	g.v = (g.v ^ (g.v << 6)) ^ (t ^ (t << 13))
	return (g.y + g.y + 1) * g.v
}

// Float64 returns the next value scaled into [0, 1).
func (g *Generator) Float64() float64 {
	return float64(g.Uint32()) * (1.0 / twoPow32)
}

// hashSeed is based on Mash 0.9 (MIT License): a multiplicative hash over
// UTF-16 code units producing a float in [0, 1). The float intermediate is
// deliberate; the arithmetic must match across platforms for replays of old
// saves to hold.
func hashSeed(data string) float64 {
	n := float64(0xefc8249d)
	for _, c := range utf16.Encode([]rune(data)) {
		n += float64(c)
		h := 0.02519603282416938 * n
		ni := toUint32(h)
		h -= float64(ni)
		h *= float64(ni)
		n2 := toUint32(h)
		h -= float64(n2)
		n = float64(n2) + h*twoPow32
	}
	return float64(toUint32(n)) * (1.0 / twoPow32)
}

// toUint32 truncates a non-negative float toward zero modulo 2^32, matching
// an unsigned 32-bit coercion.
func toUint32(f float64) uint32 {
	m := math.Mod(math.Trunc(f), twoPow32)
	if m < 0 {
		m += twoPow32
	}
	return uint32(m)
}

// UniqueSource produces generators with distinct streams even for calls
// within the same millisecond, by combining a clock with a monotonically
// increasing counter. The counter is explicit state rather than a package
// global so tests can inject a fixed clock.
type UniqueSource struct {
	mu   sync.Mutex
	now  func() time.Time
	next uint64
}

// NewUniqueSource returns a source using the given clock. A nil clock means
// time.Now.
func NewUniqueSource(now func() time.Time) *UniqueSource {
	if now == nil {
		now = time.Now
	}
	return &UniqueSource{now: now, next: 1}
}

// FromUnique returns a generator seeded from the clock and counter.
func (s *UniqueSource) FromUnique() *Generator {
	s.mu.Lock()
	n := s.next
	s.next++
	s.mu.Unlock()
	return FromSeeds(s.now().UnixMilli(), n)
}

var defaultUnique = NewUniqueSource(nil)

// FromUnique returns a generator from the process-wide unique source.
func FromUnique() *Generator {
	return defaultUnique.FromUnique()
}

// FromTime returns a generator seeded from the clock alone.
func FromTime() *Generator {
	return FromSeeds(time.Now().UnixMilli())
}
