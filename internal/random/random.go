package random

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// DefaultSeed is used when a room is created without an explicit seed.
const DefaultSeed = "horde-hunt"

// Source is the subset of *rand.Rand the simulation draws from. Tests substitute
// a Sequence to pin individual rolls.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// SeedValue derives a stable int64 seed from a root seed and a subsystem label.
func SeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// New returns a deterministic RNG for the provided root seed and label.
func New(rootSeed, label string) *rand.Rand {
	if rootSeed == "" {
		rootSeed = DefaultSeed
	}
	return rand.New(rand.NewSource(SeedValue(rootSeed, label)))
}

// Angle returns a uniform angle in [0, 2π).
func Angle(src Source) float64 {
	return src.Float64() * 2 * math.Pi
}

// Between returns a uniform value in [min, max).
func Between(src Source, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + src.Float64()*(max-min)
}

// IntBetween returns a uniform integer in [min, max].
func IntBetween(src Source, min, max int) int {
	if max <= min {
		return min
	}
	return min + src.Intn(max-min+1)
}

// Chance reports whether a single uniform draw lands below p.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Jitter returns a uniform value in [-magnitude, magnitude).
func Jitter(src Source, magnitude float64) float64 {
	if magnitude == 0 {
		return 0
	}
	return (src.Float64()*2 - 1) * magnitude
}

// Sequence replays a fixed list of floats. Intn derives its result from the next
// float so a single list drives both call shapes. The list wraps around.
type Sequence struct {
	Values []float64
	next   int
}

// NewSequence constructs a replaying source.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{Values: values}
}

func (s *Sequence) Float64() float64 {
	if s == nil || len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(s.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}
