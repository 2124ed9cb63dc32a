package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Roller produces a fresh pair of dice.
type Roller interface {
	Roll() Dice
}

// RandRoller rolls two independent uniform faces from a seeded source.
// Not safe for concurrent use.
type RandRoller struct {
	rng *rand.Rand
}

// NewRoller returns a RandRoller; the same seed yields the same sequence.
func NewRoller(seed int64) *RandRoller {
	return &RandRoller{rng: rand.New(rand.NewSource(seed))}
}

// Roll implements Roller.
func (r *RandRoller) Roll() Dice {
	return Dice{r.face(), r.face()}
}

func (r *RandRoller) face() int { return r.rng.Intn(MaxFace) + MinFace }

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
