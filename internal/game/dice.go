package game

import (
	"math/rand"
	"time"
)

// DieRoller produces a d6 result in 1..6. Injected so word generation
// is reproducible under test.
type DieRoller func() int

// NewDieRoller returns a time-seeded d6.
func NewDieRoller() DieRoller {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func() int { return rng.Intn(6) + 1 }
}

// GenerateWord rolls a candidate word from an ordered vowel set: one
// d6 halved rounding up gives the letter count (1..3), then one die per
// letter indexes the vowel list. Pure given a fixed die sequence.
func GenerateWord(vowels []string, roll DieRoller) (string, error) {
	if len(vowels) != vowelCount {
		return "", ErrInvalidVowels
	}
	first := roll()
	if first < 1 || first > 6 {
		return "", ErrInvalidInput
	}
	count := (first + 1) / 2
	word := ""
	for i := 0; i < count; i++ {
		result := roll()
		if result < 1 || result > 6 {
			return "", ErrInvalidInput
		}
		word += vowels[result-1]
	}
	return word, nil
}
