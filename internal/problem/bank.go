package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
)

// ErrEmptyBank is returned when the question file holds no problems.
var ErrEmptyBank = errors.New("problem bank is empty")

// Bank holds the loaded question set and hands out random problems.
type Bank struct {
	problems []Problem
	rng      *rand.Rand
}

// NewBank wraps an already-loaded problem list. A nil rng falls back to
// the global source.
func NewBank(problems []Problem, rng *rand.Rand) (*Bank, error) {
	if len(problems) == 0 {
		return nil, ErrEmptyBank
	}
	return &Bank{problems: problems, rng: rng}, nil
}

// LoadBank reads a questions JSON file: a flat array of problems.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	var problems []Problem
	if err := json.Unmarshal(data, &problems); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}

	return NewBank(problems, nil)
}

// Random draws a uniformly random problem from the bank.
func (b *Bank) Random() *Problem {
	var idx int
	if b.rng != nil {
		idx = b.rng.Intn(len(b.problems))
	} else {
		idx = rand.Intn(len(b.problems))
	}
	p := b.problems[idx]
	return &p
}

// Len reports how many problems are loaded.
func (b *Bank) Len() int {
	return len(b.problems)
}
