package eq

import "fmt"

// Bank holds one Equalizer per profile key.
type Bank[K comparable] struct {
	blockSize int
	eqs       map[K]*Equalizer
}

// NewBank returns an empty bank for blocks of blockSize frames.
func NewBank[K comparable](blockSize int) *Bank[K] {
	return &Bank[K]{blockSize: blockSize, eqs: make(map[K]*Equalizer)}
}

// Add builds an equalizer for ir under key, replacing any previous one.
func (b *Bank[K]) Add(key K, ir []float32) error {
	e, err := NewEqualizer(b.blockSize, ir)
	if err != nil {
		return fmt.Errorf("eq: profile %v: %w", key, err)
	}
	b.eqs[key] = e
	return nil
}

// Has reports whether key has an equalizer.
func (b *Bank[K]) Has(key K) bool {
	_, ok := b.eqs[key]
	return ok
}

// Len returns the number of loaded profiles.
func (b *Bank[K]) Len() int { return len(b.eqs) }

// Process runs the equalizer for key over stereo in place. Keys without an
// equalizer leave stereo untouched.
func (b *Bank[K]) Process(key K, stereo []float32) {
	if e, ok := b.eqs[key]; ok {
		e.Process(stereo)
	}
}
