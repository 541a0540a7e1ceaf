package cache

import "math/rand"

// A VictimFinder decides which block in a set should be evicted.
type VictimFinder interface {
	FindVictim(set *Set) *Block
}

// LRUVictimFinder evicts the least recently used block in a set.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed LRU victim finder.
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the least recently used block in a set. Invalid blocks
// are evicted before any valid block.
func (e *LRUVictimFinder) FindVictim(set *Set) *Block {
	for _, wayID := range set.LRUQueue {
		block := set.Blocks[wayID]
		if !block.IsValid {
			return block
		}
	}

	wayID := set.LRUQueue[0]

	return set.Blocks[wayID]
}

// RandomVictimFinder evicts a random block in a set. Invalid blocks are
// still preferred over valid blocks.
type RandomVictimFinder struct {
	rng *rand.Rand
}

// NewRandomVictimFinder returns a victim finder that picks victims with the
// given random seed.
func NewRandomVictimFinder(seed int64) *RandomVictimFinder {
	e := new(RandomVictimFinder)
	e.rng = rand.New(rand.NewSource(seed))

	return e
}

// FindVictim returns a random block in the set.
func (e *RandomVictimFinder) FindVictim(set *Set) *Block {
	for _, block := range set.Blocks {
		if !block.IsValid {
			return block
		}
	}

	wayID := e.rng.Intn(len(set.Blocks))

	return set.Blocks[wayID]
}
