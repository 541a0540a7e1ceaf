package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func makeSet(numWays int) *Set {
	set := &Set{}

	for i := 0; i < numWays; i++ {
		set.Blocks = append(set.Blocks, &Block{WayID: i})
		set.LRUQueue = append(set.LRUQueue, i)
	}

	return set
}

var _ = Describe("LRUVictimFinder", func() {
	var (
		set          *Set
		victimFinder *LRUVictimFinder
	)

	BeforeEach(func() {
		set = makeSet(4)
		victimFinder = NewLRUVictimFinder()
	})

	It("should prefer an invalid block", func() {
		set.Blocks[0].IsValid = true
		set.Blocks[1].IsValid = true

		victim := victimFinder.FindVictim(set)

		Expect(victim.IsValid).To(BeFalse())
	})

	It("should evict the least recently used block", func() {
		for _, block := range set.Blocks {
			block.IsValid = true
		}
		set.LRUQueue = []int{2, 0, 3, 1}

		victim := victimFinder.FindVictim(set)

		Expect(victim.WayID).To(Equal(2))
	})
})

var _ = Describe("RandomVictimFinder", func() {
	var (
		set          *Set
		victimFinder *RandomVictimFinder
	)

	BeforeEach(func() {
		set = makeSet(4)
		victimFinder = NewRandomVictimFinder(1)
	})

	It("should prefer an invalid block", func() {
		set.Blocks[0].IsValid = true

		victim := victimFinder.FindVictim(set)

		Expect(victim.IsValid).To(BeFalse())
	})

	It("should pick a valid block when the set is full", func() {
		for _, block := range set.Blocks {
			block.IsValid = true
		}

		victim := victimFinder.FindVictim(set)

		Expect(victim).NotTo(BeNil())
	})

	It("should pick the same sequence for the same seed", func() {
		for _, block := range set.Blocks {
			block.IsValid = true
		}

		other := NewRandomVictimFinder(1)
		for i := 0; i < 10; i++ {
			Expect(victimFinder.FindVictim(set).WayID).
				To(Equal(other.FindVictim(set).WayID))
		}
	})
})
