package cache

// A Directory stores the information about what is stored in the cache.
//
// The directory translates from the request address to the cache-internal
// address where the block data is kept.
type Directory interface {
	// Lookup finds the block that stores the data at the given address. It
	// returns nil if the address is not in the cache.
	Lookup(address uint64) *Block

	// FindVictim returns a block that can hold the data at the given
	// address, evicting the current content if necessary.
	FindVictim(address uint64) *Block

	// Visit updates the eviction information, marking the block as the most
	// recently used one in its set.
	Visit(block *Block)

	// BlockAddress returns the address of the first byte that a block
	// currently holds.
	BlockAddress(block *Block) uint64

	// Tag returns the tag that identifies the line at the given address
	// within its set.
	Tag(address uint64) uint64

	// TotalSize returns the maximum number of bytes that the cache can hold.
	TotalSize() uint64

	// WayAssociativity returns the number of ways in each set.
	WayAssociativity() int

	// Reset invalidates all the blocks in the directory.
	Reset()
}

// NewDirectory creates a directory with the given geometry.
func NewDirectory(
	numSets, numWays, blockSize int,
	victimFinder VictimFinder,
) Directory {
	d := &directoryImpl{
		numSets:      numSets,
		numWays:      numWays,
		blockSize:    blockSize,
		victimFinder: victimFinder,
	}

	d.Reset()

	return d
}

type directoryImpl struct {
	numSets   int
	numWays   int
	blockSize int

	sets         []Set
	victimFinder VictimFinder
}

func (d *directoryImpl) getSet(address uint64) (set *Set, setID int) {
	setID = int(address / uint64(d.blockSize) % uint64(d.numSets))
	set = &d.sets[setID]

	return
}

// Tag returns the tag bits of the given address.
func (d *directoryImpl) Tag(address uint64) uint64 {
	return address / uint64(d.blockSize) / uint64(d.numSets)
}

// Lookup finds the valid block with a matching tag in the set that the
// address maps to.
func (d *directoryImpl) Lookup(address uint64) *Block {
	set, _ := d.getSet(address)
	tag := d.Tag(address)

	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == tag {
			return block
		}
	}

	return nil
}

// FindVictim lets the victim finder pick a block in the set that the address
// maps to.
func (d *directoryImpl) FindVictim(address uint64) *Block {
	set, _ := d.getSet(address)

	return d.victimFinder.FindVictim(set)
}

// Visit moves the block to the end of the LRU queue of its set.
func (d *directoryImpl) Visit(block *Block) {
	set := &d.sets[block.SetID]

	for i, wayID := range set.LRUQueue {
		if wayID == block.WayID {
			set.LRUQueue = append(set.LRUQueue[:i], set.LRUQueue[i+1:]...)
			break
		}
	}

	set.LRUQueue = append(set.LRUQueue, block.WayID)
}

// BlockAddress reconstructs the address of the data that the block holds.
func (d *directoryImpl) BlockAddress(block *Block) uint64 {
	return (block.Tag*uint64(d.numSets) + uint64(block.SetID)) *
		uint64(d.blockSize)
}

// TotalSize returns the capacity of the cache in bytes.
func (d *directoryImpl) TotalSize() uint64 {
	return uint64(d.numSets) * uint64(d.numWays) * uint64(d.blockSize)
}

// WayAssociativity returns the number of ways in each set.
func (d *directoryImpl) WayAssociativity() int {
	return d.numWays
}

// Reset invalidates all the blocks.
func (d *directoryImpl) Reset() {
	d.sets = make([]Set, d.numSets)

	for i := 0; i < d.numSets; i++ {
		set := &d.sets[i]
		set.Blocks = make([]*Block, 0, d.numWays)
		set.LRUQueue = make([]int, 0, d.numWays)

		for j := 0; j < d.numWays; j++ {
			block := &Block{
				SetID: i,
				WayID: j,
				CacheAddress: uint64(i)*uint64(d.numWays*d.blockSize) +
					uint64(j)*uint64(d.blockSize),
			}

			set.Blocks = append(set.Blocks, block)
			set.LRUQueue = append(set.LRUQueue, j)
		}
	}
}
