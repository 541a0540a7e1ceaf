// Package cache provides a blocking, single-level, set-associative,
// write-back cache component.
package cache

// A Block of a cache is the information that is associated with a cache line.
type Block struct {
	Tag          uint64
	SetID        int
	WayID        int
	CacheAddress uint64
	IsValid      bool
	IsDirty      bool
}

// A Set is a list of blocks where a certain piece of memory can be stored.
type Set struct {
	Blocks   []*Block
	LRUQueue []int
}
