package mem

// Capacity units.
const (
	B uint64 = 1 << (10 * iota)
	KB
	MB
	GB
)
