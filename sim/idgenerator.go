package sim

import (
	"strconv"
	"sync/atomic"
)

// An IDGenerator hands out unique IDs for messages and events.
type IDGenerator interface {
	Generate() string
}

var nextID uint64

type sequentialIDGenerator struct{}

func (sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&nextID, 1), 10)
}

// GetIDGenerator returns the process-wide ID generator. IDs are handed out
// sequentially, so two runs of the same experiment see the same IDs.
func GetIDGenerator() IDGenerator {
	return sequentialIDGenerator{}
}
