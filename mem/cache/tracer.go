package cache

import (
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem"
	"github.com/sarchlab/cachesim/sim"
)

type accessEntry struct {
	Time    float64
	Address uint64
	Kind    string
	Outcome string
}

// An AccessTracer is a hook that records the outcome of every cache access
// into a data recorder.
type AccessTracer struct {
	recorder   datarecording.DataRecorder
	timeTeller sim.TimeTeller
}

// NewAccessTracer creates a tracer that writes into the "cache_access"
// table of the recorder.
func NewAccessTracer(
	recorder datarecording.DataRecorder,
	timeTeller sim.TimeTeller,
) *AccessTracer {
	recorder.CreateTable("cache_access", accessEntry{})

	return &AccessTracer{
		recorder:   recorder,
		timeTeller: timeTeller,
	}
}

// Func records one access outcome.
func (t *AccessTracer) Func(ctx sim.HookCtx) {
	var outcome string

	switch ctx.Pos {
	case HookPosCacheHit:
		outcome = "hit"
	case HookPosCacheMiss:
		outcome = "miss"
	case HookPosCacheWriteback:
		outcome = "writeback"
	default:
		return
	}

	req := ctx.Item.(mem.AccessReq)

	kind := "read"
	if _, isWrite := req.(*mem.WriteReq); isWrite {
		kind = "write"
	}

	t.recorder.InsertData("cache_access", accessEntry{
		Time:    float64(t.timeTeller.CurrentTime()),
		Address: req.GetAddress(),
		Kind:    kind,
		Outcome: outcome,
	})
}
