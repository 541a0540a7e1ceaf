package idealmemcontroller

import (
	"github.com/sarchlab/cachesim/mem"
	"github.com/sarchlab/cachesim/sim"
)

// A Builder can build ideal memory controllers.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	latency    int
	capacity   uint64
	topBufSize int
	storage    *mem.Storage
}

// MakeBuilder returns a new Builder
func MakeBuilder() Builder {
	return Builder{
		freq:       1 * sim.GHz,
		latency:    100,
		capacity:   4 * mem.GB,
		topBufSize: 16,
	}
}

// WithEngine sets the engine of the memory controller
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the memory controller
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLatency sets the latency of the memory controller in cycles
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// WithNewStorage sets the capacity of the memory controller
func (b Builder) WithNewStorage(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// WithTopBufSize sets the size of the incoming buffer of the top port
func (b Builder) WithTopBufSize(topBufSize int) Builder {
	b.topBufSize = topBufSize
	return b
}

// WithStorage sets the storage that keeps the memory content
func (b Builder) WithStorage(storage *mem.Storage) Builder {
	b.storage = storage
	return b
}

// Build builds a new Comp
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		Latency: b.latency,
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	if b.storage == nil {
		c.Storage = mem.NewStorage(b.capacity)
	} else {
		c.Storage = b.storage
	}

	c.topPort = sim.NewPort(c, b.topBufSize, b.topBufSize,
		sim.BuildName(name, "Top"))
	c.AddPort("Top", c.topPort)

	return c
}
