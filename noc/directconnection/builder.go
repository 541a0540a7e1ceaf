package directconnection

import "github.com/sarchlab/cachesim/sim"

// Builder can build direct connections.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
}

// MakeBuilder creates a new builder
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine that the connection uses
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the connection ticks at
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// Build creates a new DirectConnection
func (b Builder) Build(name string) *Comp {
	c := &Comp{}
	c.TickingComponent = sim.NewSecondaryTickingComponent(
		name, b.engine, b.freq, c)
	c.ports = ports{
		portMap: make(map[sim.RemotePort]int),
	}

	c.AddMiddleware(&middleware{Comp: c})

	return c
}
