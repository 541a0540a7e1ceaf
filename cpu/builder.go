package cpu

import (
	"math/rand"

	"github.com/sarchlab/cachesim/sim"
)

// A Builder can build processor models.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq

	instLowModule sim.RemotePort
	dataLowModule sim.RemotePort

	instPattern AccessPattern
	dataPattern AccessPattern

	numInstAccess int
	numDataAccess int
	writeRatio    float64
	seed          int64
}

// MakeBuilder creates a builder with default configurations.
func MakeBuilder() Builder {
	return Builder{
		freq:          1 * sim.GHz,
		numInstAccess: 1000,
		numDataAccess: 1000,
		writeRatio:    0.3,
	}
}

// WithEngine sets the engine that the processor uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the processor.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithInstLowModule sets the port that serves the instruction stream.
func (b Builder) WithInstLowModule(port sim.RemotePort) Builder {
	b.instLowModule = port
	return b
}

// WithDataLowModule sets the port that serves the data stream.
func (b Builder) WithDataLowModule(port sim.RemotePort) Builder {
	b.dataLowModule = port
	return b
}

// WithInstPattern sets the address pattern of the instruction stream.
func (b Builder) WithInstPattern(pattern AccessPattern) Builder {
	b.instPattern = pattern
	return b
}

// WithDataPattern sets the address pattern of the data stream.
func (b Builder) WithDataPattern(pattern AccessPattern) Builder {
	b.dataPattern = pattern
	return b
}

// WithNumInstAccess sets the number of accesses of the instruction stream.
func (b Builder) WithNumInstAccess(n int) Builder {
	b.numInstAccess = n
	return b
}

// WithNumDataAccess sets the number of accesses of the data stream.
func (b Builder) WithNumDataAccess(n int) Builder {
	b.numDataAccess = n
	return b
}

// WithWriteRatio sets the fraction of the data accesses that are writes.
func (b Builder) WithWriteRatio(ratio float64) Builder {
	b.writeRatio = ratio
	return b
}

// WithSeed sets the seed of the write decisions and the written values.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// Build creates a processor with the given name.
func (b Builder) Build(name string) *Comp {
	b.configMustBeValid()

	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.rng = rand.New(rand.NewSource(b.seed))
	c.knownValues = make(map[uint64]uint32)

	instPort := sim.NewPort(c, 1, 1, sim.BuildName(name, "Inst"))
	c.AddPort("Inst", instPort)
	c.instStream = &stream{
		port:       instPort,
		lowModule:  b.instLowModule,
		pattern:    b.instPattern,
		accessLeft: b.numInstAccess,
	}

	dataPort := sim.NewPort(c, 1, 1, sim.BuildName(name, "Data"))
	c.AddPort("Data", dataPort)
	c.dataStream = &stream{
		port:       dataPort,
		lowModule:  b.dataLowModule,
		pattern:    b.dataPattern,
		writeRatio: b.writeRatio,
		accessLeft: b.numDataAccess,
	}

	return c
}

func (b Builder) configMustBeValid() {
	if b.engine == nil {
		panic("cpu requires an engine")
	}

	if b.instPattern == nil || b.dataPattern == nil {
		panic("cpu requires an access pattern for each stream")
	}

	if b.instLowModule == "" || b.dataLowModule == "" {
		panic("cpu requires a low module for each stream")
	}

	if b.writeRatio < 0 || b.writeRatio > 1 {
		panic("write ratio must be in [0, 1]")
	}
}
