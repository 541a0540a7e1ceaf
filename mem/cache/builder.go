package cache

import (
	"github.com/sarchlab/cachesim/mem"
	"github.com/sarchlab/cachesim/sim"
)

// A Builder can build blocking caches.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq

	latency             int
	byteSize            uint64
	blockSize           int
	wayAssociativity    int
	replacementPolicy   string
	seed                int64
	numTopPorts         int
	addressToPortMapper mem.AddressToPortMapper
}

// MakeBuilder creates a new builder with default configurations.
func MakeBuilder() Builder {
	return Builder{
		freq:              1 * sim.GHz,
		latency:           1,
		byteSize:          16 * mem.KB,
		blockSize:         64,
		wayAssociativity:  0,
		replacementPolicy: "random",
		numTopPorts:       1,
	}
}

// WithEngine sets the engine that the cache uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the cache runs at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLatency sets the number of cycles between accepting a request and
// performing the tag lookup.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// WithByteSize sets the capacity of the cache.
func (b Builder) WithByteSize(byteSize uint64) Builder {
	b.byteSize = byteSize
	return b
}

// WithBlockSize sets the size of a cache line in bytes.
func (b Builder) WithBlockSize(blockSize int) Builder {
	b.blockSize = blockSize
	return b
}

// WithWayAssociativity sets the number of ways in each set. Passing 0 makes
// the cache fully associative.
func (b Builder) WithWayAssociativity(wayAssociativity int) Builder {
	b.wayAssociativity = wayAssociativity
	return b
}

// WithReplacementPolicy selects the eviction policy, either "random" or
// "lru".
func (b Builder) WithReplacementPolicy(policy string) Builder {
	b.replacementPolicy = policy
	return b
}

// WithSeed sets the seed of the random replacement policy.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithNumTopPorts sets the number of ports on the CPU side of the cache.
func (b Builder) WithNumTopPorts(numTopPorts int) Builder {
	b.numTopPorts = numTopPorts
	return b
}

// WithAddressToPortMapper sets the mapper that decides which port below
// serves each address.
func (b Builder) WithAddressToPortMapper(
	mapper mem.AddressToPortMapper,
) Builder {
	b.addressToPortMapper = mapper
	return b
}

// WithLowModule is a shortcut that makes all the addresses map to a single
// port below.
func (b Builder) WithLowModule(port sim.RemotePort) Builder {
	b.addressToPortMapper = &mem.SinglePortMapper{Port: port}
	return b
}

// Build creates a cache with the given name.
func (b Builder) Build(name string) *Comp {
	b.configMustBeValid()

	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(
		name, b.engine, b.freq, c)

	b.initState(c)
	b.createPorts(c, name)

	c.AddMiddleware(&middleware{Comp: c})

	return c
}

func (b Builder) configMustBeValid() {
	if b.engine == nil {
		panic("cache requires an engine")
	}

	if b.latency < 1 {
		panic("cache latency must be at least 1 cycle")
	}

	if b.blockSize <= 0 || b.blockSize&(b.blockSize-1) != 0 {
		panic("cache block size must be a positive power of 2")
	}

	if b.byteSize%uint64(b.blockSize) != 0 {
		panic("cache size must be a multiple of the block size")
	}

	if b.numTopPorts < 1 {
		panic("cache requires at least one top port")
	}

	if b.addressToPortMapper == nil {
		panic("cache requires an address-to-port mapper")
	}

	numWays := b.numWays()
	setSize := uint64(b.blockSize * numWays)
	if b.byteSize%setSize != 0 {
		panic("cache must have an integer number of sets")
	}
}

func (b Builder) numWays() int {
	if b.wayAssociativity == 0 {
		return int(b.byteSize / uint64(b.blockSize))
	}

	return b.wayAssociativity
}

func (b Builder) initState(c *Comp) {
	numWays := b.numWays()
	numSets := int(b.byteSize / uint64(b.blockSize*numWays))

	c.latency = b.latency
	c.blockSize = b.blockSize
	c.directory = NewDirectory(
		numSets, numWays, b.blockSize, b.createVictimFinder())
	c.storage = mem.NewStorage(b.byteSize)
	c.addressToPortMapper = b.addressToPortMapper
	c.state = cacheStateIdle
}

func (b Builder) createVictimFinder() VictimFinder {
	switch b.replacementPolicy {
	case "random":
		return NewRandomVictimFinder(b.seed)
	case "lru":
		return NewLRUVictimFinder()
	default:
		panic("unknown replacement policy: " + b.replacementPolicy)
	}
}

func (b Builder) createPorts(c *Comp, name string) {
	for i := 0; i < b.numTopPorts; i++ {
		portName := sim.BuildNameWithIndex(name, "Top", i)
		port := sim.NewPort(c, 4, 4, portName)

		c.topPorts = append(c.topPorts, port)
		c.AddPort(sim.BuildNameWithIndex("", "Top", i), port)
	}

	c.bottomPort = sim.NewPort(c, 4, 4, sim.BuildName(name, "Bottom"))
	c.AddPort("Bottom", c.bottomPort)
}
