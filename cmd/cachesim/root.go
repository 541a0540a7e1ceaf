package main

import (
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/cpu"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/idealmemcontroller"
	"github.com/sarchlab/cachesim/noc/directconnection"
	"github.com/sarchlab/cachesim/sim"
)

var (
	cacheSizeFlag     uint64
	cacheLatencyFlag  int
	blockSizeFlag     int
	associativityFlag int
	algorithmFlag     string
	memLatencyFlag    int
	numAccessFlag     int
	patternFlag       string
	writeRatioFlag    float64
	maxAddressFlag    uint64
	seedFlag          int64
	verboseFlag       bool
	outputFlag        string
)

var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "Cachesim runs a timing experiment on a single-level blocking cache",
	Long: `Cachesim builds a small system out of a CPU agent, a write-back
cache, and an ideal memory controller, and runs a synthetic workload through
it. The CPU issues instruction fetches and data accesses at the same time, so
the two streams compete for the single cache.`,
	Run: func(cmd *cobra.Command, args []string) {
		runExperiment()
	},
}

// Execute runs the root command and flushes all the registered exit handlers
// afterwards.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logrus.Error(err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func init() {
	rootCmd.PersistentFlags().Uint64Var(&cacheSizeFlag,
		"size", 16*mem.KB, "Capacity of the cache in bytes")
	rootCmd.PersistentFlags().IntVar(&cacheLatencyFlag,
		"latency", 1, "Number of cycles a tag lookup takes")
	rootCmd.PersistentFlags().IntVar(&blockSizeFlag,
		"block-size", 64, "Size of a cache line in bytes, must be a power of 2")
	rootCmd.PersistentFlags().IntVar(&associativityFlag,
		"associativity", 8, "Number of ways per set, 0 for fully associative")
	rootCmd.PersistentFlags().StringVar(&algorithmFlag,
		"algorithm", "lru", `Replacement policy, "lru" or "random"`)
	rootCmd.PersistentFlags().IntVar(&memLatencyFlag,
		"mem-latency", 100, "Number of cycles the memory below takes")
	rootCmd.PersistentFlags().IntVar(&numAccessFlag,
		"num-access", 10000, "Number of data accesses the CPU issues")
	rootCmd.PersistentFlags().StringVar(&patternFlag,
		"pattern", "workingset",
		`Data access pattern, "random", "scan", or "workingset"`)
	rootCmd.PersistentFlags().Float64Var(&writeRatioFlag,
		"write-ratio", 0.3, "Fraction of the data accesses that are writes")
	rootCmd.PersistentFlags().Uint64Var(&maxAddressFlag,
		"max-address", 1*mem.MB, "Upper bound of the data addresses")
	rootCmd.PersistentFlags().Int64Var(&seedFlag,
		"seed", 0, "Seed of the random number generators")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag,
		"verbose", false, "Print debug-level log messages")
	rootCmd.PersistentFlags().StringVar(&outputFlag,
		"output", "",
		"Path of the SQLite database to write the results to, "+
			"defaults to $CACHESIM_OUTPUT")
}

func runExperiment() {
	configureLogging()

	engine := sim.NewSerialEngine()
	if verboseFlag {
		eventLogger := sim.NewEventLogger(
			log.New(logrus.StandardLogger().Writer(), "", 0))
		engine.AcceptHook(eventLogger)
	}

	cacheComp, cpuComp := buildSystem(engine)
	recorder := setupRecording(engine, cacheComp)

	engine.RegisterSimulationEndHandler(&statsReporter{
		cacheComp: cacheComp,
		cpuComp:   cpuComp,
		recorder:  recorder,
	})

	cpuComp.TickLater()

	err := engine.Run()
	if err != nil {
		logrus.WithError(err).Fatal("simulation failed")
	}

	engine.Finished()
}

func configureLogging() {
	err := godotenv.Load()
	if err != nil {
		logrus.Debug("no .env file found, using defaults")
	}

	if verboseFlag {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if outputFlag == "" {
		outputFlag = os.Getenv("CACHESIM_OUTPUT")
	}

	logrus.WithFields(logrus.Fields{
		"size":          cacheSizeFlag,
		"latency":       cacheLatencyFlag,
		"block_size":    blockSizeFlag,
		"associativity": associativityFlag,
		"algorithm":     algorithmFlag,
		"pattern":       patternFlag,
		"num_access":    numAccessFlag,
	}).Debug("experiment configuration")
}

func buildSystem(engine sim.Engine) (*cache.Comp, *cpu.Comp) {
	memCtrl := idealmemcontroller.MakeBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithLatency(memLatencyFlag).
		WithNewStorage(4 * mem.MB).
		Build("MemCtrl")

	cacheComp := cache.MakeBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithLatency(cacheLatencyFlag).
		WithByteSize(cacheSizeFlag).
		WithBlockSize(blockSizeFlag).
		WithWayAssociativity(associativityFlag).
		WithReplacementPolicy(algorithmFlag).
		WithSeed(seedFlag).
		WithNumTopPorts(2).
		WithLowModule(memCtrl.GetPortByName("Top").AsRemote()).
		Build("Cache")

	cpuComp := cpu.MakeBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithInstLowModule(cacheComp.GetPortByName("Top[0]").AsRemote()).
		WithDataLowModule(cacheComp.GetPortByName("Top[1]").AsRemote()).
		WithInstPattern(instPattern()).
		WithDataPattern(dataPattern()).
		WithNumInstAccess(numAccessFlag).
		WithNumDataAccess(numAccessFlag).
		WithWriteRatio(writeRatioFlag).
		WithSeed(seedFlag).
		Build("CPU")

	conn := directconnection.MakeBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Conn")
	conn.PlugIn(cpuComp.GetPortByName("Inst"))
	conn.PlugIn(cpuComp.GetPortByName("Data"))
	conn.PlugIn(cacheComp.GetPortByName("Top[0]"))
	conn.PlugIn(cacheComp.GetPortByName("Top[1]"))
	conn.PlugIn(cacheComp.GetPortByName("Bottom"))
	conn.PlugIn(memCtrl.GetPortByName("Top"))

	return cacheComp, cpuComp
}

// The instruction stream scans a region disjoint from the data addresses, so
// the two streams never write over each other.
const (
	instRegionLo = 2 * mem.MB
	instRegionHi = 2*mem.MB + 64*mem.KB
)

func instPattern() cpu.AccessPattern {
	return cpu.NewScanPattern(instRegionLo, instRegionHi, 4)
}

func dataPattern() cpu.AccessPattern {
	if maxAddressFlag > instRegionLo {
		logrus.Fatalf("max-address must not exceed %d", instRegionLo)
	}

	switch patternFlag {
	case "random":
		return cpu.NewRandomPattern(0, maxAddressFlag, seedFlag)
	case "scan":
		return cpu.NewScanPattern(0, maxAddressFlag, 4)
	case "workingset":
		return cpu.NewWorkingSetPattern(0, maxAddressFlag, seedFlag)
	default:
		logrus.Fatalf("unknown access pattern %s", patternFlag)
		return nil
	}
}

func setupRecording(
	engine sim.Engine,
	cacheComp *cache.Comp,
) datarecording.DataRecorder {
	if outputFlag == "" {
		return nil
	}

	recorder := datarecording.New(outputFlag)
	tracer := cache.NewAccessTracer(recorder, engine)
	cacheComp.AcceptHook(tracer)

	return recorder
}

type statsEntry struct {
	CacheSize      uint64
	Associativity  int
	Algorithm      string
	Pattern        string
	NumAccess      int
	Hits           uint64
	Misses         uint64
	Writebacks     uint64
	HitRatio       float64
	AvgMissLatency float64
	SimulatedTime  float64
}

// statsReporter prints and records the experiment results after the last
// event is processed.
type statsReporter struct {
	cacheComp *cache.Comp
	cpuComp   *cpu.Comp
	recorder  datarecording.DataRecorder
}

func (r *statsReporter) Handle(now sim.VTimeInSec) {
	stats := r.cacheComp.Stats()

	avgMissLatency := 0.0
	if stats.Misses > 0 {
		avgMissLatency = float64(stats.MissLatency) / float64(stats.Misses)
	}

	color.Cyan("Simulation completed at %.9f s", float64(now))
	color.Green("Reads completed:  %d", r.cpuComp.ReadsCompleted)
	color.Green("Writes completed: %d", r.cpuComp.WritesCompleted)
	color.Green("Cache hits:       %d", stats.Hits)
	color.Green("Cache misses:     %d", stats.Misses)
	color.Green("Writebacks:       %d", stats.Writebacks)
	color.Green("Hit ratio:        %.4f", stats.HitRatio())
	color.Green("Avg miss latency: %.9f s", avgMissLatency)

	if r.recorder == nil {
		return
	}

	r.recorder.CreateTable("cache_stats", statsEntry{})
	r.recorder.InsertData("cache_stats", statsEntry{
		CacheSize:      cacheSizeFlag,
		Associativity:  associativityFlag,
		Algorithm:      algorithmFlag,
		Pattern:        patternFlag,
		NumAccess:      numAccessFlag,
		Hits:           stats.Hits,
		Misses:         stats.Misses,
		Writebacks:     stats.Writebacks,
		HitRatio:       stats.HitRatio(),
		AvgMissLatency: avgMissLatency,
		SimulatedTime:  float64(now),
	})
	r.recorder.Flush()
}
