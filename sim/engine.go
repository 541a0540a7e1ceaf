package sim

// TimeTeller reports the current simulation time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler accepts events to be triggered in the future.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler runs reporting or cleanup work after the last
// event is processed.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine drives a discrete event simulation.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run triggers the scheduled events in time order until no event is
	// left.
	Run() error

	// RegisterSimulationEndHandler adds a handler to be invoked by
	// Finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished runs the registered end-of-simulation handlers.
	Finished()
}
