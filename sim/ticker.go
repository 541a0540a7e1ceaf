package sim

import "sync"

// TickEvent triggers one update cycle of a component.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a TickEvent for the given handler.
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	evt := TickEvent{}
	evt.ID = GetIDGenerator().Generate()
	evt.handler = handler
	evt.time = time

	return evt
}

// A Ticker updates component state cycle by cycle. Tick returns true when
// the cycle made progress, which keeps the tick events coming.
type Ticker interface {
	Tick() bool
}

// A Middleware implements one slice of the per-cycle behavior of a
// component.
type Middleware interface {
	Tick() bool
}

// MiddlewareHolder chains middlewares and runs them on every tick.
type MiddlewareHolder struct {
	middlewares []Middleware
}

// AddMiddleware appends a middleware to the chain.
func (h *MiddlewareHolder) AddMiddleware(m Middleware) {
	h.middlewares = append(h.middlewares, m)
}

// Tick runs every middleware in the chain, reporting whether any of them
// made progress.
func (h *MiddlewareHolder) Tick() bool {
	progress := false

	for _, m := range h.middlewares {
		if m.Tick() {
			progress = true
		}
	}

	return progress
}

// TickScheduler schedules tick events, collapsing duplicate requests for
// the same cycle into a single event.
type TickScheduler struct {
	Engine Engine
	Freq   Freq

	handler   Handler
	secondary bool

	mu           sync.Mutex
	nextTickTime VTimeInSec
}

// NewTickScheduler creates a scheduler that emits primary tick events.
func NewTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	return &TickScheduler{
		Engine:  engine,
		Freq:    freq,
		handler: handler,

		// Guarantees that the first tick request schedules an event.
		nextTickTime: -1,
	}
}

// NewSecondaryTickScheduler creates a scheduler that emits secondary tick
// events, which run after the primary events of the same cycle.
func NewSecondaryTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	scheduler := NewTickScheduler(handler, engine, freq)
	scheduler.secondary = true

	return scheduler
}

// TickNow requests a tick in the current cycle.
func (t *TickScheduler) TickNow() {
	t.tickAt(t.Freq.ThisTick(t.Engine.CurrentTime()))
}

// TickLater requests a tick in the next cycle.
func (t *TickScheduler) TickLater() {
	t.tickAt(t.Freq.NextTick(t.Engine.CurrentTime()))
}

func (t *TickScheduler) tickAt(time VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.nextTickTime >= time {
		return
	}

	t.nextTickTime = time
	tick := MakeTickEvent(t.handler, time)
	tick.secondary = t.secondary
	t.Engine.Schedule(tick)
}

// CurrentTime returns the current time of the engine.
func (t *TickScheduler) CurrentTime() VTimeInSec {
	return t.Engine.CurrentTime()
}

// TickingComponent updates its state with tick events. Incoming messages
// and freed ports both restart the ticking.
type TickingComponent struct {
	*ComponentBase
	*TickScheduler

	ticker Ticker
}

// NewTickingComponent creates a component that ticks with primary events.
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := new(TickingComponent)
	tc.ComponentBase = NewComponentBase(name)
	tc.TickScheduler = NewTickScheduler(tc, engine, freq)
	tc.ticker = ticker

	return tc
}

// NewSecondaryTickingComponent creates a component that ticks with
// secondary events.
func NewSecondaryTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := new(TickingComponent)
	tc.ComponentBase = NewComponentBase(name)
	tc.TickScheduler = NewSecondaryTickScheduler(tc, engine, freq)
	tc.ticker = ticker

	return tc
}

// Handle runs one tick and keeps the component ticking as long as progress
// is made.
func (c *TickingComponent) Handle(_ Event) error {
	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}

// NotifyRecv restarts the ticking on an incoming message.
func (c *TickingComponent) NotifyRecv(_ Port) {
	c.TickLater()
}

// NotifyPortFree restarts the ticking when an outgoing buffer frees up.
func (c *TickingComponent) NotifyPortFree(_ Port) {
	c.TickLater()
}
