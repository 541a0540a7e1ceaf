package sim

import (
	"log"
	"reflect"
)

// A SerialEngine triggers events on a single goroutine, in the order of
// their scheduled times. Secondary events run after the primary events of
// the same time.
type SerialEngine struct {
	HookableBase

	now         VTimeInSec
	events      EventQueue
	secondaries EventQueue
	endHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine with empty event queues.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{
		events:      NewEventQueue(),
		secondaries: NewEventQueue(),
	}
}

// Schedule queues an event. Scheduling an event before the current time is
// a programming error.
func (e *SerialEngine) Schedule(evt Event) {
	if evt.Time() < e.now {
		log.Panic("scheduling an event earlier than current time")
	}

	if evt.IsSecondary() {
		e.secondaries.Push(evt)
		return
	}

	e.events.Push(evt)
}

// Run pops and handles events until both queues are drained.
func (e *SerialEngine) Run() error {
	for {
		evt := e.nextEvent()
		if evt == nil {
			return nil
		}

		if evt.Time() < e.now {
			log.Panicf(
				"cannot run event in the past, evt %s @ %.10f, now %.10f",
				reflect.TypeOf(evt), evt.Time(), e.now,
			)
		}
		e.now = evt.Time()

		ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
		e.InvokeHook(ctx)

		_ = evt.Handler().Handle(evt)

		ctx.Pos = HookPosAfterEvent
		e.InvokeHook(ctx)
	}
}

// nextEvent picks the queue with the earlier head. A tie goes to the
// primary queue.
func (e *SerialEngine) nextEvent() Event {
	if e.events.Len() == 0 {
		if e.secondaries.Len() == 0 {
			return nil
		}

		return e.secondaries.Pop()
	}

	if e.secondaries.Len() == 0 {
		return e.events.Pop()
	}

	if e.events.Peek().Time() <= e.secondaries.Peek().Time() {
		return e.events.Pop()
	}

	return e.secondaries.Pop()
}

// CurrentTime returns the time of the event being processed.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	return e.now
}

// RegisterSimulationEndHandler adds a handler to be invoked by Finished.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.endHandlers = append(e.endHandlers, handler)
}

// Finished runs the registered end-of-simulation handlers.
func (e *SerialEngine) Finished() {
	for _, h := range e.endHandlers {
		h.Handle(e.now)
	}
}
