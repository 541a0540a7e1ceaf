// Package idealmemcontroller provides a memory controller that responds to
// every request after a fixed number of cycles.
package idealmemcontroller

import (
	"log"
	"reflect"

	"github.com/sarchlab/cachesim/mem"
	"github.com/sarchlab/cachesim/sim"
)

type readRespondEvent struct {
	*sim.EventBase
	req *mem.ReadReq
}

func newReadRespondEvent(time sim.VTimeInSec, handler sim.Handler,
	req *mem.ReadReq,
) *readRespondEvent {
	return &readRespondEvent{sim.NewEventBase(time, handler), req}
}

type writeRespondEvent struct {
	*sim.EventBase
	req *mem.WriteReq
}

func newWriteRespondEvent(time sim.VTimeInSec, handler sim.Handler,
	req *mem.WriteReq,
) *writeRespondEvent {
	return &writeRespondEvent{sim.NewEventBase(time, handler), req}
}

// A Comp is an ideal memory controller that can perform read and write.
//
// An ideal memory controller always responds to a request in a fixed number
// of cycles. There is no limitation on the concurrency of this unit.
type Comp struct {
	*sim.TickingComponent

	topPort sim.Port
	Storage *mem.Storage
	Latency int
}

// Handle defines how the Comp handles events.
func (c *Comp) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *readRespondEvent:
		return c.handleReadRespondEvent(e)
	case *writeRespondEvent:
		return c.handleWriteRespondEvent(e)
	case sim.TickEvent:
		return c.TickingComponent.Handle(e)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

// Tick updates the memory controller state.
func (c *Comp) Tick() bool {
	msg := c.topPort.RetrieveIncoming()
	if msg == nil {
		return false
	}

	switch msg := msg.(type) {
	case *mem.ReadReq:
		c.handleReadReq(msg)
	case *mem.WriteReq:
		c.handleWriteReq(msg)
	default:
		log.Panicf("cannot handle request of type %s", reflect.TypeOf(msg))
	}

	return true
}

func (c *Comp) handleReadReq(req *mem.ReadReq) {
	now := c.CurrentTime()
	timeToSchedule := c.Freq.NCyclesLater(c.Latency, now)
	respondEvent := newReadRespondEvent(timeToSchedule, c, req)
	c.Engine.Schedule(respondEvent)
}

func (c *Comp) handleWriteReq(req *mem.WriteReq) {
	now := c.CurrentTime()
	timeToSchedule := c.Freq.NCyclesLater(c.Latency, now)
	respondEvent := newWriteRespondEvent(timeToSchedule, c, req)
	c.Engine.Schedule(respondEvent)
}

func (c *Comp) handleReadRespondEvent(e *readRespondEvent) error {
	req := e.req

	data, err := c.Storage.Read(req.Address, req.AccessByteSize)
	if err != nil {
		log.Panic(err)
	}

	rsp := mem.DataReadyRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithData(data).
		Build()

	networkErr := c.topPort.Send(rsp)
	if networkErr != nil {
		retry := newReadRespondEvent(c.Freq.NextTick(e.Time()), c, req)
		c.Engine.Schedule(retry)
		return nil
	}

	c.TickLater()

	return nil
}

func (c *Comp) handleWriteRespondEvent(e *writeRespondEvent) error {
	req := e.req

	rsp := mem.WriteDoneRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		Build()

	networkErr := c.topPort.Send(rsp)
	if networkErr != nil {
		retry := newWriteRespondEvent(c.Freq.NextTick(e.Time()), c, req)
		c.Engine.Schedule(retry)
		return nil
	}

	if req.DirtyMask == nil {
		err := c.Storage.Write(req.Address, req.Data)
		if err != nil {
			log.Panic(err)
		}
	} else {
		for i, dirty := range req.DirtyMask {
			if dirty {
				err := c.Storage.Write(req.Address+uint64(i),
					req.Data[i:i+1])
				if err != nil {
					log.Panic(err)
				}
			}
		}
	}

	c.TickLater()

	return nil
}
