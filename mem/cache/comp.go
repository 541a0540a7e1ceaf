package cache

import (
	"fmt"
	"log"
	"reflect"

	"github.com/sarchlab/cachesim/mem"
	"github.com/sarchlab/cachesim/sim"
)

// HookPosCacheHit marks a request that hits in the cache.
var HookPosCacheHit = &sim.HookPos{Name: "Cache Hit"}

// HookPosCacheMiss marks a request that misses in the cache.
var HookPosCacheMiss = &sim.HookPos{Name: "Cache Miss"}

// HookPosCacheWriteback marks a dirty victim that is written back to the
// memory below.
var HookPosCacheWriteback = &sim.HookPos{Name: "Cache Writeback"}

type cacheState int

const (
	// No request is being served.
	cacheStateIdle cacheState = iota

	// A request is retrieved and the tag lookup is scheduled.
	cacheStateAccessing

	// A dirty victim is on its way to the memory below.
	cacheStateWriteback

	// The missing line is being fetched from the memory below.
	cacheStateFill

	// The response is composed but not yet delivered to the top.
	cacheStateResponding
)

type transaction struct {
	req       mem.AccessReq
	topPort   sim.Port
	victim    *Block
	fetchReq  *mem.ReadReq
	evictReq  *mem.WriteReq
	startTime sim.VTimeInSec
}

type accessEvent struct {
	*sim.EventBase
	trans *transaction
}

func newAccessEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	trans *transaction,
) *accessEvent {
	return &accessEvent{sim.NewEventBase(time, handler), trans}
}

// Stats counts the accesses that a cache has served.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Writebacks  uint64
	MissLatency sim.VTimeInSec
}

// HitRatio returns the fraction of the accesses that hit in the cache.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// A Comp is a blocking, set-associative, write-back cache.
//
// The cache serves one request at a time. A request is accepted from one of
// the top ports, looked up after a configurable number of cycles, and either
// answered from the local storage or forwarded as a full-line fetch to the
// memory below. A dirty victim is written back before the missing line is
// fetched. While a request is in flight, no other request is accepted, so
// backpressure naturally builds up in the top port buffers.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	topPorts   []sim.Port
	bottomPort sim.Port

	latency   int
	blockSize int

	directory           Directory
	storage             *mem.Storage
	addressToPortMapper mem.AddressToPortMapper

	state           cacheState
	trans           *transaction
	pendingRsp      sim.Msg
	pendingToBottom sim.Msg
	nextTopPortID   int

	stats Stats
}

// Stats returns a copy of the access counters of the cache.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Directory returns the directory of the cache. It is mainly used in tests
// and in experiment reports.
func (c *Comp) Directory() Directory {
	return c.directory
}

// Tick updates the state of the cache.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// Handle processes the events scheduled on the cache.
func (c *Comp) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *accessEvent:
		return c.handleAccessEvent(e)
	case sim.TickEvent:
		return c.TickingComponent.Handle(e)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

// handleAccessEvent performs the tag lookup after the access latency has
// elapsed.
func (c *Comp) handleAccessEvent(e *accessEvent) error {
	trans := e.trans
	addr := trans.req.GetAddress()

	block := c.directory.Lookup(addr)
	if block != nil {
		c.handleHit(trans, block)
	} else {
		c.handleMiss(trans)
	}

	// A hit answers at lookup time, so it completes in exactly the
	// configured number of cycles. Only a full top port defers the
	// response to a later tick.
	c.sendRsp()

	c.TickLater()

	return nil
}

// sendRsp tries to deliver the composed response to the top port that the
// request came from.
func (c *Comp) sendRsp() bool {
	if c.state != cacheStateResponding || c.pendingRsp == nil {
		return false
	}

	err := c.trans.topPort.Send(c.pendingRsp)
	if err != nil {
		return false
	}

	c.pendingRsp = nil
	c.trans = nil
	c.state = cacheStateIdle

	return true
}

func (c *Comp) handleHit(trans *transaction, block *Block) {
	c.stats.Hits++
	c.invokeHook(HookPosCacheHit, trans)

	c.directory.Visit(block)
	c.access(trans, block)
}

func (c *Comp) handleMiss(trans *transaction) {
	c.stats.Misses++
	c.invokeHook(HookPosCacheMiss, trans)

	victim := c.directory.FindVictim(trans.req.GetAddress())
	trans.victim = victim

	if victim.IsValid && victim.IsDirty {
		c.writeback(trans, victim)
		return
	}

	c.fetch(trans)
}

// writeback sends the dirty victim line to the memory below.
func (c *Comp) writeback(trans *transaction, victim *Block) {
	c.stats.Writebacks++
	c.invokeHook(HookPosCacheWriteback, trans)

	victimAddr := c.directory.BlockAddress(victim)
	data, err := c.storage.Read(victim.CacheAddress, uint64(c.blockSize))
	if err != nil {
		panic(err)
	}

	trans.evictReq = mem.WriteReqBuilder{}.
		WithSrc(c.bottomPort.AsRemote()).
		WithDst(c.addressToPortMapper.Find(victimAddr)).
		WithAddress(victimAddr).
		WithData(data).
		Build()

	c.pendingToBottom = trans.evictReq
	c.state = cacheStateWriteback
}

// fetch requests the full line that holds the requested address from the
// memory below.
func (c *Comp) fetch(trans *transaction) {
	lineAddr := c.lineAddr(trans.req.GetAddress())

	trans.fetchReq = mem.ReadReqBuilder{}.
		WithSrc(c.bottomPort.AsRemote()).
		WithDst(c.addressToPortMapper.Find(lineAddr)).
		WithAddress(lineAddr).
		WithByteSize(uint64(c.blockSize)).
		Build()

	c.pendingToBottom = trans.fetchReq
	c.state = cacheStateFill
}

// access reads or writes the local storage and composes the response.
func (c *Comp) access(trans *transaction, block *Block) {
	offset := trans.req.GetAddress() - c.lineAddr(trans.req.GetAddress())

	switch req := trans.req.(type) {
	case *mem.ReadReq:
		data, err := c.storage.Read(
			block.CacheAddress+offset, req.AccessByteSize)
		if err != nil {
			panic(err)
		}

		c.pendingRsp = mem.DataReadyRspBuilder{}.
			WithSrc(trans.topPort.AsRemote()).
			WithDst(req.Src).
			WithRspTo(req.ID).
			WithData(data).
			Build()
	case *mem.WriteReq:
		err := c.storage.Write(block.CacheAddress+offset, req.Data)
		if err != nil {
			panic(err)
		}

		block.IsDirty = true

		c.pendingRsp = mem.WriteDoneRspBuilder{}.
			WithSrc(trans.topPort.AsRemote()).
			WithDst(req.Src).
			WithRspTo(req.ID).
			Build()
	default:
		log.Panicf("cannot handle request of type %s", reflect.TypeOf(req))
	}

	c.state = cacheStateResponding
}

func (c *Comp) lineAddr(addr uint64) uint64 {
	return addr / uint64(c.blockSize) * uint64(c.blockSize)
}

func (c *Comp) invokeHook(pos *sim.HookPos, trans *transaction) {
	ctx := sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   trans.req,
	}

	c.InvokeHook(ctx)
}

type middleware struct {
	*Comp
}

func (m *middleware) Tick() bool {
	madeProgress := m.respond()
	madeProgress = m.sendToBottom() || madeProgress
	madeProgress = m.processBottomRsp() || madeProgress
	madeProgress = m.acceptNewReq() || madeProgress

	return madeProgress
}

// respond retries a response that an earlier cycle could not deliver.
func (m *middleware) respond() bool {
	return m.sendRsp()
}

// sendToBottom flushes the pending request to the memory below.
func (m *middleware) sendToBottom() bool {
	if m.pendingToBottom == nil {
		return false
	}

	err := m.bottomPort.Send(m.pendingToBottom)
	if err != nil {
		return false
	}

	m.pendingToBottom = nil

	return true
}

// processBottomRsp consumes the responses from the memory below.
func (m *middleware) processBottomRsp() bool {
	msg := m.bottomPort.PeekIncoming()
	if msg == nil {
		return false
	}

	switch rsp := msg.(type) {
	case *mem.WriteDoneRsp:
		return m.processWriteDone(rsp)
	case *mem.DataReadyRsp:
		return m.processDataReady(rsp)
	default:
		log.Panicf("cannot handle response of type %s", reflect.TypeOf(msg))
	}

	return false
}

// processWriteDone completes the victim writeback and starts the fetch of
// the missing line.
func (m *middleware) processWriteDone(rsp *mem.WriteDoneRsp) bool {
	if m.state != cacheStateWriteback {
		panic("writeback response received while no writeback is in flight")
	}

	if rsp.RespondTo != m.trans.evictReq.ID {
		panic(fmt.Sprintf("unexpected writeback response %s", rsp.RespondTo))
	}

	m.bottomPort.RetrieveIncoming()

	victim := m.trans.victim
	victim.IsValid = false
	victim.IsDirty = false

	m.fetch(m.trans)

	return true
}

// processDataReady fills the victim block with the fetched line and finishes
// the access.
func (m *middleware) processDataReady(rsp *mem.DataReadyRsp) bool {
	if m.state != cacheStateFill {
		panic("fill response received while no fetch is in flight")
	}

	if rsp.RespondTo != m.trans.fetchReq.ID {
		panic(fmt.Sprintf("unexpected fill response %s", rsp.RespondTo))
	}

	m.bottomPort.RetrieveIncoming()

	trans := m.trans
	victim := trans.victim

	err := m.storage.Write(victim.CacheAddress, rsp.Data)
	if err != nil {
		panic(err)
	}

	victim.Tag = m.directory.Tag(trans.req.GetAddress())
	victim.IsValid = true
	victim.IsDirty = false

	m.directory.Visit(victim)

	m.stats.MissLatency += m.CurrentTime() - trans.startTime

	m.access(trans, victim)
	m.sendRsp()

	return true
}

// acceptNewReq retrieves one request from the top ports in a round-robin
// manner and schedules the tag lookup.
func (m *middleware) acceptNewReq() bool {
	if m.state != cacheStateIdle {
		return false
	}

	for i := range m.topPorts {
		portID := (i + m.nextTopPortID) % len(m.topPorts)
		port := m.topPorts[portID]

		msg := port.PeekIncoming()
		if msg == nil {
			continue
		}

		req, ok := msg.(mem.AccessReq)
		if !ok {
			log.Panicf("cannot handle request of type %s",
				reflect.TypeOf(msg))
		}

		m.mustBeWithinOneLine(req)

		port.RetrieveIncoming()
		m.nextTopPortID = (portID + 1) % len(m.topPorts)

		trans := &transaction{
			req:       req,
			topPort:   port,
			startTime: m.CurrentTime(),
		}
		m.trans = trans
		m.state = cacheStateAccessing

		lookupTime := m.Freq.NCyclesLater(m.latency, m.CurrentTime())
		m.Engine.Schedule(newAccessEvent(lookupTime, m.Comp, trans))

		return true
	}

	return false
}

func (m *middleware) mustBeWithinOneLine(req mem.AccessReq) {
	addr := req.GetAddress()
	if m.lineAddr(addr) != m.lineAddr(addr+req.GetByteSize()-1) {
		panic(fmt.Sprintf(
			"access [0x%x, 0x%x) crosses a cache line boundary",
			addr, addr+req.GetByteSize()))
	}
}
