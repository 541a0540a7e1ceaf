package cpu

import (
	"encoding/binary"
	"log"
	"reflect"

	"github.com/sarchlab/cachesim/mem"
	"github.com/sarchlab/cachesim/sim"
)

// A stream issues one request at a time through one port, mimicking a
// blocking CPU-side port.
type stream struct {
	port       sim.Port
	lowModule  sim.RemotePort
	pattern    AccessPattern
	writeRatio float64

	accessLeft   int
	pendingRead  *mem.ReadReq
	pendingWrite *mem.WriteReq
}

func (s *stream) done() bool {
	return s.accessLeft == 0 &&
		s.pendingRead == nil && s.pendingWrite == nil
}

// A Comp is a processor model that generates memory traffic.
//
// The processor has an instruction stream and a data stream, each issuing
// through its own port. The instruction stream only reads. The data stream
// mixes reads and writes and verifies that every read returns the last
// value written to the address.
type Comp struct {
	*sim.TickingComponent

	instStream *stream
	dataStream *stream

	rng         randSource
	knownValues map[uint64]uint32

	ReadsCompleted  uint64
	WritesCompleted uint64
}

// randSource is the part of math/rand that the processor uses. It allows
// tests to make write decisions deterministic.
type randSource interface {
	Float64() float64
	Uint32() uint32
}

// Done returns true when both streams have issued all their accesses and
// received all the responses.
func (c *Comp) Done() bool {
	return c.instStream.done() && c.dataStream.done()
}

// Tick issues new requests and consumes responses.
func (c *Comp) Tick() bool {
	madeProgress := c.updateStream(c.instStream)
	madeProgress = c.updateStream(c.dataStream) || madeProgress

	return madeProgress
}

func (c *Comp) updateStream(s *stream) bool {
	madeProgress := c.processRsp(s)

	if s.accessLeft > 0 && s.pendingRead == nil && s.pendingWrite == nil {
		madeProgress = c.issue(s) || madeProgress
	}

	return madeProgress
}

func (c *Comp) processRsp(s *stream) bool {
	msg := s.port.RetrieveIncoming()
	if msg == nil {
		return false
	}

	switch msg := msg.(type) {
	case *mem.DataReadyRsp:
		c.completeRead(s, msg)
		return true
	case *mem.WriteDoneRsp:
		c.completeWrite(s, msg)
		return true
	default:
		log.Panicf("cannot process message of type %s", reflect.TypeOf(msg))
	}

	return false
}

func (c *Comp) completeRead(s *stream, rsp *mem.DataReadyRsp) {
	req := s.pendingRead
	if req == nil || rsp.RespondTo != req.ID {
		panic("read response does not match the request in flight")
	}

	if expected, known := c.knownValues[req.Address]; known {
		value := binary.LittleEndian.Uint32(rsp.Data)
		if value != expected {
			log.Panicf(
				"read 0x%08x from 0x%x, expected 0x%08x",
				value, req.Address, expected)
		}
	}

	s.pendingRead = nil
	c.ReadsCompleted++
}

func (c *Comp) completeWrite(s *stream, rsp *mem.WriteDoneRsp) {
	req := s.pendingWrite
	if req == nil || rsp.RespondTo != req.ID {
		panic("write response does not match the request in flight")
	}

	s.pendingWrite = nil
	c.WritesCompleted++
}

func (c *Comp) issue(s *stream) bool {
	address := s.pattern.NextAddress()

	if s.writeRatio > 0 && c.rng.Float64() < s.writeRatio {
		return c.issueWrite(s, address)
	}

	return c.issueRead(s, address)
}

func (c *Comp) issueRead(s *stream, address uint64) bool {
	req := mem.ReadReqBuilder{}.
		WithSrc(s.port.AsRemote()).
		WithDst(s.lowModule).
		WithAddress(address).
		WithByteSize(4).
		Build()

	err := s.port.Send(req)
	if err != nil {
		return false
	}

	s.pendingRead = req
	s.accessLeft--

	return true
}

func (c *Comp) issueWrite(s *stream, address uint64) bool {
	value := c.rng.Uint32()
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, value)

	req := mem.WriteReqBuilder{}.
		WithSrc(s.port.AsRemote()).
		WithDst(s.lowModule).
		WithAddress(address).
		WithData(data).
		Build()

	err := s.port.Send(req)
	if err != nil {
		return false
	}

	s.pendingWrite = req
	s.accessLeft--
	c.knownValues[address] = value

	return true
}
