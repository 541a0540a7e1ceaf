package sim

import (
	"fmt"
	"sync"
)

// A RemotePort names a port on another component. Messages carry RemotePort
// values instead of Port references so that they stay serializable.
type RemotePort string

// A Port is the endpoint through which a component exchanges messages with
// a connection. Both directions are buffered, and a full buffer pushes the
// backpressure to the sender as a SendError.
type Port interface {
	Named

	AsRemote() RemotePort
	SetConnection(conn Connection)
	Component() Component

	// Connection side.
	Deliver(msg Msg) *SendError
	NotifyAvailable()
	RetrieveOutgoing() Msg
	PeekOutgoing() Msg

	// Component side.
	CanSend() bool
	Send(msg Msg) *SendError
	RetrieveIncoming() Msg
	PeekIncoming() Msg
}

// NewPort creates a port with bounded incoming and outgoing buffers.
func NewPort(
	comp Component,
	incomingBufCap, outgoingBufCap int,
	name string,
) Port {
	return &defaultPort{
		comp:     comp,
		name:     name,
		incoming: NewBuffer(name+".IncomingBuf", incomingBufCap),
		outgoing: NewBuffer(name+".OutgoingBuf", outgoingBufCap),
	}
}

type defaultPort struct {
	mu   sync.Mutex
	name string
	comp Component
	conn Connection

	incoming Buffer
	outgoing Buffer
}

func (p *defaultPort) Name() string {
	return p.name
}

func (p *defaultPort) AsRemote() RemotePort {
	return RemotePort(p.name)
}

func (p *defaultPort) SetConnection(conn Connection) {
	if p.conn != nil {
		panic(fmt.Sprintf(
			"connection already set to %s, now connecting to %s",
			p.conn.Name(), conn.Name()))
	}

	p.conn = conn
}

func (p *defaultPort) Component() Component {
	return p.comp
}

// Send queues an outbound message. It returns a SendError when the outgoing
// buffer is full.
func (p *defaultPort) Send(msg Msg) *SendError {
	p.checkOutbound(msg)

	p.mu.Lock()
	if !p.outgoing.CanPush() {
		p.mu.Unlock()
		return NewSendError()
	}

	wasEmpty := p.outgoing.Size() == 0
	p.outgoing.Push(msg)
	p.mu.Unlock()

	if wasEmpty {
		p.conn.NotifySend()
	}

	return nil
}

// Deliver queues an inbound message. It returns a SendError when the
// incoming buffer is full.
func (p *defaultPort) Deliver(msg Msg) *SendError {
	p.mu.Lock()
	if !p.incoming.CanPush() {
		p.mu.Unlock()
		return NewSendError()
	}

	wasEmpty := p.incoming.Size() == 0
	p.incoming.Push(msg)
	p.mu.Unlock()

	if p.comp != nil && wasEmpty {
		p.comp.NotifyRecv(p)
	}

	return nil
}

func (p *defaultPort) CanSend() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.outgoing.CanPush()
}

// RetrieveIncoming hands the oldest inbound message to the component. When
// the buffer turns from full to non-full, the connection is told that this
// port can take messages again.
func (p *defaultPort) RetrieveIncoming() Msg {
	p.mu.Lock()
	defer p.mu.Unlock()

	item := p.incoming.Pop()
	if item == nil {
		return nil
	}

	if p.incoming.Size() == p.incoming.Capacity()-1 {
		p.conn.NotifyAvailable(p)
	}

	return item.(Msg)
}

// RetrieveOutgoing hands the oldest outbound message to the connection.
// When the buffer turns from full to non-full, the owning component gets a
// NotifyPortFree callback.
func (p *defaultPort) RetrieveOutgoing() Msg {
	p.mu.Lock()
	defer p.mu.Unlock()

	item := p.outgoing.Pop()
	if item == nil {
		return nil
	}

	if p.outgoing.Size() == p.outgoing.Capacity()-1 {
		p.comp.NotifyPortFree(p)
	}

	return item.(Msg)
}

func (p *defaultPort) PeekIncoming() Msg {
	p.mu.Lock()
	defer p.mu.Unlock()

	item := p.incoming.Peek()
	if item == nil {
		return nil
	}

	return item.(Msg)
}

func (p *defaultPort) PeekOutgoing() Msg {
	p.mu.Lock()
	defer p.mu.Unlock()

	item := p.outgoing.Peek()
	if item == nil {
		return nil
	}

	return item.(Msg)
}

// NotifyAvailable propagates a connection-side availability change to the
// owning component.
func (p *defaultPort) NotifyAvailable() {
	if p.comp != nil {
		p.comp.NotifyPortFree(p)
	}
}

// checkOutbound panics on messages that cannot be routed.
func (p *defaultPort) checkOutbound(msg Msg) {
	meta := msg.Meta()

	if string(meta.Src) != p.name {
		panic("sending port is not msg src")
	}

	if meta.Dst == "" {
		panic("dst is not given")
	}

	if meta.Src == meta.Dst {
		panic("sending back to src")
	}
}
