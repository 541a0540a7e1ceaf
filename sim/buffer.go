package sim

import "log"

// A Buffer is a bounded FIFO queue.
type Buffer interface {
	Named

	CanPush() bool
	Push(e interface{})
	Pop() interface{}
	Peek() interface{}
	Capacity() int
	Size() int

	// Remove all elements in the buffer.
	Clear()
}

// NewBuffer creates a Buffer that holds at most capacity elements.
func NewBuffer(name string, capacity int) Buffer {
	NameMustBeValid(name)

	return &boundedBuffer{name: name, capacity: capacity}
}

type boundedBuffer struct {
	name     string
	capacity int
	items    []interface{}
}

func (b *boundedBuffer) Name() string {
	return b.name
}

func (b *boundedBuffer) CanPush() bool {
	return len(b.items) < b.capacity
}

func (b *boundedBuffer) Push(e interface{}) {
	if len(b.items) >= b.capacity {
		log.Panic("buffer overflow")
	}

	b.items = append(b.items, e)
}

func (b *boundedBuffer) Pop() interface{} {
	if len(b.items) == 0 {
		return nil
	}

	e := b.items[0]
	b.items = b.items[1:]

	return e
}

func (b *boundedBuffer) Peek() interface{} {
	if len(b.items) == 0 {
		return nil
	}

	return b.items[0]
}

func (b *boundedBuffer) Capacity() int {
	return b.capacity
}

func (b *boundedBuffer) Size() int {
	return len(b.items)
}

func (b *boundedBuffer) Clear() {
	b.items = nil
}
