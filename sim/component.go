package sim

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A PortOwner is an element that can communicate with others through ports.
type PortOwner interface {
	AddPort(name string, port Port)
	GetPortByName(name string) Port
	Ports() []Port
}

// A Component is an element that is being simulated.
type Component interface {
	Named
	Handler
	Hookable
	PortOwner

	NotifyRecv(port Port)
	NotifyPortFree(port Port)
}

// ComponentBase provides some functions that other component can use.
type ComponentBase struct {
	HookableBase
	sync.Mutex

	name  string
	ports map[string]Port
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	c := new(ComponentBase)
	c.name = name
	c.ports = make(map[string]Port)

	return c
}

// Name returns the name of the component
func (c *ComponentBase) Name() string {
	return c.name
}

// AddPort adds a new port with a given name.
func (c *ComponentBase) AddPort(name string, port Port) {
	if _, found := c.ports[name]; found {
		panic("port already exist")
	}

	c.ports[name] = port
}

// GetPortByName returns the port according to the name of the port. This
// function panics when the given name is not found.
func (c *ComponentBase) GetPortByName(name string) Port {
	port, found := c.ports[name]
	if !found {
		errMsg := fmt.Sprintf(
			"Port %s is not available on component %s.\n", name, c.name)
		errMsg += "Available ports include:\n"
		for n := range c.ports {
			errMsg += fmt.Sprintf("\t%s\n", n)
		}
		fmt.Fprint(os.Stderr, errMsg)

		panic("port not found")
	}

	return port
}

// Ports returns a slice of all the ports owned by the component.
func (c *ComponentBase) Ports() []Port {
	portNames := make([]string, 0, len(c.ports))

	for n := range c.ports {
		portNames = append(portNames, n)
	}

	sort.Strings(portNames)

	list := make([]Port, 0, len(c.ports))

	for _, n := range portNames {
		list = append(list, c.ports[n])
	}

	return list
}
