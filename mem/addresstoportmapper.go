package mem

import "github.com/sarchlab/cachesim/sim"

// AddressToPortMapper helps a cache unit find the low module that holds the
// data at a certain address.
type AddressToPortMapper interface {
	Find(address uint64) sim.RemotePort
}

// SinglePortMapper is used when a unit is connected with only one low module.
type SinglePortMapper struct {
	Port sim.RemotePort
}

// Find simply returns the solo unit that it connects to.
func (f *SinglePortMapper) Find(_ uint64) sim.RemotePort {
	return f.Port
}

// InterleavedAddressPortMapper finds the low module when the low modules
// maintain an interleaved address space.
type InterleavedAddressPortMapper struct {
	UseAddressSpaceLimitation bool
	LowAddress                uint64
	HighAddress               uint64
	InterleavingSize          uint64
	LowModules                []sim.RemotePort
	ModuleForOtherAddresses   sim.RemotePort
}

// Find returns the low module that has the data at the provided address.
func (f *InterleavedAddressPortMapper) Find(address uint64) sim.RemotePort {
	if f.UseAddressSpaceLimitation &&
		(address >= f.HighAddress || address < f.LowAddress) {
		return f.ModuleForOtherAddresses
	}

	number := address / f.InterleavingSize % uint64(len(f.LowModules))

	return f.LowModules[number]
}

// NewInterleavedAddressPortMapper creates a new mapper for interleaved lower
// modules.
func NewInterleavedAddressPortMapper(
	interleavingSize uint64,
) *InterleavedAddressPortMapper {
	mapper := new(InterleavedAddressPortMapper)

	mapper.LowModules = make([]sim.RemotePort, 0)
	mapper.InterleavingSize = interleavingSize

	return mapper
}
