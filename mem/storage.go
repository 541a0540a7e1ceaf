package mem

import (
	"errors"
	"sync"
)

// A Storage keeps the data of the simulated system.
//
// The storage manages the memory in units. A unit is similar to the concept
// of a page in memory management. Memory for a unit is only allocated when
// the unit is first touched by a Read or a Write.
type Storage struct {
	sync.Mutex
	unitSize uint64
	Capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity
func NewStorage(capacity uint64) *Storage {
	storage := new(Storage)

	storage.unitSize = 4096
	storage.Capacity = capacity
	storage.data = make(map[uint64][]byte)

	return storage
}

func (s *Storage) createOrGetUnit(address uint64) ([]byte, error) {
	if address >= s.Capacity {
		return nil, errors.New("accessing beyond the storage capacity")
	}

	baseAddr, _ := s.parseAddress(address)
	unit, ok := s.data[baseAddr]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.data[baseAddr] = unit
	}

	return unit, nil
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

// Read reads length bytes that starts at the given address.
func (s *Storage) Read(address uint64, length uint64) ([]byte, error) {
	s.Lock()
	defer s.Unlock()

	currAddr := address
	lenLeft := length
	dataOffset := uint64(0)
	res := make([]byte, length)

	for currAddr < address+length {
		unit, err := s.createOrGetUnit(currAddr)
		if err != nil {
			return nil, err
		}

		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenLeftInUnit := baseAddr + s.unitSize - currAddr
		lenToRead := lenLeftInUnit
		if lenLeft < lenLeftInUnit {
			lenToRead = lenLeft
		}

		copy(res[dataOffset:dataOffset+lenToRead],
			unit[inUnitAddr:inUnitAddr+lenToRead])
		lenLeft -= lenToRead
		dataOffset += lenToRead
		currAddr += lenToRead
	}

	return res, nil
}

// Write writes the data to the location starting at the given address.
func (s *Storage) Write(address uint64, data []byte) error {
	s.Lock()
	defer s.Unlock()

	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < uint64(len(data)) {
		unit, err := s.createOrGetUnit(currAddr)
		if err != nil {
			return err
		}

		_, inUnitAddr := s.parseAddress(currAddr)
		lenLeftInData := uint64(len(data)) - dataOffset
		lenLeftInUnit := currAddr/s.unitSize*s.unitSize + s.unitSize - currAddr
		lenToWrite := lenLeftInUnit
		if lenLeftInData < lenLeftInUnit {
			lenToWrite = lenLeftInData
		}

		copy(unit[inUnitAddr:inUnitAddr+lenToWrite],
			data[dataOffset:dataOffset+lenToWrite])
		dataOffset += lenToWrite
		currAddr += lenToWrite
	}

	return nil
}
