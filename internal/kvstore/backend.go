package kvstore

import (
	"errors"
	"sync"
)

// Backend holds the raw bytes of one storage slot.
type Backend interface {
	// Load returns the slot contents, or nil when the slot is empty.
	Load() ([]byte, error)
	// Save replaces the slot contents.
	Save(data []byte) error
	// Erase empties the slot. Erasing an empty slot is not an error.
	Erase() error
}

// ErrInjected is returned by a Memory backend whose failure switch is on.
var ErrInjected = errors.New("injected backend failure")

// Memory is an in-process Backend.
type Memory struct {
	mu         sync.Mutex
	data       []byte
	failSaves  bool
	failLoads  bool
	saveCalled int
}

// NewMemory returns an empty in-memory slot, optionally pre-filled.
func NewMemory(initial []byte) *Memory {
	m := &Memory{}
	if initial != nil {
		m.data = append([]byte(nil), initial...)
	}
	return m
}

func (m *Memory) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoads {
		return nil, ErrInjected
	}
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalled++
	if m.failSaves {
		return ErrInjected
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Erase() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return ErrInjected
	}
	m.data = nil
	return nil
}

// FailSaves makes subsequent Save and Erase calls fail.
func (m *Memory) FailSaves(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSaves = fail
}

// FailLoads makes subsequent Load calls fail.
func (m *Memory) FailLoads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoads = fail
}

// Bytes returns a copy of the slot contents.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// Saves returns how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalled
}
