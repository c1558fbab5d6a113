// Package collector provides a fixed capacity, write once container that
// many goroutines fill concurrently and one reader drains when full.
package collector

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/cpu"
)

var (
	// ErrFull is returned by Push once every slot has been reserved
	ErrFull = errors.New("collector: capacity exhausted")
	// ErrIncomplete is returned by Items while writers are still publishing
	ErrIncomplete = errors.New("collector: not all slots are published")
	// ErrShort is returned by Items when fewer values than slots were pushed
	ErrShort = errors.New("collector: fewer values than slots")
)

// InsertOnly hands out slots with one atomic counter and counts finished
// writes with a second one. The counters live on separate cache lines
// since every writer touches both.
type InsertOnly[T any] struct {
	slots []T

	_        cpu.CacheLinePad
	reserved atomic.Int64
	_        cpu.CacheLinePad
	finished atomic.Int64
	_        cpu.CacheLinePad
}

// New creates a collector with room for capacity values
func New[T any](capacity int) *InsertOnly[T] {
	if capacity < 0 {
		capacity = 0
	}

	return &InsertOnly[T]{slots: make([]T, capacity)}
}

// Push stores v in the next free slot and returns its index
func (c *InsertOnly[T]) Push(v T) (int, error) {
	idx := int(c.reserved.Add(1) - 1)
	if idx >= len(c.slots) {
		return -1, ErrFull
	}

	c.slots[idx] = v
	c.finished.Add(1)

	return idx, nil
}

// Cap returns the number of slots
func (c *InsertOnly[T]) Cap() int {
	return len(c.slots)
}

// Len returns the number of published values
func (c *InsertOnly[T]) Len() int {
	return int(c.finished.Load())
}

// IsFilling reports whether every slot has been reserved
func (c *InsertOnly[T]) IsFilling() bool {
	return int(c.reserved.Load()) >= len(c.slots)
}

// IsFilled reports whether every slot has been published
func (c *InsertOnly[T]) IsFilled() bool {
	return c.Len() == len(c.slots)
}

// Items returns the values in slot order once the collector is filled
func (c *InsertOnly[T]) Items() ([]T, error) {
	if !c.IsFilling() {
		return nil, ErrShort
	}

	if !c.IsFilled() {
		return nil, ErrIncomplete
	}

	return c.slots, nil
}
