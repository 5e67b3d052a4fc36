package service

import (
	"errors"
	"fmt"
	"sync"
)

// ErrActionInFlight is returned when the same action is triggered again before
// the previous call settled.
var ErrActionInFlight = errors.New("action already in progress")

// ActionSlots holds one busy flag per action. Different slots never block each other.
type ActionSlots struct {
	mu   sync.Mutex
	busy map[string]bool
}

// NewActionSlots returns an empty set of slots.
func NewActionSlots() *ActionSlots {
	return &ActionSlots{busy: make(map[string]bool)}
}

// Run marks slot busy for the duration of fn. If slot is already busy fn is
// not called and ErrActionInFlight is returned.
func (a *ActionSlots) Run(slot string, fn func() error) error {
	if !a.acquire(slot) {
		return fmt.Errorf("%s: %w", slot, ErrActionInFlight)
	}
	defer a.release(slot)
	return fn()
}

// Busy reports whether slot is currently held.
func (a *ActionSlots) Busy(slot string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy[slot]
}

func (a *ActionSlots) acquire(slot string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy == nil {
		a.busy = make(map[string]bool)
	}
	if a.busy[slot] {
		return false
	}
	a.busy[slot] = true
	return true
}

func (a *ActionSlots) release(slot string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.busy, slot)
}

func slotFor(action string, ticketID int64) string {
	return fmt.Sprintf("%s:%d", action, ticketID)
}
