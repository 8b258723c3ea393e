// internal/config/threshold.go
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jason-s-yu/blackjack/internal/models"
)

// ErrThresholdRange is returned by Set for values outside [1, 21].
var ErrThresholdRange = errors.New("dealer stand threshold out of range")

// Threshold is the live dealer stand threshold. It is edited by the user
// between actions and read by the session at the moment of each request.
type Threshold struct {
	mu          sync.Mutex
	value       int
	def         int
	subscribers []func(int)
}

// NewThreshold returns a threshold starting at initial, which is also the
// value Reset restores. Out-of-range values fall back to the standard 17.
func NewThreshold(initial int) *Threshold {
	if !models.ValidThreshold(initial) {
		initial = models.DefaultDealerStandThreshold
	}
	return &Threshold{value: initial, def: initial}
}

// Get returns the current value.
func (t *Threshold) Get() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// Set changes the value and notifies subscribers. Setting the current value
// again is not a change.
func (t *Threshold) Set(v int) error {
	if !models.ValidThreshold(v) {
		return fmt.Errorf("%w: %d (allowed %d-%d)", ErrThresholdRange, v,
			models.MinDealerStandThreshold, models.MaxDealerStandThreshold)
	}
	t.mu.Lock()
	if t.value == v {
		t.mu.Unlock()
		return nil
	}
	t.value = v
	subs := make([]func(int), len(t.subscribers))
	copy(subs, t.subscribers)
	t.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
	return nil
}

// Reset restores the initial value.
func (t *Threshold) Reset() {
	_ = t.Set(t.def)
}

// Subscribe registers fn to run after every change. fn is called without the
// threshold lock held.
func (t *Threshold) Subscribe(fn func(int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, fn)
}
