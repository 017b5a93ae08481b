// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

// Package debounce delays propagation of rapidly-changing input until it settles.
//
// # Usage
//
// The gateway uses it to collapse a stream of search-box keystroke events
// into a single list reset: each raw value restarts a quiet-period timer, and
// only the value that survives the full quiet period is emitted.
package debounce

import (
	"sync"
	"time"
)

// Debouncer emits the most recent triggered value after a fixed quiet period.
//
// # Semantics
//
//   - Trailing edge only: nothing is emitted when a value arrives, only
//     after the delay elapses with no further triggers.
//   - Restartable: every Trigger cancels the pending emission timer and
//     starts a new one.
//   - Exactly one emission per settled burst, carrying the last raw value.
//
// The emit callback runs on a timer goroutine; it must be safe to call from
// a goroutine other than the triggering one.
type Debouncer[T any] struct {
	mu    sync.Mutex
	delay time.Duration
	emit  func(T)
	timer *time.Timer
	last  T

	// sequence stamps each Trigger. A timer that fires after its stamp
	// went stale lost the race against a newer Trigger and must not emit.
	sequence uint64
}

// New constructs a Debouncer that calls emit after delay of quiet time.
func New[T any](delay time.Duration, emit func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		emit:  emit,
	}
}

// Trigger records a new raw value and restarts the quiet-period timer.
func (debouncer *Debouncer[T]) Trigger(value T) {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	debouncer.last = value
	debouncer.sequence++
	firedAt := debouncer.sequence

	if debouncer.timer != nil {
		debouncer.timer.Stop()
	}

	debouncer.timer = time.AfterFunc(debouncer.delay, func() {
		debouncer.fire(firedAt)
	})
}

// fire delivers the last value recorded before the quiet period elapsed.
func (debouncer *Debouncer[T]) fire(firedAt uint64) {
	debouncer.mu.Lock()

	// timer.Stop is best-effort: a timer already past Stop still runs its
	// callback. The sequence check closes that window.
	if firedAt != debouncer.sequence {
		debouncer.mu.Unlock()
		return
	}

	value := debouncer.last
	debouncer.timer = nil
	debouncer.mu.Unlock()

	// Emit outside the lock so a slow callback cannot delay new triggers.
	debouncer.emit(value)
}

// Stop cancels any pending emission. It does not prevent future Triggers.
func (debouncer *Debouncer[T]) Stop() {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	debouncer.sequence++
	if debouncer.timer != nil {
		debouncer.timer.Stop()
		debouncer.timer = nil
	}
}
