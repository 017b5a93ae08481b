// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package debounce_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/farmlink/gateway/pkg/debounce"
)

// emissions collects emitted values behind a mutex so test goroutines can
// read them safely.
type emissions struct {
	mu     sync.Mutex
	values []string
}

func (e *emissions) record(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values = append(e.values, value)
}

func (e *emissions) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.values...)
}

/*
TestDebouncer_BurstEmitsOnce verifies that a rapid burst of triggers
collapses to exactly one emission carrying the last value.
*/
func TestDebouncer_BurstEmitsOnce(t *testing.T) {
	collected := &emissions{}
	debouncer := debounce.New(30*time.Millisecond, collected.record)

	// Simulate typing "tomato" one keystroke at a time, well inside the
	// quiet period.
	for _, value := range []string{"t", "to", "tom", "toma", "tomat", "tomato"} {
		debouncer.Trigger(value)
		time.Sleep(2 * time.Millisecond)
	}

	// Wait out the quiet period plus margin.
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, []string{"tomato"}, collected.snapshot())
}

/*
TestDebouncer_SeparateBurstsEmitSeparately verifies that two settled bursts
produce two emissions, one per burst.
*/
func TestDebouncer_SeparateBurstsEmitSeparately(t *testing.T) {
	collected := &emissions{}
	debouncer := debounce.New(20*time.Millisecond, collected.record)

	debouncer.Trigger("first")
	time.Sleep(80 * time.Millisecond)

	debouncer.Trigger("second")
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, []string{"first", "second"}, collected.snapshot())
}

/*
TestDebouncer_NothingBeforeQuietPeriod verifies the trailing-edge contract:
no emission happens while triggers keep arriving.
*/
func TestDebouncer_NothingBeforeQuietPeriod(t *testing.T) {
	collected := &emissions{}
	debouncer := debounce.New(50*time.Millisecond, collected.record)

	debouncer.Trigger("a")
	time.Sleep(10 * time.Millisecond)

	assert.Empty(t, collected.snapshot())

	debouncer.Stop()
}

/*
TestDebouncer_StopCancelsPending verifies that Stop suppresses a pending
emission entirely.
*/
func TestDebouncer_StopCancelsPending(t *testing.T) {
	collected := &emissions{}
	debouncer := debounce.New(20*time.Millisecond, collected.record)

	debouncer.Trigger("doomed")
	debouncer.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, collected.snapshot())
}

/*
TestDebouncer_TriggerAfterStop verifies the debouncer stays usable after a
Stop.
*/
func TestDebouncer_TriggerAfterStop(t *testing.T) {
	collected := &emissions{}
	debouncer := debounce.New(20*time.Millisecond, collected.record)

	debouncer.Trigger("doomed")
	debouncer.Stop()
	debouncer.Trigger("survivor")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, []string{"survivor"}, collected.snapshot())
}
