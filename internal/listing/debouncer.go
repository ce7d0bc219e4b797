// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package listing

import (
	"sync"
	"time"
)

// DebounceConfig holds debouncer configuration.
type DebounceConfig struct {
	// Interval is the debounce window duration.
	// Triggers within this window are coalesced into a single call.
	Interval time.Duration
	// MaxWait is the maximum time to wait before firing even if triggers
	// keep coming. Zero means no limit.
	MaxWait time.Duration
}

// DefaultDebounceConfig returns default debounce configuration.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{
		Interval: 300 * time.Millisecond,
	}
}

// Debouncer runs fn once after triggers stop arriving for Interval.
// It owns a single timer.
type Debouncer struct {
	config DebounceConfig
	fn     func()

	mu        sync.Mutex
	timer     *time.Timer
	seq       uint64
	firstSeen time.Time
	stopped   bool
}

// NewDebouncer creates a debouncer. Timer-driven calls of fn run on their
// own goroutine, so callers may hold locks while calling Trigger.
func NewDebouncer(config DebounceConfig, fn func()) *Debouncer {
	if config.Interval <= 0 {
		config.Interval = DefaultDebounceConfig().Interval
	}
	return &Debouncer{config: config, fn: fn}
}

// Trigger arms the timer, or restarts it if it is already armed.
func (d *Debouncer) Trigger() {
	now := time.Now()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		if d.config.MaxWait > 0 && now.Sub(d.firstSeen) >= d.config.MaxWait {
			d.disarmLocked()
			d.mu.Unlock()
			go d.fn()
			return
		}
		d.timer.Stop()
	} else {
		d.firstSeen = now
	}

	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.config.Interval, func() { d.fire(seq) })
	d.mu.Unlock()
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if d.timer == nil || seq != d.seq {
		// Superseded or cancelled.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}

func (d *Debouncer) disarmLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.seq++
	return true
}

// Pending reports whether the timer is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel disarms the timer without calling fn. It reports whether a call
// was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disarmLocked()
}

// Stop cancels any pending call and ignores further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.disarmLocked()
	d.mu.Unlock()
}
