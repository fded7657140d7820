// Package debounce delays calls until their input has been quiet for a
// fixed period.
package debounce

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Debouncer runs only the most recent scheduled function, once the quiet
// period has elapsed without another Trigger.
type Debouncer struct {
	mu    sync.Mutex
	quiet time.Duration
	clock Clock
	timer Timer
	gen   uint64
}

// New builds a Debouncer. A nil clock uses RealClock.
func New(quiet time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = RealClock
	}
	return &Debouncer{quiet: quiet, clock: clock}
}

// Trigger cancels any pending call and schedules fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call, if any. It reports whether one was dropped.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	had := d.timer != nil
	d.stopLocked()
	d.gen++
	return had
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Search gates a debounced network lookup behind a minimum trimmed length.
// Input below the threshold cancels the pending lookup and clears results
// immediately. Otherwise the lookup for the latest text runs once the input
// has been quiet for the debounce period.
type Search struct {
	deb      *Debouncer
	minChars int
	onSearch func(query string)
	onClear  func()
}

// NewSearch wires a Search. onClear may be nil.
func NewSearch(quiet time.Duration, minChars int, clock Clock, onSearch func(string), onClear func()) *Search {
	if onClear == nil {
		onClear = func() {}
	}
	return &Search{deb: New(quiet, clock), minChars: minChars, onSearch: onSearch, onClear: onClear}
}

// Input feeds the latest raw text.
func (s *Search) Input(text string) {
	query := Normalize(text)
	if !MeetsThreshold(query, s.minChars) {
		s.deb.Cancel()
		s.onClear()
		return
	}
	s.deb.Trigger(func() { s.onSearch(query) })
}

// Stop cancels any pending lookup, e.g. when the owning session ends.
func (s *Search) Stop() {
	s.deb.Cancel()
}

// MinChars is the shortest query that triggers a lookup.
func (s *Search) MinChars() int {
	return s.minChars
}

// Normalize is the query a raw input is looked up as.
func Normalize(text string) string {
	return strings.TrimSpace(text)
}

// MeetsThreshold counts runes, not bytes, so Arabic names need two letters too.
func MeetsThreshold(query string, minChars int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= minChars
}
