// FILE: fib.go
// Package main – C3: the Fibonacci state machine, the heart of the bot.
//
// Owns BotState and mutates it on each closed bar (bars[len-2] — the last
// bar in the window is still forming). A FibSnapshot anchors a retracement
// between two extrema; the state machine installs one on a fresh swing,
// extends or invalidates it as price moves, and tracks the "two-touch"
// confirmation at the 0.705 level that triggers signal emission.
package main

import "time"

// FibSnapshot anchors one retracement frame. For a bullish snapshot, P1 is
// the low of the pullback leg and P0 is the high it retraces from, with
// P1 < P0; a bearish snapshot mirrors this (P1 > P0).
type FibSnapshot struct {
	P0       float64
	P705     float64
	P09      float64
	P1       float64
	Fib0Time time.Time
	Fib1Time time.Time
}

// BotState is the detector's mutable memory for a single symbol. It is
// reset at startup, when leaving trading hours, on a stop-loss-side
// invalidation of the current fib frame, and after every emitted signal —
// never persisted across restarts (spec §1 Non-goals).
type BotState struct {
	Fib        *FibSnapshot
	LastSwing  SwingType
	FirstTouch *Bar
	SecondTouch *Bar
}

// Reset clears all fields, matching the source's state.reset().
func (s *BotState) Reset() {
	s.Fib = nil
	s.LastSwing = SwingNone
	s.FirstTouch = nil
	s.SecondTouch = nil
}

// TwoTouchConfirmed reports whether the second touch has registered, the
// sole trigger condition for signal emission (spec §4.3 "Emission condition").
func (s *BotState) TwoTouchConfirmed() bool {
	return s.SecondTouch != nil
}

// fibParams bundles the strategy-level fib ratios so UpdateFib doesn't need
// the whole Config.
type fibParams struct {
	Fib705 float64
	Fib90  float64
}

// UpdateFib runs one detector step: given the legs of the current window
// (oldest to newest) and the penultimate ("closed") bar of the window, it
// installs, extends, invalidates, or leaves untouched the active
// FibSnapshot, and advances the two-touch protocol. It returns true when a
// second touch newly registers this step — the signal-emission trigger.
//
// This is the single unified branch spec §9 asks for in place of the
// source's duplicated len(legs)>2 / len(legs)<3 blocks: the update runs
// whenever a fib frame is active, or a swing just confirmed, regardless of
// how many legs are currently in view.
func (s *BotState) UpdateFib(legs []Leg, swingType SwingType, isSwing bool, closed Bar, fp fibParams) bool {
	// Phase 1 — initialize/replace the snapshot on a fresh swing signal.
	if isSwing && len(legs) >= 3 {
		l1 := legs[len(legs)-2]
		l2 := legs[len(legs)-1]
		switch {
		case swingType == SwingBullish && closed.Close > l1.StartValue:
			s.Reset()
			snap := fibFromExtremes(l2.EndValue, l2.EndTS, l2.StartValue, l2.StartTS, fp)
			s.Fib = &snap
			s.LastSwing = SwingBullish
		case swingType == SwingBearish && closed.Close < l1.StartValue:
			s.Reset()
			snap := fibFromExtremes(l2.EndValue, l2.EndTS, l2.StartValue, l2.StartTS, fp)
			s.Fib = &snap
			s.LastSwing = SwingBearish
		}
	}

	if s.Fib == nil {
		return false
	}

	switch s.LastSwing {
	case SwingBullish:
		switch {
		case closed.High > s.Fib.P0:
			// Extend: p0 moves outward, p1 stays fixed, touches clear.
			snap := fibFromExtremes(closed.High, closed.Timestamp, s.Fib.P1, s.Fib.Fib1Time, fp)
			s.Fib = &snap
			s.FirstTouch = nil
			s.SecondTouch = nil
		case closed.Low < s.Fib.P1:
			s.Reset()
		case closed.Low <= s.Fib.P705:
			return s.registerTouch(closed)
		}
	case SwingBearish:
		switch {
		case closed.Low < s.Fib.P0:
			snap := fibFromExtremes(closed.Low, closed.Timestamp, s.Fib.P1, s.Fib.Fib1Time, fp)
			s.Fib = &snap
			s.FirstTouch = nil
			s.SecondTouch = nil
		case closed.High > s.Fib.P1:
			s.Reset()
		case closed.High >= s.Fib.P705:
			return s.registerTouch(closed)
		}
	}
	return false
}

// registerTouch advances the first-empty-slot two-touch protocol: the first
// touch records unconditionally, the second only on an opposite-status bar
// (the reversal confirmation). At most one slot advances per bar.
func (s *BotState) registerTouch(b Bar) bool {
	bar := b
	if s.FirstTouch == nil {
		s.FirstTouch = &bar
		return false
	}
	if s.SecondTouch == nil && bar.Status() != s.FirstTouch.Status() {
		s.SecondTouch = &bar
		return true
	}
	return false
}

// fibFromExtremes is the fib arithmetic helper (spec's external
// "Fibonacci arithmetic helper" collaborator): linear interpolation between
// p0 (the 0.0 anchor) and p1 (the 1.0 anchor) producing the named levels.
// Swapping (p0,p1) yields the mirror snapshot, by construction.
func fibFromExtremes(p0 float64, p0Time time.Time, p1 float64, p1Time time.Time, fp fibParams) FibSnapshot {
	return FibSnapshot{
		P0:       p0,
		P1:       p1,
		P705:     p1 + fp.Fib705*(p0-p1),
		P09:      p1 + fp.Fib90*(p0-p1),
		Fib0Time: p0Time,
		Fib1Time: p1Time,
	}
}
