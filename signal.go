// FILE: signal.go
// Package main – C4: turn a confirmed two-touch into an order, or abandon it.
//
// EvaluateSignal runs once per tick, after UpdateFib reports a fresh second
// touch. It fetches the current top-of-book quote, derives the candidate
// stop from the active fib snapshot's 1.0 anchor, applies the directional
// and minimum-distance guards the source enforces before ever calling the
// broker, and returns an OrderIntent the caller can place — or a reason the
// signal was abandoned. Either way, the caller resets BotState; that reset
// is the caller's job, not this file's.
package main

import (
	"context"
	"fmt"
)

// OrderIntent is a fully-guarded, ready-to-place order: every field has
// already passed the directional and min-distance checks.
type OrderIntent struct {
	Side    OrderSide
	Entry   float64
	SL      float64
	TP      float64
	Comment string
}

// EvaluateSignal builds an OrderIntent for the swing direction currently
// held in BotState, or reports ok=false with a human-readable reason when
// the candidate stop fails a guard. It never places the order itself.
func EvaluateSignal(ctx context.Context, broker Broker, info SymbolInfo, fib FibSnapshot, swing SwingType, winRatio float64) (OrderIntent, bool, string, error) {
	tick, err := broker.SymbolInfoTick(ctx)
	if err != nil {
		return OrderIntent{}, false, "", fmt.Errorf("symbol_info_tick: %w", err)
	}

	pip := PipSizeFor(info)
	minAbsDist := MinStopDistance(info)
	if twoPips := 2 * pip; twoPips > minAbsDist {
		minAbsDist = twoPips
	}

	switch swing {
	case SwingBullish:
		return buySignal(tick, fib, minAbsDist, winRatio)
	case SwingBearish:
		return sellSignal(tick, fib, minAbsDist, winRatio)
	default:
		return OrderIntent{}, false, "no active swing", nil
	}
}

func buySignal(tick Tick, fib FibSnapshot, minAbsDist, winRatio float64) (OrderIntent, bool, string, error) {
	entry := tick.Ask
	sl := fib.P1

	if sl >= entry {
		return OrderIntent{}, false, "fib 1.0 is above entry price", nil
	}
	if entry-sl < minAbsDist {
		adj := entry - minAbsDist
		if adj <= 0 {
			return OrderIntent{}, false, "invalid SL distance", nil
		}
		sl = adj
	}
	if sl >= entry {
		return OrderIntent{}, false, "SL still >= entry after adjust", nil
	}

	dist := entry - sl
	tp := entry + dist*winRatio
	return OrderIntent{Side: SideBuy, Entry: entry, SL: sl, TP: tp, Comment: "Bullish Swing bullish"}, true, "", nil
}

func sellSignal(tick Tick, fib FibSnapshot, minAbsDist, winRatio float64) (OrderIntent, bool, string, error) {
	entry := tick.Bid
	sl := fib.P1

	if sl <= entry {
		return OrderIntent{}, false, "fib 1.0 is below entry price", nil
	}
	if sl-entry < minAbsDist {
		sl = entry + minAbsDist
	}
	if sl <= entry {
		return OrderIntent{}, false, "SL still <= entry after adjust", nil
	}

	dist := sl - entry
	tp := entry - dist*winRatio
	return OrderIntent{Side: SideSell, Entry: entry, SL: sl, TP: tp, Comment: "Bearish Swing bearish"}, true, "", nil
}

// PlaceSignal submits an already-guarded OrderIntent to the broker and
// reports whether the broker confirmed it (retcode 10009).
func PlaceSignal(ctx context.Context, broker Broker, tick Tick, intent OrderIntent, riskPct float64) (OrderResult, error) {
	switch intent.Side {
	case SideBuy:
		return broker.OpenBuyPosition(ctx, tick, intent.SL, intent.TP, intent.Comment, riskPct)
	case SideSell:
		return broker.OpenSellPosition(ctx, tick, intent.SL, intent.TP, intent.Comment, riskPct)
	default:
		return OrderResult{}, fmt.Errorf("unknown order side %q", intent.Side)
	}
}
