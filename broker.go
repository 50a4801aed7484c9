// FILE: broker.go
// Package main – Broker abstractions shared by all execution backends.
//
// This file defines the minimal surface the trading loop needs to talk to an
// MT5-style execution backend (paper or bridged). Two concrete
// implementations live in separate files:
//   - broker_paper.go  – in-memory paper broker (dry-run/demo)
//   - broker_bridge.go – HTTP+websocket client for an MT5 sidecar
package main

import (
	"context"
	"fmt"
	"time"
)

// OrderSide is the side of a trade.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// RetcodeDone is the MT5 "request completed" retcode; every order/modify
// result is compared against this one value, never a range.
const RetcodeDone = 10009

// SymbolInfo is the static, rarely-changing part of an instrument's
// description.
type SymbolInfo struct {
	Point           float64
	Digits          int
	TradeStopsLevel float64
	TradeTickValue  float64
}

// Tick is a top-of-book quote.
type Tick struct {
	Time time.Time
	Bid  float64
	Ask  float64
}

// Position mirrors the fields the risk manager needs from an open position;
// everything else the broker may track is out of scope.
type Position struct {
	Ticket    int64
	Side      OrderSide
	PriceOpen float64
	SL        float64
	TP        float64
	Volume    float64
}

// OrderResult is the normalized outcome of placing or modifying an order.
type OrderResult struct {
	Retcode int
	Order   int64
	Price   float64
	Volume  float64
	Comment string
}

// Done reports whether the broker considers the request fully executed.
func (r OrderResult) Done() bool { return r.Retcode == RetcodeDone }

// Broker is the minimal surface C4/C5/C6 need to operate against a
// terminal, real or simulated.
type Broker interface {
	Name() string
	Initialize(ctx context.Context) error
	Shutdown()

	// CanTrade reports whether now falls inside the configured trading
	// session, and a human-readable reason when it doesn't.
	CanTrade(now time.Time) (bool, string)

	GetHistoricalData(ctx context.Context, count int) ([]Bar, error)
	GetPositions(ctx context.Context) ([]Position, error)
	SymbolInfo(ctx context.Context) (SymbolInfo, error)
	SymbolInfoTick(ctx context.Context) (Tick, error)

	OpenBuyPosition(ctx context.Context, tick Tick, sl, tp float64, comment string, riskPct float64) (OrderResult, error)
	OpenSellPosition(ctx context.Context, tick Tick, sl, tp float64, comment string, riskPct float64) (OrderResult, error)
	ModifySLTP(ctx context.Context, ticket int64, newSL, newTP float64) (OrderResult, error)
	CloseAllPositions(ctx context.Context) error
}

// inSession reports whether now, converted to tz, falls within hours. A
// window whose End clock time is before its Start (e.g. the New York
// session, 17:30-02:30) is treated as spanning midnight.
func inSession(now time.Time, tz string, hours TradingHours) (bool, string) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start, errS := time.ParseInLocation("15:04", hours.Start, loc)
	end, errE := time.ParseInLocation("15:04", hours.End, loc)
	if errS != nil || errE != nil {
		return true, "trading hours unset, treating as always-on"
	}
	cur := time.Date(0, 1, 1, local.Hour(), local.Minute(), 0, 0, loc)
	start = time.Date(0, 1, 1, start.Hour(), start.Minute(), 0, 0, loc)
	end = time.Date(0, 1, 1, end.Hour(), end.Minute(), 0, 0, loc)

	var in bool
	if end.Before(start) {
		in = !cur.Before(start) || cur.Before(end)
	} else {
		in = !cur.Before(start) && cur.Before(end)
	}
	if in {
		return true, ""
	}
	return false, fmt.Sprintf("outside trading hours %s-%s %s", hours.Start, hours.End, tz)
}
