// FILE: priceutil.go
// Package main – Pip-size and digit-aware price rounding.
//
// MT5 reports prices to a fixed number of decimal digits per instrument
// (SymbolInfo.Digits). Every price this bot hands back to the broker –
// stop-loss, take-profit, modified levels – is rounded to that precision
// first, the same way the source's `_round(p)` helper does before every
// order/modify call.
package main

import "github.com/shopspring/decimal"

// PipSizeFor derives the pip size from an instrument's SymbolInfo: 5- and
// 3-digit FX/CFD quotes carry a fractional pip, so a pip is ten points;
// everything else quotes in whole pips already.
func PipSizeFor(info SymbolInfo) float64 {
	return PipSize(info.Point, info.Digits)
}

// MinStopDistance is the broker's minimum allowed distance between price
// and SL/TP: the terminal's reported stops level, never less than 3 points.
func MinStopDistance(info SymbolInfo) float64 {
	floor := 3 * info.Point
	reported := info.TradeStopsLevel * info.Point
	if reported > floor {
		return reported
	}
	return floor
}

// RoundToDigits rounds p to the instrument's quoted precision using
// banker's-rounding-free decimal arithmetic, avoiding the float
// string-formatting round trip the source relies on.
func RoundToDigits(p float64, digits int) float64 {
	d := decimal.NewFromFloat(p).Round(int32(digits))
	f, _ := d.Float64()
	return f
}
