package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipSizeFor(t *testing.T) {
	assert.InDelta(t, 0.0001, PipSizeFor(SymbolInfo{Point: 0.00001, Digits: 5}), 1e-12)
	assert.InDelta(t, 0.01, PipSizeFor(SymbolInfo{Point: 0.01, Digits: 2}), 1e-12)
}

func TestMinStopDistanceFallsBackToFloor(t *testing.T) {
	info := SymbolInfo{Point: 0.00001, TradeStopsLevel: 0}
	assert.InDelta(t, 3*0.00001, MinStopDistance(info), 1e-12)
}

func TestMinStopDistanceUsesReportedWhenLarger(t *testing.T) {
	info := SymbolInfo{Point: 0.00001, TradeStopsLevel: 10}
	assert.InDelta(t, 10*0.00001, MinStopDistance(info), 1e-12)
}

func TestRoundToDigits(t *testing.T) {
	assert.InDelta(t, 1.10080, RoundToDigits(1.100795, 5), 1e-9)
	assert.InDelta(t, 1.11, RoundToDigits(1.1051, 2), 1e-9)
}
