package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFP = fibParams{Fib705: 0.705, Fib90: 0.9}

func TestBotStateReset(t *testing.T) {
	snap := FibSnapshot{P0: 1, P1: 2}
	bar := Bar{}
	s := BotState{Fib: &snap, LastSwing: SwingBullish, FirstTouch: &bar, SecondTouch: &bar}
	s.Reset()
	assert.Nil(t, s.Fib)
	assert.Equal(t, SwingNone, s.LastSwing)
	assert.Nil(t, s.FirstTouch)
	assert.Nil(t, s.SecondTouch)
	assert.False(t, s.TwoTouchConfirmed())
}

func TestFibFromExtremes(t *testing.T) {
	snap := fibFromExtremes(1.0150, time.Time{}, 1.0050, time.Time{}, testFP)
	assert.InDelta(t, 1.0150, snap.P0, 1e-9)
	assert.InDelta(t, 1.0050, snap.P1, 1e-9)
	assert.InDelta(t, 1.01205, snap.P705, 1e-9)
	assert.InDelta(t, 1.0140, snap.P09, 1e-9)
}

func TestUpdateFibBullishTwoTouchSequence(t *testing.T) {
	legs := []Leg{
		mkLeg(LegUp, 1.0000, 1.0100),
		mkLeg(LegDown, 1.0100, 1.0050),
		mkLeg(LegUp, 1.0050, 1.0150),
	}

	var s BotState

	// Step 1: fresh swing installs the snapshot; this bar neither extends
	// nor touches.
	initBar := Bar{Open: 1.0110, High: 1.0130, Low: 1.0125, Close: 1.0105}
	touched := s.UpdateFib(legs, SwingBullish, true, initBar, testFP)
	assert.False(t, touched)
	require.NotNil(t, s.Fib)
	assert.InDelta(t, 1.0150, s.Fib.P0, 1e-9)
	assert.InDelta(t, 1.0050, s.Fib.P1, 1e-9)

	// Step 2: first touch, bearish bar.
	firstTouch := Bar{Open: 1.0125, High: 1.0130, Low: 1.0115, Close: 1.0115}
	touched = s.UpdateFib(nil, SwingNone, false, firstTouch, testFP)
	assert.False(t, touched)
	require.NotNil(t, s.FirstTouch)
	assert.Nil(t, s.SecondTouch)

	// Step 3: second touch, opposite (bullish) bar confirms.
	secondTouch := Bar{Open: 1.0110, High: 1.0125, Low: 1.0115, Close: 1.0118}
	touched = s.UpdateFib(nil, SwingNone, false, secondTouch, testFP)
	assert.True(t, touched)
	require.NotNil(t, s.SecondTouch)
	assert.True(t, s.TwoTouchConfirmed())
}

func TestUpdateFibBullishSameStatusDoesNotConfirm(t *testing.T) {
	legs := []Leg{
		mkLeg(LegUp, 1.0000, 1.0100),
		mkLeg(LegDown, 1.0100, 1.0050),
		mkLeg(LegUp, 1.0050, 1.0150),
	}
	var s BotState
	initBar := Bar{Open: 1.0110, High: 1.0130, Low: 1.0125, Close: 1.0105}
	s.UpdateFib(legs, SwingBullish, true, initBar, testFP)

	firstTouch := Bar{Open: 1.0125, High: 1.0130, Low: 1.0115, Close: 1.0115}
	s.UpdateFib(nil, SwingNone, false, firstTouch, testFP)

	// Same (bearish) status again: first touch slot already filled, second
	// never advances.
	again := Bar{Open: 1.0125, High: 1.0130, Low: 1.0116, Close: 1.0116}
	touched := s.UpdateFib(nil, SwingNone, false, again, testFP)
	assert.False(t, touched)
	assert.Nil(t, s.SecondTouch)
}

func TestUpdateFibInvalidatesOnStopSideBreach(t *testing.T) {
	legs := []Leg{
		mkLeg(LegUp, 1.0000, 1.0100),
		mkLeg(LegDown, 1.0100, 1.0050),
		mkLeg(LegUp, 1.0050, 1.0150),
	}
	var s BotState
	initBar := Bar{Open: 1.0110, High: 1.0130, Low: 1.0125, Close: 1.0105}
	s.UpdateFib(legs, SwingBullish, true, initBar, testFP)
	require.NotNil(t, s.Fib)

	breach := Bar{Open: 1.0040, High: 1.0045, Low: 1.0040, Close: 1.0040}
	touched := s.UpdateFib(nil, SwingNone, false, breach, testFP)
	assert.False(t, touched)
	assert.Nil(t, s.Fib)
}

func TestUpdateFibExtendsOnNewExtreme(t *testing.T) {
	legs := []Leg{
		mkLeg(LegUp, 1.0000, 1.0100),
		mkLeg(LegDown, 1.0100, 1.0050),
		mkLeg(LegUp, 1.0050, 1.0150),
	}
	var s BotState
	initBar := Bar{Open: 1.0110, High: 1.0130, Low: 1.0125, Close: 1.0105}
	s.UpdateFib(legs, SwingBullish, true, initBar, testFP)

	extend := Bar{Open: 1.0160, High: 1.0200, Low: 1.0160, Close: 1.0195}
	s.UpdateFib(nil, SwingNone, false, extend, testFP)
	assert.InDelta(t, 1.0200, s.Fib.P0, 1e-9)
	assert.InDelta(t, 1.0050, s.Fib.P1, 1e-9)
	assert.Nil(t, s.FirstTouch)
}
