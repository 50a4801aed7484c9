package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mkBar(minute int, o, h, l, c float64) Bar {
	return Bar{
		Timestamp: time.Date(2026, 1, 1, 0, minute, 0, 0, time.UTC),
		Open:      o, High: h, Low: l, Close: c,
	}
}

func TestPipSize(t *testing.T) {
	assert.Equal(t, 0.0001, PipSize(0.00001, 5))
	assert.Equal(t, 0.001, PipSize(0.0001, 3))
	assert.Equal(t, 0.01, PipSize(0.01, 2))
}

func TestDetectLegsTooShort(t *testing.T) {
	assert.Nil(t, DetectLegs(nil, 6, 0.0001))
	assert.Nil(t, DetectLegs([]Bar{mkBar(0, 1, 1, 1, 1)}, 6, 0.0001))
}

func TestDetectLegsUpThenDown(t *testing.T) {
	pip := 0.0001
	bars := []Bar{
		mkBar(0, 1.1000, 1.1000, 1.0990, 1.0995),
		mkBar(1, 1.0995, 1.1010, 1.0995, 1.1008),
		mkBar(2, 1.1008, 1.1070, 1.1008, 1.1065), // up move clears threshold
		mkBar(3, 1.1065, 1.1065, 1.1000, 1.1005), // down move clears threshold
	}
	legs := DetectLegs(bars, 6, pip)
	if assert.GreaterOrEqual(t, len(legs), 1) {
		assert.Equal(t, LegUp, legs[0].Direction)
	}
}

func TestDetectLegsAlternateDirection(t *testing.T) {
	pip := 0.0001
	bars := []Bar{
		mkBar(0, 1.1000, 1.1000, 1.0990, 1.0995),
		mkBar(1, 1.0995, 1.1070, 1.0995, 1.1065),
		mkBar(2, 1.1065, 1.1065, 1.1000, 1.1005),
		mkBar(3, 1.1005, 1.1075, 1.1005, 1.1070),
	}
	legs := DetectLegs(bars, 6, pip)
	for i := 1; i < len(legs); i++ {
		assert.NotEqual(t, legs[i-1].Direction, legs[i].Direction)
	}
}

func TestBarStatus(t *testing.T) {
	assert.Equal(t, Bullish, mkBar(0, 1.0, 1.1, 0.9, 1.05).Status())
	assert.Equal(t, Bearish, mkBar(0, 1.05, 1.1, 0.9, 1.0).Status())
	assert.Equal(t, Bullish, mkBar(0, 1.0, 1.1, 0.9, 1.0).Status())
}

func TestSortBars(t *testing.T) {
	bars := []Bar{mkBar(2, 1, 1, 1, 1), mkBar(0, 1, 1, 1, 1), mkBar(1, 1, 1, 1, 1)}
	sortBars(bars)
	assert.True(t, bars[0].Timestamp.Before(bars[1].Timestamp))
	assert.True(t, bars[1].Timestamp.Before(bars[2].Timestamp))
}
