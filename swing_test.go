package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mkLeg(dir LegDirection, start, end float64) Leg {
	return Leg{StartValue: start, EndValue: end, Direction: dir}
}

func TestClassifySwingTooFewLegs(t *testing.T) {
	swing, ok := ClassifySwing([]Leg{mkLeg(LegUp, 1.0, 1.1), mkLeg(LegDown, 1.1, 1.05)})
	assert.False(t, ok)
	assert.Equal(t, SwingNone, swing)
}

func TestClassifySwingBullish(t *testing.T) {
	legs := []Leg{
		mkLeg(LegUp, 1.0000, 1.0100),
		mkLeg(LegDown, 1.0100, 1.0050),
		mkLeg(LegUp, 1.0050, 1.0150),
	}
	swing, ok := ClassifySwing(legs)
	assert.True(t, ok)
	assert.Equal(t, SwingBullish, swing)
}

func TestClassifySwingBearish(t *testing.T) {
	legs := []Leg{
		mkLeg(LegDown, 1.0100, 1.0000),
		mkLeg(LegUp, 1.0000, 1.0050),
		mkLeg(LegDown, 1.0050, 0.9950),
	}
	swing, ok := ClassifySwing(legs)
	assert.True(t, ok)
	assert.Equal(t, SwingBearish, swing)
}

func TestClassifySwingFailsWhenFinalLegDoesNotExceedFirst(t *testing.T) {
	legs := []Leg{
		mkLeg(LegUp, 1.0000, 1.0100),
		mkLeg(LegDown, 1.0100, 1.0050),
		mkLeg(LegUp, 1.0050, 1.0080), // never exceeds l0.EndValue
	}
	_, ok := ClassifySwing(legs)
	assert.False(t, ok)
}

func TestClassifySwingWrongDirectionPattern(t *testing.T) {
	legs := []Leg{
		mkLeg(LegUp, 1.0000, 1.0100),
		mkLeg(LegUp, 1.0100, 1.0200),
		mkLeg(LegUp, 1.0200, 1.0300),
	}
	_, ok := ClassifySwing(legs)
	assert.False(t, ok)
}
