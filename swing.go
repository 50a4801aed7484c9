// FILE: swing.go
// Package main – C2: classify the last three legs as a swing, or not.
//
// ClassifySwing is pure and deterministic: given the last three legs L0, L1,
// L2 of its input (oldest to newest), it decides whether they form a bullish up-down-up
// pullback pattern (or the bearish mirror) whose final leg exceeds the
// first leg's extreme.
package main

// SwingType is which direction a confirmed swing points.
type SwingType string

const (
	SwingBullish SwingType = "bullish"
	SwingBearish SwingType = "bearish"
	SwingNone    SwingType = ""
)

// ClassifySwing operates only when at least three legs exist and looks only
// at the last three. It never mutates its input and never looks beyond it.
func ClassifySwing(legs []Leg) (SwingType, bool) {
	if len(legs) < 3 {
		return SwingNone, false
	}
	l0, l1, l2 := legs[len(legs)-3], legs[len(legs)-2], legs[len(legs)-1]

	if l0.Direction == LegUp && l1.Direction == LegDown && l2.Direction == LegUp {
		if l2.EndValue > l0.EndValue {
			return SwingBullish, true
		}
	}
	if l0.Direction == LegDown && l1.Direction == LegUp && l2.Direction == LegDown {
		if l2.EndValue < l0.EndValue {
			return SwingBearish, true
		}
	}
	return SwingNone, false
}
