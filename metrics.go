// FILE: metrics.go
// Package main – Prometheus metrics for observability.
//
// Exposes the detector pipeline's primary counters and gauges:
//   • bot_legs_total{direction}        – Legs detected (up|down)
//   • bot_swings_total{type}           – Swings classified (bullish|bearish)
//   • bot_touches_total{which}         – Two-touch registrations (first|second)
//   • bot_orders_total{side,result}    – Orders placed, by side and broker result
//   • bot_stage_fires_total{stage}     – Risk-stage ratchets applied
//   • bot_open_positions               – Open positions the broker reported at the last heartbeat (gauge)
//   • bot_equity_r                     – Aggregate open profit, in R units (gauge)
//
// Registered in init() and served by the HTTP handler started in main.go at
// /metrics (Prometheus text exposition format).
package main

import "github.com/prometheus/client_golang/prometheus"

var (
	mtxLegs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_legs_total",
			Help: "Legs detected by direction",
		},
		[]string{"direction"},
	)

	mtxSwings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_swings_total",
			Help: "Swings classified by type",
		},
		[]string{"type"},
	)

	mtxTouches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_touches_total",
			Help: "Two-touch protocol registrations",
		},
		[]string{"which"}, // first|second
	)

	mtxOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders placed, by side and broker result",
		},
		[]string{"side", "result"}, // result: done|rejected|error
	)

	mtxStageFires = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_stage_fires_total",
			Help: "Risk-schedule stage ratchets applied",
		},
		[]string{"stage"},
	)

	mtxOpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_open_positions",
			Help: "Open positions reported by the broker at the last heartbeat",
		},
	)

	mtxEquityR = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_equity_r",
			Help: "Sum of live profit across open positions, in R units",
		},
	)
)

func init() {
	prometheus.MustRegister(mtxLegs, mtxSwings, mtxTouches)
	prometheus.MustRegister(mtxOrders, mtxStageFires)
	prometheus.MustRegister(mtxOpenPositions, mtxEquityR)
}

func IncLeg(direction LegDirection)     { mtxLegs.WithLabelValues(string(direction)).Inc() }
func IncSwing(swing SwingType)          { mtxSwings.WithLabelValues(string(swing)).Inc() }
func IncTouch(which string)             { mtxTouches.WithLabelValues(which).Inc() }
func IncOrder(side OrderSide, result string) {
	mtxOrders.WithLabelValues(string(side), result).Inc()
}
func IncStageFire(stage string)     { mtxStageFires.WithLabelValues(stage).Inc() }
func SetOpenPositions(n int)        { mtxOpenPositions.Set(float64(n)) }
func SetEquityR(sumR float64)       { mtxEquityR.Set(sumR) }
