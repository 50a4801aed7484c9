// FILE: engine.go
// Package main – C6: the single cooperative tick loop.
//
// Engine owns the only mutable state the detector pipeline has: BotState
// (C3's fib/touch memory) and the PositionRegistry (C5's per-ticket
// bookkeeping). Both live for the process's lifetime and are never
// persisted — a restart starts cold, by design (spec's no-state-persistence
// non-goal). Run blocks until ctx is cancelled.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Engine drives C1-C5 once per tick at the configured cadence.
type Engine struct {
	broker   Broker
	cfg      Config
	registry *PositionRegistry
	state    BotState
	smtp     SMTPConfig

	lastCanTrade bool
	lastBarTime  time.Time
	stuckCycles  int
}

// NewEngine wires a fresh engine against broker/cfg; state starts empty.
func NewEngine(broker Broker, cfg Config, smtp SMTPConfig) *Engine {
	return &Engine{
		broker:       broker,
		cfg:          cfg,
		registry:     NewPositionRegistry(),
		smtp:         smtp,
		lastCanTrade: true,
	}
}

// Run loops until ctx is cancelled, recovering from any panic inside a
// single tick and resuming after a short cooldown — the loop itself must
// never die from a bad tick.
func (e *Engine) Run(ctx context.Context) {
	interval := time.Duration(e.cfg.TickIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("engine shutting down")
			return
		default:
		}
		sleep := e.tickSafely(ctx, interval)
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

// tickSafely runs one tick behind a recover() and returns how long the
// loop should sleep before the next one.
func (e *Engine) tickSafely(ctx context.Context, interval time.Duration) (sleep time.Duration) {
	sleep = interval
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("tick panicked, resuming after cooldown")
			sleep = 5 * time.Second
		}
	}()
	return e.tick(ctx, interval)
}

func (e *Engine) tick(ctx context.Context, interval time.Duration) time.Duration {
	now := time.Now().UTC()
	canTrade, reason := e.broker.CanTrade(now)
	if e.lastCanTrade && !canTrade {
		log.Info().Str("reason", reason).Msg("trading hours ended, resetting state")
		e.state.Reset()
	}
	e.lastCanTrade = canTrade
	if !canTrade {
		return time.Duration(e.cfg.OutOfSessionSec) * time.Second
	}

	bars, err := e.broker.GetHistoricalData(ctx, 2*e.cfg.WindowSize)
	if err != nil || len(bars) < 2 {
		log.Warn().Err(err).Msg("get_historical_data failed")
		return interval
	}

	latestTS := bars[len(bars)-1].Timestamp
	if latestTS.Equal(e.lastBarTime) {
		e.stuckCycles++
	} else {
		e.stuckCycles = 0
		e.lastBarTime = latestTS
	}
	if e.stuckCycles > 0 && e.stuckCycles < e.cfg.MaxWaitCycles {
		e.manageRisk(ctx)
		return interval
	}
	if e.stuckCycles >= e.cfg.MaxWaitCycles {
		e.stuckCycles = 0
	}

	closed := bars[len(bars)-2]
	info, err := e.broker.SymbolInfo(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("symbol_info failed")
		return interval
	}
	pip := PipSizeFor(info)

	legs := DetectLegs(bars, e.cfg.ThresholdPips, pip)
	for _, l := range legs {
		IncLeg(l.Direction)
	}
	swing, isSwing := ClassifySwing(legs)
	if isSwing {
		IncSwing(swing)
	}

	fp := fibParams{Fib705: e.cfg.Fib705, Fib90: e.cfg.Fib90}
	prevFirst := e.state.FirstTouch
	secondTouch := e.state.UpdateFib(legs, swing, isSwing, closed, fp)
	if e.state.FirstTouch != nil && e.state.FirstTouch != prevFirst {
		IncTouch("first")
	}
	if secondTouch {
		IncTouch("second")
		e.emitSignal(ctx, info)
	}

	e.manageRisk(ctx)
	return interval
}

// emitSignal runs C4 and, on a guarded intent, places the order. Either way
// it resets BotState; the bar window itself is refetched on every tick.
func (e *Engine) emitSignal(ctx context.Context, info SymbolInfo) {
	fib := *e.state.Fib
	swing := e.state.LastSwing

	intent, ok, reason, err := EvaluateSignal(ctx, e.broker, info, fib, swing, e.cfg.WinRatio)
	if err != nil {
		log.Warn().Err(err).Msg("evaluate_signal failed")
		e.state.Reset()
		return
	}
	if !ok {
		log.Info().Str("reason", reason).Msg("signal abandoned")
		e.state.Reset()
		return
	}

	logSignal(e.cfg.Symbol, intent.Side, intent.Entry, intent.SL, fib, "triggered_by_pullback")
	sendTradeEmailAsync(e.smtp, fmt.Sprintf("%s signal: %s", e.cfg.Symbol, intent.Side),
		fmt.Sprintf("entry=%.5f sl=%.5f tp=%.5f", intent.Entry, intent.SL, intent.TP))

	tick, err := e.broker.SymbolInfoTick(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("symbol_info_tick failed before placing order")
		e.state.Reset()
		return
	}
	res, err := PlaceSignal(ctx, e.broker, tick, intent, e.cfg.RiskPct)
	if err != nil {
		log.Warn().Err(err).Str("side", string(intent.Side)).Msg("place order failed")
		IncOrder(intent.Side, "error")
		sendTradeEmailAsync(e.smtp, fmt.Sprintf("%s order error", e.cfg.Symbol), err.Error())
	} else if !res.Done() {
		log.Warn().Int("retcode", res.Retcode).Str("comment", res.Comment).Msg("order rejected")
		IncOrder(intent.Side, "rejected")
		sendTradeEmailAsync(e.smtp, fmt.Sprintf("%s order rejected", e.cfg.Symbol),
			fmt.Sprintf("retcode=%d comment=%s", res.Retcode, res.Comment))
	} else {
		log.Info().Int64("ticket", res.Order).Float64("price", res.Price).Msg("order executed")
		IncOrder(intent.Side, "done")
		sendTradeEmailAsync(e.smtp, fmt.Sprintf("%s order executed", e.cfg.Symbol),
			fmt.Sprintf("ticket=%d price=%.5f", res.Order, res.Price))
	}

	e.state.Reset()
}

// manageRisk runs C5 unconditionally, logging each fired stage.
func (e *Engine) manageRisk(ctx context.Context) {
	info, err := e.broker.SymbolInfo(ctx)
	if err != nil {
		return
	}
	fired, err := e.registry.ManagePositions(ctx, e.broker, info, e.cfg.Risk)
	if err != nil {
		log.Warn().Err(err).Msg("manage_positions failed")
		return
	}
	for _, f := range fired {
		IncStageFire(f.StageID)
		logPositionEvent(e.cfg.Symbol, f.Ticket, f.StageID, "", 0, 0, f.NewSL, f.NewTP, f.ProfitR, "stage trigger")
	}
}
