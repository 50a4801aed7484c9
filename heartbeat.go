// FILE: heartbeat.go
// Package main – Periodic telemetry heartbeat, independent of tick cadence.
//
// The 500ms tick loop is busy enough without also owning a human-facing
// summary cadence; a cron schedule runs alongside it and periodically logs
// (and optionally emails/Telegrams) a snapshot of open positions and
// aggregate R, so an operator gets a pulse even on a quiet symbol.
package main

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Heartbeat owns the cron schedule and the registry/broker it reports on.
type Heartbeat struct {
	cron     *cron.Cron
	registry *PositionRegistry
	broker   Broker
	symbol   string
	smtp     SMTPConfig
	telegram TelegramConfig
}

// NewHeartbeat builds a heartbeat that fires on spec, not yet started.
func NewHeartbeat(spec string, registry *PositionRegistry, broker Broker, symbol string, smtp SMTPConfig, telegram TelegramConfig) (*Heartbeat, error) {
	h := &Heartbeat{
		cron:     cron.New(),
		registry: registry,
		broker:   broker,
		symbol:   symbol,
		smtp:     smtp,
		telegram: telegram,
	}
	if _, err := h.cron.AddFunc(spec, h.tick); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Heartbeat) Start() { h.cron.Start() }
func (h *Heartbeat) Stop()  { h.cron.Stop() }

func (h *Heartbeat) tick() {
	ctx := context.Background()
	positions, err := h.broker.GetPositions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("heartbeat: get_positions failed")
		return
	}

	sumR := 0.0
	tick, err := h.broker.SymbolInfoTick(ctx)
	if err == nil {
		for _, pos := range positions {
			st, ok := h.registry.byTicket[pos.Ticket]
			if !ok || st.RiskAbs == 0 {
				continue
			}
			cur := tick.Ask
			if st.Direction == SideBuy {
				cur = tick.Bid
			}
			diff := cur - st.Entry
			if st.Direction == SideSell {
				diff = st.Entry - cur
			}
			sumR += diff / st.RiskAbs
		}
	}

	SetOpenPositions(len(positions))
	SetEquityR(sumR)
	log.Info().
		Str("symbol", h.symbol).
		Int("open_positions", len(positions)).
		Float64("equity_r", sumR).
		Msg("heartbeat")

	summary := fmt.Sprintf("%s: %d open, %.2fR", h.symbol, len(positions), sumR)
	sendTradeEmailAsync(h.smtp, fmt.Sprintf("%s heartbeat", h.symbol), summary)
	sendTradeTelegramAsync(h.telegram, summary)
}
