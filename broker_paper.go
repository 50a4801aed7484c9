// FILE: broker_paper.go
// Package main – In-memory paper broker (no terminal or network connection).
//
// PaperBroker simulates an MT5 terminal for dry runs: it synthesizes an
// OHLC bar history from a seeded random walk, tracks simulated positions
// in memory, and applies SL/TP crossings against each simulated tick. It
// never touches a real terminal; broker_bridge.go talks to one instead.
package main

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PaperBroker is a self-contained MT5-shaped simulator.
type PaperBroker struct {
	mu sync.Mutex

	symbol string
	info   SymbolInfo
	hours  TradingHours
	tz     string

	bars       []Bar
	nextPrice  float64
	positions  map[int64]*paperPosition
	nextTicket int64
	rng        *rand.Rand
}

type paperPosition struct {
	ticket    int64
	side      OrderSide
	priceOpen float64
	sl, tp    float64
	volume    float64
}

// NewPaperBroker seeds a bar history around startPrice so the detector has
// something to chew on from tick one.
func NewPaperBroker(symbol string, info SymbolInfo, hours TradingHours, tz string, startPrice float64, seed int64) *PaperBroker {
	p := &PaperBroker{
		symbol:    symbol,
		info:      info,
		hours:     hours,
		tz:        tz,
		nextPrice: startPrice,
		positions: make(map[int64]*paperPosition),
		rng:       rand.New(rand.NewSource(seed)),
	}
	now := time.Now().UTC().Add(-time.Duration(200) * time.Minute)
	price := startPrice
	for i := 0; i < 200; i++ {
		price = p.walk(price)
		p.bars = append(p.bars, p.syntheticBar(now.Add(time.Duration(i)*time.Minute), price))
	}
	return p
}

func (p *PaperBroker) walk(price float64) float64 {
	delta := (p.rng.Float64() - 0.5) * 2 * p.info.Point * 20
	next := price + delta
	if next <= 0 {
		next = price
	}
	return next
}

func (p *PaperBroker) syntheticBar(ts time.Time, close float64) Bar {
	spread := p.info.Point * 5
	return Bar{
		Timestamp: ts,
		Open:      close - spread/2,
		High:      close + spread,
		Low:       close - spread,
		Close:     close,
	}
}

func (p *PaperBroker) Name() string { return "paper" }

func (p *PaperBroker) Initialize(ctx context.Context) error { return nil }
func (p *PaperBroker) Shutdown()                            {}

func (p *PaperBroker) CanTrade(now time.Time) (bool, string) {
	return inSession(now, p.tz, p.hours)
}

// GetHistoricalData advances the simulated series by one bar each call and
// returns the trailing count bars, mimicking a live feed that keeps
// producing new candles between polls.
func (p *PaperBroker) GetHistoricalData(ctx context.Context, count int) ([]Bar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextPrice = p.walk(p.nextPrice)
	last := p.bars[len(p.bars)-1]
	p.bars = append(p.bars, p.syntheticBar(last.Timestamp.Add(time.Minute), p.nextPrice))
	p.settlePositions()

	if len(p.bars) > count {
		return append([]Bar(nil), p.bars[len(p.bars)-count:]...), nil
	}
	return append([]Bar(nil), p.bars...), nil
}

func (p *PaperBroker) GetPositions(ctx context.Context) ([]Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, Position{
			Ticket: pos.ticket, Side: pos.side, PriceOpen: pos.priceOpen,
			SL: pos.sl, TP: pos.tp, Volume: pos.volume,
		})
	}
	return out, nil
}

func (p *PaperBroker) SymbolInfo(ctx context.Context) (SymbolInfo, error) { return p.info, nil }

func (p *PaperBroker) SymbolInfoTick(ctx context.Context) (Tick, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	spread := p.info.Point * 2
	return Tick{Time: time.Now().UTC(), Bid: p.nextPrice - spread/2, Ask: p.nextPrice + spread/2}, nil
}

func (p *PaperBroker) OpenBuyPosition(ctx context.Context, tick Tick, sl, tp float64, comment string, riskPct float64) (OrderResult, error) {
	return p.open(SideBuy, tick.Ask, sl, tp)
}

func (p *PaperBroker) OpenSellPosition(ctx context.Context, tick Tick, sl, tp float64, comment string, riskPct float64) (OrderResult, error) {
	return p.open(SideSell, tick.Bid, sl, tp)
}

func (p *PaperBroker) open(side OrderSide, price, sl, tp float64) (OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextTicket++
	ticket := p.nextTicket
	clientOrderID := uuid.New().String()
	p.positions[ticket] = &paperPosition{ticket: ticket, side: side, priceOpen: price, sl: sl, tp: tp, volume: 0.01}
	return OrderResult{Retcode: RetcodeDone, Order: ticket, Price: price, Volume: 0.01, Comment: clientOrderID}, nil
}

func (p *PaperBroker) ModifySLTP(ctx context.Context, ticket int64, newSL, newTP float64) (OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos, ok := p.positions[ticket]
	if !ok {
		return OrderResult{Retcode: 10013}, nil // invalid request: unknown ticket
	}
	pos.sl, pos.tp = newSL, newTP
	return OrderResult{Retcode: RetcodeDone, Order: ticket}, nil
}

func (p *PaperBroker) CloseAllPositions(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.positions = make(map[int64]*paperPosition)
	return nil
}

// settlePositions closes any simulated position whose SL/TP the latest bar
// crossed, the same way a real terminal would on the next tick.
func (p *PaperBroker) settlePositions() {
	last := p.bars[len(p.bars)-1]
	for ticket, pos := range p.positions {
		switch pos.side {
		case SideBuy:
			if pos.sl > 0 && last.Low <= pos.sl {
				delete(p.positions, ticket)
			} else if pos.tp > 0 && last.High >= pos.tp {
				delete(p.positions, ticket)
			}
		case SideSell:
			if pos.sl > 0 && last.High >= pos.sl {
				delete(p.positions, ticket)
			} else if pos.tp > 0 && last.Low <= pos.tp {
				delete(p.positions, ticket)
			}
		}
	}
}
