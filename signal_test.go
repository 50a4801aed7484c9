package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroker struct {
	tick      Tick
	tickErr   error
	positions []Position
	info      SymbolInfo
	lastOpen  struct {
		side    OrderSide
		sl, tp  float64
		comment string
	}
	openResult OrderResult
	modifyRes  OrderResult
}

func (f *fakeBroker) Name() string                              { return "fake" }
func (f *fakeBroker) Initialize(ctx context.Context) error       { return nil }
func (f *fakeBroker) Shutdown()                                  {}
func (f *fakeBroker) CanTrade(now time.Time) (bool, string)      { return true, "" }
func (f *fakeBroker) GetHistoricalData(ctx context.Context, n int) ([]Bar, error) {
	return nil, nil
}
func (f *fakeBroker) GetPositions(ctx context.Context) ([]Position, error) { return f.positions, nil }
func (f *fakeBroker) SymbolInfo(ctx context.Context) (SymbolInfo, error)   { return f.info, nil }
func (f *fakeBroker) SymbolInfoTick(ctx context.Context) (Tick, error)     { return f.tick, f.tickErr }
func (f *fakeBroker) OpenBuyPosition(ctx context.Context, tick Tick, sl, tp float64, comment string, riskPct float64) (OrderResult, error) {
	f.lastOpen.side, f.lastOpen.sl, f.lastOpen.tp, f.lastOpen.comment = SideBuy, sl, tp, comment
	return f.openResult, nil
}
func (f *fakeBroker) OpenSellPosition(ctx context.Context, tick Tick, sl, tp float64, comment string, riskPct float64) (OrderResult, error) {
	f.lastOpen.side, f.lastOpen.sl, f.lastOpen.tp, f.lastOpen.comment = SideSell, sl, tp, comment
	return f.openResult, nil
}
func (f *fakeBroker) ModifySLTP(ctx context.Context, ticket int64, newSL, newTP float64) (OrderResult, error) {
	return f.modifyRes, nil
}
func (f *fakeBroker) CloseAllPositions(ctx context.Context) error { return nil }

func fxInfo() SymbolInfo { return SymbolInfo{Point: 0.00001, Digits: 5, TradeStopsLevel: 0, TradeTickValue: 1.0} }

func TestEvaluateSignalBuy(t *testing.T) {
	broker := &fakeBroker{tick: Tick{Bid: 1.09998, Ask: 1.10000}}
	fib := FibSnapshot{P0: 1.1050, P1: 1.0950}
	intent, ok, reason, err := EvaluateSignal(context.Background(), broker, fxInfo(), fib, SwingBullish, 2.0)
	require.NoError(t, err)
	require.True(t, ok, reason)
	assert.Equal(t, SideBuy, intent.Side)
	assert.InDelta(t, 1.10000, intent.Entry, 1e-9)
	assert.InDelta(t, 1.0950, intent.SL, 1e-9)
	dist := intent.Entry - intent.SL
	assert.InDelta(t, intent.Entry+dist*2.0, intent.TP, 1e-9)
}

func TestEvaluateSignalSell(t *testing.T) {
	broker := &fakeBroker{tick: Tick{Bid: 1.10000, Ask: 1.10002}}
	fib := FibSnapshot{P0: 1.0950, P1: 1.1050}
	intent, ok, reason, err := EvaluateSignal(context.Background(), broker, fxInfo(), fib, SwingBearish, 2.0)
	require.NoError(t, err)
	require.True(t, ok, reason)
	assert.Equal(t, SideSell, intent.Side)
	assert.InDelta(t, 1.10000, intent.Entry, 1e-9)
	assert.InDelta(t, 1.1050, intent.SL, 1e-9)
}

func TestEvaluateSignalNoSwingAbandons(t *testing.T) {
	broker := &fakeBroker{tick: Tick{Bid: 1.1, Ask: 1.1001}}
	_, ok, reason, err := EvaluateSignal(context.Background(), broker, fxInfo(), FibSnapshot{}, SwingNone, 2.0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestBuySignalAbandonsWhenSLAboveEntry(t *testing.T) {
	tick := Tick{Bid: 1.09998, Ask: 1.10000}
	fib := FibSnapshot{P0: 1.1050, P1: 1.1010} // SL above entry
	_, ok, reason, err := buySignal(tick, fib, 0.0002, 2.0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestBuySignalNudgesSLWithinMinDistance(t *testing.T) {
	tick := Tick{Bid: 1.09998, Ask: 1.10000}
	fib := FibSnapshot{P0: 1.1050, P1: 1.09999} // within min distance, needs nudge
	intent, ok, _, err := buySignal(tick, fib, 0.0002, 2.0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.10000-0.0002, intent.SL, 1e-9)
}

func TestSellSignalAbandonsWhenSLBelowEntry(t *testing.T) {
	tick := Tick{Bid: 1.10000, Ask: 1.10002}
	fib := FibSnapshot{P0: 1.0950, P1: 1.0990} // SL below entry
	_, ok, reason, err := sellSignal(tick, fib, 0.0002, 2.0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestPlaceSignalDispatchesBySide(t *testing.T) {
	broker := &fakeBroker{openResult: OrderResult{Retcode: RetcodeDone, Order: 7}}
	intent := OrderIntent{Side: SideBuy, Entry: 1.1, SL: 1.09, TP: 1.12, Comment: "x"}
	res, err := PlaceSignal(context.Background(), broker, Tick{Ask: 1.1}, intent, 0.01)
	require.NoError(t, err)
	assert.True(t, res.Done())
	assert.Equal(t, SideBuy, broker.lastOpen.side)
}
