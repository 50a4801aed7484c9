// FILE: broker_bridge.go
// Package main – HTTP+websocket broker that talks to an MT5 sidecar.
//
// This broker hits a local sidecar process that fronts a real MetaTrader 5
// terminal. History, positions, symbol info, and orders go over plain HTTP
// (JSON request/response, mirroring the shape of MT5's own Python API);
// the top-of-book quote instead rides a websocket push stream, so
// SymbolInfoTick never blocks on a request/response round trip once
// connected.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// BridgeBroker is an HTTP+websocket client for the MT5 sidecar.
type BridgeBroker struct {
	base   string
	symbol string
	hours  TradingHours
	tz     string
	hc     *http.Client

	wsURL string
	mu    sync.RWMutex
	conn  *websocket.Conn
	last  Tick
}

// NewBridgeBroker points at a sidecar base URL, trimming trailing comments
// the way operators tend to leave them in .env files.
func NewBridgeBroker(base, symbol string, hours TradingHours, tz string) *BridgeBroker {
	base = strings.TrimSpace(base)
	if i := strings.IndexAny(base, " \t#"); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if base == "" {
		base = "http://127.0.0.1:8787"
	}
	base = strings.TrimRight(base, "/")
	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws/tick?symbol=" + url.QueryEscape(symbol)
	return &BridgeBroker{
		base:   base,
		symbol: symbol,
		hours:  hours,
		tz:     tz,
		hc:     &http.Client{Timeout: 15 * time.Second},
		wsURL:  wsURL,
	}
}

func (bb *BridgeBroker) Name() string { return "mt5-bridge" }

// Initialize dials the sidecar's tick stream and starts the background
// reader; SymbolInfoTick serves from the last message it received.
func (bb *BridgeBroker) Initialize(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, bb.wsURL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial %s: %w", bb.wsURL, err)
	}
	bb.mu.Lock()
	bb.conn = conn
	bb.mu.Unlock()
	go bb.readTicks()
	return nil
}

func (bb *BridgeBroker) Shutdown() {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if bb.conn != nil {
		_ = bb.conn.Close()
		bb.conn = nil
	}
}

func (bb *BridgeBroker) readTicks() {
	for {
		bb.mu.RLock()
		conn := bb.conn
		bb.mu.RUnlock()
		if conn == nil {
			return
		}
		var wire struct {
			Bid float64 `json:"bid"`
			Ask float64 `json:"ask"`
		}
		if err := conn.ReadJSON(&wire); err != nil {
			log.Warn().Err(err).Msg("mt5 bridge tick stream read failed")
			return
		}
		bb.mu.Lock()
		bb.last = Tick{Time: time.Now().UTC(), Bid: wire.Bid, Ask: wire.Ask}
		bb.mu.Unlock()
	}
}

func (bb *BridgeBroker) CanTrade(now time.Time) (bool, string) {
	return inSession(now, bb.tz, bb.hours)
}

func (bb *BridgeBroker) SymbolInfoTick(ctx context.Context) (Tick, error) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	if bb.last.Bid == 0 && bb.last.Ask == 0 {
		return Tick{}, fmt.Errorf("no tick received yet from %s", bb.wsURL)
	}
	return bb.last, nil
}

func (bb *BridgeBroker) GetHistoricalData(ctx context.Context, count int) ([]Bar, error) {
	u := fmt.Sprintf("%s/history?symbol=%s&count=%d", bb.base, url.QueryEscape(bb.symbol), count)
	var wire []struct {
		Time  int64   `json:"time"`
		Open  float64 `json:"open"`
		High  float64 `json:"high"`
		Low   float64 `json:"low"`
		Close float64 `json:"close"`
	}
	if err := bb.getJSON(ctx, u, &wire); err != nil {
		return nil, fmt.Errorf("get_historical_data: %w", err)
	}
	bars := make([]Bar, 0, len(wire))
	for _, w := range wire {
		bars = append(bars, Bar{Timestamp: time.Unix(w.Time, 0).UTC(), Open: w.Open, High: w.High, Low: w.Low, Close: w.Close})
	}
	sortBars(bars)
	return bars, nil
}

func (bb *BridgeBroker) GetPositions(ctx context.Context) ([]Position, error) {
	u := fmt.Sprintf("%s/positions?symbol=%s", bb.base, url.QueryEscape(bb.symbol))
	var wire []struct {
		Ticket    int64   `json:"ticket"`
		Type      string  `json:"type"`
		PriceOpen float64 `json:"price_open"`
		SL        float64 `json:"sl"`
		TP        float64 `json:"tp"`
		Volume    float64 `json:"volume"`
	}
	if err := bb.getJSON(ctx, u, &wire); err != nil {
		return nil, fmt.Errorf("get_positions: %w", err)
	}
	out := make([]Position, 0, len(wire))
	for _, w := range wire {
		side := SideBuy
		if strings.EqualFold(w.Type, "sell") {
			side = SideSell
		}
		out = append(out, Position{Ticket: w.Ticket, Side: side, PriceOpen: w.PriceOpen, SL: w.SL, TP: w.TP, Volume: w.Volume})
	}
	return out, nil
}

func (bb *BridgeBroker) SymbolInfo(ctx context.Context) (SymbolInfo, error) {
	u := fmt.Sprintf("%s/symbol_info?symbol=%s", bb.base, url.QueryEscape(bb.symbol))
	var wire struct {
		Point           float64 `json:"point"`
		Digits          int     `json:"digits"`
		TradeStopsLevel float64 `json:"trade_stops_level"`
		TradeTickValue  float64 `json:"trade_tick_value"`
	}
	if err := bb.getJSON(ctx, u, &wire); err != nil {
		return SymbolInfo{}, fmt.Errorf("symbol_info: %w", err)
	}
	return SymbolInfo{Point: wire.Point, Digits: wire.Digits, TradeStopsLevel: wire.TradeStopsLevel, TradeTickValue: wire.TradeTickValue}, nil
}

func (bb *BridgeBroker) OpenBuyPosition(ctx context.Context, tick Tick, sl, tp float64, comment string, riskPct float64) (OrderResult, error) {
	return bb.openPosition(ctx, "buy", tick.Ask, sl, tp, comment, riskPct)
}

func (bb *BridgeBroker) OpenSellPosition(ctx context.Context, tick Tick, sl, tp float64, comment string, riskPct float64) (OrderResult, error) {
	return bb.openPosition(ctx, "sell", tick.Bid, sl, tp, comment, riskPct)
}

func (bb *BridgeBroker) openPosition(ctx context.Context, side string, price, sl, tp float64, comment string, riskPct float64) (OrderResult, error) {
	body := map[string]any{
		"symbol":          bb.symbol,
		"side":            side,
		"price":           price,
		"sl":              sl,
		"tp":              tp,
		"comment":         comment,
		"risk_pct":        riskPct,
		"client_order_id": uuid.New().String(),
	}
	var out orderResultWire
	if err := bb.postJSON(ctx, bb.base+"/order/open", body, &out); err != nil {
		return OrderResult{}, fmt.Errorf("open_%s_position: %w", side, err)
	}
	return out.toOrderResult(), nil
}

func (bb *BridgeBroker) ModifySLTP(ctx context.Context, ticket int64, newSL, newTP float64) (OrderResult, error) {
	body := map[string]any{"ticket": ticket, "sl": newSL, "tp": newTP}
	var out orderResultWire
	if err := bb.postJSON(ctx, bb.base+"/order/modify", body, &out); err != nil {
		return OrderResult{}, fmt.Errorf("modify_sl_tp: %w", err)
	}
	return out.toOrderResult(), nil
}

func (bb *BridgeBroker) CloseAllPositions(ctx context.Context) error {
	var out struct {
		Closed int `json:"closed"`
	}
	body := map[string]any{"symbol": bb.symbol}
	if err := bb.postJSON(ctx, bb.base+"/order/close_all", body, &out); err != nil {
		return fmt.Errorf("close_all_positions: %w", err)
	}
	return nil
}

type orderResultWire struct {
	Retcode int     `json:"retcode"`
	Order   int64   `json:"order"`
	Price   float64 `json:"price"`
	Volume  float64 `json:"volume"`
	Comment string  `json:"comment"`
}

func (w orderResultWire) toOrderResult() OrderResult {
	return OrderResult{Retcode: w.Retcode, Order: w.Order, Price: w.Price, Volume: w.Volume, Comment: w.Comment}
}

func (bb *BridgeBroker) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	res, err := bb.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("status %d: %s", res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (bb *BridgeBroker) postJSON(ctx context.Context, u string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := bb.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("status %d: %s", res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}
