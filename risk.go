// FILE: risk.go
// Package main – C5: position registry and the staged SL/TP ratchet.
//
// Every tick, independent of whatever C1-C4 decided, each open position is
// walked through its stage schedule: once live profit (in R, the position's
// own initial risk) clears a stage's trigger, its SL is ratcheted forward
// and its TP optionally retargeted. A stage fires at most once per
// position; a monotonicity guard keeps a late, worse computation from ever
// loosening a stop that already ratcheted forward.
package main

import (
	"context"
	"fmt"
)

// RTrigger is the sum type behind a stage's `trigger_R`/`sl_lock_R` fields:
// either a fixed R multiple, or the source's "auto" token, resolved against
// a position's own commission_trigger_R at evaluation time.
type RTrigger struct {
	fixed  float64
	isAuto bool
	isSet  bool
}

// FixedR is a stage field pinned to an explicit R multiple.
func FixedR(r float64) RTrigger { return RTrigger{fixed: r, isSet: true} }

// AutoCommission resolves to the position's commission_trigger_R at
// evaluation time, never earlier.
func AutoCommission() RTrigger { return RTrigger{isAuto: true, isSet: true} }

// Resolve returns the concrete R multiple this field means for a position,
// given that position's commission_trigger_R.
func (t RTrigger) Resolve(commissionTriggerR float64) float64 {
	if t.isAuto {
		return commissionTriggerR
	}
	return t.fixed
}

// StageSpec is one rung of the ratchet schedule. TP is left nil to mean
// "keep the current TP" (the source's `tp_R=None`).
type StageSpec struct {
	ID       string
	TriggerR RTrigger
	SLLockR  RTrigger
	TP       *float64
}

// PositionState is the registry's per-ticket bookkeeping, created on first
// observation of an open position and discarded once the ticket disappears
// from the broker's position list. Never persisted across restarts.
type PositionState struct {
	Entry              float64
	RiskAbs            float64
	Direction          OrderSide
	Volume             float64
	DoneStages         map[string]bool
	CommissionTriggerR float64
}

// RiskConfig bundles the static pieces the registry needs each tick.
type RiskConfig struct {
	Enabled            bool
	CommissionPerLot   float64
	CommissionBufferR  float64
	Stages             []StageSpec
}

// PositionRegistry tracks PositionState by broker ticket. Zero value is
// ready to use.
type PositionRegistry struct {
	byTicket map[int64]*PositionState
}

// NewPositionRegistry returns an empty registry.
func NewPositionRegistry() *PositionRegistry {
	return &PositionRegistry{byTicket: make(map[int64]*PositionState)}
}

// register computes a freshly observed position's risk_abs and
// commission_trigger_R and stores it. Zero/undefined risk is skipped per
// spec — such a position is never tracked, and its stages never fire.
func (r *PositionRegistry) register(pos Position, info SymbolInfo, cfg RiskConfig) {
	if pos.SL == 0 {
		return
	}
	risk := abs(pos.PriceOpen - pos.SL)
	if risk == 0 {
		return
	}

	commissionTriggerR := 0.1
	if cfg.CommissionPerLot > 0 {
		pip := PipSizeFor(info)
		pipValue := info.TradeTickValue
		if info.Digits == 3 || info.Digits == 5 {
			pipValue *= 10
		}
		riskPips := risk / pip
		riskMoney := riskPips * pipValue * pos.Volume
		if riskMoney > 0 {
			commissionTriggerR = cfg.CommissionPerLot/riskMoney + cfg.CommissionBufferR
		}
	}

	if r.byTicket == nil {
		r.byTicket = make(map[int64]*PositionState)
	}
	r.byTicket[pos.Ticket] = &PositionState{
		Entry:              pos.PriceOpen,
		RiskAbs:            risk,
		Direction:          pos.Side,
		Volume:             pos.Volume,
		DoneStages:         make(map[string]bool),
		CommissionTriggerR: commissionTriggerR,
	}
}

// purge drops every tracked ticket absent from the broker's current
// position list (spec's "tickets absent from the broker set are purged").
func (r *PositionRegistry) purge(live []Position) {
	seen := make(map[int64]bool, len(live))
	for _, p := range live {
		seen[p.Ticket] = true
	}
	for ticket := range r.byTicket {
		if !seen[ticket] {
			delete(r.byTicket, ticket)
		}
	}
}

// StageResult is one fired-stage outcome, ready for telemetry.
type StageResult struct {
	Ticket  int64
	StageID string
	ProfitR float64
	LockedR float64
	NewSL   float64
	NewTP   float64
}

// ManagePositions runs C5 for one tick: registers unseen tickets, purges
// vanished ones, and walks every tracked position's stage schedule against
// the current tick, ratcheting SL/TP on the broker for each stage that
// newly fires. Returns the stages that fired this tick, in firing order.
func (r *PositionRegistry) ManagePositions(ctx context.Context, broker Broker, info SymbolInfo, cfg RiskConfig) ([]StageResult, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	positions, err := broker.GetPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_positions: %w", err)
	}
	r.purge(positions)
	if len(positions) == 0 {
		return nil, nil
	}
	tick, err := broker.SymbolInfoTick(ctx)
	if err != nil {
		return nil, fmt.Errorf("symbol_info_tick: %w", err)
	}

	var fired []StageResult
	for _, pos := range positions {
		if _, ok := r.byTicket[pos.Ticket]; !ok {
			r.register(pos, info, cfg)
		}
		st, ok := r.byTicket[pos.Ticket]
		if !ok {
			continue
		}

		curPrice := tick.Ask
		if st.Direction == SideBuy {
			curPrice = tick.Bid
		}
		priceProfit := curPrice - st.Entry
		if st.Direction == SideSell {
			priceProfit = st.Entry - curPrice
		}
		profitR := priceProfit / st.RiskAbs

		for _, stage := range cfg.Stages {
			if st.DoneStages[stage.ID] {
				continue
			}
			triggerR := stage.TriggerR.Resolve(st.CommissionTriggerR)
			slLockR := stage.SLLockR.Resolve(st.CommissionTriggerR)
			if profitR < triggerR {
				continue
			}

			var newSL, newTP float64
			if st.Direction == SideBuy {
				newSL = st.Entry + slLockR*st.RiskAbs
				newTP = pos.TP
				if stage.TP != nil {
					newTP = st.Entry + *stage.TP*st.RiskAbs
				}
			} else {
				newSL = st.Entry - slLockR*st.RiskAbs
				newTP = pos.TP
				if stage.TP != nil {
					newTP = st.Entry - *stage.TP*st.RiskAbs
				}
			}
			newSL = RoundToDigits(newSL, info.Digits)
			newTP = RoundToDigits(newTP, info.Digits)

			improves := (st.Direction == SideBuy && newSL > pos.SL) || (st.Direction == SideSell && newSL < pos.SL)
			if !improves {
				continue
			}

			res, err := broker.ModifySLTP(ctx, pos.Ticket, newSL, newTP)
			if err != nil || !res.Done() {
				continue
			}
			st.DoneStages[stage.ID] = true
			fired = append(fired, StageResult{
				Ticket:  pos.Ticket,
				StageID: stage.ID,
				ProfitR: profitR,
				LockedR: slLockR,
				NewSL:   newSL,
				NewTP:   newTP,
			})
		}
	}
	return fired, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
