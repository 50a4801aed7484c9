// FILE: config.go
// Package main – Runtime configuration model and loader.
//
// Config holds every knob the detector, signal emitter, and risk manager
// read from .env (see env.go for the load path). DefaultStages and
// SessionWindows reproduce the source bot's dynamic-risk stage table and
// named trading-hour windows as compiled-in tables; neither is read from
// .env, and loadConfigFromEnv always installs DefaultStages.
package main

import "strconv"

// TradingHours is one {start,end} window, HH:MM in the configured timezone.
// End before start means the window wraps past midnight (the source's New
// York session, 17:30-02:30).
type TradingHours struct {
	Start string
	End   string
}

// SessionWindows names the source's session presets as a reference table.
// CanTrade uses Config.TradingHours (TRADING_HOURS_START/END); no code
// selects a window from this table.
var SessionWindows = map[string]TradingHours{
	"sydney":            {Start: "05:30", End: "14:30"},
	"tokyo":             {Start: "07:30", End: "16:30"},
	"london":            {Start: "12:30", End: "21:30"},
	"new_york":          {Start: "17:30", End: "02:30"},
	"london_ny_overlap": {Start: "17:30", End: "21:30"},
	"full_time":         {Start: "00:00", End: "23:59"},
}

// Config holds all runtime knobs for detection, signal emission, and risk
// management.
type Config struct {
	// Instrument / broker
	Symbol      string
	MagicNumber int
	Deviation   int
	MaxSpread   float64

	// C1 Leg Detector
	ThresholdPips float64
	WindowSize    int

	// C3 Fibonacci State Machine
	Fib705 float64
	Fib90  float64

	// C4 Signal Emitter
	WinRatio float64
	RiskPct  float64

	// C5 Position Registry & Risk Manager
	Risk RiskConfig

	// C6 Main Loop
	TickIntervalMS  int
	OutOfSessionSec int // seconds slept when not tradable
	MaxWaitCycles   int // force a pass if the bar timestamp is stuck this many ticks
	TradingHours    TradingHours
	Timezone        string

	// Ops
	Port      int
	LogLevel  string
	LogFile   string
	DryRun    bool
	BridgeURL string
}

// loadConfigFromEnv reads the process env (already hydrated by
// loadBotEnv()) and returns a Config with the source bot's defaults.
func loadConfigFromEnv() Config {
	return Config{
		Symbol:      getEnv("SYMBOL", "EURUSD"),
		MagicNumber: getEnvInt("MAGIC_NUMBER", 234000),
		Deviation:   getEnvInt("DEVIATION", 20),
		MaxSpread:   getEnvFloat("MAX_SPREAD", 3.0),

		ThresholdPips: getEnvFloat("THRESHOLD_PIPS", 6.0),
		WindowSize:    getEnvInt("WINDOW_SIZE", 100),

		Fib705: getEnvFloat("FIB_705", 0.705),
		Fib90:  getEnvFloat("FIB_90", 0.9),

		WinRatio: getEnvFloat("WIN_RATIO", 2.0),
		RiskPct:  getEnvFloat("RISK_PCT", 0.01),

		Risk: RiskConfig{
			Enabled:           getEnvBool("DYNAMIC_RISK_ENABLE", true),
			CommissionPerLot:  getEnvFloat("COMMISSION_PER_LOT", 4.5),
			CommissionBufferR: getEnvFloat("COMMISSION_BUFFER_R", 0.15),
			Stages:            DefaultStages(),
		},

		TickIntervalMS:  getEnvInt("TICK_INTERVAL_MS", 500),
		OutOfSessionSec: getEnvInt("OUT_OF_SESSION_SLEEP_SEC", 60),
		MaxWaitCycles:   getEnvInt("MAX_WAIT_CYCLES", 120),
		TradingHours:    TradingHours{Start: getEnv("TRADING_HOURS_START", "01:00"), End: getEnv("TRADING_HOURS_END", "23:59")},
		Timezone:        getEnv("TRADING_TZ", "Asia/Tehran"),

		Port:      getEnvInt("PORT", 8080),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFile:   getEnv("LOG_FILE", "bot.log"),
		DryRun:    getEnvBool("DRY_RUN", true),
		BridgeURL: getEnv("BRIDGE_URL", "http://127.0.0.1:8787"),
	}
}

// DefaultStages reproduces the source's 20-stage schedule: a breakeven
// stage resolved against commission_trigger_R, then one fixed stage per
// integer R from 2 through 20, each locking SL at that R and retargeting
// TP one R further out. The final stage has no further R to reach for, so
// its TP stays pinned at 20R.
func DefaultStages() []StageSpec {
	stages := []StageSpec{
		{ID: "stage_0_1R_breakeven", TriggerR: AutoCommission(), SLLockR: AutoCommission(), TP: nil},
	}
	for r := 2; r <= 20; r++ {
		tp := float64(r + 1)
		if r == 20 {
			tp = 20.0
		}
		stages = append(stages, StageSpec{
			ID:       "stage_" + strconv.Itoa(r) + "_0R",
			TriggerR: FixedR(float64(r)),
			SLLockR:  FixedR(float64(r)),
			TP:       &tp,
		})
	}
	return stages
}
