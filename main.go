// FILE: main.go
// Package main – Program entrypoint and HTTP/metrics server.
//
// Boot sequence:
//   1) loadBotEnv()               – read .env via godotenv
//   2) cfg := loadConfigFromEnv() – build runtime Config
//   3) bootstrapLogger()          – zerolog console + file sink
//   4) wire broker (paper or bridge) + Engine + Heartbeat
//   5) start Prometheus /healthz, /metrics server on cfg.Port
//   6) engine.Run(ctx) until SIGINT/SIGTERM, then close open positions
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	loadBotEnv()

	cfg := loadConfigFromEnv()
	closer, err := bootstrapLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger bootstrap: %v\n", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	info := SymbolInfo{
		Point:           getEnvFloat("SYMBOL_POINT", 0.00001),
		Digits:          getEnvInt("SYMBOL_DIGITS", 5),
		TradeStopsLevel: getEnvFloat("SYMBOL_STOPS_LEVEL", 0),
		TradeTickValue:  getEnvFloat("SYMBOL_TICK_VALUE", 1.0),
	}

	var broker Broker
	switch strings.ToLower(getEnv("BROKER", "paper")) {
	case "bridge":
		broker = NewBridgeBroker(cfg.BridgeURL, cfg.Symbol, cfg.TradingHours, cfg.Timezone)
	default:
		broker = NewPaperBroker(cfg.Symbol, info, cfg.TradingHours, cfg.Timezone, getEnvFloat("PAPER_START_PRICE", 1.10), int64(getEnvInt("PAPER_SEED", 42)))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := broker.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("broker initialize failed")
	}
	defer broker.Shutdown()

	smtpCfg := SMTPConfig{
		Host: getEnv("SMTP_HOST", ""), Port: getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USERNAME", ""), Password: getEnv("SMTP_PASSWORD", ""),
		From: getEnv("SMTP_FROM", ""), To: getEnv("SMTP_TO", ""),
	}
	telegramCfg := TelegramConfig{Token: getEnv("TELEGRAM_BOT_TOKEN", ""), ChatID: int64(getEnvInt("TELEGRAM_CHAT_ID", 0))}

	engine := NewEngine(broker, cfg, smtpCfg)

	heartbeat, err := NewHeartbeat(getEnv("HEARTBEAT_CRON", "@every 5m"), engine.registry, broker, cfg.Symbol, smtpCfg, telegramCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("heartbeat schedule invalid")
	}
	heartbeat.Start()
	defer heartbeat.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}
	go func() {
		log.Info().Int("port", cfg.Port).Msg("serving /healthz and /metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	engine.Run(ctx)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := broker.CloseAllPositions(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("close_all_positions on shutdown failed")
	}
	_ = srv.Shutdown(shutdownCtx)
}
