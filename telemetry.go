// FILE: telemetry.go
// Package main – Off-core, fire-and-forget signal/position telemetry.
//
// A structured log line always fires synchronously (cheap, in-process),
// while email and Telegram notifications run detached from the tick loop,
// each dispatched on its own goroutine so a slow SMTP
// handshake or Telegram outage never delays the next tick. Failures are
// logged at warning level and never propagate to the caller.
package main

import (
	"fmt"
	"net/smtp"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// logSignal records a signal that passed the guards, before the order
// placement attempt; abandoned signals are not logged here.
func logSignal(symbol string, side OrderSide, entry, sl float64, fib FibSnapshot, note string) {
	log.Info().
		Str("symbol", symbol).
		Str("strategy", "swing_fib_v1").
		Str("side", string(side)).
		Float64("entry", entry).
		Float64("sl", sl).
		Float64("fib0", fib.P0).
		Float64("fib705", fib.P705).
		Float64("fib1", fib.P1).
		Str("note", note).
		Msg("signal")
}

// logPositionEvent records a registration or stage-fire event for a
// tracked position.
func logPositionEvent(symbol string, ticket int64, event string, direction OrderSide, entry, currentPrice, sl, tp, profitR float64, note string) {
	log.Info().
		Str("symbol", symbol).
		Int64("ticket", ticket).
		Str("event", event).
		Str("direction", string(direction)).
		Float64("entry", entry).
		Float64("current_price", currentPrice).
		Float64("sl", sl).
		Float64("tp", tp).
		Float64("profit_r", profitR).
		Str("note", note).
		Msg("position_event")
}

// SMTPConfig holds the outbound mail settings read from env (see env.go /
// loadConfigFromEnv's caller in main.go).
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
}

// Enabled reports whether enough SMTP config is present to attempt a send.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port != "" && c.From != "" && c.To != ""
}

// sendTradeEmailAsync dispatches subject/body over SMTP on its own
// goroutine; failures are logged, never returned, matching the source's
// bare `except Exception` around its email call.
func sendTradeEmailAsync(cfg SMTPConfig, subject, body string) {
	if !cfg.Enabled() {
		return
	}
	go func() {
		addr := cfg.Host + ":" + cfg.Port
		msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", cfg.From, cfg.To, subject, body)

		var auth smtp.Auth
		if cfg.Username != "" {
			auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		}
		if err := smtp.SendMail(addr, auth, cfg.From, []string{cfg.To}, []byte(msg)); err != nil {
			log.Warn().Err(err).Str("subject", subject).Msg("trade email dispatch failed")
		}
	}()
}

// TelegramConfig holds the optional Telegram notification sink, a second
// channel alongside email for the same trade events.
type TelegramConfig struct {
	Token  string
	ChatID int64
}

func (c TelegramConfig) Enabled() bool { return c.Token != "" && c.ChatID != 0 }

// sendTradeTelegramAsync mirrors sendTradeEmailAsync for the Telegram sink;
// a fresh bot client per send keeps this file free of long-lived state to
// manage, matching how narrow the source's notifier boundary is.
func sendTradeTelegramAsync(cfg TelegramConfig, text string) {
	if !cfg.Enabled() {
		return
	}
	go func() {
		bot, err := tgbotapi.NewBotAPI(cfg.Token)
		if err != nil {
			log.Warn().Err(err).Msg("telegram bot init failed")
			return
		}
		msg := tgbotapi.NewMessage(cfg.ChatID, text)
		if _, err := bot.Send(msg); err != nil {
			log.Warn().Err(err).Msg("telegram dispatch failed")
		}
	}()
}
