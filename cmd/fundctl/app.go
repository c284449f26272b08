package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundbalance-backend/internal/adapter/httpclient"
	"github.com/simaogato/fundbalance-backend/internal/config"
)

// app holds the settings shared by every subcommand
type app struct {
	cfg      *config.Config
	out      io.Writer
	addr     string
	currency string
	timeout  time.Duration
	plain    bool
}

func newApp(out io.Writer, cfg *config.Config) *app {
	return &app{cfg: cfg, out: out}
}

// SetFlags registers the global flags; the loaded configuration provides the defaults
func (a *app) SetFlags(f *flag.FlagSet) {
	defaultAddr := envOr("FUNDBAL_ADDR", fmt.Sprintf("http://localhost:%d", a.cfg.Server.HTTPPort))
	f.StringVar(&a.addr, "addr", defaultAddr, "Base URL of the fundbalance server")
	f.StringVar(&a.currency, "currency", a.cfg.DisplayCurrency, "ISO 4217 code used to display amounts")
	f.DurationVar(&a.timeout, "timeout", httpclient.DefaultTimeout, "Request timeout")
	f.BoolVar(&a.plain, "plain", false, "Print markdown reports without terminal styling")
}

// Register adds every subcommand to the commander
func (a *app) Register(c *subcommands.Commander) {
	c.Register(&bucketsCmd{app: a}, "portfolio")
	c.Register(&addCmd{app: a}, "portfolio")
	c.Register(&editCmd{app: a}, "portfolio")
	c.Register(&deleteCmd{app: a}, "portfolio")

	c.Register(&rebalanceCmd{app: a}, "rebalance")
	c.Register(&historyCmd{app: a}, "rebalance")
	c.Register(&showCmd{app: a}, "rebalance")
}

func (a *app) client() *httpclient.Client {
	return httpclient.NewClient(
		httpclient.WithBaseURL(a.addr),
		httpclient.WithTimeout(a.timeout),
	)
}

// fail prints err and returns the failure status
func (a *app) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}

// amount formats a value in the display currency, e.g. "$1,234.50"
func (a *app) amount(value float64) string {
	cur := *money.New(0, strings.ToUpper(a.currency)).Currency()
	minor := decimal.NewFromFloat(value).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// signedAmount is amount with an explicit "+" on positive values
func (a *app) signedAmount(value float64) string {
	if value > 0 {
		return "+" + a.amount(value)
	}
	return a.amount(value)
}

func percent(rate float64) string {
	return decimal.NewFromFloat(rate).Shift(2).StringFixed(2) + "%"
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
