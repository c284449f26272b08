package main

import (
	"bytes"
	"context"
	"flag"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/simaogato/fundbalance-backend/internal/adapter/http"
	"github.com/simaogato/fundbalance-backend/internal/adapter/http/dto"
	"github.com/simaogato/fundbalance-backend/internal/adapter/repository/memory"
	"github.com/simaogato/fundbalance-backend/internal/config"
	"github.com/simaogato/fundbalance-backend/internal/usecase/dashboard"
	"github.com/simaogato/fundbalance-backend/internal/usecase/history"
	"github.com/simaogato/fundbalance-backend/internal/usecase/portfolio"
	"github.com/simaogato/fundbalance-backend/internal/usecase/rebalance"
	"github.com/simaogato/fundbalance-backend/internal/usecase/seeder"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	portfolioRepo := memory.NewPortfolioRepository()
	_, err := seeder.NewPortfolioSeeder(portfolioRepo).Seed(ctx)
	require.NoError(t, err)

	portfolioService := portfolio.NewPortfolioService(portfolioRepo, false)
	historyService := history.NewHistoryService(memory.NewHistoryRepository())
	api := apihttp.New(apihttp.Config{
		Log:              zerolog.Nop(),
		PortfolioService: portfolioService,
		RebalanceService: rebalance.NewRebalanceService(portfolioService, historyService, decimal.Zero),
		HistoryService:   historyService,
		DashboardService: dashboard.NewDashboardService(portfolioService, historyService),
	})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	a := newApp(&out, config.NewDefaultConfig())
	a.addr = srv.URL
	a.currency = "USD"
	a.timeout = 5 * time.Second
	a.plain = true
	return a, &out
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f)
}

func TestApp_Amount(t *testing.T) {
	a := newApp(nil, config.NewDefaultConfig())
	a.currency = "usd"

	assert.Equal(t, "$1,234.50", a.amount(1234.5))
	assert.Equal(t, "-$10.00", a.amount(-10))
	assert.Equal(t, "+$0.01", a.signedAmount(0.01))
	assert.Equal(t, "5.00%", percent(0.05))
}

func TestApp_FlagDefaultsFromConfig(t *testing.T) {
	tests := []struct {
		name         string
		currency     string
		port         int
		envAddr      string
		args         []string
		wantCurrency string
		wantAddr     string
	}{
		{name: "Defaults", currency: "CNY", port: 8080, wantCurrency: "CNY", wantAddr: "http://localhost:8080"},
		{name: "Configured currency and port", currency: "USD", port: 9000, wantCurrency: "USD", wantAddr: "http://localhost:9000"},
		{name: "Address from environment", currency: "EUR", port: 9000, envAddr: "http://api:1234", wantCurrency: "EUR", wantAddr: "http://api:1234"},
		{name: "Flags win", currency: "USD", port: 8080, args: []string{"-currency", "JPY", "-addr", "http://other"}, wantCurrency: "JPY", wantAddr: "http://other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FUNDBAL_ADDR", tt.envAddr)
			cfg := config.NewDefaultConfig()
			cfg.DisplayCurrency = tt.currency
			cfg.Server.HTTPPort = tt.port

			a := newApp(nil, cfg)
			f := flag.NewFlagSet("fundctl", flag.ContinueOnError)
			a.SetFlags(f)
			require.NoError(t, f.Parse(tt.args))

			assert.Equal(t, tt.wantCurrency, a.currency)
			assert.Equal(t, tt.wantAddr, a.addr)
		})
	}
}

func TestBucketsCmd(t *testing.T) {
	a, out := newTestApp(t)

	status := run(t, &bucketsCmd{app: a})

	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "[0] Short-term (money market)")
	assert.Contains(t, out.String(), "000009")
	assert.Contains(t, out.String(), "2.2 ")
}

func TestAddEditDeleteCmds(t *testing.T) {
	a, out := newTestApp(t)

	require.Equal(t, subcommands.ExitSuccess,
		run(t, &addCmd{app: a}, "-b", "1", "-name", "Bond C", "-code", "000001", "-current", "25", "-weight", "0.2"))
	assert.Contains(t, out.String(), "Bond C")
	assert.Contains(t, out.String(), "$25.00")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess,
		run(t, &editCmd{app: a}, "-b", "1", "-f", "2", "-field", "current", "-value", "30"))
	assert.Contains(t, out.String(), "$30.00")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess,
		run(t, &editCmd{app: a}, "-b", "1", "-f", "2", "-name", "Bond D", "-weight", "0.1"))
	assert.Contains(t, out.String(), "Bond D")
	assert.Contains(t, out.String(), "weight 10.00%")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &deleteCmd{app: a}, "-b", "1", "-f", "2"))
	assert.NotContains(t, out.String(), "Bond D")
}

func TestEditCmd_Errors(t *testing.T) {
	a, _ := newTestApp(t)

	assert.Equal(t, subcommands.ExitUsageError, run(t, &editCmd{app: a}, "-b", "0", "-f", "0"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &editCmd{app: a}, "-b", "0", "-f", "0", "-weight", "1.5"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &deleteCmd{app: a}, "-b", "5", "-f", "0"))
}

func TestEditCmd_Patch(t *testing.T) {
	c := &editCmd{app: newApp(nil, config.NewDefaultConfig())}
	f := flag.NewFlagSet("edit", flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse([]string{"-b", "2", "-f", "1", "-code", "X1", "-current", "9"}))

	req, ok := c.patch(f)

	require.True(t, ok)
	assert.Equal(t, 2, req.BucketIndex)
	assert.Equal(t, 1, req.FundIndex)
	assert.Nil(t, req.Name)
	assert.Nil(t, req.Weight)
	assert.Equal(t, "X1", *req.Code)
	assert.Equal(t, dto.Number("9"), *req.Current)
}

func TestRebalanceHistoryShowCmds(t *testing.T) {
	a, out := newTestApp(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &rebalanceCmd{app: a}, "-t", "0.05"))
	assert.Contains(t, out.String(), "Record #1")
	assert.Contains(t, out.String(), "total $350.00")
	assert.Contains(t, out.String(), "Long-term (equity)")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &historyCmd{app: a}, "-n", "5"))
	assert.Contains(t, out.String(), "THRESHOLD")
	assert.Contains(t, out.String(), "$350.00")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &showCmd{app: a}, "1"))
	assert.Contains(t, out.String(), "# Rebalance #1")
	assert.Contains(t, out.String(), "| Bucket | Fund |")
	assert.Contains(t, out.String(), "## Summary")

	assert.Equal(t, subcommands.ExitFailure, run(t, &showCmd{app: a}, "99"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &showCmd{app: a}, "abc"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &showCmd{app: a}))
}

func TestHistoryCmd_Empty(t *testing.T) {
	a, out := newTestApp(t)

	require.Equal(t, subcommands.ExitSuccess, run(t, &historyCmd{app: a}))
	assert.Contains(t, out.String(), "No rebalance runs yet.")
}

func TestPrintMarkdown_Rendered(t *testing.T) {
	var out bytes.Buffer
	a := newApp(&out, config.NewDefaultConfig())

	require.NoError(t, a.printMarkdown("# Title\n\nSome **bold** text.\n"))

	assert.Contains(t, out.String(), "Title")
	assert.Contains(t, out.String(), "bold")
}
