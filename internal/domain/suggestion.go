package domain

import (
	"github.com/shopspring/decimal"
)

// Advice is the discrete recommendation produced for a fund
type Advice string

const (
	AdviceBuy  Advice = "BUY"
	AdviceSell Advice = "SELL"
	AdviceHold Advice = "HOLD"
)

// Suggestion is the engine output for one fund.
// It copies the identifying fields so stored history never points into the live portfolio.
type Suggestion struct {
	BucketName   string
	FundName     string
	FundCode     string
	CurrentValue decimal.Decimal
	TargetValue  decimal.Decimal
	DiffValue    decimal.Decimal // CurrentValue - TargetValue
	Advice       Advice
	Reason       string
}

// AdviceStats aggregates a run's suggestions for display
type AdviceStats struct {
	BuyCount  int
	SellCount int
	HoldCount int
	TotalBuy  decimal.Decimal // Sum of |diff| over BUY suggestions
	TotalSell decimal.Decimal // Sum of |diff| over SELL suggestions
}

// Summarize derives AdviceStats from suggestions alone
func Summarize(suggestions []Suggestion) AdviceStats {
	stats := AdviceStats{
		TotalBuy:  decimal.Zero,
		TotalSell: decimal.Zero,
	}

	for _, s := range suggestions {
		switch s.Advice {
		case AdviceBuy:
			stats.BuyCount++
			stats.TotalBuy = stats.TotalBuy.Add(s.DiffValue.Abs())
		case AdviceSell:
			stats.SellCount++
			stats.TotalSell = stats.TotalSell.Add(s.DiffValue.Abs())
		default:
			stats.HoldCount++
		}
	}

	return stats
}
