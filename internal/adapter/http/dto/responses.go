package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/fundbalance-backend/internal/domain"
	"github.com/simaogato/fundbalance-backend/internal/usecase/dashboard"
	"github.com/simaogato/fundbalance-backend/internal/usecase/history"
	"github.com/simaogato/fundbalance-backend/internal/usecase/rebalance"
)

// Fund is the wire form of a fund
type Fund struct {
	Name    string  `json:"name"`
	Code    string  `json:"code"`
	Current float64 `json:"current"`
	Weight  float64 `json:"weight"`
}

// Bucket is the wire form of a bucket
type Bucket struct {
	Name       string  `json:"name"`
	TargetRate float64 `json:"target_rate"`
	Funds      []Fund  `json:"funds"`
}

// Suggestion is the wire form of one fund's advice
type Suggestion struct {
	BucketName   string  `json:"bucket_name"`
	FundName     string  `json:"fund_name"`
	FundCode     string  `json:"fund_code"`
	CurrentValue float64 `json:"current_value"`
	TargetValue  float64 `json:"target_value"`
	DiffValue    float64 `json:"diff_value"`
	Advice       string  `json:"advice"`
	Reason       string  `json:"reason"`
}

// BucketPlan is one bucket of a rebalance response; POST /api/rebalance returns them in portfolio order
type BucketPlan struct {
	Name         string       `json:"name"`
	TargetRate   float64      `json:"target_rate"`
	CurrentValue float64      `json:"current_value"`
	TargetValue  float64      `json:"target_value"`
	CurrentRate  float64      `json:"current_rate"`
	Suggestions  []Suggestion `json:"suggestions"`
}

// RecordSummary is one row of GET /api/rebalance/history
type RecordSummary struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Threshold  float64   `json:"threshold"`
	TotalValue float64   `json:"total_value"`
}

// Stats are the derived counts and amounts of a history record
type Stats struct {
	BuyCount  int     `json:"buy_count"`
	SellCount int     `json:"sell_count"`
	HoldCount int     `json:"hold_count"`
	TotalBuy  float64 `json:"total_buy"`
	TotalSell float64 `json:"total_sell"`
}

// RecordDetail is the data of GET /api/rebalance/history/{id}
type RecordDetail struct {
	Record      RecordSummary `json:"record"`
	Suggestions []Suggestion  `json:"suggestions"`
	Stats       Stats         `json:"stats"`
}

// Allocation is one bucket of GET /api/overview
type Allocation struct {
	Name         string  `json:"name"`
	TargetRate   float64 `json:"target_rate"`
	CurrentValue float64 `json:"current_value"`
	CurrentRate  float64 `json:"current_rate"`
	Drift        float64 `json:"drift"`
}

// Overview is the data of GET /api/overview
type Overview struct {
	TotalValue float64      `json:"total_value"`
	Buckets    []Allocation `json:"buckets"`
}

// Health is the data of GET /health
type Health struct {
	Status string `json:"status"`
}

// FromPortfolio converts the domain portfolio to its wire form
func FromPortfolio(portfolio domain.Portfolio) []Bucket {
	out := make([]Bucket, 0, len(portfolio))
	for _, b := range portfolio {
		funds := make([]Fund, 0, len(b.Funds))
		for _, f := range b.Funds {
			funds = append(funds, Fund{
				Name:    f.Name,
				Code:    f.Code,
				Current: f.Current.InexactFloat64(),
				Weight:  f.Weight.InexactFloat64(),
			})
		}
		out = append(out, Bucket{
			Name:       b.Name,
			TargetRate: b.TargetRate.InexactFloat64(),
			Funds:      funds,
		})
	}
	return out
}

// FromSuggestions converts engine suggestions to their wire form
func FromSuggestions(suggestions []domain.Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, Suggestion{
			BucketName:   s.BucketName,
			FundName:     s.FundName,
			FundCode:     s.FundCode,
			CurrentValue: s.CurrentValue.InexactFloat64(),
			TargetValue:  s.TargetValue.InexactFloat64(),
			DiffValue:    s.DiffValue.InexactFloat64(),
			Advice:       string(s.Advice),
			Reason:       s.Reason,
		})
	}
	return out
}

// FromPlan converts a rebalance plan to its wire form, one entry per bucket in input order
func FromPlan(plan *rebalance.Plan) []BucketPlan {
	buckets := make([]BucketPlan, 0, len(plan.Buckets))
	for _, b := range plan.Buckets {
		rate := decimal.Zero
		if plan.TotalValue.IsPositive() {
			rate = b.CurrentValue.Div(plan.TotalValue)
		}
		buckets = append(buckets, BucketPlan{
			Name:         b.Name,
			TargetRate:   b.TargetRate.InexactFloat64(),
			CurrentValue: b.CurrentValue.InexactFloat64(),
			TargetValue:  b.TargetValue.InexactFloat64(),
			CurrentRate:  rate.InexactFloat64(),
			Suggestions:  FromSuggestions(b.Suggestions),
		})
	}
	return buckets
}

// FromSummary converts a history summary to its wire form
func FromSummary(s domain.RecordSummary) RecordSummary {
	return RecordSummary{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		Threshold:  s.Threshold.InexactFloat64(),
		TotalValue: s.TotalValue.InexactFloat64(),
	}
}

// FromSummaries converts a page of history summaries
func FromSummaries(summaries []domain.RecordSummary) []RecordSummary {
	out := make([]RecordSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, FromSummary(s))
	}
	return out
}

// FromDetail converts a history record with its statistics
func FromDetail(detail *history.RecordDetail) RecordDetail {
	return RecordDetail{
		Record:      FromSummary(detail.Record.Summary()),
		Suggestions: FromSuggestions(detail.Record.Suggestions),
		Stats: Stats{
			BuyCount:  detail.Stats.BuyCount,
			SellCount: detail.Stats.SellCount,
			HoldCount: detail.Stats.HoldCount,
			TotalBuy:  detail.Stats.TotalBuy.InexactFloat64(),
			TotalSell: detail.Stats.TotalSell.InexactFloat64(),
		},
	}
}

// FromOverview converts the allocation overview
func FromOverview(overview *dashboard.OverviewResult) Overview {
	buckets := make([]Allocation, 0, len(overview.Buckets))
	for _, b := range overview.Buckets {
		buckets = append(buckets, Allocation{
			Name:         b.Name,
			TargetRate:   b.TargetRate.InexactFloat64(),
			CurrentValue: b.CurrentValue.InexactFloat64(),
			CurrentRate:  b.CurrentRate.InexactFloat64(),
			Drift:        b.Drift.InexactFloat64(),
		})
	}
	return Overview{
		TotalValue: overview.TotalValue.InexactFloat64(),
		Buckets:    buckets,
	}
}
