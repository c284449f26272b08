package rebalance

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundbalance-backend/internal/domain"
)

// DefaultThreshold is used when a caller sends no threshold
var DefaultThreshold = decimal.RequireFromString("0.05")

// PortfolioReader provides the snapshot the engine runs against
type PortfolioReader interface {
	ListBuckets(ctx context.Context) (domain.Portfolio, error)
}

// HistoryAppender records each run
type HistoryAppender interface {
	Append(ctx context.Context, threshold, totalValue decimal.Decimal, suggestions []domain.Suggestion) (*domain.RebalanceRecord, error)
}

// RunResult is what a rebalance run returns to callers
type RunResult struct {
	Record *domain.RebalanceRecord
	Plan   *Plan
}

// RebalanceService reads the portfolio, runs the engine and appends the result to history
type RebalanceService struct {
	Portfolio        PortfolioReader
	History          HistoryAppender
	DefaultThreshold decimal.Decimal
}

// NewRebalanceService creates a new RebalanceService instance
func NewRebalanceService(portfolio PortfolioReader, history HistoryAppender, defaultThreshold decimal.Decimal) *RebalanceService {
	if !defaultThreshold.IsPositive() {
		defaultThreshold = DefaultThreshold
	}
	return &RebalanceService{
		Portfolio:        portfolio,
		History:          history,
		DefaultThreshold: defaultThreshold,
	}
}

// Run executes one rebalance
// Logic:
//   - A zero threshold means "use the default"; a negative one is rejected
//   - The portfolio is read once; edits made after the read are not reflected in this run
//   - The computed suggestions are persisted as a new history record
func (s *RebalanceService) Run(ctx context.Context, threshold decimal.Decimal) (*RunResult, error) {
	if threshold.IsZero() {
		threshold = s.DefaultThreshold
	}
	if threshold.IsNegative() {
		return nil, domain.NewValidationError("threshold", "threshold must be positive, got %s", threshold.String())
	}

	portfolio, err := s.Portfolio.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	plan, err := Compute(portfolio, threshold)
	if err != nil {
		return nil, err
	}

	record, err := s.History.Append(ctx, plan.Threshold, plan.TotalValue, plan.Suggestions())
	if err != nil {
		return nil, err
	}

	return &RunResult{
		Record: record,
		Plan:   plan,
	}, nil
}
