package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/simaogato/fundbalance-backend/internal/domain"
)

// BucketAllocation is the actual versus target allocation of one bucket
type BucketAllocation struct {
	Name         string
	TargetRate   decimal.Decimal
	CurrentValue decimal.Decimal
	CurrentRate  decimal.Decimal
	Drift        decimal.Decimal // CurrentRate - TargetRate
}

// OverviewResult represents the allocation overview of the whole portfolio
type OverviewResult struct {
	TotalValue decimal.Decimal
	Buckets    []BucketAllocation
}

// PortfolioReader provides the current portfolio snapshot
type PortfolioReader interface {
	ListBuckets(ctx context.Context) (domain.Portfolio, error)
}

// HistoryLister provides recent history summaries, most recent first
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]domain.RecordSummary, error)
}

// DashboardService handles read-only aggregate views
type DashboardService struct {
	Portfolio PortfolioReader
	History   HistoryLister
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(portfolio PortfolioReader, history HistoryLister) *DashboardService {
	return &DashboardService{
		Portfolio: portfolio,
		History:   history,
	}
}

// GetOverview calculates the allocation overview
// Logic:
//   - Total: sum of every fund's current value
//   - CurrentRate: bucket current value / total (zero when the total is zero)
//   - Drift: CurrentRate - TargetRate
func (s *DashboardService) GetOverview(ctx context.Context) (*OverviewResult, error) {
	portfolio, err := s.Portfolio.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	total := portfolio.TotalValue()
	result := &OverviewResult{
		TotalValue: total,
		Buckets:    make([]BucketAllocation, 0, len(portfolio)),
	}

	for _, bucket := range portfolio {
		current := bucket.CurrentValue()
		rate := decimal.Zero
		if total.IsPositive() {
			rate = current.Div(total)
		}
		result.Buckets = append(result.Buckets, BucketAllocation{
			Name:         bucket.Name,
			TargetRate:   bucket.TargetRate,
			CurrentValue: current,
			CurrentRate:  rate,
			Drift:        rate.Sub(bucket.TargetRate),
		})
	}

	return result, nil
}

// RenderHistoryChart renders the total value of the last limit runs as a PNG line chart
// Returns NotFoundError when fewer than two runs exist
func (s *DashboardService) RenderHistoryChart(ctx context.Context, limit int) ([]byte, error) {
	if limit <= 0 {
		return nil, domain.NewValidationError("limit", "limit must be positive, got %d", limit)
	}

	summaries, err := s.History.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(summaries) < 2 {
		return nil, domain.NewNotFoundError("history chart", fmt.Sprintf("with %d record(s)", len(summaries)))
	}

	// Summaries arrive newest first; the chart runs left to right in time
	xValues := make([]time.Time, len(summaries))
	yValues := make([]float64, len(summaries))
	for i, summary := range summaries {
		j := len(summaries) - 1 - i
		xValues[j] = summary.CreatedAt
		yValues[j] = summary.TotalValue.InexactFloat64()
	}

	return renderTotalValueChart(xValues, yValues)
}

func renderTotalValueChart(xValues []time.Time, yValues []float64) ([]byte, error) {
	series := chart.TimeSeries{
		Name: "Total Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  "Rebalance History",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("01-02 15:04")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}

	// Degenerate series have no range of their own
	if first, last := xValues[0], xValues[len(xValues)-1]; !last.After(first) {
		graph.XAxis.Range = &chart.ContinuousRange{
			Min: chart.TimeToFloat64(first.Add(-time.Minute)),
			Max: chart.TimeToFloat64(first.Add(time.Minute)),
		}
	}
	if lo, hi := minMax(yValues); lo == hi {
		graph.YAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
