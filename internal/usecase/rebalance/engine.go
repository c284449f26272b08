package rebalance

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundbalance-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// BucketPlan is the engine output for one bucket
type BucketPlan struct {
	BucketID     uuid.UUID
	Name         string
	TargetRate   decimal.Decimal
	CurrentValue decimal.Decimal
	TargetValue  decimal.Decimal
	Suggestions  []domain.Suggestion
}

// Plan is the engine output for a whole portfolio
type Plan struct {
	Threshold  decimal.Decimal
	TotalValue decimal.Decimal
	Buckets    []BucketPlan // Same order as the input portfolio
}

// Suggestions flattens the plan, bucket by bucket, in portfolio order
func (p *Plan) Suggestions() []domain.Suggestion {
	var out []domain.Suggestion
	for _, b := range p.Buckets {
		out = append(out, b.Suggestions...)
	}
	return out
}

// Compute derives target values and advice for every fund of the portfolio
// Logic:
//  1. TotalValue = sum of every fund's current value
//  2. BucketTarget = TotalValue * bucket.TargetRate
//  3. FundTarget = BucketTarget * fund.Weight (weights are not renormalized)
//  4. Diff = fund.Current - FundTarget
//  5. SELL when Diff > Threshold * FundTarget, BUY when Diff < -Threshold * FundTarget,
//     HOLD otherwise; the boundary itself is HOLD. A zero target is classified by the sign of Diff.
//
// The portfolio is never modified and the result depends only on the inputs.
func Compute(portfolio domain.Portfolio, threshold decimal.Decimal) (*Plan, error) {
	if !threshold.IsPositive() {
		return nil, domain.NewValidationError("threshold", "threshold must be positive, got %s", threshold.String())
	}

	total := portfolio.TotalValue()

	plan := &Plan{
		Threshold:  threshold,
		TotalValue: total,
		Buckets:    make([]BucketPlan, 0, len(portfolio)),
	}

	for _, bucket := range portfolio {
		bucketTarget := total.Mul(bucket.TargetRate)

		bp := BucketPlan{
			BucketID:     bucket.ID,
			Name:         bucket.Name,
			TargetRate:   bucket.TargetRate,
			CurrentValue: bucket.CurrentValue(),
			TargetValue:  bucketTarget,
			Suggestions:  make([]domain.Suggestion, 0, len(bucket.Funds)),
		}

		for _, fund := range bucket.Funds {
			bp.Suggestions = append(bp.Suggestions, suggest(bucket.Name, fund, bucketTarget, threshold))
		}

		plan.Buckets = append(plan.Buckets, bp)
	}

	return plan, nil
}

// suggest classifies a single fund against its target
func suggest(bucketName string, fund domain.Fund, bucketTarget, threshold decimal.Decimal) domain.Suggestion {
	target := bucketTarget.Mul(fund.Weight)
	diff := fund.Current.Sub(target)

	s := domain.Suggestion{
		BucketName:   bucketName,
		FundName:     fund.Name,
		FundCode:     fund.Code,
		CurrentValue: fund.Current,
		TargetValue:  target,
		DiffValue:    diff,
	}

	if !target.IsPositive() {
		switch diff.Sign() {
		case 1:
			s.Advice = domain.AdviceSell
			s.Reason = fmt.Sprintf("target is zero but currently holding %s, exceeds threshold", diff.StringFixed(2))
		case -1:
			s.Advice = domain.AdviceBuy
			s.Reason = fmt.Sprintf("target is zero but currently short by %s, exceeds threshold", diff.Abs().StringFixed(2))
		default:
			s.Advice = domain.AdviceHold
			s.Reason = "within tolerance: target and current value are both zero"
		}
		return s
	}

	band := threshold.Mul(target)
	deviation := percent(diff.Div(target))
	limit := percent(threshold)

	switch {
	case diff.GreaterThan(band):
		s.Advice = domain.AdviceSell
		s.Reason = fmt.Sprintf("currently above target by %s%%, exceeds threshold %s%%", deviation, limit)
	case diff.LessThan(band.Neg()):
		s.Advice = domain.AdviceBuy
		s.Reason = fmt.Sprintf("currently below target by %s%%, exceeds threshold %s%%", percent(diff.Abs().Div(target)), limit)
	default:
		s.Advice = domain.AdviceHold
		s.Reason = fmt.Sprintf("within tolerance: deviation %s%% does not exceed threshold %s%%", deviation, limit)
	}

	return s
}

func percent(ratio decimal.Decimal) string {
	return ratio.Mul(hundred).StringFixed(2)
}
