package scheduler

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundbalance-backend/internal/usecase/rebalance"
)

// Rebalancer runs one rebalance and records it in history
type Rebalancer interface {
	Run(ctx context.Context, threshold decimal.Decimal) (*rebalance.RunResult, error)
}

// RebalanceJob runs the engine with the default threshold so every scheduled run lands in history
type RebalanceJob struct {
	rebalancer Rebalancer
	log        zerolog.Logger
}

// NewRebalanceJob creates a new scheduled rebalance job
func NewRebalanceJob(rebalancer Rebalancer, log zerolog.Logger) *RebalanceJob {
	return &RebalanceJob{
		rebalancer: rebalancer,
		log:        log.With().Str("job", "rebalance").Logger(),
	}
}

// Name returns the job name
func (j *RebalanceJob) Name() string {
	return "rebalance"
}

// Run executes the job
func (j *RebalanceJob) Run(ctx context.Context) error {
	result, err := j.rebalancer.Run(ctx, decimal.Zero)
	if err != nil {
		return err
	}

	j.log.Info().
		Int64("record_id", result.Record.ID).
		Str("total_value", result.Plan.TotalValue.StringFixed(2)).
		Int("suggestions", len(result.Record.Suggestions)).
		Msg("Scheduled rebalance recorded")

	return nil
}
