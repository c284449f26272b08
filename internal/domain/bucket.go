package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bucket represents a named group of funds sharing one target allocation rate
type Bucket struct {
	ID         uuid.UUID
	Name       string
	TargetRate decimal.Decimal // Share of the whole portfolio, in [0, 1]
	Funds      []Fund          // Display order
}

// Validate ensures the bucket adheres to domain rules
// Returns an error if validation fails
func (b *Bucket) Validate() error {
	if b.Name == "" {
		return NewValidationError("name", "bucket name cannot be empty")
	}

	if b.TargetRate.IsNegative() || b.TargetRate.GreaterThan(decimal.NewFromInt(1)) {
		return NewValidationError("target_rate", "bucket target rate must be in [0, 1], got %s", b.TargetRate.String())
	}

	for i := range b.Funds {
		if err := b.Funds[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// CurrentValue sums the market value of every fund in the bucket
func (b Bucket) CurrentValue() decimal.Decimal {
	total := decimal.Zero
	for _, f := range b.Funds {
		total = total.Add(f.Current)
	}
	return total
}

// WeightSum sums the intra-bucket weights, skipping the fund at index skip (-1 skips nothing)
func (b Bucket) WeightSum(skip int) decimal.Decimal {
	total := decimal.Zero
	for i, f := range b.Funds {
		if i == skip {
			continue
		}
		total = total.Add(f.Weight)
	}
	return total
}
