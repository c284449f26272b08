package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundField names one editable attribute of a fund
type FundField string

const (
	FundFieldName    FundField = "name"
	FundFieldCode    FundField = "code"
	FundFieldCurrent FundField = "current"
	FundFieldWeight  FundField = "weight"
)

// Fund represents a single holding inside a bucket
type Fund struct {
	ID      uuid.UUID
	Name    string
	Code    string          // Stable identifier, not unique across buckets
	Current decimal.Decimal // Market value in the reporting unit
	Weight  decimal.Decimal // Share of the bucket target, in (0, 1]
}

// Validate ensures the fund adheres to domain rules
func (f *Fund) Validate() error {
	if err := ValidateFundName(f.Name); err != nil {
		return err
	}
	if err := ValidateFundCode(f.Code); err != nil {
		return err
	}
	if err := ValidateFundCurrent(f.Current); err != nil {
		return err
	}
	return ValidateFundWeight(f.Weight)
}

// ValidateFundName rejects blank names
func ValidateFundName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError(string(FundFieldName), "fund name cannot be empty")
	}
	return nil
}

// ValidateFundCode rejects blank codes
func ValidateFundCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return NewValidationError(string(FundFieldCode), "fund code cannot be empty")
	}
	return nil
}

// ValidateFundCurrent rejects negative market values
func ValidateFundCurrent(current decimal.Decimal) error {
	if current.IsNegative() {
		return NewValidationError(string(FundFieldCurrent), "current value cannot be negative")
	}
	return nil
}

// ValidateFundWeight requires 0 < weight <= 1
func ValidateFundWeight(weight decimal.Decimal) error {
	if !weight.IsPositive() || weight.GreaterThan(decimal.NewFromInt(1)) {
		return NewValidationError(string(FundFieldWeight), "weight must be in (0, 1], got %s", weight.String())
	}
	return nil
}

// ParseFundNumber parses a numeric field value, reporting a ValidationError on failure
func ParseFundNumber(field FundField, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, NewValidationError(string(field), "%s must be a number, got %q", field, raw)
	}
	return value, nil
}
