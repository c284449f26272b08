package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FundPatch is a partial update of a fund. Nil fields are left unchanged.
type FundPatch struct {
	Name    *string
	Code    *string
	Current *decimal.Decimal
	Weight  *decimal.Decimal
}

// PatchFromField builds a single-field patch from the raw string value sent by clients
func PatchFromField(field, value string) (FundPatch, error) {
	var patch FundPatch

	switch FundField(field) {
	case FundFieldName:
		patch.Name = &value
	case FundFieldCode:
		patch.Code = &value
	case FundFieldCurrent:
		current, err := ParseFundNumber(FundFieldCurrent, value)
		if err != nil {
			return FundPatch{}, err
		}
		patch.Current = &current
	case FundFieldWeight:
		weight, err := ParseFundNumber(FundFieldWeight, value)
		if err != nil {
			return FundPatch{}, err
		}
		patch.Weight = &weight
	default:
		return FundPatch{}, NewValidationError("field", "unknown fund field %q", field)
	}

	return patch, nil
}

// IsEmpty reports whether the patch changes nothing
func (p FundPatch) IsEmpty() bool {
	return p.Name == nil && p.Code == nil && p.Current == nil && p.Weight == nil
}

// Validate checks every field present in the patch with the same rules as a new fund
func (p FundPatch) Validate() error {
	if p.IsEmpty() {
		return NewValidationError("", "no fields to update")
	}
	if p.Name != nil {
		if err := ValidateFundName(*p.Name); err != nil {
			return err
		}
	}
	if p.Code != nil {
		if err := ValidateFundCode(*p.Code); err != nil {
			return err
		}
	}
	if p.Current != nil {
		if err := ValidateFundCurrent(*p.Current); err != nil {
			return err
		}
	}
	if p.Weight != nil {
		if err := ValidateFundWeight(*p.Weight); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns a copy of f with the patch applied
func (p FundPatch) Apply(f Fund) Fund {
	if p.Name != nil {
		f.Name = strings.TrimSpace(*p.Name)
	}
	if p.Code != nil {
		f.Code = strings.TrimSpace(*p.Code)
	}
	if p.Current != nil {
		f.Current = *p.Current
	}
	if p.Weight != nil {
		f.Weight = *p.Weight
	}
	return f
}
