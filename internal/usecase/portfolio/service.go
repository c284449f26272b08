package portfolio

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundbalance-backend/internal/domain"
)

// AddFundInput carries a new fund exactly as a client sent it
// Current and Weight are raw strings so a non-numeric value is reported as a validation error
type AddFundInput struct {
	BucketIndex int
	Name        string
	Code        string
	Current     string
	Weight      string
}

// PortfolioService owns every mutation of the bucket/fund hierarchy
// Mutations are serialized by mu; reads share it so they always see a committed state
type PortfolioService struct {
	Repo             domain.PortfolioRepository
	EnforceWeightCap bool

	mu sync.RWMutex
}

// NewPortfolioService creates a new PortfolioService instance
func NewPortfolioService(repo domain.PortfolioRepository, enforceWeightCap bool) *PortfolioService {
	return &PortfolioService{
		Repo:             repo,
		EnforceWeightCap: enforceWeightCap,
	}
}

// ListBuckets returns the current portfolio snapshot
func (s *PortfolioService) ListBuckets(ctx context.Context) (domain.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	portfolio, err := s.Repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return portfolio.Clone(), nil
}

// AddFund appends a fund to the bucket at input.BucketIndex and returns the updated portfolio
// Logic:
//   - Field values are validated before the bucket index is resolved
//   - With EnforceWeightCap the bucket's weights may not exceed 1 after the insert
func (s *PortfolioService) AddFund(ctx context.Context, input AddFundInput) (domain.Portfolio, error) {
	current, err := domain.ParseFundNumber(domain.FundFieldCurrent, input.Current)
	if err != nil {
		return nil, err
	}
	weight, err := domain.ParseFundNumber(domain.FundFieldWeight, input.Weight)
	if err != nil {
		return nil, err
	}

	fund := domain.Fund{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(input.Name),
		Code:    strings.TrimSpace(input.Code),
		Current: current,
		Weight:  weight,
	}
	if err := fund.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	portfolio, err := s.Repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	bucket, err := portfolio.BucketAt(input.BucketIndex)
	if err != nil {
		return nil, err
	}

	if s.EnforceWeightCap {
		if err := checkWeightCap(bucket.WeightSum(-1), fund.Weight, "current bucket total weight"); err != nil {
			return nil, err
		}
	}

	if err := s.Repo.InsertFund(ctx, bucket.ID, &fund); err != nil {
		return nil, err
	}

	return s.Repo.Load(ctx)
}

// EditFundField updates exactly one attribute of a fund
// The raw value is validated with the same rules as AddFund
func (s *PortfolioService) EditFundField(ctx context.Context, bucketIndex, fundIndex int, field, value string) (domain.Portfolio, error) {
	patch, err := domain.PatchFromField(field, value)
	if err != nil {
		return nil, err
	}
	return s.EditFund(ctx, bucketIndex, fundIndex, patch)
}

// EditFund applies a batched patch to one fund
// The whole patch is validated first and committed in a single repository write, so either
// every field changes or none does
func (s *PortfolioService) EditFund(ctx context.Context, bucketIndex, fundIndex int, patch domain.FundPatch) (domain.Portfolio, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	portfolio, err := s.Repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	bucket, fund, err := portfolio.FundAt(bucketIndex, fundIndex)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*fund)
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if s.EnforceWeightCap && patch.Weight != nil {
		if err := checkWeightCap(bucket.WeightSum(fundIndex), updated.Weight, "other funds total weight"); err != nil {
			return nil, err
		}
	}

	if err := s.Repo.UpdateFund(ctx, &updated); err != nil {
		return nil, err
	}

	return s.Repo.Load(ctx)
}

// DeleteFund removes the fund at the given indexes and returns the updated portfolio
func (s *PortfolioService) DeleteFund(ctx context.Context, bucketIndex, fundIndex int) (domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	portfolio, err := s.Repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	_, fund, err := portfolio.FundAt(bucketIndex, fundIndex)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.DeleteFund(ctx, fund.ID); err != nil {
		return nil, err
	}

	return s.Repo.Load(ctx)
}

func checkWeightCap(others, weight decimal.Decimal, label string) error {
	one := decimal.NewFromInt(1)
	if others.Add(weight).GreaterThan(one) {
		remaining := decimal.Max(one.Sub(others), decimal.Zero)
		return domain.NewValidationError(string(domain.FundFieldWeight),
			"weight exceeds bucket limit: %s %s, remaining %s",
			label, others.StringFixed(2), remaining.StringFixed(2))
	}
	return nil
}
