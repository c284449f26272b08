package seeder

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundbalance-backend/internal/domain"
)

// Fixed UUIDs for the default buckets so a reseeded store keeps stable ids
var (
	BUCKET_SHORT_TERM  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	BUCKET_MEDIUM_TERM = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	BUCKET_LONG_TERM   = uuid.MustParse("00000000-0000-0000-0000-000000000003")
)

// DefaultPortfolio returns the starter portfolio: a 10/30/60 split across money market,
// bond and equity buckets with six sample funds (values in units of 10k)
func DefaultPortfolio() domain.Portfolio {
	fund := func(name, code, current, weight string) domain.Fund {
		return domain.Fund{
			ID:      uuid.New(),
			Name:    name,
			Code:    code,
			Current: decimal.RequireFromString(current),
			Weight:  decimal.RequireFromString(weight),
		}
	}

	return domain.Portfolio{
		{
			ID:         BUCKET_SHORT_TERM,
			Name:       "Short-term (money market)",
			TargetRate: decimal.RequireFromString("0.10"),
			Funds: []domain.Fund{
				fund("易方达货币A", "000009", "20", "1.0"),
			},
		},
		{
			ID:         BUCKET_MEDIUM_TERM,
			Name:       "Medium-term (bond)",
			TargetRate: decimal.RequireFromString("0.30"),
			Funds: []domain.Fund{
				fund("广发国开债7-10A", "003375", "50", "0.5"),
				fund("博时信用债纯债A", "050026", "40", "0.5"),
			},
		},
		{
			ID:         BUCKET_LONG_TERM,
			Name:       "Long-term (equity)",
			TargetRate: decimal.RequireFromString("0.60"),
			Funds: []domain.Fund{
				fund("易方达沪深300ETF联接A", "110020", "100", "0.4"),
				fund("南方中证500ETF联接A", "160119", "80", "0.3"),
				fund("汇添富海外互联网50ETF", "006327", "60", "0.3"),
			},
		},
	}
}

// PortfolioSeeder fills an empty store with the default portfolio
type PortfolioSeeder struct {
	repo domain.PortfolioRepository
}

// NewPortfolioSeeder creates a new PortfolioSeeder instance
func NewPortfolioSeeder(repo domain.PortfolioRepository) *PortfolioSeeder {
	return &PortfolioSeeder{
		repo: repo,
	}
}

// Seed creates the default buckets and funds when the store holds no bucket yet
// Returns true if anything was written. A store left partially seeded by an earlier failed
// run gets its missing default buckets; a store holding any other bucket is left alone.
func (s *PortfolioSeeder) Seed(ctx context.Context) (bool, error) {
	defaults := DefaultPortfolio()
	for _, bucket := range defaults {
		if err := bucket.Validate(); err != nil {
			return false, err
		}
	}

	count, err := s.repo.CountBuckets(ctx)
	if err != nil {
		return false, err
	}

	existing := make(map[uuid.UUID]bool, count)
	if count > 0 {
		stored, err := s.repo.Load(ctx)
		if err != nil {
			return false, err
		}
		known := make(map[uuid.UUID]bool, len(defaults))
		for _, bucket := range defaults {
			known[bucket.ID] = true
		}
		for _, bucket := range stored {
			if !known[bucket.ID] {
				return false, nil
			}
			existing[bucket.ID] = true
		}
	}

	seeded := false
	for i := range defaults {
		if existing[defaults[i].ID] {
			continue
		}
		if err := s.repo.CreateBucket(ctx, &defaults[i]); err != nil {
			return seeded, err
		}
		seeded = true
	}

	return seeded, nil
}
