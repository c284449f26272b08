package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/fundbalance-backend/internal/domain"
)

// MockPortfolioRepository is a mock implementation of PortfolioRepository for testing
type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) Load(ctx context.Context) (domain.Portfolio, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Portfolio).Clone(), args.Error(1)
}

func (m *MockPortfolioRepository) CountBuckets(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockPortfolioRepository) CreateBucket(ctx context.Context, bucket *domain.Bucket) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *MockPortfolioRepository) InsertFund(ctx context.Context, bucketID uuid.UUID, fund *domain.Fund) error {
	args := m.Called(ctx, bucketID, fund)
	return args.Error(0)
}

func (m *MockPortfolioRepository) UpdateFund(ctx context.Context, fund *domain.Fund) error {
	args := m.Called(ctx, fund)
	return args.Error(0)
}

func (m *MockPortfolioRepository) DeleteFund(ctx context.Context, fundID uuid.UUID) error {
	args := m.Called(ctx, fundID)
	return args.Error(0)
}

var (
	shortID = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	longID  = uuid.MustParse("10000000-0000-0000-0000-000000000003")
	mmfID   = uuid.MustParse("20000000-0000-0000-0000-000000000001")
	etfID   = uuid.MustParse("20000000-0000-0000-0000-000000000002")
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func samplePortfolio() domain.Portfolio {
	return domain.Portfolio{
		{ID: shortID, Name: "Short", TargetRate: d("0.1"), Funds: []domain.Fund{
			{ID: mmfID, Name: "MMF", Code: "000009", Current: d("20"), Weight: d("1")},
		}},
		{ID: uuid.New(), Name: "Medium", TargetRate: d("0.3")},
		{ID: longID, Name: "Long", TargetRate: d("0.6"), Funds: []domain.Fund{
			{ID: etfID, Name: "CSI300", Code: "110020", Current: d("100"), Weight: d("0.4")},
		}},
	}
}

func TestPortfolioService_AddFund(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid fund is appended", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, false)

		repo.On("Load", ctx).Return(samplePortfolio(), nil)
		repo.On("InsertFund", ctx, longID, mock.MatchedBy(func(f *domain.Fund) bool {
			return f.Name == "CSI500" && f.Code == "160119" && f.Weight.Equal(d("0.3")) && f.ID != uuid.Nil
		})).Return(nil)

		_, err := service.AddFund(ctx, AddFundInput{BucketIndex: 2, Name: " CSI500 ", Code: "160119", Current: "80", Weight: "0.3"})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	tests := []struct {
		name    string
		input   AddFundInput
		wantErr error
	}{
		{name: "Weight zero", input: AddFundInput{Name: "A", Code: "1", Current: "1", Weight: "0"}, wantErr: domain.ErrValidation},
		{name: "Weight above one", input: AddFundInput{Name: "A", Code: "1", Current: "1", Weight: "1.5"}, wantErr: domain.ErrValidation},
		{name: "Weight not numeric", input: AddFundInput{Name: "A", Code: "1", Current: "1", Weight: "half"}, wantErr: domain.ErrValidation},
		{name: "Negative current", input: AddFundInput{Name: "A", Code: "1", Current: "-1", Weight: "1"}, wantErr: domain.ErrValidation},
		{name: "Blank name", input: AddFundInput{Name: "  ", Code: "1", Current: "1", Weight: "1"}, wantErr: domain.ErrValidation},
		{name: "Empty code", input: AddFundInput{Name: "A", Current: "1", Weight: "1"}, wantErr: domain.ErrValidation},
		{name: "Bucket out of range", input: AddFundInput{BucketIndex: 3, Name: "A", Code: "1", Current: "1", Weight: "1"}, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPortfolioRepository)
			service := NewPortfolioService(repo, false)
			repo.On("Load", ctx).Return(samplePortfolio(), nil).Maybe()

			_, err := service.AddFund(ctx, tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "InsertFund", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("Weight one succeeds", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, false)
		repo.On("Load", ctx).Return(samplePortfolio(), nil)
		repo.On("InsertFund", ctx, mock.Anything, mock.Anything).Return(nil)

		_, err := service.AddFund(ctx, AddFundInput{BucketIndex: 1, Name: "Bond", Code: "003375", Current: "50", Weight: "1"})
		assert.NoError(t, err)
	})
}

func TestPortfolioService_AddFund_WeightCap(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPortfolioRepository)
	service := NewPortfolioService(repo, true)
	repo.On("Load", ctx).Return(samplePortfolio(), nil)

	// Short bucket already holds weight 1
	_, err := service.AddFund(ctx, AddFundInput{BucketIndex: 0, Name: "A", Code: "1", Current: "1", Weight: "0.1"})

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "current bucket total weight 1.00, remaining 0.00")
	repo.AssertNotCalled(t, "InsertFund", mock.Anything, mock.Anything, mock.Anything)

	// Long bucket has 0.6 left
	repo.On("InsertFund", ctx, longID, mock.Anything).Return(nil)
	_, err = service.AddFund(ctx, AddFundInput{BucketIndex: 2, Name: "A", Code: "1", Current: "1", Weight: "0.6"})
	assert.NoError(t, err)
}

func TestPortfolioService_EditFund(t *testing.T) {
	ctx := context.Background()

	t.Run("Single field edit", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, false)
		repo.On("Load", ctx).Return(samplePortfolio(), nil)
		repo.On("UpdateFund", ctx, mock.MatchedBy(func(f *domain.Fund) bool {
			return f.ID == etfID && f.Current.Equal(d("120")) && f.Name == "CSI300"
		})).Return(nil)

		_, err := service.EditFundField(ctx, 2, 0, "current", "120")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Batched patch commits every field in one write", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, false)
		repo.On("Load", ctx).Return(samplePortfolio(), nil)
		repo.On("UpdateFund", ctx, mock.MatchedBy(func(f *domain.Fund) bool {
			return f.Name == "Renamed" && f.Weight.Equal(d("0.5"))
		})).Return(nil).Once()

		name := "Renamed"
		weight := d("0.5")
		_, err := service.EditFund(ctx, 2, 0, domain.FundPatch{Name: &name, Weight: &weight})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Invalid field in patch leaves fund untouched", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, false)

		name := "Renamed"
		weight := d("2")
		_, err := service.EditFund(ctx, 2, 0, domain.FundPatch{Name: &name, Weight: &weight})

		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNotCalled(t, "UpdateFund", mock.Anything, mock.Anything)
	})

	t.Run("Unknown field", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, false)

		_, err := service.EditFundField(ctx, 0, 0, "color", "red")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Fund index out of range", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, false)
		repo.On("Load", ctx).Return(samplePortfolio(), nil)

		_, err := service.EditFundField(ctx, 1, 0, "name", "x")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Weight cap excludes the edited fund", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, true)
		repo.On("Load", ctx).Return(samplePortfolio(), nil)
		repo.On("UpdateFund", ctx, mock.Anything).Return(nil)

		_, err := service.EditFundField(ctx, 0, 0, "weight", "1")
		assert.NoError(t, err)
	})
}

func TestPortfolioService_DeleteFund(t *testing.T) {
	ctx := context.Background()

	t.Run("Existing fund", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, false)
		repo.On("Load", ctx).Return(samplePortfolio(), nil)
		repo.On("DeleteFund", ctx, mmfID).Return(nil)

		_, err := service.DeleteFund(ctx, 0, 0)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Bucket index out of range", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, false)
		repo.On("Load", ctx).Return(samplePortfolio(), nil)

		_, err := service.DeleteFund(ctx, 5, 0)

		assert.ErrorIs(t, err, domain.ErrNotFound)
		repo.AssertNotCalled(t, "DeleteFund", mock.Anything, mock.Anything)
	})

	t.Run("Repository failure is returned", func(t *testing.T) {
		repo := new(MockPortfolioRepository)
		service := NewPortfolioService(repo, false)
		repo.On("Load", ctx).Return(samplePortfolio(), nil)
		repo.On("DeleteFund", ctx, mmfID).Return(domain.NewPersistenceError("delete fund", errors.New("locked")))

		_, err := service.DeleteFund(ctx, 0, 0)
		assert.ErrorIs(t, err, domain.ErrPersistence)
	})
}

func TestPortfolioService_ListBuckets(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPortfolioRepository)
	service := NewPortfolioService(repo, false)
	repo.On("Load", ctx).Return(samplePortfolio(), nil)

	portfolio, err := service.ListBuckets(ctx)

	require.NoError(t, err)
	require.Len(t, portfolio, 3)
	assert.Equal(t, "Long", portfolio[2].Name)
	assert.Equal(t, "000009", portfolio[0].Funds[0].Code)
}
