package sqldb

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/fundbalance-backend/internal/domain"
	"github.com/simaogato/fundbalance-backend/internal/usecase/history"
	"github.com/simaogato/fundbalance-backend/internal/usecase/portfolio"
	"github.com/simaogato/fundbalance-backend/internal/usecase/rebalance"
)

func TestSQLitePortfolioRepository_ConcurrentInsertPositions(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewPortfolioRepository(db)

	bucketID := uuid.New()
	require.NoError(t, repo.CreateBucket(ctx, &domain.Bucket{ID: bucketID, Name: "All", TargetRate: d("1")}))

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.InsertFund(ctx, bucketID, &domain.Fund{
				ID: uuid.New(), Name: fmt.Sprintf("Fund %02d", i), Code: fmt.Sprintf("C%02d", i),
				Current: d("1"), Weight: d("0.04"),
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows, err := db.QueryContext(ctx, db.Rebind(`SELECT position FROM funds WHERE bucket_id = ? ORDER BY position`), bucketID)
	require.NoError(t, err)
	defer rows.Close()

	var positions []int
	for rows.Next() {
		var p int
		require.NoError(t, rows.Scan(&p))
		positions = append(positions, p)
	}
	require.NoError(t, rows.Err())

	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, positions)
}

func TestSQLiteHistoryRepository_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(newSQLiteDB(t))

	const n = 30
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record := &domain.RebalanceRecord{
				CreatedAt:  time.Now().UTC(),
				Threshold:  d("0.05"),
				TotalValue: d("100"),
				Suggestions: []domain.Suggestion{
					{BucketName: "All", FundName: "A", FundCode: "1", CurrentValue: d("60"), TargetValue: d("50"), DiffValue: d("10"), Advice: domain.AdviceSell},
				},
			}
			if err := repo.Append(ctx, record); err != nil {
				errs <- err
				return
			}
			ids <- record.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assertDistinctAscending(t, ids, n)

	summaries, err := repo.List(ctx, n)
	require.NoError(t, err)
	require.Len(t, summaries, n)
	for i := 1; i < len(summaries); i++ {
		assert.Greater(t, summaries[i-1].ID, summaries[i].ID)
	}
}

func TestSQLiteRebalanceService_ParallelRuns(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)

	portfolioRepo := NewPortfolioRepository(db)
	require.NoError(t, portfolioRepo.CreateBucket(ctx, &domain.Bucket{
		ID: uuid.New(), Name: "All", TargetRate: d("1"),
		Funds: []domain.Fund{
			{ID: uuid.New(), Name: "A", Code: "A1", Current: d("60"), Weight: d("0.5")},
			{ID: uuid.New(), Name: "B", Code: "B1", Current: d("40"), Weight: d("0.5")},
		},
	}))

	portfolioService := portfolio.NewPortfolioService(portfolioRepo, false)
	historyService := history.NewHistoryService(NewHistoryRepository(db))
	svc := rebalance.NewRebalanceService(portfolioService, historyService, decimal.Zero)

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Run(ctx, decimal.Zero)
			if err != nil {
				errs <- err
				return
			}
			ids <- result.Record.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assertDistinctAscending(t, ids, n)

	summaries, err := historyService.List(ctx, n)
	require.NoError(t, err)
	require.Len(t, summaries, n)
	for _, s := range summaries {
		assert.True(t, s.TotalValue.Equal(d("100")))
		detail, err := historyService.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, detail.Record.Suggestions, 2)
	}
}

// assertDistinctAscending drains ids and checks they are n distinct values forming 1..n
func assertDistinctAscending(t *testing.T, ids <-chan int64, n int) {
	t.Helper()

	var got []int64
	for id := range ids {
		got = append(got, id)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	require.Len(t, got, n)
	for i, id := range got {
		assert.Equal(t, int64(i+1), id)
	}
}
