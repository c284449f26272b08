package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/simaogato/fundbalance-backend/internal/adapter/http"
	"github.com/simaogato/fundbalance-backend/internal/adapter/http/dto"
	"github.com/simaogato/fundbalance-backend/internal/adapter/repository/memory"
	"github.com/simaogato/fundbalance-backend/internal/usecase/dashboard"
	"github.com/simaogato/fundbalance-backend/internal/usecase/history"
	"github.com/simaogato/fundbalance-backend/internal/usecase/portfolio"
	"github.com/simaogato/fundbalance-backend/internal/usecase/rebalance"
	"github.com/simaogato/fundbalance-backend/internal/usecase/seeder"
)

// newAPIServer serves the real API over the seeded default portfolio
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	portfolioRepo := memory.NewPortfolioRepository()
	_, err := seeder.NewPortfolioSeeder(portfolioRepo).Seed(ctx)
	require.NoError(t, err)

	portfolioService := portfolio.NewPortfolioService(portfolioRepo, false)
	historyService := history.NewHistoryService(memory.NewHistoryRepository())

	api := apihttp.New(apihttp.Config{
		Log:              zerolog.Nop(),
		PortfolioService: portfolioService,
		RebalanceService: rebalance.NewRebalanceService(portfolioService, historyService, decimal.Zero),
		HistoryService:   historyService,
		DashboardService: dashboard.NewDashboardService(portfolioService, historyService),
	})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_AgainstAPI(t *testing.T) {
	ctx := context.Background()
	client := NewClient(WithBaseURL(newAPIServer(t).URL + "/"))

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)

	buckets, err := client.ListBuckets(ctx)
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Len(t, buckets[2].Funds, 3)

	buckets, err = client.AddFund(ctx, dto.AddFundRequest{BucketIndex: 1, Name: "Bond C", Code: "000001", Current: "10", Weight: "0.2"})
	require.NoError(t, err)
	require.Len(t, buckets[1].Funds, 3)
	assert.Equal(t, "000001", buckets[1].Funds[2].Code)

	buckets, err = client.UpdateFund(ctx, dto.UpdateFundRequest{BucketIndex: 1, FundIndex: 2, Field: "current", Value: "15"})
	require.NoError(t, err)
	assert.Equal(t, 15.0, buckets[1].Funds[2].Current)

	name := "Bond D"
	buckets, err = client.PatchFund(ctx, dto.PatchFundRequest{BucketIndex: 1, FundIndex: 2, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bond D", buckets[1].Funds[2].Name)

	buckets, err = client.DeleteFund(ctx, dto.DeleteFundRequest{BucketIndex: 1, FundIndex: 2})
	require.NoError(t, err)
	assert.Len(t, buckets[1].Funds, 2)

	plans, err := client.Rebalance(ctx, "")
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "Short-term (money market)", plans[0].Name)
	total := 0.0
	for _, p := range plans {
		total += p.CurrentValue
	}
	assert.Equal(t, 350.0, total)

	summaries, err := client.ListHistory(ctx, 5)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0.05, summaries[0].Threshold)
	assert.Equal(t, 350.0, summaries[0].TotalValue)

	detail, err := client.GetHistory(ctx, summaries[0].ID)
	require.NoError(t, err)
	assert.Len(t, detail.Suggestions, 6)

	overview, err := client.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 350.0, overview.TotalValue)
}

func TestClient_ErrorStatusIsTransportError(t *testing.T) {
	ctx := context.Background()
	client := NewClient(WithBaseURL(newAPIServer(t).URL))

	_, err := client.DeleteFund(ctx, dto.DeleteFundRequest{BucketIndex: 5})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, http.StatusNotFound, transportErr.StatusCode)
	assert.Equal(t, "bucket index 5 not found", transportErr.Message)

	_, err = client.AddFund(ctx, dto.AddFundRequest{Name: "A", Code: "1", Current: "1", Weight: "1.5"})
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusBadRequest, transportErr.StatusCode)
}

func TestClient_MalformedResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantAPI bool
	}{
		{name: "Empty body", status: http.StatusOK, body: ""},
		{name: "Not JSON", status: http.StatusOK, body: "<html>gateway</html>"},
		{name: "Server error without envelope", status: http.StatusBadGateway, body: "bad gateway"},
		{name: "Success without data", status: http.StatusOK, body: `{"success":true}`},
		{name: "Unsuccessful envelope", status: http.StatusOK, body: `{"success":false,"message":"store is read-only"}`, wantAPI: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(WithBaseURL(srv.URL)).ListBuckets(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			if tt.wantAPI {
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "store is read-only", apiErr.Message)
				assert.False(t, errors.Is(err, ErrTransport))
			} else {
				assert.ErrorIs(t, err, ErrTransport)
				assert.False(t, errors.As(err, &apiErr))
			}
		})
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(WithBaseURL(url)).Health(context.Background())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Zero(t, transportErr.StatusCode)
}

func TestClient_ListHistoryDefaultLimitOmitsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	summaries, err := NewClient(WithBaseURL(srv.URL), WithRateLimit(10)).ListHistory(context.Background(), 0)

	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.Empty(t, gotQuery)
}
