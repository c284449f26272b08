package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/fundbalance-backend/internal/adapter/http/dto"
	"github.com/simaogato/fundbalance-backend/internal/domain"
	"github.com/simaogato/fundbalance-backend/internal/usecase/history"
	"github.com/simaogato/fundbalance-backend/internal/usecase/portfolio"
	"github.com/simaogato/fundbalance-backend/internal/usecase/rebalance"
)

// maxHistoryLimit caps the page size a ListHistory request can ask for
const maxHistoryLimit = 1000

// Server implements the RebalanceService gRPC server
type Server struct {
	PortfolioService *portfolio.PortfolioService
	RebalanceService *rebalance.RebalanceService
	HistoryService   *history.HistoryService
	HistoryLimit     int
}

// NewServer creates a new gRPC server instance
func NewServer(
	portfolioService *portfolio.PortfolioService,
	rebalanceService *rebalance.RebalanceService,
	historyService *history.HistoryService,
	historyLimit int,
) *Server {
	if historyLimit <= 0 {
		historyLimit = history.DefaultLimit
	}
	return &Server{
		PortfolioService: portfolioService,
		RebalanceService: rebalanceService,
		HistoryService:   historyService,
		HistoryLimit:     historyLimit,
	}
}

// ListBuckets handles the ListBuckets RPC
// Response: {"buckets": [...]}
func (s *Server) ListBuckets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	buckets, err := s.PortfolioService.ListBuckets(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{"buckets": dto.FromPortfolio(buckets)})
}

// Rebalance handles the Rebalance RPC
// Request: {"threshold": 0.05}; a missing or zero threshold uses the default
// Response: {"record_id": 1, "buckets": [...]}
func (s *Server) Rebalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	threshold := decimal.Zero
	if v, ok := req.GetFields()["threshold"]; ok {
		number, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "threshold must be a number")
		}
		threshold = decimal.NewFromFloat(number.NumberValue)
	}

	result, err := s.RebalanceService.Run(ctx, threshold)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{
		"record_id": result.Record.ID,
		"buckets":   dto.FromPlan(result.Plan),
	})
}

// ListHistory handles the ListHistory RPC
// Request: {"limit": 10}; response: {"records": [...]}
func (s *Server) ListHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := s.HistoryLimit
	if v, ok := req.GetFields()["limit"]; ok {
		n, err := integerField(v, "limit")
		if err != nil {
			return nil, err
		}
		if n >= 1 {
			limit = int(min(n, maxHistoryLimit))
		}
	}

	summaries, err := s.HistoryService.List(ctx, limit)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{"records": dto.FromSummaries(summaries)})
}

// GetHistory handles the GetHistory RPC
// Request: {"id": 3}
func (s *Server) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v, ok := req.GetFields()["id"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "id must be a positive integer")
	}
	id, err := integerField(v, "id")
	if err != nil {
		return nil, err
	}
	if id < 1 {
		return nil, status.Error(codes.InvalidArgument, "id must be a positive integer")
	}

	detail, err := s.HistoryService.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(dto.FromDetail(detail))
}

// integerField reads a whole number, saturating at the int64 range
func integerField(v *structpb.Value, name string) (int64, error) {
	number, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	f := number.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer, got %v", name, f)
	}
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64, nil
	case f <= math.MinInt64:
		return math.MinInt64, nil
	}
	return int64(f), nil
}

// toStruct converts a JSON-tagged value into a protobuf Struct
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	default:
		return status.Errorf(codes.Internal, "%s", err.Error())
	}
}
