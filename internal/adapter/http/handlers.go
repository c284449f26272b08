package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundbalance-backend/internal/adapter/http/dto"
	"github.com/simaogato/fundbalance-backend/internal/domain"
	"github.com/simaogato/fundbalance-backend/internal/usecase/portfolio"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, dto.Health{Status: "ok"}, "")
}

func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.portfolio.ListBuckets(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, dto.FromPortfolio(buckets), "")
}

func (s *Server) handleAddFund(w http.ResponseWriter, r *http.Request) {
	var req dto.AddFundRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	buckets, err := s.portfolio.AddFund(r.Context(), portfolio.AddFundInput{
		BucketIndex: req.BucketIndex,
		Name:        req.Name,
		Code:        req.Code,
		Current:     string(req.Current),
		Weight:      string(req.Weight),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, dto.FromPortfolio(buckets), "fund added")
}

func (s *Server) handleUpdateFundField(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateFundRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	buckets, err := s.portfolio.EditFundField(r.Context(), req.BucketIndex, req.FundIndex, req.Field, string(req.Value))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, dto.FromPortfolio(buckets), "fund updated")
}

func (s *Server) handlePatchFund(w http.ResponseWriter, r *http.Request) {
	var req dto.PatchFundRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	patch, err := patchFromRequest(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	buckets, err := s.portfolio.EditFund(r.Context(), req.BucketIndex, req.FundIndex, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, dto.FromPortfolio(buckets), "fund updated")
}

func (s *Server) handleDeleteFund(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteFundRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	buckets, err := s.portfolio.DeleteFund(r.Context(), req.BucketIndex, req.FundIndex)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, dto.FromPortfolio(buckets), "fund deleted")
}

func (s *Server) handleRebalance(w http.ResponseWriter, r *http.Request) {
	var req dto.RebalanceRequest
	if err := decodeJSON(r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}

	threshold := decimal.Zero
	if !req.Threshold.IsZero() {
		var err error
		threshold, err = decimal.NewFromString(string(req.Threshold))
		if err != nil {
			s.writeError(w, r, domain.NewValidationError("threshold", "threshold must be a number, got %q", string(req.Threshold)))
			return
		}
	}

	result, err := s.rebalance.Run(r.Context(), threshold)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.log.Info().
		Int64("record_id", result.Record.ID).
		Str("total_value", result.Plan.TotalValue.String()).
		Msg("Rebalance recorded")

	writeData(w, dto.FromPlan(result.Plan), fmt.Sprintf("rebalance analysis complete, record #%d", result.Record.ID))
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.history.List(r.Context(), s.limitParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, dto.FromSummaries(summaries), "")
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, r, domain.NewValidationError("id", "invalid record id %q", chi.URLParam(r, "id")))
		return
	}

	detail, err := s.history.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, dto.FromDetail(detail), "")
}

func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	png, err := s.dashboard.RenderHistoryChart(r.Context(), s.limitParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.dashboard.GetOverview(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, dto.FromOverview(overview), "")
}

// limitParam reads ?limit=N, falling back to the configured default when missing or invalid
func (s *Server) limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return s.historyLimit
	}
	return limit
}

func patchFromRequest(req dto.PatchFundRequest) (domain.FundPatch, error) {
	patch := domain.FundPatch{
		Name: req.Name,
		Code: req.Code,
	}
	if req.Current != nil {
		current, err := domain.ParseFundNumber(domain.FundFieldCurrent, string(*req.Current))
		if err != nil {
			return domain.FundPatch{}, err
		}
		patch.Current = &current
	}
	if req.Weight != nil {
		weight, err := domain.ParseFundNumber(domain.FundFieldWeight, string(*req.Weight))
		if err != nil {
			return domain.FundPatch{}, err
		}
		patch.Weight = &weight
	}
	return patch, nil
}
