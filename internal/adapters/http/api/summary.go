package api

import (
	"net/http"
	"time"

	"github.com/okian/trainer/internal/adapters/session"
	"github.com/okian/trainer/internal/domain/types"
	"github.com/okian/trainer/pkg/logger"
)

// SummaryHandler reports ledger totals for the supervising party.
type SummaryHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps Dependencies, l logger.Logger) *SummaryHandler {
	return &SummaryHandler{deps: deps, logger: l}
}

type eventResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	TrainerType string `json:"trainer_type"`
	Correct     bool   `json:"correct"`
	Points      int64  `json:"points"`
	Timestamp   string `json:"timestamp"`
}

type summaryResponse struct {
	types.Summary
	Recent []eventResponse `json:"recent"`
}

// HandleGetSummary handles GET /api/summary. Currency is computed with the
// price of the caller's current contract.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	sum, err := h.deps.Summary(ctx, sess.Contract())
	if err != nil {
		h.logger.Error(ctx, "summarizing ledger failed", logger.Error(err))
		writeKindError(w, err)
		return
	}
	events, err := h.deps.Recent(ctx)
	if err != nil {
		h.logger.Error(ctx, "listing recent events failed", logger.Error(err))
		writeKindError(w, err)
		return
	}

	resp := summaryResponse{Summary: sum, Recent: make([]eventResponse, len(events))}
	for i, e := range events {
		resp.Recent[i] = eventResponse{
			ID:          e.ID,
			UserID:      e.UserID,
			TrainerType: e.Domain,
			Correct:     e.Correct,
			Points:      e.Points,
			Timestamp:   e.Timestamp.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
