package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/trainer/internal/adapters/session"
	"github.com/okian/trainer/internal/domain/contract"
	"github.com/okian/trainer/internal/domain/model"
)

// contractRequest mirrors the OpenAPI schema for PUT /api/contract. Every
// field is required; a partial body never replaces the contract.
type contractRequest struct {
	DifficultySeconds *int   `json:"difficulty" validate:"required"`
	CorrectPoints     *int64 `json:"correct_points" validate:"required"`
	IncorrectPoints   *int64 `json:"incorrect_points" validate:"required"`
	PricePerPoint     *int64 `json:"price_per_point" validate:"required"`
}

func (c contractRequest) toContract() (contract.Contract, error) {
	const op = "api.contract"

	if err := requestValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return contract.Contract{}, model.WrapKind(op, model.ErrValidation,
				errors.New(verrs[0].Field()+" is required"))
		}
		return contract.Contract{}, model.WrapKind(op, model.ErrValidation, err)
	}
	return contract.Contract{
		DifficultySeconds: *c.DifficultySeconds,
		CorrectPoints:     *c.CorrectPoints,
		IncorrectPoints:   *c.IncorrectPoints,
		PricePerPoint:     *c.PricePerPoint,
	}, nil
}

// ContractHandler reads and replaces the session contract.
type ContractHandler struct {
	deps Dependencies
}

// NewContractHandler creates a new contract handler.
func NewContractHandler(deps Dependencies) *ContractHandler {
	return &ContractHandler{deps: deps}
}

// HandleGetContract handles GET /api/contract.
func (h *ContractHandler) HandleGetContract(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session.FromContext(r.Context()).Contract())
}

// HandlePutContract handles PUT /api/contract. The contract is replaced as a
// whole; a rejected contract leaves the previous one in effect.
func (h *ContractHandler) HandlePutContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	var req contractRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	c, err := req.toContract()
	if err != nil {
		writeKindError(w, err)
		return
	}
	if err := h.deps.SetContract(ctx, sess, c); err != nil {
		writeKindError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Contract())
}
