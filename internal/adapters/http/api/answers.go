package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/okian/trainer/internal/adapters/session"
	"github.com/okian/trainer/internal/domain/types"
	"github.com/okian/trainer/pkg/logger"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// answerRequest mirrors the OpenAPI schema for POST /api/answers. An empty
// answer is graded like any other.
type answerRequest struct {
	QuestionID    string `json:"question_id" validate:"omitempty,max=128"`
	Answer        string `json:"answer" validate:"max=1024"`
	CorrectAnswer string `json:"correct_answer" validate:"max=1024"`
	TrainerType   string `json:"trainer_type" validate:"required,max=64"`
}

func (a answerRequest) validate() error {
	if err := requestValidator().Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.Join(ErrBadRequest, errors.New(verrs[0].Field()+" fails "+verrs[0].Tag()))
		}
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}

// AnswerHandler grades submissions.
type AnswerHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewAnswerHandler creates a new answer handler.
func NewAnswerHandler(deps Dependencies, l logger.Logger) *AnswerHandler {
	return &AnswerHandler{deps: deps, logger: l}
}

// HandlePostAnswer handles POST /api/answers.
func (h *AnswerHandler) HandlePostAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req answerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	out, err := h.deps.Submit(ctx, types.Submission{
		QuestionID:    req.QuestionID,
		Answer:        req.Answer,
		CorrectAnswer: req.CorrectAnswer,
		Domain:        req.TrainerType,
	}, session.FromContext(ctx))
	if err != nil {
		h.logger.Error(ctx, "grading answer failed",
			logger.String("domain", req.TrainerType),
			logger.Error(err),
		)
		writeKindError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
