package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/trainer/internal/adapters/session"
	"github.com/okian/trainer/pkg/logger"
)

// TrainerHandler presents questions.
type TrainerHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewTrainerHandler creates a new trainer handler.
func NewTrainerHandler(deps Dependencies, l logger.Logger) *TrainerHandler {
	return &TrainerHandler{deps: deps, logger: l}
}

type optionResponse struct {
	Value string `json:"value"`
}

type questionResponse struct {
	QuestionID    string           `json:"question_id"`
	TrainerType   string           `json:"trainer_type"`
	Prompt        string           `json:"prompt"`
	Options       []optionResponse `json:"options"`
	CorrectAnswer string           `json:"correct_answer"`
	AnswerKind    string           `json:"answer_kind"`
	TimeSeconds   int              `json:"time_seconds"`
	Placeholder   bool             `json:"placeholder"`
}

// HandleGetQuestion handles GET /api/trainer/{domain}. Unknown domains get
// the placeholder question with status 200.
func (h *TrainerHandler) HandleGetQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := chi.URLParam(r, "domain")
	sess := session.FromContext(ctx)

	p, err := h.deps.Present(ctx, domain, sess.Contract())
	if err != nil {
		h.logger.Warn(ctx, "presenting question failed",
			logger.String("domain", domain),
			logger.Error(err),
		)
		writeKindError(w, err)
		return
	}

	resp := questionResponse{
		QuestionID:    p.QuestionID,
		TrainerType:   p.Domain,
		Prompt:        p.Prompt,
		Options:       make([]optionResponse, len(p.Options)),
		CorrectAnswer: p.CorrectAnswer,
		AnswerKind:    p.AnswerKind,
		TimeSeconds:   p.TimeSeconds,
		Placeholder:   p.Placeholder,
	}
	for i, o := range p.Options {
		resp.Options[i] = optionResponse{Value: o.Value}
	}
	writeJSON(w, http.StatusOK, resp)
}
