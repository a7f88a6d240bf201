// Package site serves the HTML pages of the trainer.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/okian/trainer/internal/adapters/http/api"
	"github.com/okian/trainer/internal/adapters/session"
	"github.com/okian/trainer/internal/domain/contract"
	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/internal/domain/types"
	"github.com/okian/trainer/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrTemplate marks a page that failed to parse or render.
var ErrTemplate = errors.New("template failed")

var pages = []string{"index", "parent", "child", "contract", "trainer", "error"}

// Dependencies required by the page handlers.
type Dependencies interface {
	Present(ctx context.Context, domain string, c contract.Contract) (types.Presentation, error)
	Submit(ctx context.Context, sub types.Submission, who types.Learner) (types.Outcome, error)
	Summary(ctx context.Context, c contract.Contract) (types.Summary, error)
	Recent(ctx context.Context) ([]model.AnswerEvent, error)
	SetContract(ctx context.Context, h types.ContractHolder, c contract.Contract) error
}

// Handler renders the HTML surface.
type Handler struct {
	deps      Dependencies
	templates map[string]*template.Template
	localizer *Localizer
	domains   []string
	logger    logger.Logger
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithLocales sets the supported page locales in preference order.
func WithLocales(locales []string) Option {
	return func(h *Handler) {
		if len(locales) > 0 {
			h.localizer = NewLocalizer(locales)
		}
	}
}

// WithDomains sets the trainers listed on the learner landing page.
func WithDomains(domains []model.Domain) Option {
	return func(h *Handler) {
		if len(domains) == 0 {
			return
		}
		h.domains = h.domains[:0]
		for _, d := range domains {
			h.domains = append(h.domains, string(d))
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New parses the embedded templates.
func New(deps Dependencies, opts ...Option) (*Handler, error) {
	h := &Handler{
		deps:      deps,
		localizer: NewLocalizer([]string{"de", "en"}),
		logger:    logger.Nop(),
	}
	for _, d := range model.Domains() {
		h.domains = append(h.domains, string(d))
	}
	for _, opt := range opts {
		opt(h)
	}

	h.templates = make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
		}
		h.templates[name] = t
	}
	return h, nil
}

// Register attaches the page routes to r.
func (h *Handler) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get("/", api.MetricsMiddleware(h.HandleIndex, "index"))
	r.Get("/parent", api.MetricsMiddleware(h.HandleParent, "parent"))
	r.Get("/child", api.MetricsMiddleware(h.HandleChild, "child"))
	r.Get("/contract", api.MetricsMiddleware(h.HandleContractForm, "contract"))
	r.Post("/contract", api.MetricsMiddleware(h.HandleContractSubmit, "contract"))
	r.Get("/trainer/{domain}", api.MetricsMiddleware(h.HandleTrainer, "trainer"))
	r.Post("/check_answer", api.MetricsMiddleware(h.HandleCheckAnswer, "check_answer"))
}

type pageData struct {
	L        Labels
	Contract contract.Contract
	Summary  types.Summary
	Recent   []model.AnswerEvent
	Domains  []string
	Question types.Presentation
	Error    string
	Message  string
	Retry    string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error(r.Context(), "render page failed",
			logger.String("page", name),
			logger.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error, retry string) {
	status, _ := api.StatusFor(err)
	l := h.localizer.Labels(r)
	msg := l.Failed
	if status == http.StatusServiceUnavailable {
		msg = l.Unavailable
	} else {
		retry = ""
	}
	h.render(w, r, status, "error", pageData{L: l, Message: msg, Retry: retry})
}

// HandleIndex handles GET /.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index", pageData{L: h.localizer.Labels(r)})
}

// HandleParent handles GET /parent: ledger totals at the live price plus
// the latest answers.
func (h *Handler) HandleParent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := session.FromContext(ctx).Contract()

	sum, err := h.deps.Summary(ctx, c)
	if err != nil {
		h.logger.Error(ctx, "summarizing ledger failed", logger.Error(err))
		h.renderError(w, r, err, "")
		return
	}
	recent, err := h.deps.Recent(ctx)
	if err != nil {
		h.logger.Error(ctx, "listing recent events failed", logger.Error(err))
		h.renderError(w, r, err, "")
		return
	}
	h.render(w, r, http.StatusOK, "parent", pageData{
		L:        h.localizer.Labels(r),
		Contract: c,
		Summary:  sum,
		Recent:   recent,
	})
}

// HandleChild handles GET /child.
func (h *Handler) HandleChild(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "child", pageData{L: h.localizer.Labels(r), Domains: h.domains})
}

// HandleContractForm handles GET /contract.
func (h *Handler) HandleContractForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "contract", pageData{
		L:        h.localizer.Labels(r),
		Contract: session.FromContext(r.Context()).Contract(),
	})
}

// HandleContractSubmit handles POST /contract. A valid contract replaces the
// session contract and redirects to /; an invalid one re-renders the form
// with status 400 and keeps the previous contract.
func (h *Handler) HandleContractSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	l := h.localizer.Labels(r)

	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "contract", pageData{L: l, Contract: sess.Contract(), Error: err.Error()})
		return
	}
	c, err := contract.Parse(r.PostForm)
	if err == nil {
		err = h.deps.SetContract(ctx, sess, c)
	}
	if err != nil {
		status, _ := api.StatusFor(err)
		h.render(w, r, status, "contract", pageData{L: l, Contract: sess.Contract(), Error: err.Error()})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleTrainer handles GET /trainer/{domain}.
func (h *Handler) HandleTrainer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := chi.URLParam(r, "domain")

	p, err := h.deps.Present(ctx, domain, session.FromContext(ctx).Contract())
	if err != nil {
		h.logger.Warn(ctx, "presenting question failed",
			logger.String("domain", domain),
			logger.Error(err),
		)
		h.renderError(w, r, err, "/trainer/"+url.PathEscape(domain))
		return
	}
	h.render(w, r, http.StatusOK, "trainer", pageData{L: h.localizer.Labels(r), Question: p})
}

// HandleCheckAnswer handles POST /check_answer and redirects to the next
// question of the same trainer.
func (h *Handler) HandleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, errors.Join(api.ErrBadRequest, err), "")
		return
	}
	domain := r.PostForm.Get("trainer_type")
	if domain == "" {
		h.renderError(w, r, fmt.Errorf("%w: missing trainer_type", api.ErrBadRequest), "")
		return
	}

	out, err := h.deps.Submit(ctx, types.Submission{
		QuestionID:    r.PostForm.Get("question_id"),
		Answer:        r.PostForm.Get("answer"),
		CorrectAnswer: r.PostForm.Get("correct_answer"),
		Domain:        domain,
	}, session.FromContext(ctx))
	if err != nil {
		h.logger.Error(ctx, "grading answer failed",
			logger.String("domain", domain),
			logger.Error(err),
		)
		h.renderError(w, r, err, "")
		return
	}
	http.Redirect(w, r, out.NextPath, http.StatusFound)
}
