// Package session keeps per-browser state (user ID and scoring contract) in
// a signed cookie with a sliding expiry.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/trainer/internal/domain/contract"
	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/pkg/logger"
)

const (
	// DefaultTTL matches a five day session lifetime.
	DefaultTTL        = 5 * 24 * time.Hour
	DefaultCookieName = "trainer_session"
	issuer            = "trainer"
)

// ErrInvalidToken marks a cookie that failed signature or expiry checks.
var ErrInvalidToken = errors.New("invalid session token")

// Session is the state of one browser session. It is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	userID   int64
	contract contract.Contract
}

// New returns a session with the default contract.
func New(userID int64) *Session {
	return &Session{userID: userID, contract: contract.Default()}
}

// UserID returns the owner of the session.
func (s *Session) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Contract returns the contract currently in effect.
func (s *Session) Contract() contract.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contract
}

// SetContract replaces the whole contract. An invalid contract leaves the
// previous one in place.
func (s *Session) SetContract(c contract.Contract) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.contract = c
	s.mu.Unlock()
	return nil
}

type claims struct {
	UserID   int64             `json:"uid"`
	Contract contract.Contract `json:"contract"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or a fresh anonymous one.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return New(model.AnonymousUserID)
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithTTL sets the sliding lifetime of a session.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSecureCookie marks the cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithCookieName overrides the cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager encodes sessions into HS256-signed cookies.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
	logger     logger.Logger
}

// NewManager returns a session manager signing with secret.
func NewManager(secret string, opts ...Option) *Manager {
	m := &Manager{
		secret:     []byte(secret),
		ttl:        DefaultTTL,
		cookieName: DefaultCookieName,
		now:        time.Now,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Encode signs s into a token valid for the configured TTL.
func (m *Manager) Encode(s *Session) (string, error) {
	now := m.now()
	c := &claims{
		UserID:   s.UserID(),
		Contract: s.Contract(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

// Decode verifies token and rebuilds the session.
func (m *Manager) Decode(token string) (*Session, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if err := c.Contract.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return &Session{userID: c.UserID, contract: c.Contract}, nil
}

// Load reads the session from r. A missing or invalid cookie yields a fresh
// anonymous session with the default contract.
func (m *Manager) Load(r *http.Request) *Session {
	ck, err := r.Cookie(m.cookieName)
	if err != nil {
		return New(model.AnonymousUserID)
	}
	s, err := m.Decode(ck.Value)
	if err != nil {
		m.logger.Debug(r.Context(), "discarding session cookie", logger.Error(err))
		return New(model.AnonymousUserID)
	}
	return s
}

// Save writes the session cookie, restarting the expiry window.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	token, err := m.Encode(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  m.now().Add(m.ttl),
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Middleware loads the session into the request context and writes the
// cookie back before the response header goes out.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(r)
		cw := &cookieWriter{ResponseWriter: w, save: func() {
			if err := m.Save(w, s); err != nil {
				m.logger.Error(r.Context(), "write session cookie failed", logger.Error(err))
			}
		}}
		next.ServeHTTP(cw, r.WithContext(WithSession(r.Context(), s)))
		cw.flushCookie()
	})
}

// cookieWriter defers the Set-Cookie header until the handler commits the
// response, so contract changes made by the handler are included.
type cookieWriter struct {
	http.ResponseWriter
	save    func()
	written bool
}

func (c *cookieWriter) flushCookie() {
	if !c.written {
		c.written = true
		c.save()
	}
}

func (c *cookieWriter) WriteHeader(code int) {
	c.flushCookie()
	c.ResponseWriter.WriteHeader(code)
}

func (c *cookieWriter) Write(b []byte) (int, error) {
	c.flushCookie()
	return c.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (c *cookieWriter) Unwrap() http.ResponseWriter { return c.ResponseWriter }
