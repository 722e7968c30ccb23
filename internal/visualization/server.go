package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/nvandessel/powerplay/internal/curve"
	"github.com/nvandessel/powerplay/internal/ratelimit"
)

// Server serves the interactive power curve page and handles curve API
// requests. Curves are built one at a time.
type Server struct {
	presenter  *curve.Presenter
	initial    curve.Inputs
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string

	// buildMu serializes presenter calls; the presenter owns one random source.
	buildMu sync.Mutex

	// limiter throttles /api/curve per client. Nil means no limit.
	limiter *ratelimit.Limiter
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLimiter throttles curve API requests per client with l.
func WithLimiter(l *ratelimit.Limiter) ServerOption {
	return func(s *Server) {
		s.limiter = l
	}
}

// NewServer creates a new curve server. initial sets the slider positions of
// the page when the request carries no query parameters.
func NewServer(p *curve.Presenter, initial curve.Inputs, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		presenter: p,
		initial:   initial,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe starts the HTTP server on an OS-assigned port and blocks
// until the context is cancelled. Returns nil on clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/curve", s.handleCurve)

	// Let the OS pick a free port.
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	s.mu.Unlock()

	// Graceful shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// handleIndex serves the page for the requested (or initial) inputs with the
// API base URL configured.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	in, err := ParseInputs(r.URL.Query(), s.initial)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := s.build(r.Context(), in)
	if err != nil {
		s.writeBuildError(w, err)
		return
	}

	html, err := RenderHTML(c, "http://"+s.Addr())
	if err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// handleCurve builds a curve for the query's control values and returns it
// as JSON, including the rendered SVG.
func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil {
		client := ratelimit.ClientKey(r)
		if !s.limiter.Allow(client) {
			wait := s.limiter.RetryAfter(client)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Max(1, math.Ceil(wait.Seconds())))))
			s.logger.Debug("curve request rate limited", "client", client, "retry_after", wait)
			http.Error(w, "rate limit exceeded, please try again shortly", http.StatusTooManyRequests)
			return
		}
	}

	in, err := ParseInputs(r.URL.Query(), s.initial)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := s.build(r.Context(), in)
	if err != nil {
		s.writeBuildError(w, err)
		return
	}

	data := NewCurveData(c)
	data.SVG = RenderSVG(c, DefaultSVGWidth, DefaultSVGHeight)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) build(ctx context.Context, in curve.Inputs) (*curve.Curve, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	c, err := s.presenter.Build(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("curve served",
		"run_id", c.RunID,
		"mean_a", in.MeanA,
		"mean_b", in.MeanB,
		"sd", in.SD,
		"max_n", in.MaxN)
	return c, nil
}

func (s *Server) writeBuildError(w http.ResponseWriter, err error) {
	if errors.Is(err, curve.ErrInvalidInputs) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, context.Canceled) {
		// Client went away.
		return
	}
	s.logger.Error("building curve", "error", err)
	http.Error(w, "build error: "+err.Error(), http.StatusInternalServerError)
}

// ParseInputs reads the control values from q, falling back to base for
// absent keys. Values outside a control's bounds are rejected; values in
// bounds are snapped to the control's step.
func ParseInputs(q url.Values, base curve.Inputs) (curve.Inputs, error) {
	in := base
	for _, ctl := range curve.Controls() {
		raw := q.Get(ctl.Key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return curve.Inputs{}, fmt.Errorf("%w: %s: %q is not a number", curve.ErrInvalidInputs, ctl.Key, raw)
		}
		if !(v >= ctl.Min && v <= ctl.Max) {
			return curve.Inputs{}, fmt.Errorf("%w: %s must be between %g and %g, got %g", curve.ErrInvalidInputs, ctl.Key, ctl.Min, ctl.Max, v)
		}
		if err := in.Set(ctl.Key, v); err != nil {
			return curve.Inputs{}, err
		}
	}
	return in, nil
}
