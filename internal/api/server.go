package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"replay/internal/geo"
	"replay/internal/logging"
	"replay/internal/store"
)

// Server exposes stored highlights over HTTP.
type Server struct {
	repo    store.Repository
	locator CountryLocator
	logger  *slog.Logger
	now     func() time.Time
}

// New constructs a Server. locator may be nil to skip IP lookups.
func New(repo store.Repository, locator CountryLocator, logger *slog.Logger) (*Server, error) {
	if repo == nil {
		return nil, errors.New("api requires a repository")
	}
	return &Server{
		repo:    repo,
		locator: locator,
		logger:  logging.NewComponentLogger(logger, "api"),
		now:     time.Now,
	}, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(s.requestLogger)
	RegisterRoutes(r, s)
	return r
}

// RegisterRoutes mounts the API on r.
func RegisterRoutes(r chi.Router, s *Server) {
	r.Get("/healthz", healthHandler)
	r.Get("/matches/{match_id}/highlight", s.matchHighlightHandler)
	r.Get("/highlights", s.dayHighlightsHandler)
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("api listening", logging.String("addr", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	s.logger.Info("api stopped")
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		start := s.now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("duration", s.now().Sub(start)),
		)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) matchHighlightHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "match_id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	ctx := r.Context()
	m, err := s.repo.GetMatch(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "load match", err)
		return
	}
	state, err := s.repo.GetFetchState(ctx, id)
	if err != nil {
		s.internalError(w, r, "load fetch state", err)
		return
	}
	h, err := s.repo.GetHighlight(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.internalError(w, r, "load highlight", err)
		return
	}
	region := s.regionFor(r)
	writeJSON(w, http.StatusOK, MatchHighlight{
		Match:     FromMatch(m, state),
		Highlight: FromHighlight(h, region),
		Region:    region,
	})
}

func (s *Server) dayHighlightsHandler(w http.ResponseWriter, r *http.Request) {
	day := s.now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	rows, err := s.repo.ListDay(r.Context(), day)
	if err != nil {
		s.internalError(w, r, "list day", err)
		return
	}
	region := s.regionFor(r)
	resp := DayHighlights{
		Date:      store.DayKey(day),
		Region:    region,
		Available: []MatchHighlight{},
		Blocked:   []MatchHighlight{},
		Pending:   []Match{},
	}
	var resolved []MatchHighlight
	for _, row := range rows {
		match := FromMatch(row.Match, row.State)
		if row.Highlight == nil {
			resp.Pending = append(resp.Pending, match)
			continue
		}
		resolved = append(resolved, MatchHighlight{Match: match, Highlight: FromHighlight(row.Highlight, region)})
	}
	available, blocked := geo.Partition(resolved, region)
	resp.Available = append(resp.Available, available...)
	resp.Blocked = append(resp.Blocked, blocked...)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logging.WithContext(r.Context(), s.logger).Error("api request failed",
		logging.String("op", op),
		logging.String("path", r.URL.Path),
		logging.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
