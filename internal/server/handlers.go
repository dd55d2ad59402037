package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/xmirlint/internal/engine"
	"github.com/leapstack-labs/xmirlint/internal/state"
	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type runResponse struct {
	Run     *core.Run     `json:"run"`
	Defects []core.Defect `json:"defects"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusOf maps engine errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, lint.ErrRuleNotFound), errors.Is(err, state.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNoHistory):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.engine.Version()})
}

// handleLint analyzes the XMIR document in the request body. The optional
// severity query parameter drops less severe defects.
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	minimum := core.SeverityInfo
	if q := r.URL.Query().Get("severity"); q != "" {
		sev, ok := core.ParseSeverity(q)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown severity %q", q))
			return
		}
		minimum = sev
	}

	prog, err := xmir.Parse(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.engine.LintProgram(r.Context(), prog)
	if err != nil {
		s.logger.Error("lint failed", slog.String("program", prog.Name()), slog.String("error", err.Error()))
		s.writeError(w, statusOf(err), err)
		return
	}
	s.notifier.Broadcast()
	s.writeJSON(w, http.StatusOK, report.Filter(minimum))
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.engine.Rules(r.Context())
	if err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleRule(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.Rule(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", q))
			return
		}
		limit = n
	}
	runs, err := s.engine.History(limit)
	if err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	if runs == nil {
		runs = []*core.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	run, defects, err := s.engine.RunDefects(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, runResponse{Run: run, Defects: defects})
}

// handleEvents streams a ping after every lint run as Server-Sent Events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, _ = fmt.Fprintf(w, "event: run\ndata: lint\n\n")
			flusher.Flush()
		}
	}
}
