package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumastack/pixeld/internal/controller"
	"github.com/lumastack/pixeld/internal/strip"
)

// componentCheckTimeout bounds each backing component's health check.
const componentCheckTimeout = 2 * time.Second

// handleHealth reports the daemon and its backing components.
//
//	GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	components := make(map[string]string, len(s.components))
	for name, component := range s.components {
		ctx, cancel := context.WithTimeout(r.Context(), componentCheckTimeout)
		err := component.HealthCheck(ctx)
		cancel()
		if err != nil {
			components[name] = err.Error()
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}

// handleListStrips lists every registered strip.
//
//	GET /api/v1/strips
func (s *Server) handleListStrips(w http.ResponseWriter, r *http.Request) {
	var statuses []controller.StripStatus
	err := s.dispatch(r, "list_strips", "", func(c *controller.Controller) error {
		statuses = c.StripStatuses()
		return nil
	})
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"strips": statuses,
		"count":  len(statuses),
	})
}

// handleGetStrip reports one strip's status.
//
//	GET /api/v1/strips/{stripID}
func (s *Server) handleGetStrip(w http.ResponseWriter, r *http.Request) {
	stripID := chi.URLParam(r, "stripID")

	var status controller.StripStatus
	err := s.dispatch(r, "get_strip", stripID, func(c *controller.Controller) error {
		var err error
		status, err = c.StripStatus(stripID)
		return err
	})
	if err != nil {
		if errors.Is(err, strip.ErrNotFound) {
			writeNotFound(w, "strip not found: "+stripID)
			return
		}
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleListAnimations lists every registered animation.
//
//	GET /api/v1/animations
func (s *Server) handleListAnimations(w http.ResponseWriter, r *http.Request) {
	var statuses []controller.AnimationStatus
	err := s.dispatch(r, "list_animations", "", func(c *controller.Controller) error {
		statuses = c.AnimationStatuses()
		return nil
	})
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"animations": statuses,
		"count":      len(statuses),
	})
}

// opResponse is the wire form of one operation-log row.
type opResponse struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
	Op      string    `json:"op"`
	Target  string    `json:"target,omitempty"`
	Outcome string    `json:"outcome"`
	Error   string    `json:"error,omitempty"`
}

// handleListOps returns recent operation-log entries, newest first.
//
//	GET /api/v1/ops?limit=N
func (s *Server) handleListOps(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "operation log is disabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	recs, err := s.store.RecentOps(r.Context(), limit)
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}

	ops := make([]opResponse, len(recs))
	for i, rec := range recs {
		ops[i] = opResponse{
			ID:      rec.ID,
			Time:    rec.Time,
			Source:  rec.Source,
			Op:      rec.Name,
			Target:  rec.Target,
			Outcome: rec.Outcome,
			Error:   rec.Error,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ops":   ops,
		"count": len(ops),
	})
}
