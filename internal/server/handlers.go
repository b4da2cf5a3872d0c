package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/contact-discovery/internal/db"
	"github.com/jonathan/contact-discovery/internal/types"
)

const (
	maxRequestBody = 1 << 20
	maxListLimit   = 200
)

// ListDiscoveriesResponse is returned by GET /discoveries
type ListDiscoveriesResponse struct {
	Discoveries []db.DiscoveryRun `json:"discoveries"`
	Count       int               `json:"count"`
}

// writeError maps err to a status code and writes it
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error("server: request failed", zap.Error(err))
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// handleDiscover runs the pipeline synchronously and optionally stores the result
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req types.DiscoverRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, validationError(err))
		return
	}
	if req.Save && s.store == nil {
		s.writeError(w, ErrUnavailable)
		return
	}

	ctx := r.Context()
	result, err := s.discoverer.DiscoverContacts(ctx, req.URLs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if result == nil {
		result = []types.NormalizedContact{}
	}

	resp := types.DiscoverResponse{
		Success:  true,
		Contacts: result,
		Total:    len(result),
	}

	if req.Save {
		status := db.RunStatusCompleted
		if ctx.Err() != nil {
			status = db.RunStatusCanceled
		}
		// the run is stored even if the client went away
		runID, err := s.store.SaveDiscovery(context.WithoutCancel(ctx), req.URLs, result, status)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.RunID = runID.String()
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListDiscoveries lists stored runs, newest first
func (s *Server) handleListDiscoveries(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrUnavailable)
		return
	}

	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	runs, err := s.store.ListDiscoveries(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []db.DiscoveryRun{}
	}
	s.jsonResponse(w, http.StatusOK, ListDiscoveriesResponse{Discoveries: runs, Count: len(runs)})
}

// handleGetDiscovery returns one stored run with its contacts
func (s *Server) handleGetDiscovery(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrUnavailable)
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	discovery, err := s.store.GetDiscovery(r.Context(), runID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if discovery == nil {
		s.writeError(w, &ErrNotFound{RunID: runID})
		return
	}
	s.jsonResponse(w, http.StatusOK, discovery)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
