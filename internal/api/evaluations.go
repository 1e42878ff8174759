package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/caesar/internal/rubric"
	"github.com/MikeSquared-Agency/caesar/internal/store"
	"github.com/MikeSquared-Agency/caesar/internal/transcript"
)

// EvaluationRequest is the payload of POST /api/v1/evaluations. The rubric
// is chosen in precedence order: inline document, stored name, default.
type EvaluationRequest struct {
	SessionID      string                   `json:"session_id,omitempty"`
	Source         string                   `json:"source,omitempty"`
	RubricName     string                   `json:"rubric_name,omitempty"`
	RubricDocument json.RawMessage          `json:"rubric_document,omitempty"`
	Transcription  transcript.Transcription `json:"transcription"`
	VisualContext  string                   `json:"visual_context,omitempty"`
}

// createEvaluation handles POST /api/v1/evaluations synchronously: the
// response carries the full outcome.
func (s *Server) createEvaluation(w http.ResponseWriter, r *http.Request) {
	var req EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Transcription.Text == "" {
		writeError(w, http.StatusBadRequest, "transcription.text is required")
		return
	}

	evalRubric, errStatus := s.pickRubric(w, r, &req)
	if errStatus {
		return
	}

	out, err := s.engine.Evaluate(r.Context(), evalRubric, &req.Transcription, req.VisualContext)
	if err != nil {
		s.logger.Error("evaluation failed", "rubric", evalRubric.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	resp := map[string]any{
		"rubric": evalRubric.Name,
		"result": out,
	}
	if s.store != nil {
		id, err := s.store.WriteEvaluation(r.Context(), req.SessionID, req.Source, evalRubric.Name, out)
		if err != nil {
			s.logger.Error("failed to persist evaluation", "error", err)
		} else {
			resp["id"] = id.String()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// pickRubric resolves the rubric for a request, writing the error response
// itself when resolution fails (the bool return reports that case).
func (s *Server) pickRubric(w http.ResponseWriter, r *http.Request, req *EvaluationRequest) (*rubric.Rubric, bool) {
	if len(req.RubricDocument) > 0 {
		parsed, err := rubric.Parse(req.RubricDocument)
		if err != nil {
			var schemaErr *rubric.SchemaError
			if errors.As(err, &schemaErr) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
					"error":      "invalid rubric",
					"violations": schemaErr.Violations,
				})
				return nil, true
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, true
		}
		return parsed, false
	}

	if req.RubricName != "" && s.store != nil {
		stored, err := s.store.GetRubric(r.Context(), req.RubricName)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "rubric not found: "+req.RubricName)
				return nil, true
			}
			s.logger.Error("failed to load rubric", "rubric", req.RubricName, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load rubric")
			return nil, true
		}
		return stored, false
	}

	return s.defaultRubric, false
}

// getEvaluation handles GET /api/v1/evaluations/{id}.
func (s *Server) getEvaluation(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}

	rec, err := s.store.GetEvaluation(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "evaluation not found")
			return
		}
		s.logger.Error("failed to load evaluation", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load evaluation")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// listEvaluations handles GET /api/v1/evaluations.
func (s *Server) listEvaluations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := s.store.ListEvaluations(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list evaluations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list evaluations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"evaluations": list})
}
