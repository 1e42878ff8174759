package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/MikeSquared-Agency/caesar/internal/rubric"
	"github.com/MikeSquared-Agency/caesar/internal/store"
)

// createRubric handles POST /api/v1/rubrics. The body is a raw rubric
// document; a structurally invalid one gets a 422 listing every violation.
// Without a database the endpoint still validates, it just cannot persist.
func (s *Server) createRubric(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	parsed, err := rubric.Parse(body)
	if err != nil {
		var schemaErr *rubric.SchemaError
		if errors.As(err, &schemaErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":      "invalid rubric",
				"violations": schemaErr.Violations,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if parsed.Name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "invalid rubric",
			"violations": []string{"missing name"},
		})
		return
	}

	stored := false
	if s.store != nil {
		if err := s.store.UpsertRubric(r.Context(), parsed, body); err != nil {
			s.logger.Error("failed to store rubric", "rubric", parsed.Name, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store rubric")
			return
		}
		stored = true
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"name":     parsed.Name,
		"method":   parsed.Method,
		"criteria": parsed.CriterionCount(),
		"stored":   stored,
	})
}

// listRubrics handles GET /api/v1/rubrics. The built-in default always
// appears alongside whatever is stored.
func (s *Server) listRubrics(w http.ResponseWriter, r *http.Request) {
	def := s.defaultRubric
	list := []store.RubricInfo{{
		Name:        def.Name,
		Description: def.Description,
		Method:      string(def.Method),
	}}

	if s.store != nil {
		stored, err := s.store.ListRubrics(r.Context())
		if err != nil {
			s.logger.Error("failed to list rubrics", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list rubrics")
			return
		}
		list = append(list, stored...)
	}

	writeJSON(w, http.StatusOK, map[string]any{"rubrics": list})
}
