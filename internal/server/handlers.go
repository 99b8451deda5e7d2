package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-ranker/internal/analytics"
	"github.com/jonathan/candidate-ranker/internal/criteria"
	"github.com/jonathan/candidate-ranker/internal/export"
	"github.com/jonathan/candidate-ranker/internal/pipeline"
	"github.com/jonathan/candidate-ranker/internal/types"
)

const (
	maxPageSize     = 1000
	maxTopSkills    = 100
	maxSearchBody   = 1 << 20
	exportTimestamp = "20060102_150405"
)

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Summary       types.Summary   `json:"summary"`
	Analytics     types.Analytics `json:"analytics"`
	ActiveFilters int             `json:"active_filters"`
}

// parseQueryInt parses a non-negative integer query parameter, capped at maxValue when positive.
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// query loads every record from the source and runs the pipeline over them.
func (s *Server) query(ctx context.Context, c types.QueryCriteria) (types.ResultSet, error) {
	records, err := s.source.List(ctx)
	if err != nil {
		return types.ResultSet{}, sourceError(0, err)
	}
	return s.engine.QueryContext(ctx, records, c)
}

// present strips identifying fields from anonymized result sets, as the export does.
func present(rs types.ResultSet, anonymized bool) types.ResultSet {
	if anonymized {
		return rs.Masked()
	}
	return rs
}

// handleListCandidates returns the filtered, sorted view selected by query parameters
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	c := criteria.FromValues(r.URL.Query())
	limit := parseQueryInt(r, "limit", 0, maxPageSize)
	offset := parseQueryInt(r, "offset", 0, 0)

	rs, err := s.query(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, present(pipeline.Page(rs, limit, offset), c.Anonymize))
}

// handleGetCandidate returns one enriched candidate by id
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	rec, err := s.source.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, sourceError(id, err))
		return
	}
	if rec == nil {
		s.writeError(w, r, &ErrCandidateNotFound{ID: id})
		return
	}

	anonymized := criteria.ParseBool(r.URL.Query().Get(criteria.ParamAnonymize), false)
	c := s.engine.EnrichOne(*rec, anonymized)
	if anonymized {
		c = c.Masked()
	}
	s.jsonResponse(w, http.StatusOK, c)
}

// handleSearch runs a query described by a JSON body
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req criteria.SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBody)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	rs, err := s.query(r.Context(), req.Criteria())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, present(pipeline.Page(rs, req.Limit, req.Offset), req.Anonymize))
}

// handleStats returns the summary and analytics of the filtered view
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	c := criteria.FromValues(r.URL.Query())
	topN := parseQueryInt(r, "top_skills", analytics.DefaultTopSkills, maxTopSkills)

	rs, err := s.query(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, StatsResponse{
		Summary:       rs.Summary,
		Analytics:     analytics.Analyze(rs.Candidates, topN),
		ActiveFilters: criteria.ActiveFilterCount(c),
	})
}

// handleExport downloads the filtered view as JSON or an Excel workbook
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.ToLower(strings.TrimSpace(q.Get("format")))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "xlsx" {
		s.writeError(w, r, &ErrValidation{Field: "format", Message: "must be json or xlsx"})
		return
	}

	c := criteria.FromValues(q)
	opts := export.Options{
		IncludeResumeText: criteria.ParseBool(q.Get("include_resume_text"), false),
		Anonymize:         c.Anonymize,
	}

	rs, err := s.query(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	now := s.now()
	filename := fmt.Sprintf("candidates_%s.%s", now.Format(exportTimestamp), format)

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "xlsx":
		contentType = export.ContentTypeXLSX
		err = export.WriteExcel(&buf, rs, analytics.Analyze(rs.Candidates, analytics.DefaultTopSkills), opts, now)
	default:
		contentType = "application/json"
		err = export.WriteJSON(&buf, export.NewDocument(rs, opts, now))
	}
	if err != nil {
		s.writeError(w, r, fmt.Errorf("export failed: %w", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.requestLogger(r).Warn("failed to write export", zap.Error(err))
	}
}
