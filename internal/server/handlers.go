package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spigell/job-matcher/internal/profile"
	"github.com/spigell/job-matcher/internal/ranking"
	"github.com/spigell/job-matcher/internal/recommender"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ResumeInput carries either a parsed profile or raw resume text.
type ResumeInput struct {
	Profile *profile.Profile `json:"profile"`
	Text    string           `json:"text"`
}

// MatchRequest is the body of POST /api/v1/match.
type MatchRequest struct {
	ResumeInput
	TopN int `json:"top_n" binding:"gte=0"`
}

// BatchRequest is the body of POST /api/v1/batch.
type BatchRequest struct {
	Resumes []ResumeInput `json:"resumes" binding:"required,min=1,max=100"`
	TopN    int           `json:"top_n" binding:"gte=0"`
}

// BatchResponse lists one result per resume, in request order.
type BatchResponse struct {
	Results []*recommender.Recommendations `json:"results"`
}

// ModelResponse describes the published snapshot.
type ModelResponse struct {
	Fitted       bool               `json:"fitted"`
	Version      uint64             `json:"version,omitempty"`
	CorpusSource string             `json:"corpus_source,omitempty"`
	Postings     int                `json:"postings"`
	Vocabulary   int                `json:"vocabulary"`
	FittedAt     *time.Time         `json:"fitted_at,omitempty"`
	Config       recommender.Config `json:"config"`
	Steps        []ranking.Status   `json:"steps"`
}

func (s *Server) toProfile(in ResumeInput) *profile.Profile {
	if in.Profile != nil {
		return in.Profile
	}
	if in.Text != "" {
		skills := s.cfg.Skills
		if len(skills) == 0 {
			skills = profile.DefaultSkills
		}
		return profile.ParseText(in.Text, skills)
	}
	return &profile.Profile{}
}

func (s *Server) match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	res, err := s.engine.Recommend(s.toProfile(req.ResumeInput), req.TopN)
	if err != nil {
		s.engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	profiles := make([]*profile.Profile, len(req.Resumes))
	for i, in := range req.Resumes {
		profiles[i] = s.toProfile(in)
	}

	results, err := s.engine.Batch(c.Request.Context(), profiles, req.TopN)
	if err != nil {
		s.engineError(c, err)
		return
	}
	c.JSON(http.StatusOK, BatchResponse{Results: results})
}

func (s *Server) model(c *gin.Context) {
	resp := ModelResponse{
		Config: s.engine.Config(),
		Steps:  s.engine.Steps(),
	}

	if snap := s.engine.Snapshot(); snap != nil {
		fittedAt := snap.FittedAt
		resp.Fitted = true
		resp.Version = snap.Version()
		resp.CorpusSource = snap.Corpus.Source
		resp.Postings = snap.Corpus.Len()
		resp.Vocabulary = snap.Model.VocabularySize()
		resp.FittedAt = &fittedAt
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"fitted": s.engine.Snapshot() != nil,
	})
}

func (s *Server) engineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recommender.ErrNotFitted):
		abort(c, http.StatusServiceUnavailable, "corpus is not loaded yet", err.Error())
	case errors.Is(err, recommender.ErrInvalidConfig):
		abort(c, http.StatusBadRequest, "invalid request", err.Error())
	default:
		abort(c, http.StatusInternalServerError, "matching failed", err.Error())
	}
}

func abort(c *gin.Context, code int, msg, details string) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:     msg,
		Code:      code,
		Details:   details,
		RequestID: c.GetString(requestIDKey),
	})
}
