package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/bean-scene/internal/llm"
	"github.com/Veraticus/bean-scene/internal/model"
	"github.com/Veraticus/bean-scene/internal/recommend"
)

const defaultUsageWindow = 7 * 24 * time.Hour

// RecommendRequest carries the quiz answers. ExcludeID asks for the next
// best coffee after the one currently shown.
type RecommendRequest struct {
	model.Preferences
	ExcludeID string `json:"excludeId,omitempty" validate:"omitempty,max=128"`
}

// RecommendResponse is the chosen coffee and its score breakdown.
type RecommendResponse struct {
	Coffee    model.Coffee         `json:"coffee"`
	Breakdown model.ScoreBreakdown `json:"breakdown"`
	Score     int                  `json:"score"`
}

// ChatRequest is one user turn plus the prior conversation.
type ChatRequest struct {
	Message string        `json:"message" validate:"required,max=2000"`
	History []llm.Message `json:"history" validate:"max=20,dive"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Reply    string `json:"reply"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Cached   bool   `json:"cached"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !s.decode(w, r, &req) {
		return
	}

	var (
		best model.ScoredCandidate
		err  error
	)
	if req.ExcludeID != "" {
		best, err = s.recommender.Another(r.Context(), req.Preferences, req.ExcludeID)
	} else {
		best, err = s.recommender.Recommend(r.Context(), req.Preferences)
	}

	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, RecommendResponse{
			Coffee:    best.Coffee,
			Breakdown: best.Breakdown,
			Score:     best.Score,
		})
	case errors.Is(err, model.ErrInvalidPreferences):
		s.respondError(w, r, http.StatusBadRequest, "Please check your quiz answers.", err.Error())
	case errors.Is(err, recommend.ErrNoMatch):
		msg := "We couldn't find a coffee for those answers."
		if req.ExcludeID != "" {
			msg = "We couldn't find another coffee for those answers."
		}
		s.respondError(w, r, http.StatusNotFound, msg)
	default:
		s.logger.Error("recommendation failed",
			"request_id", RequestIDFrom(r.Context()),
			"error", err)
		s.respondError(w, r, http.StatusInternalServerError, "Sorry, something went wrong. Please try again in a moment.")
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	messages := make([]llm.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		// Clients never set the system prompt.
		if m.Role == llm.RoleUser || m.Role == llm.RoleAssistant {
			messages = append(messages, m)
		}
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})

	result, err := s.chat.Complete(r.Context(), llm.Request{
		PromptID:      "chat",
		Messages:      messages,
		ContextTokens: s.contextTokens,
	})
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, llm.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("chat completion failed",
			"request_id", RequestIDFrom(r.Context()),
			"error", err)
		s.respondError(w, r, status, llm.UserMessage(err))
		return
	}

	respondJSON(w, http.StatusOK, ChatResponse{
		Reply:    result.Completion,
		Model:    result.Model,
		Provider: result.Provider,
		Cached:   result.Cached,
	})
}

func (s *Server) handleCoffees(w http.ResponseWriter, r *http.Request) {
	coffees, err := s.catalog.Load(r.Context())
	if err != nil {
		s.logger.Error("catalog load failed", "error", err)
		s.respondError(w, r, http.StatusInternalServerError, "The catalog is unavailable right now.")
		return
	}
	if coffees == nil {
		coffees = []model.Coffee{}
	}
	respondJSON(w, http.StatusOK, coffees)
}

func (s *Server) handleUsageSubjects(w http.ResponseWriter, r *http.Request) {
	window := defaultUsageWindow
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 || days > 365 {
			s.respondError(w, r, http.StatusBadRequest, "days must be between 1 and 365.")
			return
		}
		window = time.Duration(days) * 24 * time.Hour
	}

	counts, err := s.usage.UsageBySubject(r.Context(), s.now().Add(-window))
	if err != nil {
		s.logger.Error("usage report failed", "error", err)
		s.respondError(w, r, http.StatusInternalServerError, "Usage is unavailable right now.")
		return
	}
	respondJSON(w, http.StatusOK, counts)
}
