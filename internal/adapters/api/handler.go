package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"wiki-quiz/internal/domain"
)

// Handler обслуживает HTTP API викторин.
type Handler struct {
	svc domain.QuizService
	log zerolog.Logger
}

// NewHandler создаёт обработчики API.
func NewHandler(svc domain.QuizService, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: logger}
}

// Register подключает маршруты к роутеру.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.root)
	r.Get("/api/health", h.health)
	r.Post("/api/quiz", h.createQuiz)
	r.Get("/api/quizzes", h.listQuizzes)
	r.Get("/api/quizzes/{id}", h.getQuiz)
}

type createQuizRequest struct {
	URL string `json:"url"`
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "AI Wiki Quiz Generator API"})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req createQuizRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	quiz, err := h.svc.Generate(r.Context(), req.URL)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewQuizResponse(quiz))
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	resp := make([]QuizListItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, QuizListItemResponse{ID: item.ID, URL: item.URL, Title: item.Title, Summary: item.Summary})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quiz id")
		return
	}
	quiz, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewQuizResponse(quiz))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var (
		fetchErr *domain.FetchError
		normErr  *domain.NormalizeError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "invalid URL")
	case errors.As(err, &fetchErr):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to fetch article: %v", fetchErr))
	case errors.As(err, &normErr):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse article: %v", normErr))
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "Quiz not found")
	default:
		h.log.Error().Err(err).Msg("api: request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
