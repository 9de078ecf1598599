package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"g1-quiz-service/internal/assistant"
	"g1-quiz-service/internal/domain"
	"g1-quiz-service/internal/questions"
	"g1-quiz-service/internal/quiz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// API serves the JSON endpoints backing the quiz pages.
type API struct {
	source    *questions.Adapter
	assistant *assistant.Client
	now       func() time.Time
}

func NewAPI(source *questions.Adapter, assistantClient *assistant.Client) *API {
	return &API{source: source, assistant: assistantClient, now: time.Now}
}

// NewRouter assembles the full HTTP surface: REST endpoints, the
// websocket quiz session, and the health probe.
func NewRouter(api *API, ws *WSHandler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/questions/practice", api.handlePracticeQuestions)
		r.Get("/questions/simulation", api.handleSimulationQuestions)
		r.Get("/questions/incorrect", api.handleIncorrectQuestions)
		r.Post("/attempts/score", api.handleScoreAttempt)
		r.Post("/assistant", api.handleAssistant)
	})
	return r
}

func (a *API) handlePracticeQuestions(w http.ResponseWriter, r *http.Request) {
	kind := domain.Kind(r.URL.Query().Get("section"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a number")
		return
	}

	qs, err := a.source.PracticeQuestions(r.Context(), kind, limit)
	if err != nil {
		writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": qs})
}

func (a *API) handleSimulationQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := a.source.SimulationQuestions(r.Context())
	if err != nil {
		writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions":  qs,
		"testConfig": domain.G1TestConfig(),
	})
}

func (a *API) handleIncorrectQuestions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	filter := domain.KindFilter(r.URL.Query().Get("section"))

	qs, err := a.source.IncorrectQuestions(r.Context(), userID, filter)
	if err != nil {
		writeSourceError(w, err)
		return
	}
	resp := map[string]any{"questions": qs}
	if len(qs) == 0 {
		resp["message"] = quiz.NoMistakesMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

type scoreRequest struct {
	UserID    string            `json:"userId,omitempty"`
	Questions []domain.Question `json:"questions"`
	Answers   []struct {
		QuestionID     int    `json:"questionId"`
		SelectedOption string `json:"selectedOption"`
	} `json:"answers"`
}

type scoreResponse struct {
	AttemptID string            `json:"attemptId"`
	Result    domain.QuizResult `json:"result"`
}

// handleScoreAttempt grades a submitted answer set statelessly. The
// result is deterministic for a given question/answer pair, so clients
// may persist it as the record of the attempt.
func (a *API) handleScoreAttempt(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "questions are required")
		return
	}
	for _, q := range req.Questions {
		if err := questions.Validate(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	answers := make(map[int]domain.UserAnswer, len(req.Answers))
	for _, ans := range req.Answers {
		option, ok := domain.ParseOptionKey(ans.SelectedOption)
		if !ok {
			writeError(w, http.StatusBadRequest, "selectedOption must be one of a, b, c, d")
			return
		}
		answers[ans.QuestionID] = domain.UserAnswer{
			QuestionID:     ans.QuestionID,
			SelectedOption: option,
			AnsweredAt:     a.now(),
		}
	}

	result := quiz.CalculateScore(req.Questions, answers, a.now())
	if req.UserID != "" {
		if err := a.source.RecordResult(r.Context(), req.UserID, req.Questions, result); err != nil {
			log.Printf("record result for %s: %v", req.UserID, err)
		}
	}
	writeJSON(w, http.StatusOK, scoreResponse{
		AttemptID: uuid.NewString(),
		Result:    result,
	})
}

func (a *API) handleAssistant(w http.ResponseWriter, r *http.Request) {
	if a.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant not configured")
		return
	}
	var req assistant.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	resp, err := a.assistant.Ask(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSourceError(w http.ResponseWriter, err error) {
	var formatErr *domain.FormatError
	switch {
	case errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrMissingUser):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNoQuestions):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &formatErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
