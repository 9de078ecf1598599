package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"g1-quiz-service/internal/domain"
	"g1-quiz-service/internal/questions"
	"g1-quiz-service/internal/quiz"
	"github.com/gorilla/websocket"
)

// modeController is the controller surface the socket loop drives; each
// quiz mode provides its own implementation.
type modeController interface {
	Initialize(ctx context.Context) error
	Restart(ctx context.Context) error
	Attempt() *quiz.Attempt
	Close()
}

// WSHandler runs one quiz attempt per websocket connection.
type WSHandler struct {
	source   *questions.Adapter
	upgrader websocket.Upgrader
}

func NewWSHandler(source *questions.Adapter) *WSHandler {
	return &WSHandler{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID int    `json:"questionId"`
	Option     string `json:"option"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type loadNewPayload struct {
	Limit int `json:"limit"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type noticePayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives a quiz session. Query
// parameters select the workflow: mode (signs_practice, rules_practice,
// simulation, incorrect_review), limit for practice modes, userId and
// section for review.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	userID := r.URL.Query().Get("userId")

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be a number", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	var attempt *quiz.Attempt
	var ctrl modeController
	var practice *quiz.PracticeController
	switch mode {
	case "signs_practice":
		attempt = quiz.NewAttempt(quiz.PolicyAnyAnswered)
		practice = quiz.NewPracticeController(attempt, h.source, domain.KindSigns, limit)
		ctrl = practice
	case "rules_practice":
		attempt = quiz.NewAttempt(quiz.PolicyAnyAnswered)
		practice = quiz.NewPracticeController(attempt, h.source, domain.KindRules, limit)
		ctrl = practice
	case "simulation":
		attempt = quiz.NewAttempt(quiz.PolicyHalfAnswered)
		ctrl = quiz.NewSimulationController(attempt, h.source)
	case "incorrect_review":
		if userID == "" {
			http.Error(w, "missing userId for incorrect review", http.StatusBadRequest)
			return
		}
		attempt = quiz.NewAttempt(quiz.PolicyAnyAnswered)
		ctrl = quiz.NewReviewController(attempt, h.source, userID, domain.KindFilter(r.URL.Query().Get("section")))
	default:
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}
	defer ctrl.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := attempt.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: snap}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			h.handleStart(r.Context(), ctrl, send)
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			option, ok := domain.ParseOptionKey(payload.Option)
			if !ok {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "option must be one of a, b, c, d"}}
				continue
			}
			attempt.SelectAnswer(payload.QuestionID, option)
		case "next":
			attempt.NextQuestion()
		case "previous":
			attempt.PreviousQuestion()
		case "goto":
			var payload gotoPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid goto payload"}}
				continue
			}
			attempt.GoToQuestion(payload.Index)
		case "submit":
			h.handleSubmit(r.Context(), attempt, userID, send)
		case "reset":
			attempt.ResetQuiz()
		case "loadNew":
			if practice == nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "loadNew is only available in practice modes"}}
				continue
			}
			var payload loadNewPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid loadNew payload"}}
					continue
				}
			}
			if err := practice.LoadNewQuestions(r.Context(), payload.Limit); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "restart":
			if err := ctrl.Restart(r.Context()); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handleStart(ctx context.Context, ctrl modeController, send chan outboundMessage[any]) {
	if err := ctrl.Initialize(ctx); err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		return
	}
	if review, ok := ctrl.(*quiz.ReviewController); ok && review.NoMistakes() {
		send <- outboundMessage[any]{Type: "notice", Payload: noticePayload{Message: review.Message()}}
	}
}

func (h *WSHandler) handleSubmit(ctx context.Context, attempt *quiz.Attempt, userID string, send chan outboundMessage[any]) {
	snap := attempt.Snapshot()
	if snap.Status == domain.StatusActive && !snap.CanSubmit {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "not enough questions answered to submit"}}
		return
	}
	attempt.SubmitQuiz()
	result := attempt.Result()
	if result == nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "nothing to submit"}}
		return
	}
	if userID != "" {
		if err := h.source.RecordResult(ctx, userID, attempt.Questions(), *result); err != nil {
			log.Printf("record result for %s: %v", userID, err)
		}
	}
	send <- outboundMessage[any]{Type: "result", Payload: *result}
}
