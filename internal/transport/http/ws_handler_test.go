package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"g1-quiz-service/internal/domain"
	"g1-quiz-service/internal/infra/memory"
	"g1-quiz-service/internal/questions"
	"github.com/gorilla/websocket"
)

func newWSServer(t *testing.T, bankQuestions []domain.Question) (*httptest.Server, *memory.MistakeStore) {
	t.Helper()
	mistakes := memory.NewMistakeStore()
	source := questions.NewAdapter(memory.NewStaticBankWithSeed(bankQuestions, 1), mistakes)
	wsHandler := NewWSHandler(source)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux), mistakes
}

func dialWS(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readNext(conn *websocket.Conn, t *testing.T) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

// waitForState reads state messages until the snapshot matches, skipping
// intermediate broadcasts the slow-consumer policy may have coalesced.
func waitForState(conn *websocket.Conn, t *testing.T, match func(map[string]any) bool) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t)
		if typ == "error" {
			t.Fatalf("unexpected error message: %v", payload)
		}
		if typ == "state" && match(payload) {
			return payload
		}
	}
	t.Fatalf("state never matched")
	return nil
}

func statusIs(want string) func(map[string]any) bool {
	return func(payload map[string]any) bool {
		status, _ := payload["status"].(string)
		return status == want
	}
}

func signsBank(n int) []domain.Question {
	out := make([]domain.Question, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Question{
			ID:            i,
			Kind:          domain.KindSigns,
			Text:          fmt.Sprintf("question %d", i),
			OptionA:       "first",
			OptionB:       "second",
			OptionC:       "third",
			OptionD:       "fourth",
			CorrectOption: domain.OptionA,
			Category:      "test",
			Explanation:   "because",
		})
	}
	return out
}

func TestWebSocketPracticeFlow(t *testing.T) {
	server, _ := newWSServer(t, signsBank(30))
	defer server.Close()

	conn := dialWS(t, server, "mode=signs_practice&limit=10")
	defer conn.Close()

	// Initial idle snapshot arrives on subscribe.
	waitForState(conn, t, statusIs("idle"))

	if err := conn.WriteJSON(map[string]any{"type": "start"}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	state := waitForState(conn, t, statusIs("active"))
	if mode, _ := state["mode"].(string); mode != "signs_practice" {
		t.Fatalf("expected signs_practice mode, got %q", mode)
	}
	qs, _ := state["questions"].([]any)
	if len(qs) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(qs))
	}
	first, _ := qs[0].(map[string]any)
	questionID := int(first["id"].(float64))

	answer := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"questionId": questionID, "option": "a"},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	waitForState(conn, t, func(payload map[string]any) bool {
		answered, _ := payload["answeredCount"].(float64)
		canSubmit, _ := payload["canSubmit"].(bool)
		return answered == 1 && canSubmit
	})

	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t)
		if typ != "result" {
			continue
		}
		if correct, _ := payload["correctAnswers"].(float64); correct != 1 {
			t.Fatalf("expected 1 correct answer, got %v", payload["correctAnswers"])
		}
		if total, _ := payload["totalQuestions"].(float64); total != 10 {
			t.Fatalf("expected 10 total questions, got %v", payload["totalQuestions"])
		}
		return
	}
	t.Fatalf("result message never arrived")
}

func TestWebSocketSubmitGatedByPolicy(t *testing.T) {
	server, _ := newWSServer(t, signsBank(30))
	defer server.Close()

	conn := dialWS(t, server, "mode=signs_practice&limit=10")
	defer conn.Close()

	waitForState(conn, t, statusIs("idle"))
	if err := conn.WriteJSON(map[string]any{"type": "start"}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	waitForState(conn, t, statusIs("active"))

	// Nothing answered yet, the submit must be rejected.
	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t)
		if typ == "result" {
			t.Fatalf("submit with nothing answered must not produce a result")
		}
		if typ == "error" {
			if msg, _ := payload["message"].(string); msg == "" {
				t.Fatalf("expected an error message")
			}
			return
		}
	}
	t.Fatalf("rejection never arrived")
}

func TestWebSocketRequiresKnownMode(t *testing.T) {
	server, _ := newWSServer(t, signsBank(10))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws?mode=trivia")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", resp.StatusCode)
	}
}

func TestWebSocketReviewRequiresUser(t *testing.T) {
	server, _ := newWSServer(t, signsBank(10))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws?mode=incorrect_review")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without userId, got %d", resp.StatusCode)
	}
}

func TestWebSocketReviewNoticeWhenClean(t *testing.T) {
	server, _ := newWSServer(t, signsBank(10))
	defer server.Close()

	conn := dialWS(t, server, "mode=incorrect_review&userId=u1")
	defer conn.Close()

	waitForState(conn, t, statusIs("idle"))
	if err := conn.WriteJSON(map[string]any{"type": "start"}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t)
		if typ != "notice" {
			continue
		}
		if msg, _ := payload["message"].(string); msg != "No incorrect questions found" {
			t.Fatalf("unexpected notice %q", msg)
		}
		return
	}
	t.Fatalf("notice never arrived")
}

func TestWebSocketSubmitRecordsMistakes(t *testing.T) {
	server, mistakes := newWSServer(t, signsBank(30))
	defer server.Close()

	conn := dialWS(t, server, "mode=signs_practice&limit=10&userId=u1")
	defer conn.Close()

	waitForState(conn, t, statusIs("idle"))
	if err := conn.WriteJSON(map[string]any{"type": "start"}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	state := waitForState(conn, t, statusIs("active"))
	qs, _ := state["questions"].([]any)
	first, _ := qs[0].(map[string]any)
	questionID := int(first["id"].(float64))

	wrong := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"questionId": questionID, "option": "b"},
	}
	if err := conn.WriteJSON(wrong); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	waitForState(conn, t, func(payload map[string]any) bool {
		answered, _ := payload["answeredCount"].(float64)
		return answered == 1
	})

	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	for i := 0; i < 20; i++ {
		typ, _ := readNext(conn, t)
		if typ == "result" {
			break
		}
	}

	ids, err := mistakes.QuestionIDs(context.Background(), "u1", domain.FilterAll)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != questionID {
		t.Fatalf("expected question %d recorded as a mistake, got %v", questionID, ids)
	}
}
