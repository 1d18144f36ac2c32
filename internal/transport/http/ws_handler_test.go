package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-admin-service/internal/domain"
)

func TestLiveAnalyticsFlow(t *testing.T) {
	server := newTestServer(t)
	tokens := registerAdmin(t, server.URL, "dave")
	created := createQuiz(t, server.URL, tokens.Access)

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/quizzes/" + created.ID + "/live?token=" + tokens.Access
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the analytics snapshot first.
	typ, payload := readNext(t, conn, "analytics")
	var snapshot domain.QuizAnalytics
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if typ != "analytics" || snapshot.QuizID != created.ID || snapshot.TotalSubmissions != 0 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}

	status := doJSON(t, http.MethodPost, server.URL+"/api/public/quizzes/"+created.ID+"/submit", "", domain.SubmissionDraft{TakerName: "Ken"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("submit status %d", status)
	}

	_, payload = readNext(t, conn, "submission")
	var summary domain.SubmissionSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		t.Fatalf("decode submission: %v", err)
	}
	if summary.TakerName != "Ken" || summary.Band != domain.BandLow {
		t.Fatalf("unexpected summary %+v", summary)
	}

	_, payload = readNext(t, conn, "analytics")
	var updated domain.QuizAnalytics
	if err := json.Unmarshal(payload, &updated); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if updated.TotalSubmissions != 1 {
		t.Fatalf("expected recomputed analytics, got %+v", updated)
	}

	if err := conn.WriteJSON(map[string]string{"type": "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readNext(t, conn, "error")
}

func TestLiveRejectsForeignQuiz(t *testing.T) {
	server := newTestServer(t)
	owner := registerAdmin(t, server.URL, "erin")
	other := registerAdmin(t, server.URL, "frank")
	created := createQuiz(t, server.URL, owner.Access)

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/quizzes/" + created.ID + "/live?token=" + other.Access
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}

func readNext(t *testing.T, conn *websocket.Conn, expect string) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
