package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/auth"
	"quiz-admin-service/internal/logging"
)

// LiveHandler streams analytics for one quiz to its owner over a websocket.
type LiveHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewLiveHandler(service *app.QuizService) *LiveHandler {
	return &LiveHandler{
		service: service,
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

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS sends an analytics snapshot on connect, then a "submission" message
// followed by fresh "analytics" for every new submission. Clients may send
// {"type":"refresh"} to request a snapshot.
func (h *LiveHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.FromContext(ctx)
	session, _ := auth.SessionFromContext(ctx)
	quizID := chi.URLParam(r, "quizID")

	updates, cancel, err := h.service.Watch(ctx, session, quizID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	snapshot := func() outboundMessage[any] {
		analytics, err := h.service.Analytics(ctx, session, quizID)
		if err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "analytics unavailable"}}
		}
		return outboundMessage[any]{Type: "analytics", Payload: analytics}
	}
	enqueue := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-closeSignals:
			return false
		case <-writerDone:
			return false
		}
	}

	enqueue(snapshot())

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if !enqueue(outboundMessage[any]{Type: "submission", Payload: update.Submission}) {
					return
				}
				if !enqueue(snapshot()) {
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
		case "refresh":
			enqueue(snapshot())
		default:
			enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
