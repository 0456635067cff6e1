package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizblox-service/internal/app"
	"quizblox-service/internal/domain"
)

// WSHandler drives an interactive play-through over one websocket: question
// out, answer in, feedback out, result at the end. The connection owns the
// caller's quiz session exclusively and messages are handled strictly in
// order, so session mutation stays single-threaded.
type WSHandler struct {
	quiz     *app.QuizService
	sessions IdentityStore
	upgrader websocket.Upgrader
}

func NewWSHandler(quiz *app.QuizService, sessions IdentityStore) *WSHandler {
	return &WSHandler{
		quiz:     quiz,
		sessions: sessions,
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

// ServeWS upgrades the request and runs the play loop until the quiz is
// finished or the client goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		http.Error(w, "login required", http.StatusUnauthorized)
		return
	}
	identity, ok, err := h.sessions.Identity(r.Context(), cookie.Value)
	if err != nil || !ok {
		http.Error(w, "login required", http.StatusUnauthorized)
		return
	}
	sid := cookie.Value

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "start":
			var payload startQuizRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, "invalid start payload")
				continue
			}
			view, err := h.quiz.StartQuiz(r.Context(), sid, app.StartQuizRequest{
				Source:        app.Source(payload.Source),
				QuestionCount: payload.QuestionCount,
				TimerDuration: payload.TimerDuration,
				CategoryID:    payload.CategoryID,
				CategoryName:  payload.CategoryName,
				Difficulty:    payload.Difficulty,
			})
			if err != nil {
				h.sendError(conn, startErrorMessage(err))
				continue
			}
			h.send(conn, "question", view)

		case "answer":
			var payload answerRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, "invalid answer payload")
				continue
			}
			record, complete, err := h.quiz.SubmitQuizAnswer(r.Context(), sid, payload.Answer, payload.TimeUp)
			if err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			h.send(conn, "feedback", record)

			if complete {
				result, err := h.quiz.FinishQuiz(r.Context(), sid, identity.UserID)
				if err != nil && !errors.Is(err, domain.ErrHistoryPersist) {
					h.sendError(conn, err.Error())
					continue
				}
				if err != nil {
					log.Printf("ws finish quiz: %v", err)
				}
				h.send(conn, "result", resultsResponse{QuizResult: result, HistorySaved: err == nil})
				continue
			}
			view, err := h.quiz.CurrentQuestion(r.Context(), sid)
			if err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			h.send(conn, "question", view)

		default:
			h.sendError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) send(conn *websocket.Conn, msgType string, payload any) {
	if err := conn.WriteJSON(outboundMessage[any]{Type: msgType, Payload: payload}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func (h *WSHandler) sendError(conn *websocket.Conn, message string) {
	h.send(conn, "error", errorPayload{Message: message})
}

func startErrorMessage(err error) string {
	if errors.Is(err, domain.ErrNoQuestionsAvailable) {
		return "no questions available"
	}
	log.Printf("ws start quiz: %v", err)
	return "failed to start quiz"
}
