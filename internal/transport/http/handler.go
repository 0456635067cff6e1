package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"quizblox-service/internal/app"
	"quizblox-service/internal/domain"
)

const sessionCookie = "quiz_session"

// IdentityStore binds a browser session ID to a logged-in user.
type IdentityStore interface {
	Identity(ctx context.Context, sessionID string) (domain.SessionIdentity, bool, error)
	SetIdentity(ctx context.Context, sessionID string, identity domain.SessionIdentity) error
	ClearIdentity(ctx context.Context, sessionID string) error
}

// Handler exposes the quiz and auth use cases as a JSON API.
type Handler struct {
	quiz     *app.QuizService
	auth     *app.AuthService
	sessions IdentityStore
}

func NewHandler(quiz *app.QuizService, auth *app.AuthService, sessions IdentityStore) *Handler {
	return &Handler{quiz: quiz, auth: auth, sessions: sessions}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/signup", h.signUp)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/logout", h.logout)
	mux.HandleFunc("GET /auth/profile", h.profile)
	mux.HandleFunc("POST /auth/profile/pic", h.updateProfilePic)
	mux.HandleFunc("GET /quiz/categories", h.categories)
	mux.HandleFunc("POST /quiz/start", h.startQuiz)
	mux.HandleFunc("GET /quiz/question", h.currentQuestion)
	mux.HandleFunc("POST /quiz/answer", h.submitAnswer)
	mux.HandleFunc("GET /quiz/results", h.results)
	mux.HandleFunc("GET /quiz/scores", h.scores)
	mux.HandleFunc("GET /leaderboard", h.leaderboard)
}

type credentialsRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	user, err := h.auth.SignUp(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusBadRequest, "username and password are required")
		default:
			log.Printf("signup: %v", err)
			writeError(w, http.StatusInternalServerError, "signup failed")
		}
		return
	}

	if err := h.bindSession(w, r, user); err != nil {
		log.Printf("bind session: %v", err)
		writeError(w, http.StatusInternalServerError, "signup failed")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Printf("login: %v", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if err := h.bindSession(w, r, user); err != nil {
		log.Printf("bind session: %v", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := h.sessions.ClearIdentity(r.Context(), cookie.Value); err != nil {
			log.Printf("clear identity: %v", err)
		}
		// An abandoned quiz dies with the login session.
		if err := h.quiz.AbandonQuiz(r.Context(), cookie.Value); err != nil {
			log.Printf("abandon quiz: %v", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	user, err := h.auth.Profile(r.Context(), identity.UserID)
	if err != nil {
		log.Printf("profile: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load profile")
		return
	}
	history, err := h.quiz.Scores(r.Context(), identity.UserID)
	if err != nil {
		log.Printf("profile history: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":        user,
		"quizHistory": history,
	})
}

func (h *Handler) updateProfilePic(w http.ResponseWriter, r *http.Request) {
	identity, sid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	url, err := h.auth.UpdateProfilePic(r.Context(), identity.UserID, req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	identity.ProfilePic = url
	if err := h.sessions.SetIdentity(r.Context(), sid, identity); err != nil {
		log.Printf("refresh identity: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"profilePic": url})
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.quiz.Categories(r.Context())
	if err != nil {
		log.Printf("categories: %v", err)
		// The setup screen can still offer a local quiz without categories.
		writeJSON(w, http.StatusOK, []domain.Category{})
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

type startQuizRequest struct {
	Source        string `json:"source"`
	QuestionCount int    `json:"questionCount"`
	TimerDuration int    `json:"timerDuration"`
	CategoryID    int    `json:"categoryId"`
	CategoryName  string `json:"categoryName"`
	Difficulty    string `json:"difficulty"`
}

func (h *Handler) startQuiz(w http.ResponseWriter, r *http.Request) {
	_, sid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req startQuizRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := h.quiz.StartQuiz(r.Context(), sid, app.StartQuizRequest{
		Source:        app.Source(req.Source),
		QuestionCount: req.QuestionCount,
		TimerDuration: req.TimerDuration,
		CategoryID:    req.CategoryID,
		CategoryName:  req.CategoryName,
		Difficulty:    req.Difficulty,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoQuestionsAvailable) {
			writeError(w, http.StatusNotFound, "no questions available")
			return
		}
		log.Printf("start quiz: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to start quiz")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) currentQuestion(w http.ResponseWriter, r *http.Request) {
	_, sid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	view, err := h.quiz.CurrentQuestion(r.Context(), sid)
	if err != nil {
		h.writeQuizFlowError(w, err, "current question")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type answerRequest struct {
	Answer string `json:"answer"`
	TimeUp bool   `json:"timeUp"`
}

type answerResponse struct {
	Feedback domain.AnswerRecord `json:"feedback"`
	Complete bool                `json:"complete"`
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	_, sid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	record, complete, err := h.quiz.SubmitQuizAnswer(r.Context(), sid, req.Answer, req.TimeUp)
	if err != nil {
		h.writeQuizFlowError(w, err, "submit answer")
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Feedback: record, Complete: complete})
}

type resultsResponse struct {
	domain.QuizResult
	HistorySaved bool `json:"historySaved"`
}

func (h *Handler) results(w http.ResponseWriter, r *http.Request) {
	identity, sid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	result, err := h.quiz.FinishQuiz(r.Context(), sid, identity.UserID)
	if err != nil {
		// A history write failure must not hide the score from the user.
		if errors.Is(err, domain.ErrHistoryPersist) {
			log.Printf("finish quiz: %v", err)
			writeJSON(w, http.StatusOK, resultsResponse{QuizResult: result, HistorySaved: false})
			return
		}
		h.writeQuizFlowError(w, err, "finish quiz")
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{QuizResult: result, HistorySaved: true})
}

func (h *Handler) scores(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	records, err := h.quiz.Scores(r.Context(), identity.UserID)
	if err != nil {
		log.Printf("scores: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load score history")
		return
	}
	if records == nil {
		records = []domain.ScoreRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.quiz.Leaderboard(r.Context(), 10)
	if err != nil {
		log.Printf("leaderboard: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load leaderboard")
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// writeQuizFlowError maps a session-flow failure onto a response that sends
// the client back to the right screen instead of a dead end.
func (h *Handler) writeQuizFlowError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNoActiveQuestion),
		errors.Is(err, domain.ErrSessionFinalized):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":    err.Error(),
			"redirect": "/quiz/setup",
		})
	case errors.Is(err, domain.ErrQuizIncomplete):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":    err.Error(),
			"redirect": "/quiz/question",
		})
	default:
		log.Printf("%s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// bindSession issues (or reuses) the session cookie and stores the identity
// under it.
func (h *Handler) bindSession(w http.ResponseWriter, r *http.Request, user domain.User) error {
	sid := ""
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		sid = cookie.Value
	} else {
		sid = uuid.NewString()
	}
	identity := domain.SessionIdentity{
		UserID:     user.ID,
		Username:   user.Username,
		ProfilePic: user.ProfilePic,
	}
	if err := h.sessions.SetIdentity(r.Context(), sid, identity); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int((24 * time.Hour).Seconds()),
	})
	return nil
}

// requireUser resolves the session cookie to a logged-in identity, writing a
// 401 when there is none.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (domain.SessionIdentity, string, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "login required")
		return domain.SessionIdentity{}, "", false
	}
	identity, ok, err := h.sessions.Identity(r.Context(), cookie.Value)
	if err != nil {
		log.Printf("resolve identity: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return domain.SessionIdentity{}, "", false
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return domain.SessionIdentity{}, "", false
	}
	return identity, cookie.Value, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
