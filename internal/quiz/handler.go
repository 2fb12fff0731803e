// internal/quiz/handler.go
package quiz

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kaqfa/student-space/internal/auth"
)

// RoomServer upgrades a request into a websocket subscribed to room.
type RoomServer interface {
	ServeRoom(w http.ResponseWriter, r *http.Request, room string) error
}

type Handler struct {
	service *Service
	guard   *Guard
	rooms   RoomServer
	log     *zap.Logger
}

func NewHandler(service *Service, guard *Guard, rooms RoomServer, log *zap.Logger) *Handler {
	return &Handler{service: service, guard: guard, rooms: rooms, log: log}
}

// RegisterRoutes mounts the quiz routes on an authenticated router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/quizzes", h.CreateQuiz).Methods(http.MethodPost)
	r.HandleFunc("/quizzes/mine", h.GetMyQuizzes).Methods(http.MethodGet)
	r.HandleFunc("/quizzes/{quizID:[0-9]+}", h.UpdateQuiz).Methods(http.MethodPut)
	r.HandleFunc("/quizzes/{quizID:[0-9]+}/sessions", h.StartSession).Methods(http.MethodPost)
	r.HandleFunc("/quizzes/{quizID:[0-9]+}/result", h.LatestResult).Methods(http.MethodGet)
	r.HandleFunc("/quizzes/{quizID:[0-9]+}/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/students/{studentID:[0-9]+}/quizzes", h.ListStudentQuizzes).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{sessionID:[0-9]+}", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{sessionID:[0-9]+}/answers", h.SubmitAnswer).Methods(http.MethodPut)
	r.HandleFunc("/sessions/{sessionID:[0-9]+}/finish", h.FinishSession).Methods(http.MethodPost)
	r.HandleFunc("/practice", h.RecordPractice).Methods(http.MethodPost)
}

type startRequest struct {
	StudentID uint `json:"student_id"`
}

type answerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
	TimeTaken  int    `json:"time_taken" validate:"min=0"`
}

type finishRequest struct {
	Answers map[uint]string `json:"answers"`
}

type practiceRequest struct {
	StudentID  uint   `json:"student_id"`
	QuestionID uint   `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
	TimeTaken  int    `json:"time_taken" validate:"min=0"`
}

func actorFrom(r *http.Request) (Actor, bool) {
	id, role, ok := auth.UserFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: id, Role: role}, true
}

func pathID(r *http.Request, name string) uint {
	id, _ := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	return uint(id)
}

// decode accepts an empty body as the zero value.
func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ce *ConfigurationError
		ve validator.ValidationErrors
	)
	switch {
	case errors.As(err, &ce):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrAuthorization):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrSessionClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrQuestionNotInSession):
		h.log.Warn("rejected answer", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &ve):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var in QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	quiz, err := h.service.CreateQuiz(r.Context(), actor, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var in QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	quiz, err := h.service.UpdateQuiz(r.Context(), actor, pathID(r, "quizID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) GetMyQuizzes(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	quizzes, err := h.service.ListMyQuizzes(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) ListStudentQuizzes(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	quizzes, err := h.service.ListAvailableQuizzes(r.Context(), actor, pathID(r, "studentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req startRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.StudentID == 0 {
		req.StudentID = actor.ID
	}

	view, err := h.service.StartOrResumeSession(r.Context(), actor, req.StudentID, pathID(r, "quizID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	attempt, err := h.service.SubmitAnswer(r.Context(), actor, pathID(r, "sessionID"), req.QuestionID, req.Answer, req.TimeTaken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "saved",
		"question_id": attempt.QuestionID,
		"answer":      attempt.AnswerGiven,
	})
}

func (h *Handler) FinishSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req finishRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	session, err := h.service.FinishSession(r.Context(), actor, pathID(r, "sessionID"), req.Answers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.service.GetResult(r.Context(), actor, pathID(r, "sessionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) LatestResult(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	studentID := actor.ID
	if raw := r.URL.Query().Get("student_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid student_id", http.StatusBadRequest)
			return
		}
		studentID = uint(id)
	}

	result, err := h.service.LatestResult(r.Context(), actor, pathID(r, "quizID"), studentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.Leaderboard(r.Context(), pathID(r, "quizID"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) RecordPractice(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req practiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.StudentID == 0 {
		req.StudentID = actor.ID
	}

	attempt, err := h.service.RecordPractice(r.Context(), actor, req.StudentID, req.QuestionID, req.Answer, req.TimeTaken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

// WatchStudent streams a student's session events to the student or an approved parent.
func (h *Handler) WatchStudent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	studentID := pathID(r, "studentID")
	allowed, err := h.guard.CanActFor(r.Context(), actor, studentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !allowed {
		h.writeError(w, r, ErrAuthorization)
		return
	}

	if err := h.rooms.ServeRoom(w, r, StudentRoom(studentID)); err != nil {
		h.log.Warn("websocket upgrade failed", zap.Uint("student_id", studentID), zap.Error(err))
	}
}
