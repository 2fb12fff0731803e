// internal/catalog/handler.go
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kaqfa/student-space/internal/auth"
	"github.com/kaqfa/student-space/internal/models"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/subjects", h.CreateSubject).Methods(http.MethodPost)
	r.HandleFunc("/subjects", h.ListSubjects).Methods(http.MethodGet)
	r.HandleFunc("/topics", h.CreateTopic).Methods(http.MethodPost)
	r.HandleFunc("/questions", h.CreateQuestion).Methods(http.MethodPost)
	r.HandleFunc("/questions", h.ListQuestions).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve), errors.Is(err, ErrInvalidQuestion):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error("catalog request failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	_, role, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var in SubjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	subject, err := h.service.CreateSubject(r.Context(), role, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subject)
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.ListSubjects(r.Context(), queryInt(r, "grade"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *Handler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	_, role, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var in TopicInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	topic, err := h.service.CreateTopic(r.Context(), role, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var in QuestionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	question, err := h.service.CreateQuestion(r.Context(), userID, role, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

// ListQuestions reveals answer keys to content authors only.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	_, role, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	questions, err := h.service.ListQuestions(r.Context(), QuestionFilter{
		SubjectID: uint(queryInt(r, "subject_id")),
		Grade:     queryInt(r, "grade"),
		Type:      models.QuestionType(r.URL.Query().Get("type")),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	reveal := role == models.RoleParent || role == models.RoleAdmin
	out := make([]models.QuestionDTO, len(questions))
	for i, q := range questions {
		out[i] = q.ToDTO(reveal)
	}
	writeJSON(w, http.StatusOK, out)
}
