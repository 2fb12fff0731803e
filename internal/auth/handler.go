// internal/auth/handler.go
package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterPublic mounts the routes that need no token.
func (h *Handler) RegisterPublic(r *mux.Router) {
	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/students", h.CreateStudent).Methods(http.MethodPost)
	r.HandleFunc("/links", h.RequestLink).Methods(http.MethodPost)
	r.HandleFunc("/links/pending", h.PendingLinks).Methods(http.MethodGet)
	r.HandleFunc("/links/students", h.LinkedStudents).Methods(http.MethodGet)
	r.HandleFunc("/links/{linkID:[0-9]+}/approve", h.respond(true)).Methods(http.MethodPost)
	r.HandleFunc("/links/{linkID:[0-9]+}/reject", h.respond(false)).Methods(http.MethodPost)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type linkRequest struct {
	StudentUsername string `json:"student_username"`
	Notes           string `json:"notes"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve), errors.Is(err, ErrGradeRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrLinkExists), errors.Is(err, ErrLinkNotPending):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.log.Error("auth request failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req StudentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	student, err := h.service.RegisterStudentForParent(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

func (h *Handler) RequestLink(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentUsername == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	link, err := h.service.RequestLink(r.Context(), userID, req.StudentUsername, req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *Handler) respond(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		linkID, _ := strconv.ParseUint(mux.Vars(r)["linkID"], 10, 64)

		link, err := h.service.RespondLink(r.Context(), userID, uint(linkID), approve)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

func (h *Handler) LinkedStudents(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	students, err := h.service.LinkedStudents(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *Handler) PendingLinks(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	links, err := h.service.PendingLinks(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}
