package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/campuslink/campuslink-be/internal/auth"
	"github.com/campuslink/campuslink-be/internal/http/respond"
	"github.com/campuslink/campuslink-be/internal/middleware"
	"github.com/campuslink/campuslink-be/internal/models"
	"github.com/campuslink/campuslink-be/internal/models/dto"
	"github.com/campuslink/campuslink-be/internal/storage"
)

// AuthHandler owns registration, login, and current-user endpoints.
type AuthHandler struct {
	users  storage.UserStore
	tokens *auth.TokenManager
	logger *zap.Logger

	requireAuth func(http.HandlerFunc) http.HandlerFunc
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users storage.UserStore, tokens *auth.TokenManager, logger *zap.Logger, requireAuth func(http.HandlerFunc) http.HandlerFunc) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logger, requireAuth: requireAuth}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", h.handleRegister)
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("GET /api/users/me", h.requireAuth(h.handleMe))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if err := validateRegistration(username, email, req.Password); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsSenior:     req.IsSenior,
	}
	created, err := h.users.CreateUser(r.Context(), user)
	if err != nil {
		storageError(w, h.logger, "create user", err, "username already registered", "record not found")
		return
	}

	respond.JSON(w, http.StatusCreated, created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.FindByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Same external message as a wrong password so callers
			// cannot probe which usernames exist.
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		storageError(w, h.logger, "login lookup", err, "", "")
		return
	}
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("issue token", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func validateRegistration(username, email, password string) error {
	if username == "" || email == "" {
		return errors.New("username and email are required")
	}
	if !strings.Contains(email, "@") {
		return errors.New("email is not valid")
	}
	if len(password) < 8 || !utf8.ValidString(password) {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
