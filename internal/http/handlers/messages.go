package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/campuslink/campuslink-be/internal/http/respond"
	"github.com/campuslink/campuslink-be/internal/middleware"
	"github.com/campuslink/campuslink-be/internal/models"
	"github.com/campuslink/campuslink-be/internal/models/dto"
	"github.com/campuslink/campuslink-be/internal/policy"
	"github.com/campuslink/campuslink-be/internal/storage"
)

// MessageHandler owns posting and listing messages within a group.
type MessageHandler struct {
	messages storage.MessageStore
	logger   *zap.Logger

	requireAuth func(http.HandlerFunc) http.HandlerFunc
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(messages storage.MessageStore, logger *zap.Logger, requireAuth func(http.HandlerFunc) http.HandlerFunc) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger, requireAuth: requireAuth}
}

// Register attaches message routes to the mux.
func (h *MessageHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/groups/{groupID}/messages", h.requireAuth(h.handlePost))
	mux.HandleFunc("GET /api/groups/{groupID}/messages", h.handleList)
}

func (h *MessageHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !policy.CanPostMessage(user) {
		respond.Error(w, http.StatusForbidden, "posting not allowed")
		return
	}

	groupID := r.PathValue("groupID")
	var req dto.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.GroupID != groupID {
		respond.Error(w, http.StatusBadRequest, "group ID mismatch")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respond.Error(w, http.StatusBadRequest, "message content is required")
		return
	}

	msg := models.Message{
		Content:  req.Content,
		GroupID:  groupID,
		SenderID: user.ID,
	}
	created, err := h.messages.CreateMessage(r.Context(), msg)
	if err != nil {
		storageError(w, h.logger, "create message", err, "", "group not found")
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *MessageHandler) handleList(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")
	msgs, err := h.messages.ListMessages(r.Context(), groupID)
	if err != nil {
		storageError(w, h.logger, "list messages", err, "", "group not found")
		return
	}
	respond.JSON(w, http.StatusOK, msgs)
}
