package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/campuslink/campuslink-be/internal/cache"
	"github.com/campuslink/campuslink-be/internal/http/respond"
	"github.com/campuslink/campuslink-be/internal/middleware"
	"github.com/campuslink/campuslink-be/internal/models"
	"github.com/campuslink/campuslink-be/internal/models/dto"
	"github.com/campuslink/campuslink-be/internal/policy"
	"github.com/campuslink/campuslink-be/internal/storage"
)

const defaultGroupPageSize = 100

// GroupHandler owns group creation and listing endpoints.
type GroupHandler struct {
	groups storage.GroupStore
	cache  *cache.GroupCache
	logger *zap.Logger

	requireAuth func(http.HandlerFunc) http.HandlerFunc
}

// NewGroupHandler constructs the handler. The cache may be nil.
func NewGroupHandler(groups storage.GroupStore, groupCache *cache.GroupCache, logger *zap.Logger, requireAuth func(http.HandlerFunc) http.HandlerFunc) *GroupHandler {
	return &GroupHandler{groups: groups, cache: groupCache, logger: logger, requireAuth: requireAuth}
}

// Register attaches group routes to the mux.
func (h *GroupHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/groups", h.requireAuth(h.handleCreate))
	mux.HandleFunc("GET /api/groups", h.handleList)
}

func (h *GroupHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !policy.CanCreateGroup(user) {
		respond.Error(w, http.StatusForbidden, "only seniors can create groups")
		return
	}

	var req dto.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respond.Error(w, http.StatusBadRequest, "group name is required")
		return
	}

	group := models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatorID:   user.ID,
	}
	created, err := h.groups.CreateGroup(r.Context(), group)
	if err != nil {
		storageError(w, h.logger, "create group", err, "a group with this name already exists", "creator not found")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Warn("invalidate group cache", zap.Error(err))
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *GroupHandler) handleList(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultGroupPageSize)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > defaultGroupPageSize {
		limit = defaultGroupPageSize
	}

	if cached, err := h.cache.GetList(r.Context(), offset, limit); err != nil {
		h.logger.Warn("group cache read", zap.Error(err))
	} else if cached != nil {
		respond.JSON(w, http.StatusOK, cached)
		return
	}

	groups, err := h.groups.ListGroups(r.Context(), offset, limit)
	if err != nil {
		storageError(w, h.logger, "list groups", err, "", "")
		return
	}

	if err := h.cache.SetList(r.Context(), offset, limit, groups); err != nil {
		h.logger.Warn("group cache write", zap.Error(err))
	}
	respond.JSON(w, http.StatusOK, groups)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
