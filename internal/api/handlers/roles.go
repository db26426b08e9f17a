package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webbee/authd/internal/api/middleware"
	"github.com/webbee/authd/internal/logger"
	"github.com/webbee/authd/pkg/identity/models"
	"github.com/webbee/authd/pkg/identity/service"
	"github.com/webbee/authd/pkg/metrics"
)

// RoleHandler handles role administration endpoints.
type RoleHandler struct {
	roleService *service.RoleService
	metrics     *metrics.AuthMetrics
}

// NewRoleHandler creates a new RoleHandler. The metrics argument may be nil
// when metrics are disabled.
func NewRoleHandler(roleService *service.RoleService, m *metrics.AuthMetrics) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		metrics:     m,
	}
}

// SaveRolesRequest is the role replacement request body. Roles is the full
// replacement set; omitting a currently held role revokes it.
type SaveRolesRequest struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// Save handles PUT /user-roles/save. Admin only.
//
// The outcome envelope carries its own code: 200 with the applied role set,
// or 400 when the named account does not exist. A request naming a role with
// no backing reference record is a data fault and returns 500.
func (h *RoleHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRolesRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.metrics.RecordRoleReplacement(metrics.OutcomeFailure)
		BadRequest(w, "Invalid request body")
		return
	}

	status, err := h.roleService.ReplaceRoles(r.Context(), req.Username, req.Roles)
	if err != nil {
		logger.ErrorCtx(r.Context(), "role replacement failed", "username", req.Username, "error", err)
		h.metrics.RecordRoleReplacement(metrics.OutcomeFailure)
		if errors.Is(err, models.ErrUnknownRole) {
			InternalServerError(w, "There is no role with that name")
			return
		}
		InternalServerError(w, "Role replacement failed")
		return
	}

	if status.Code == http.StatusOK {
		h.metrics.RecordRoleReplacement(metrics.OutcomeSuccess)
	} else {
		h.metrics.RecordRoleReplacement(metrics.OutcomeFailure)
	}
	WriteJSON(w, status.Code, status)
}

// Get handles GET /user-roles/{login}.
//
// Authorization reads the caller's stored roles, not the token claims, so a
// role revocation takes effect before the token expires. Administrators may
// look up any account and get 404 when the target holds no roles; any caller
// may look up their own roles, empty or not; everything else is 403.
func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	login := chi.URLParam(r, "login")

	callerRoles, err := h.roleService.GetRoles(r.Context(), claims.Username)
	if err != nil {
		logger.ErrorCtx(r.Context(), "role lookup failed", "username", claims.Username, "error", err)
		InternalServerError(w, "Role lookup failed")
		return
	}

	isAdmin := false
	for _, role := range callerRoles {
		if role == models.RoleNameAdmin {
			isAdmin = true
			break
		}
	}

	if isAdmin {
		roles, err := h.roleService.GetRoles(r.Context(), login)
		if err != nil {
			logger.ErrorCtx(r.Context(), "role lookup failed", "username", login, "error", err)
			InternalServerError(w, "Role lookup failed")
			return
		}
		if len(roles) == 0 {
			NotFound(w, "User has no roles")
			return
		}
		WriteJSONOK(w, roles)
		return
	}

	if claims.Username == login {
		WriteJSONOK(w, callerRoles)
		return
	}

	Forbidden(w, "Cannot view roles of another user")
}
