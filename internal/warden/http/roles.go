package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/wardenauth/warden/internal/warden/domain"
	"github.com/wardenauth/warden/internal/warden/service"
	"github.com/wardenauth/warden/internal/warden/store"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/idx"
)

// RolesHandler owns the role administration endpoints. All of them sit
// behind the SUPER_ADMIN guard.
type RolesHandler struct {
	Store       store.Store
	RBACService *service.RBACService
}

type roleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// HandleList handles GET /v1/roles.
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Store.Roles().ListRoles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		resp = append(resp, roleResponse{ID: role.ID, Name: role.Name})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"roles": resp})
}

// HandleGet handles GET /v1/roles/{id}, permissions included.
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	roleID := r.PathValue("id")

	role, err := h.Store.Roles().GetRoleByID(r.Context(), roleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeServiceError(w, fmt.Errorf("%w: role does not exist", service.ErrNotFound))
			return
		}
		writeServiceError(w, err)
		return
	}

	perms, err := h.Store.Permissions().ListByRole(r.Context(), role.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name+":"+p.Entity)
	}

	httpx.WriteJSON(w, http.StatusOK, roleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Permissions: names,
	})
}

// HandleCreate handles POST /v1/roles.
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	name := strings.ToUpper(strings.TrimSpace(req.Name))
	if name == "" {
		writeServiceError(w, fmt.Errorf("%w: role name is required", service.ErrInvalidInput))
		return
	}

	role := domain.Role{ID: idx.New().String(), Name: name}
	if err := h.Store.Roles().CreateRole(r.Context(), role); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			writeServiceError(w, fmt.Errorf("%w: role name already taken", service.ErrInvalidInput))
			return
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, roleResponse{ID: role.ID, Name: role.Name})
}

// HandleAssignRole handles PUT /v1/users/{id}/role.
func (h *RolesHandler) HandleAssignRole(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req struct {
		RoleID string `json:"role_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RoleID) == "" {
		writeServiceError(w, fmt.Errorf("%w: role_id is required", service.ErrInvalidInput))
		return
	}

	// Validate both sides of the assignment before writing.
	if _, err := h.Store.Roles().GetRoleByID(r.Context(), req.RoleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeServiceError(w, fmt.Errorf("%w: role does not exist", service.ErrNotFound))
			return
		}
		writeServiceError(w, err)
		return
	}
	if _, err := h.Store.Users().GetUserByID(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeServiceError(w, fmt.Errorf("%w: user does not exist", service.ErrNotFound))
			return
		}
		writeServiceError(w, err)
		return
	}

	if err := h.Store.Users().AssignRole(r.Context(), userID, req.RoleID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
