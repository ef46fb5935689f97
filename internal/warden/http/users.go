package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/warden/guard"
	"github.com/wardenauth/warden/internal/warden/service"
	"github.com/wardenauth/warden/pkg/httpx"
)

type UsersHandler struct {
	RBACService *service.RBACService
}

type userProfileResponse struct {
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// HandleMe handles GET /v1/users/me. The guard has already loaded the user
// with role and permissions attached; this is a straight projection.
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := guard.IdentityFromContext(r.Context())
	if !ok {
		writeServiceError(w, service.ErrUnauthorized)
		return
	}

	resp := userProfileResponse{
		UserID:      id.User.ID,
		Name:        id.User.Name,
		Status:      string(id.User.Status),
		Permissions: id.User.PermissionNames(),
	}
	if id.User.Role != nil {
		resp.Role = id.User.Role.Name
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
