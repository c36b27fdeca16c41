package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageflow/internal/rbac"
)

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// CreateUser adds an account. Admins only.
func (a *API) CreateUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req, "username and password are required") {
		return
	}

	role := rbac.RoleMaker
	if req.Role != "" {
		parsed, ok := rbac.Parse(req.Role)
		if !ok {
			respondError(c, http.StatusBadRequest, "unknown role")
			return
		}
		role = parsed
	}

	user, err := a.users.CreateUser(c.Request.Context(), req.Username, req.Password, role, actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
