package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionUserKey = "user_id"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type actorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login 校验用户名密码并写入会话
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "username and password are required") {
		return
	}

	actor, err := a.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserKey, actor.ID)
	if err := session.Save(); err != nil {
		a.log.Error().Err(err).Msg("failed to save session")
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	a.log.Info().Str("user_id", actor.ID).Str("role", string(actor.Role)).Msg("user logged in")
	c.JSON(http.StatusOK, actorResponse{ID: actor.ID, Username: actor.Username, Role: string(actor.Role)})
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to clear session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the session actor.
func (a *API) Me(c *gin.Context) {
	actor := actorFrom(c)
	c.JSON(http.StatusOK, actorResponse{ID: actor.ID, Username: actor.Username, Role: string(actor.Role)})
}

// AuthRequired resolves the session user into an actor and rejects anonymous requests.
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(sessionUserKey).(string)
		if userID == "" {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}

		actor, err := a.users.ActorByID(c.Request.Context(), userID)
		if err != nil {
			session.Clear()
			_ = session.Save()
			a.respondServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}
