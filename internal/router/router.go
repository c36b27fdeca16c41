package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pageflow/internal/handler"
	"github.com/rs/zerolog"
)

// Options carries the HTTP-level settings.
type Options struct {
	SessionSecret string
	SessionName   string
	SecureCookies bool
	UploadDir     string
	UploadURLPath string
	Logger        zerolog.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(recoveryMiddleware(opts.Logger))
	r.Use(loggingMiddleware(opts.Logger))

	// 配置会话中间件
	sessionName := strings.TrimSpace(opts.SessionName)
	if sessionName == "" {
		sessionName = "pageflow_session"
	}
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	if opts.UploadDir != "" && opts.UploadURLPath != "" {
		r.Static(opts.UploadURLPath, opts.UploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/preview/:id", api.PreviewPage)

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)
		auth.GET("/me", api.AuthRequired(), api.Me)
	}

	// 需要认证的 API 路由
	secured := r.Group("/api")
	secured.Use(api.AuthRequired())
	{
		secured.GET("/pages", api.ListPages)
		secured.GET("/pages/pending-approval", api.GetPendingApproval)
		secured.POST("/pages", api.CreatePage)
		secured.POST("/pages/import/markdown", api.ImportMarkdown)
		secured.GET("/pages/:id", api.GetPage)
		secured.PUT("/pages/:id", api.UpdatePage)
		secured.DELETE("/pages/:id", api.DeletePage)
		secured.PATCH("/pages/:id/state", api.SetPageState)
		secured.POST("/pages/:id/submit-for-approval", api.SubmitForApproval)
		secured.POST("/pages/:id/approve", api.ApprovePage)
		secured.POST("/pages/:id/reject", api.RejectPage)
		secured.POST("/pages/:id/publish", api.PublishPage)
		secured.POST("/pages/:id/thumbnail", api.UploadThumbnail)
		secured.GET("/pages/:id/versions", api.ListVersions)
		secured.POST("/pages/:id/rollback", api.RollbackPage)
		secured.GET("/versions/:versionId", api.GetVersion)
		secured.GET("/pages/:id/clickable-elements", api.GetClickableElements)
		secured.GET("/pages/:id/components", api.ListPageComponents)
		secured.POST("/pages/:id/components", api.AddPageComponent)
		secured.DELETE("/pages/:id/components/:placementId", api.RemovePageComponent)

		secured.GET("/components", api.ListComponents)
		secured.GET("/components/page/:pageId", api.ListComponentsBySource)
		secured.POST("/components", api.CreateComponent)
		secured.DELETE("/components/:id", api.DeleteComponent)

		secured.GET("/links", api.ListLinks)
		secured.GET("/links/page/:pageId", api.GetLinksByPage)
		secured.POST("/links", api.CreateLink)
		secured.DELETE("/links/:id", api.DeleteLink)

		secured.POST("/export", api.ExportSite)
		secured.GET("/stats", api.Stats)
		secured.POST("/users", api.CreateUser)
	}

	return r
}
