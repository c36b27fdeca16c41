package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageflow/internal/service"
)

const htmlContentType = "text/html; charset=utf-8"

// PreviewPage 渲染页面预览，过期页面返回 404
func (a *API) PreviewPage(c *gin.Context) {
	body, err := a.preview.Render(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.Data(http.StatusOK, htmlContentType, body)
	case errors.Is(err, service.ErrPageExpired):
		c.Data(http.StatusNotFound, htmlContentType, []byte("<h1>Page expired</h1><p>This page is no longer available.</p>"))
	case errors.Is(err, service.ErrPageNotFound):
		c.Data(http.StatusNotFound, htmlContentType, []byte("<h1>Page not found</h1>"))
	default:
		a.log.Error().Err(err).Str("page_id", c.Param("id")).Msg("preview failed")
		c.Data(http.StatusInternalServerError, htmlContentType, []byte("<h1>Error loading page</h1>"))
	}
}
