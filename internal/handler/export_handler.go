package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageflow/internal/service"
)

// ExportSite writes pages out as a static site.
func (a *API) ExportSite(c *gin.Context) {
	var opts service.ExportOptions
	if !bindJSON(c, &opts, "invalid export options") {
		return
	}

	result, err := a.export.Export(c.Request.Context(), opts, actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
