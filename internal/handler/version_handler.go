package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type rollbackRequest struct {
	VersionID string `json:"versionId" binding:"required"`
}

// ListVersions returns the version log of a page, newest first.
func (a *API) ListVersions(c *gin.Context) {
	versions, err := a.pages.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

// GetVersion returns a single version.
func (a *API) GetVersion(c *gin.Context) {
	version, err := a.pages.GetVersion(c.Request.Context(), c.Param("versionId"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, version)
}

// RollbackPage restores a version onto the page.
func (a *API) RollbackPage(c *gin.Context) {
	var req rollbackRequest
	if !bindJSON(c, &req, "versionId is required") {
		return
	}

	page, version, err := a.pages.Rollback(c.Request.Context(), c.Param("id"), req.VersionID, actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"page":    page,
		"message": fmt.Sprintf("Rolled back to version %d", version.VersionNumber),
	})
}
