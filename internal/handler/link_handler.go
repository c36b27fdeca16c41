package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageflow/internal/service"
)

type createLinkRequest struct {
	FromPageID    string  `json:"fromPageId" binding:"required"`
	FromElementID *string `json:"fromElementId"`
	TriggerText   *string `json:"triggerText"`
	ToPageID      string  `json:"toPageId" binding:"required"`
	LinkType      string  `json:"linkType"`
}

// ListLinks returns every navigation link.
func (a *API) ListLinks(c *gin.Context) {
	links, err := a.links.ListLinks(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// GetLinksByPage returns links where the page is the source or the target.
func (a *API) GetLinksByPage(c *gin.Context) {
	links, err := a.links.GetLinksByPage(c.Request.Context(), c.Param("pageId"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// CreateLink connects two pages.
func (a *API) CreateLink(c *gin.Context) {
	var req createLinkRequest
	if !bindJSON(c, &req, "fromPageId and toPageId are required") {
		return
	}

	link, err := a.links.CreateLink(c.Request.Context(), service.LinkInput{
		FromPageID:    req.FromPageID,
		FromElementID: req.FromElementID,
		TriggerText:   req.TriggerText,
		ToPageID:      req.ToPageID,
		LinkType:      req.LinkType,
	}, actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// DeleteLink removes a link.
func (a *API) DeleteLink(c *gin.Context) {
	deleted, err := a.links.DeleteLink(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, service.ErrLinkNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
