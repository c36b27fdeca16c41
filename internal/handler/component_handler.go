package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageflow/internal/service"
)

type createComponentRequest struct {
	Name         string  `json:"name" binding:"required"`
	SourcePageID string  `json:"sourcePageId" binding:"required"`
	Selector     string  `json:"selector" binding:"required"`
	HTML         string  `json:"html"`
	CSS          string  `json:"css"`
	Description  *string `json:"description"`
}

type addPageComponentRequest struct {
	ComponentID    string  `json:"componentId" binding:"required"`
	Position       *int    `json:"position"`
	TargetSelector *string `json:"targetSelector"`
}

// GetClickableElements lists link trigger candidates found in the page markup.
func (a *API) GetClickableElements(c *gin.Context) {
	elements, err := a.pages.ClickableElements(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, elements)
}

// ListComponents returns the component catalog.
func (a *API) ListComponents(c *gin.Context) {
	components, err := a.components.ListComponents(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, components)
}

// ListComponentsBySource returns components lifted from one page.
func (a *API) ListComponentsBySource(c *gin.Context) {
	components, err := a.components.ListComponentsBySource(c.Request.Context(), c.Param("pageId"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, components)
}

// CreateComponent adds a component to the catalog.
func (a *API) CreateComponent(c *gin.Context) {
	var req createComponentRequest
	if !bindJSON(c, &req, "name, sourcePageId and selector are required") {
		return
	}

	component, err := a.components.CreateComponent(c.Request.Context(), service.ComponentInput{
		Name:         req.Name,
		SourcePageID: req.SourcePageID,
		Selector:     req.Selector,
		HTML:         req.HTML,
		CSS:          req.CSS,
		Description:  req.Description,
	}, actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, component)
}

// DeleteComponent removes a component and its placements.
func (a *API) DeleteComponent(c *gin.Context) {
	deleted, err := a.components.DeleteComponent(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, service.ErrComponentNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListPageComponents returns the components placed on a page.
func (a *API) ListPageComponents(c *gin.Context) {
	placements, err := a.components.ListPlacements(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, placements)
}

// AddPageComponent places a catalog component on a page.
func (a *API) AddPageComponent(c *gin.Context) {
	var req addPageComponentRequest
	if !bindJSON(c, &req, "componentId is required") {
		return
	}

	placement, err := a.components.AddToPage(c.Request.Context(), c.Param("id"), service.PlacementInput{
		ComponentID:    req.ComponentID,
		Position:       req.Position,
		TargetSelector: req.TargetSelector,
	}, actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placement)
}

// RemovePageComponent removes a placement from a page.
func (a *API) RemovePageComponent(c *gin.Context) {
	err := a.components.RemoveFromPage(c.Request.Context(), c.Param("id"), c.Param("placementId"), actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
