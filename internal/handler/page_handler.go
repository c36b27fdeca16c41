package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/service"
)

type createPageRequest struct {
	Name      string       `json:"name"`
	HTML      string       `json:"html"`
	CSS       string       `json:"css"`
	JS        string       `json:"js"`
	PageType  string       `json:"pageType"`
	Thumbnail *string      `json:"thumbnail"`
	State     db.PageState `json:"state"`
}

type updatePageRequest struct {
	Name      *string `json:"name"`
	HTML      *string `json:"html"`
	CSS       *string `json:"css"`
	JS        *string `json:"js"`
	PageType  *string `json:"pageType"`
	Thumbnail *string `json:"thumbnail"`
}

type importMarkdownRequest struct {
	Name     string `json:"name"`
	Markdown string `json:"markdown"`
	PageType string `json:"pageType"`
}

type setStateRequest struct {
	State string `json:"state" binding:"required"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// ListPages returns all pages, or the pages in ?state= when given.
func (a *API) ListPages(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		pages []db.Page
		err   error
	)
	if raw := strings.TrimSpace(c.Query("state")); raw != "" {
		state, parseErr := db.ParseState(raw)
		if parseErr != nil {
			respondError(c, http.StatusBadRequest, parseErr.Error())
			return
		}
		pages, err = a.pages.ListPagesByState(ctx, state)
	} else {
		pages, err = a.pages.ListPages(ctx)
	}
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pages)
}

// GetPendingApproval returns the approval queue.
func (a *API) GetPendingApproval(c *gin.Context) {
	pages, err := a.pages.GetPendingApprovalPages(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pages)
}

// GetPage returns a single page.
func (a *API) GetPage(c *gin.Context) {
	page, err := a.pages.GetPage(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreatePage stores a new Draft page.
func (a *API) CreatePage(c *gin.Context) {
	var req createPageRequest
	if !bindJSON(c, &req, "invalid page payload") {
		return
	}

	page, err := a.pages.CreatePage(c.Request.Context(), service.PageInput{
		Name:      req.Name,
		HTML:      req.HTML,
		CSS:       req.CSS,
		JS:        req.JS,
		PageType:  req.PageType,
		Thumbnail: req.Thumbnail,
		State:     req.State,
	}, actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, page)
}

// ImportMarkdown creates a Draft page from a markdown document.
func (a *API) ImportMarkdown(c *gin.Context) {
	var req importMarkdownRequest
	if !bindJSON(c, &req, "invalid markdown payload") {
		return
	}

	page, err := a.pages.ImportMarkdown(c.Request.Context(), service.MarkdownImport{
		Name:     req.Name,
		Markdown: req.Markdown,
		PageType: req.PageType,
	}, actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, page)
}

// UpdatePage applies a partial update.
func (a *API) UpdatePage(c *gin.Context) {
	var req updatePageRequest
	if !bindJSON(c, &req, "invalid page payload") {
		return
	}

	page, err := a.pages.UpdatePage(c.Request.Context(), c.Param("id"), service.PageUpdate{
		Name:      req.Name,
		HTML:      req.HTML,
		CSS:       req.CSS,
		JS:        req.JS,
		PageType:  req.PageType,
		Thumbnail: req.Thumbnail,
	}, actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeletePage removes a page and its links.
func (a *API) DeletePage(c *gin.Context) {
	deleted, err := a.pages.DeletePage(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, service.ErrPageNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SetPageState is the generic state setter.
func (a *API) SetPageState(c *gin.Context) {
	var req setStateRequest
	if !bindJSON(c, &req, "state is required") {
		return
	}
	state, err := db.ParseState(req.State)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := a.pages.SetState(c.Request.Context(), c.Param("id"), state, actorFrom(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SubmitForApproval queues a page for review.
func (a *API) SubmitForApproval(c *gin.Context) {
	a.respondPage(c)(a.pages.SubmitForApproval(c.Request.Context(), c.Param("id"), actorFrom(c)))
}

// ApprovePage approves a pending page as the session user.
func (a *API) ApprovePage(c *gin.Context) {
	a.respondPage(c)(a.pages.Approve(c.Request.Context(), c.Param("id"), actorFrom(c)))
}

// RejectPage rejects a pending page with a reason.
func (a *API) RejectPage(c *gin.Context) {
	var req rejectRequest
	if !bindJSON(c, &req, "reason is required") {
		return
	}
	a.respondPage(c)(a.pages.Reject(c.Request.Context(), c.Param("id"), actorFrom(c), req.Reason))
}

// PublishPage takes an Approved page live.
func (a *API) PublishPage(c *gin.Context) {
	a.respondPage(c)(a.pages.Publish(c.Request.Context(), c.Param("id"), actorFrom(c)))
}

// Stats returns page counts per state.
func (a *API) Stats(c *gin.Context) {
	stats, err := a.pages.Stats(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalPages": stats.Total,
		"byState":    stats.ByState,
	})
}

func (a *API) respondPage(c *gin.Context) func(*db.Page, error) {
	return func(page *db.Page, err error) {
		if err != nil {
			a.respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
