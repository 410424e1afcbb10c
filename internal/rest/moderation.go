package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"inkwell/domain"
	"inkwell/internal/rest/response"
)

const (
	DefaultPerPage = 50
	PerPageMax     = 200
)

// ModerationHandler represent the httphandler for the moderator queue
type ModerationHandler struct {
	Service domain.CommentUsecase
}

func NewModerationHandler(svc domain.CommentUsecase) *ModerationHandler {
	return &ModerationHandler{
		Service: svc,
	}
}

// Fetch will fetch a flat newest-first page of comments across all
// posts, filtered by status (all, pending or approved)
func (h *ModerationHandler) Fetch(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(DefaultPerPage)))
	if err != nil || perPage < 1 || perPage > PerPageMax {
		perPage = DefaultPerPage
	}

	filter, err := domain.ParseStatusFilter(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	ctx := c.Request.Context()
	comments, err := h.Service.FetchForModeration(ctx, page, perPage, filter)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: publicMessage(err)})
		return
	}

	res := make([]response.ModerationComment, 0, len(comments))
	for i := range comments {
		res = append(res, response.NewModerationCommentFromDomain(&comments[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"comments": res,
		"page":     page,
		"per_page": perPage,
	})
}

// Approve will approve the comment by given param
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.moderate(c, domain.ActionApprove, "Comment approved")
}

// Reject will reject the comment by given param
func (h *ModerationHandler) Reject(c *gin.Context) {
	h.moderate(c, domain.ActionReject, "Comment rejected")
}

func (h *ModerationHandler) moderate(c *gin.Context, action domain.ModerationAction, msg string) {
	id, ok := commentID(c)
	if !ok {
		return
	}

	if err := h.Service.Moderate(c.Request.Context(), id, action); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: publicMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Delete will hard-remove the comment by given param. Replies are kept:
// they render as orphans promoted to root.
func (h *ModerationHandler) Delete(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: publicMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func commentID(c *gin.Context) (int64, bool) {
	idP, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return 0, false
	}
	return int64(idP), true
}
