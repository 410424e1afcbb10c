package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validator "github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"inkwell/domain"
	"inkwell/internal/rest/request"
	"inkwell/internal/rest/response"
	"inkwell/internal/thread"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

const (
	MsgPublished = "Comment published"
	MsgHeld      = "Comment held for moderation"
)

// CommentHandler represent the httphandler for the reader-facing
// comment endpoints
type CommentHandler struct {
	Service domain.CommentUsecase
}

func NewCommentHandler(svc domain.CommentUsecase) *CommentHandler {
	return &CommentHandler{
		Service: svc,
	}
}

func isRequestValid(m *request.Comment) (bool, error) {
	validate := validator.New()
	err := validate.Struct(m)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Submit will store a comment on the post given by slug
func (h *CommentHandler) Submit(c *gin.Context) {
	var req request.Comment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}
	if ok, err := isRequestValid(&req); !ok {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	slug := c.Param("slug")
	ctx := c.Request.Context()

	res, err := h.Service.Submit(ctx, req.ToDomain(slug, c.ClientIP()))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: publicMessage(err)})
		return
	}

	msg := MsgPublished
	if res.Status == domain.StatusPending {
		msg = MsgHeld
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": msg,
		"comment": response.NewSubmittedCommentFromDomain(res),
	})
}

// FetchThread will fetch the approved comment tree for a post
func (h *CommentHandler) FetchThread(c *gin.Context) {
	slug := c.Param("slug")
	ctx := c.Request.Context()

	nodes, total, err := h.Service.FetchThread(ctx, slug)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: publicMessage(err)})
		return
	}

	capped := thread.CapDepth(nodes, thread.MaxDisplayDepth)
	c.JSON(http.StatusOK, gin.H{
		"comments": response.NewThreadFromNodes(capped),
		"total":    total,
	})
}

// publicMessage collapses spam rejections into one generic message and
// hides store internals; validation errors keep their detail so the
// caller can fix the request.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrCommentRejected):
		return domain.ErrCommentRejected.Error()
	case errors.Is(err, domain.ErrBadParamInput):
		return err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrConflict):
		return err.Error()
	default:
		return domain.ErrInternalServerError.Error()
	}
}

// getStatusCode will get the code of the error from domain.CommentUsecase
func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	logrus.Error(err)
	switch {
	case errors.Is(err, domain.ErrCommentRejected):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBadParamInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
