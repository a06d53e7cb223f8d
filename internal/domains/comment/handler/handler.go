package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb-backend/internal/domains/comment/model"
	"yamdb-backend/internal/domains/comment/service"
	"yamdb-backend/internal/shared/middleware"
	"yamdb-backend/internal/shared/response"
	"yamdb-backend/internal/shared/utils"
)

type CommentHandler struct {
	commentService service.Service
}

func NewCommentHandler(commentService service.Service) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List GET /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	parent, ok := parseParent(c)
	if !ok {
		response.FromError(c, model.ErrReviewNotFound)
		return
	}
	p := utils.ParsePagination(c)

	items, total, err := h.commentService.List(c.Request.Context(), model.ListQuery{Parent: parent, Page: p.Page, Limit: p.Limit})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, response.NewMeta(p.Page, p.Limit, total))
}

// Get GET /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Get(c *gin.Context) {
	parent, id, ok := parseIDs(c)
	if !ok {
		response.FromError(c, model.ErrCommentNotFound)
		return
	}

	resp, err := h.commentService.Get(c.Request.Context(), parent, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Create POST /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	parent, ok := parseParent(c)
	if !ok {
		response.FromError(c, model.ErrReviewNotFound)
		return
	}

	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.commentService.Create(c.Request.Context(), middleware.CallerFrom(c), parent, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// Update PATCH /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	parent, id, ok := parseIDs(c)
	if !ok {
		response.FromError(c, model.ErrCommentNotFound)
		return
	}

	var req model.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.commentService.Update(c.Request.Context(), middleware.CallerFrom(c), parent, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Delete DELETE /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	parent, id, ok := parseIDs(c)
	if !ok {
		response.FromError(c, model.ErrCommentNotFound)
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), middleware.CallerFrom(c), parent, id); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

func parseParent(c *gin.Context) (model.Parent, bool) {
	titleID, ok := utils.ParseID(c, "title_id")
	if !ok {
		return model.Parent{}, false
	}
	reviewID, ok := utils.ParseID(c, "review_id")
	if !ok {
		return model.Parent{}, false
	}
	return model.Parent{TitleID: titleID, ReviewID: reviewID}, true
}

func parseIDs(c *gin.Context) (model.Parent, int64, bool) {
	parent, ok := parseParent(c)
	if !ok {
		return model.Parent{}, 0, false
	}
	id, ok := utils.ParseID(c, "comment_id")
	return parent, id, ok
}
