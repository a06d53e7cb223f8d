package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb-backend/internal/domains/review/model"
	"yamdb-backend/internal/domains/review/service"
	"yamdb-backend/internal/shared/middleware"
	"yamdb-backend/internal/shared/response"
	"yamdb-backend/internal/shared/utils"
)

type ReviewHandler struct {
	reviewService service.Service
}

func NewReviewHandler(reviewService service.Service) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// List GET /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := utils.ParseID(c, "title_id")
	if !ok {
		response.FromError(c, model.ErrTitleNotFound)
		return
	}
	p := utils.ParsePagination(c)

	items, total, err := h.reviewService.List(c.Request.Context(), model.ListQuery{
		TitleID: titleID,
		Page:    p.Page,
		Limit:   p.Limit,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, response.NewMeta(p.Page, p.Limit, total))
}

// Get GET /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, id, ok := parseIDs(c)
	if !ok {
		response.FromError(c, model.ErrReviewNotFound)
		return
	}

	resp, err := h.reviewService.Get(c.Request.Context(), titleID, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Create POST /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := utils.ParseID(c, "title_id")
	if !ok {
		response.FromError(c, model.ErrTitleNotFound)
		return
	}

	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.reviewService.Create(c.Request.Context(), middleware.CallerFrom(c), titleID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// Update PATCH /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, id, ok := parseIDs(c)
	if !ok {
		response.FromError(c, model.ErrReviewNotFound)
		return
	}

	var req model.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.reviewService.Update(c.Request.Context(), middleware.CallerFrom(c), titleID, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Delete DELETE /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, id, ok := parseIDs(c)
	if !ok {
		response.FromError(c, model.ErrReviewNotFound)
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), middleware.CallerFrom(c), titleID, id); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

func parseIDs(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = utils.ParseID(c, "title_id"); !ok {
		return 0, 0, false
	}
	if reviewID, ok = utils.ParseID(c, "review_id"); !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}
