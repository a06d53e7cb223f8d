package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"yamdb-backend/internal/domains/title/model"
	"yamdb-backend/internal/domains/title/service"
	"yamdb-backend/internal/shared/response"
	"yamdb-backend/internal/shared/utils"
)

type TitleHandler struct {
	titleService service.Service
}

func NewTitleHandler(titleService service.Service) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// List GET /api/v1/titles?category=&genre=&name=&year=&ordering=&page=&limit=
func (h *TitleHandler) List(c *gin.Context) {
	// Step 1: Parse filters and ordering
	ordering, err := model.ParseOrdering(c.Query("ordering"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	filter := model.Filter{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			response.FromError(c, model.ErrInvalidYearFilter)
			return
		}
		filter.Year = &year
	}

	p := utils.ParsePagination(c)

	// Step 2: Query
	items, total, err := h.titleService.List(c.Request.Context(), model.ListQuery{
		Filter:   filter,
		Ordering: ordering,
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, response.NewMeta(p.Page, p.Limit, total))
}

// Get GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := utils.ParseID(c, "title_id")
	if !ok {
		response.FromError(c, model.ErrTitleNotFound)
		return
	}

	resp, err := h.titleService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Create POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req model.CreateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.titleService.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// Update PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := utils.ParseID(c, "title_id")
	if !ok {
		response.FromError(c, model.ErrTitleNotFound)
		return
	}

	var req model.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.titleService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Delete DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := utils.ParseID(c, "title_id")
	if !ok {
		response.FromError(c, model.ErrTitleNotFound)
		return
	}

	if err := h.titleService.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}
