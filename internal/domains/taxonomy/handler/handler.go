package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb-backend/internal/domains/taxonomy/model"
	"yamdb-backend/internal/domains/taxonomy/service"
	"yamdb-backend/internal/shared/response"
	"yamdb-backend/internal/shared/utils"
)

// TermHandler serves /categories or /genres depending on its service.
type TermHandler struct {
	service service.Service
}

func NewTermHandler(s service.Service) *TermHandler {
	return &TermHandler{service: s}
}

// List GET /api/v1/{categories|genres}?search=&page=&limit=
func (h *TermHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)
	q := model.ListQuery{Search: c.Query("search"), Page: p.Page, Limit: p.Limit}

	resp, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, resp.Items, response.NewMeta(p.Page, p.Limit, resp.Total))
}

// Create POST /api/v1/{categories|genres}
func (h *TermHandler) Create(c *gin.Context) {
	var req model.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// Delete DELETE /api/v1/{categories|genres}/:slug
func (h *TermHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		response.FromError(c, err)
		return
	}

	response.NoContent(c)
}
