package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb-backend/internal/domains/user/model"
	"yamdb-backend/internal/domains/user/service"
	"yamdb-backend/internal/shared/middleware"
	"yamdb-backend/internal/shared/response"
	"yamdb-backend/internal/shared/utils"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List GET /api/v1/users?search=&page=&limit=
func (h *UserHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)

	items, total, err := h.userService.List(c.Request.Context(), model.ListQuery{
		Search: c.Query("search"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, response.NewMeta(p.Page, p.Limit, total))
}

// Create POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// Get GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	resp, err := h.userService.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Update PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.userService.Update(c.Request.Context(), c.Param("username"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Delete DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("username")); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// Me GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	resp, err := h.userService.Me(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// UpdateMe PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.userService.UpdateMe(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}
