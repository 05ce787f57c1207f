package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"conectar-users/internal/domain"
	"conectar-users/internal/service"
	mdw "conectar-users/internal/transport/http/middleware"
	resp "conectar-users/internal/transport/http/response"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createIn struct {
	Name     string `json:"name"     binding:"required,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=6,max=72"`
	Role     string `json:"role"     binding:"omitempty,oneof=admin user"`
}

// Create is admin-only (gated by the router).
func (h *UserHandler) Create(c *gin.Context) {
	var in createIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.users.Create(c.Request.Context(), service.CreateInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp.OK(u))
}

// List is admin-only (gated by the router).
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), domain.ListFilter{
		Role:   c.Query("role"),
		SortBy: c.Query("sortBy"),
		Order:  c.Query("order"),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(users))
}

func (h *UserHandler) Me(c *gin.Context) {
	ident, ok := mdw.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "unauthorized"))
		return
	}
	u, err := h.users.GetByID(c.Request.Context(), ident.ID, ident)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

func (h *UserHandler) GetByID(c *gin.Context) {
	ident, ok := mdw.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "unauthorized"))
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	u, err := h.users.GetByID(c.Request.Context(), id, ident)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

type updateIn struct {
	Name     *string `json:"name"     binding:"omitempty,max=64"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
}

func (h *UserHandler) Update(c *gin.Context) {
	ident, ok := mdw.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "unauthorized"))
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in updateIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.users.Update(c.Request.Context(), id, service.UpdateInput{
		Name:     in.Name,
		Password: in.Password,
	}, ident)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

// Remove is admin-only (gated by the router).
func (h *UserHandler) Remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.users.Remove(c.Request.Context(), id); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"deleted": id}))
}

// Inactive is admin-only (gated by the router).
func (h *UserHandler) Inactive(c *gin.Context) {
	users, err := h.users.ListInactive(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(users))
}

// parseID treats a malformed id as a missing resource, not a bad request.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, "Invalid user ID"))
		return 0, false
	}
	return id, true
}
