package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edumesh/school-ops-api/internal/models"
	"github.com/edumesh/school-ops-api/internal/service"
	"github.com/edumesh/school-ops-api/pkg/response"
)

// ClassHandler manages class section endpoints.
type ClassHandler struct {
	service *service.ClassService
}

// NewClassHandler constructs handler.
func NewClassHandler(svc *service.ClassService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List godoc
// @Summary List class sections
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param grade query string false "Filter by grade"
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var filter models.ClassSectionFilter
	filter.Grade = c.Query("grade")
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	sections, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, pagination)
}

// Get godoc
// @Summary Fetch a class section
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	section, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// Students godoc
// @Summary Active roster of a class section
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *ClassHandler) Students(c *gin.Context) {
	students, err := h.service.Students(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// WorkingSet godoc
// @Summary Draft attendance working set, all students present
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance-draft [get]
func (h *ClassHandler) WorkingSet(c *gin.Context) {
	statuses, err := h.service.WorkingSet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statuses, nil)
}
