package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumesh/school-ops-api/internal/service"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
	"github.com/edumesh/school-ops-api/pkg/response"
)

// ScheduleHandler manages class timetable endpoints.
type ScheduleHandler struct {
	service   *service.ScheduleService
	projector *service.TeacherScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc *service.ScheduleService, projector *service.TeacherScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc, projector: projector}
}

// Create godoc
// @Summary Create a class schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Replace a schedule's weekly grid
// @Tags Schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Param payload body service.UpdateScheduleRequest true "Days payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req service.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Get godoc
// @Summary Fetch a schedule
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// GetForClass godoc
// @Summary Fetch the newest schedule for a class section
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/schedule [get]
func (h *ScheduleHandler) GetForClass(c *gin.Context) {
	schedule, err := h.service.GetForClassSection(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete a schedule
// @Tags Schedules
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// TeacherTimetable godoc
// @Summary Derived weekly timetable for a teacher
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/timetable [get]
func (h *ScheduleHandler) TeacherTimetable(c *gin.Context) {
	view, err := h.projector.ProjectForTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// AddDraftPeriod godoc
// @Summary Append a blank period to a draft grid
// @Tags Schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.PeriodDraftRequest true "Draft payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/draft/periods [post]
func (h *ScheduleHandler) AddDraftPeriod(c *gin.Context) {
	var req service.PeriodDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	days, err := service.AddPeriod(req.Days, req.DayIndex)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}

// RemoveDraftPeriod godoc
// @Summary Remove a period from a draft grid
// @Tags Schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.PeriodDraftRequest true "Draft payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/draft/periods/remove [post]
func (h *ScheduleHandler) RemoveDraftPeriod(c *gin.Context) {
	var req service.PeriodDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	days, err := service.RemovePeriod(req.Days, req.DayIndex, req.PeriodIndex)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}
