package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumesh/school-ops-api/internal/models"
	"github.com/edumesh/school-ops-api/internal/service"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
	"github.com/edumesh/school-ops-api/pkg/response"
)

// AttendanceHandler manages attendance endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
	exports *service.ExportService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(svc *service.AttendanceService, exports *service.ExportService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, exports: exports}
}

// Mark godoc
// @Summary Mark or re-mark attendance for a class and date
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.MarkAttendanceRequest true "Working set"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleTeacher {
		req.TeacherID = claims.UserID
	}
	session, err := h.service.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// GetSession godoc
// @Summary Fetch an attendance session
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /attendance-sessions/{id} [get]
func (h *AttendanceHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Records godoc
// @Summary List a session's attendance records
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /attendance-sessions/{id}/records [get]
func (h *AttendanceHandler) Records(c *gin.Context) {
	requester := ownershipRequester(claimsFromContext(c))
	records, err := h.service.RecordsForSession(c.Request.Context(), c.Param("id"), requester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// DeleteSession godoc
// @Summary Delete an attendance session and its records
// @Tags Attendance
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Router /attendance-sessions/{id} [delete]
func (h *AttendanceHandler) DeleteSession(c *gin.Context) {
	requester := ownershipRequester(claimsFromContext(c))
	if err := h.service.DeleteSession(c.Request.Context(), c.Param("id"), requester); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SessionsByTeacher godoc
// @Summary List sessions marked by a teacher
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/attendance-sessions [get]
func (h *AttendanceHandler) SessionsByTeacher(c *gin.Context) {
	sessions, err := h.service.SessionsForTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// SessionsByClass godoc
// @Summary List a class section's sessions
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance-sessions [get]
func (h *AttendanceHandler) SessionsByClass(c *gin.Context) {
	sessions, err := h.service.SessionsForClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// StudentSummary godoc
// @Summary Personal attendance summary for a student
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *AttendanceHandler) StudentSummary(c *gin.Context) {
	summary, err := h.service.StudentSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ClassAverage godoc
// @Summary Running-mean attendance average for a class section
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance-average [get]
func (h *AttendanceHandler) ClassAverage(c *gin.Context) {
	summary, err := h.service.ClassAverage(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ExportRegister godoc
// @Summary Export a session register as CSV or PDF
// @Tags Attendance
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /attendance-sessions/{id}/export [get]
func (h *AttendanceHandler) ExportRegister(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	requester := ownershipRequester(claimsFromContext(c))
	result, err := h.exports.SessionRegister(c.Request.Context(), c.Param("id"), requester, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
