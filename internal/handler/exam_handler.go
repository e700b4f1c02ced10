package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumesh/school-ops-api/internal/models"
	"github.com/edumesh/school-ops-api/internal/service"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
	"github.com/edumesh/school-ops-api/pkg/response"
)

// ExamHandler manages exam and marks endpoints.
type ExamHandler struct {
	service *service.ExamService
	exports *service.ExportService
}

// NewExamHandler constructs handler.
func NewExamHandler(svc *service.ExamService, exports *service.ExportService) *ExamHandler {
	return &ExamHandler{service: svc, exports: exports}
}

// Create godoc
// @Summary Create an exam with a roster snapshot
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req service.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleTeacher {
		req.TeacherID = claims.UserID
		req.TeacherName = claims.FullName
	}
	exam, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Update godoc
// @Summary Overwrite an exam's name, max marks and mark list
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param payload body service.UpdateExamRequest true "Exam payload"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	var req service.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	requester := ownershipRequester(claimsFromContext(c))
	exam, err := h.service.Update(c.Request.Context(), c.Param("id"), requester, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Get godoc
// @Summary Fetch an exam
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Delete godoc
// @Summary Delete an exam
// @Tags Exams
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 204
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	requester := ownershipRequester(claimsFromContext(c))
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), requester); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Derived statistics for an exam
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/stats [get]
func (h *ExamHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ListByClass godoc
// @Summary List a class section's exams
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/exams [get]
func (h *ExamHandler) ListByClass(c *gin.Context) {
	exams, err := h.service.ListForClassSection(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

// ListByTeacher godoc
// @Summary List a teacher's exams
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/exams [get]
func (h *ExamHandler) ListByTeacher(c *gin.Context) {
	exams, err := h.service.ListForTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

// SubjectAverages godoc
// @Summary Subject performance for a class section
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/subject-averages [get]
func (h *ExamHandler) SubjectAverages(c *gin.Context) {
	averages, err := h.service.SubjectAverages(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, averages, nil)
}

// StudentSubjectAverages godoc
// @Summary Per-subject averages for one student
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/subject-averages [get]
func (h *ExamHandler) StudentSubjectAverages(c *gin.Context) {
	averages, err := h.service.StudentSubjectAverages(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, averages, nil)
}

// Export godoc
// @Summary Export an exam result sheet as CSV or PDF
// @Tags Exams
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /exams/{id}/export [get]
func (h *ExamHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.ExamResultSheet(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
