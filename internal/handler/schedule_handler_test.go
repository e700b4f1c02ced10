package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumesh/school-ops-api/internal/models"
	"github.com/edumesh/school-ops-api/internal/service"
)

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type fakeScheduleStore struct {
	schedules map[string]*models.ClassSchedule
}

func (f *fakeScheduleStore) Create(ctx context.Context, schedule *models.ClassSchedule) error {
	if schedule.ID == "" {
		schedule.ID = "sch-1"
	}
	f.schedules[schedule.ID] = schedule
	return nil
}

func (f *fakeScheduleStore) UpdateDays(ctx context.Context, id string, days models.ScheduleDays) error {
	schedule, ok := f.schedules[id]
	if !ok {
		return sql.ErrNoRows
	}
	schedule.Days = days
	return nil
}

func (f *fakeScheduleStore) FindByID(ctx context.Context, id string) (*models.ClassSchedule, error) {
	schedule, ok := f.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return schedule, nil
}

func (f *fakeScheduleStore) FindByClassSection(ctx context.Context, classSectionID string) (*models.ClassSchedule, error) {
	for _, schedule := range f.schedules {
		if schedule.ClassSectionID == classSectionID {
			return schedule, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScheduleStore) ListAll(ctx context.Context) ([]models.ClassSchedule, error) {
	var result []models.ClassSchedule
	for _, schedule := range f.schedules {
		result = append(result, *schedule)
	}
	return result, nil
}

func (f *fakeScheduleStore) Delete(ctx context.Context, id string) error {
	delete(f.schedules, id)
	return nil
}

func draftWeek() models.ScheduleDays {
	days := make(models.ScheduleDays, 0, models.SchoolWeekDays)
	for _, name := range models.Weekdays {
		days = append(days, models.ScheduleDay{Day: name, Periods: []models.Period{}})
	}
	return days
}

func newScheduleHandlerForTest() *ScheduleHandler {
	store := &fakeScheduleStore{schedules: make(map[string]*models.ClassSchedule)}
	svc := service.NewScheduleService(store, nil, nil)
	projector := service.NewTeacherScheduleService(store, nil)
	return NewScheduleHandler(svc, projector)
}

func TestScheduleHandlerAddDraftPeriod(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandlerForTest()

	body, err := json.Marshal(service.PeriodDraftRequest{Days: draftWeek(), DayIndex: 0})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/schedules/draft/periods", bytes.NewReader(body))

	handler.AddDraftPeriod(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.ScheduleDays `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data[0].Periods, 1)
	assert.Equal(t, "08:00", envelope.Data[0].Periods[0].StartTime)
	assert.Equal(t, "09:00", envelope.Data[0].Periods[0].EndTime)
}

func TestScheduleHandlerAddDraftPeriodBadIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandlerForTest()

	body, err := json.Marshal(service.PeriodDraftRequest{Days: draftWeek(), DayIndex: 9})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/schedules/draft/periods", bytes.NewReader(body))

	handler.AddDraftPeriod(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error["code"])
}

func TestScheduleHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandlerForTest()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/schedules/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Error["code"])
}

func TestScheduleHandlerTeacherTimetable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeScheduleStore{schedules: make(map[string]*models.ClassSchedule)}
	days := draftWeek()
	days[0].Periods = []models.Period{{StartTime: "08:00", EndTime: "09:00", Subject: "Math", TeacherID: "t-1"}}
	require.NoError(t, store.Create(context.Background(), &models.ClassSchedule{
		ClassSectionID:   "cs-1",
		ClassSectionName: "Grade 5 A",
		Days:             days,
	}))
	handler := NewScheduleHandler(service.NewScheduleService(store, nil, nil), service.NewTeacherScheduleService(store, nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/teachers/t-1/timetable", nil)
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}

	handler.TeacherTimetable(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.TeacherWeeklyView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "t-1", envelope.Data.TeacherID)
	require.Len(t, envelope.Data.Days, models.SchoolWeekDays)
	require.Len(t, envelope.Data.Days[0].Periods, 1)
	assert.Equal(t, "Grade 5 A", envelope.Data.Days[0].Periods[0].ClassSectionName)
}
