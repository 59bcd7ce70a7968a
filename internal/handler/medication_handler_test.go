package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meds_buddy/internal/middleware"
	"meds_buddy/internal/model"
	"meds_buddy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// stubMedicationService records the arguments MarkTaken was called with
type stubMedicationService struct {
	markTakenCalled bool
	markTakenDate   string
}

func (s *stubMedicationService) CreateMedication(_ context.Context, _ int, _ model.CreateMedicationRequest) (*model.Medication, error) {
	return nil, nil
}

func (s *stubMedicationService) GetUserMedications(_ context.Context, _ int) ([]model.Medication, error) {
	return nil, nil
}

func (s *stubMedicationService) UpdateMedication(_ context.Context, _ int64, _ int, _ model.UpdateMedicationRequest) (*model.Medication, error) {
	return nil, nil
}

func (s *stubMedicationService) DeleteMedication(_ context.Context, _ int64, _ int) (bool, error) {
	return false, nil
}

func (s *stubMedicationService) MarkTaken(_ context.Context, medicationID int64, userID int, date string) (*model.Medication, error) {
	s.markTakenCalled = true
	s.markTakenDate = date
	med := &model.Medication{ID: medicationID, UserID: userID, TakenDates: model.DateSet{}}
	if date != "" {
		med.TakenDates = med.TakenDates.Add(date)
	}
	return med, nil
}

func (s *stubMedicationService) GetAdherence(_ context.Context, _ int) (int, error) {
	return 0, nil
}

func (s *stubMedicationService) UploadProof(_ context.Context, _ int64, _ int, _ *multipart.FileHeader) (*model.Medication, error) {
	return nil, nil
}

func (s *stubMedicationService) GetProofPath(_ context.Context, _ int64, _ int) (string, string, error) {
	return "", "", nil
}

var _ service.MedicationService = (*stubMedicationService)(nil)

func newMarkTakenRouter(svc service.MedicationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	// Stand-in for the JWT middleware: the handler only needs the
	// authenticated user in the context.
	authStub := func(c *gin.Context) {
		c.Set(middleware.AuthUserKey, 1)
		c.Set(middleware.AuthUsernameKey, "alice")
		c.Set(middleware.AuthRoleKey, model.RolePatient)
		c.Next()
	}
	h := NewMedicationHandler(svc)
	h.RegisterMedicationRoutes(router.Group("/api/v1"), authStub, middleware.KnownRoleMiddleware())
	return router
}

func TestMarkTakenHandler_NoBodyDefaultsToToday(t *testing.T) {
	svc := &stubMedicationService{}
	router := newMarkTakenRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/medications/1/take", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.markTakenCalled)
	assert.Empty(t, svc.markTakenDate) // service fills in the current day
}

func TestMarkTakenHandler_BodyDateIsUsed(t *testing.T) {
	svc := &stubMedicationService{}
	router := newMarkTakenRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/medications/1/take", strings.NewReader(`{"date":"2026-08-29"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-08-29", svc.markTakenDate)
}

// A chunked request reports ContentLength -1; the date it carries must not
// be dropped.
func TestMarkTakenHandler_ChunkedBodyDateIsUsed(t *testing.T) {
	svc := &stubMedicationService{}
	router := newMarkTakenRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/medications/1/take", strings.NewReader(`{"date":"2026-08-29"}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-08-29", svc.markTakenDate)
}
