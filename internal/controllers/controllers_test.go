package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/services"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"
	"calibrify/pkg/utils"
	"calibrify/pkg/validation"
)

type fakeEquipmentService struct {
	services.EquipmentServiceInterface
	created    *dto.CreateEquipmentDTO
	actorID    uint64
	lastFilter types.Filter
}

func (s *fakeEquipmentService) GetAll(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	s.lastFilter = filter
	return []dto.EquipmentDTO{{ID: 1, Name: "Scale"}, {ID: 2, Name: "Thermometer"}}, 12, nil
}

func (s *fakeEquipmentService) Create(ctx context.Context, actorID uint64, payload dto.CreateEquipmentDTO) (*dto.EquipmentDetailDTO, error) {
	s.created = &payload
	s.actorID = actorID
	return &dto.EquipmentDetailDTO{EquipmentDTO: dto.EquipmentDTO{ID: 5, Name: payload.Name}}, nil
}

func (s *fakeEquipmentService) FindByID(ctx context.Context, id uint64) (*dto.EquipmentDetailDTO, error) {
	return nil, apperrors.ErrNotFound
}

type fakeCalibrationService struct {
	services.CalibrationServiceInterface
	attachedName string
	attachedBody []byte
}

func (s *fakeCalibrationService) AttachCertificate(ctx context.Context, id uint64, file io.Reader, size int64, fileName string) (*dto.CalibrationDTO, error) {
	s.attachedName = fileName
	s.attachedBody, _ = io.ReadAll(file)
	ref := "calibration_certificates/x.pdf"
	return &dto.CalibrationDTO{ID: id, CertificateFile: &ref}, nil
}

type fakeHealthService struct{ res dto.HealthDTO }

func (s fakeHealthService) Check(ctx context.Context) dto.HealthDTO { return s.res }

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	return e
}

// withActor имитирует AuthMiddleware.
func withActor(id uint64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(utils.WithUser(c.Request().Context(), id, true)))
			return next(c)
		}
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestEquipmentController_CreatePassesActor(t *testing.T) {
	svc := &fakeEquipmentService{}
	ctrl := NewEquipmentController(svc, nil, zap.NewNop())
	e := newTestEcho()
	e.POST("/api/equipment", ctrl.Create, withActor(42))

	payload := `{"name":"Scale","serial_number":"S-1","category":"Mass","purchase_date":"2024-05-01",
		"model_number":"M1","manufacturer":"Acme","location":"Lab","calibration_interval_type":"months",
		"calibration_interval_value":6}`
	req := httptest.NewRequest(http.MethodPost, "/api/equipment", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(42), svc.actorID)
	assert.Equal(t, "Scale", svc.created.Name)
	assert.Equal(t, true, decodeBody(t, rec)["status"])
}

func TestEquipmentController_CreateValidationError(t *testing.T) {
	svc := &fakeEquipmentService{}
	ctrl := NewEquipmentController(svc, nil, zap.NewNop())
	e := newTestEcho()
	e.POST("/api/equipment", ctrl.Create, withActor(42))

	payload := `{"name":"Scale","serial_number":"S-1","category":"Mass","purchase_date":"01.05.2024",
		"model_number":"M1","manufacturer":"Acme","location":"Lab","calibration_interval_type":"decades",
		"calibration_interval_value":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/equipment", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	details, ok := decodeBody(t, rec)["body"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details, "purchase_date")
	assert.Contains(t, details, "calibration_interval_type")
	assert.Contains(t, details, "calibration_interval_value")
	assert.Nil(t, svc.created)
}

func TestEquipmentController_GetAllWithPagination(t *testing.T) {
	svc := &fakeEquipmentService{}
	ctrl := NewEquipmentController(svc, nil, zap.NewNop())
	e := newTestEcho()
	e.GET("/api/equipment", ctrl.GetAll)

	req := httptest.NewRequest(http.MethodGet, "/api/equipment?withPagination=true&limit=2&is_active=true", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", svc.lastFilter.Filter["is_active"])

	body := decodeBody(t, rec)["body"].(map[string]interface{})
	assert.Len(t, body["list"], 2)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(12), pagination["total_count"])
	assert.Equal(t, float64(6), pagination["total_pages"])
}

func TestEquipmentController_GetByIDErrors(t *testing.T) {
	ctrl := NewEquipmentController(&fakeEquipmentService{}, nil, zap.NewNop())
	e := newTestEcho()
	e.GET("/api/equipment/:id", ctrl.GetByID)

	for path, code := range map[string]int{
		"/api/equipment/abc": http.StatusBadRequest,
		"/api/equipment/7":   http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, code, rec.Code, path)
	}
}

func TestCalibrationController_UploadCertificate(t *testing.T) {
	svc := &fakeCalibrationService{}
	ctrl := NewCalibrationController(svc, 1, zap.NewNop())
	e := newTestEcho()
	e.PUT("/api/calibrations/:id/certificate", ctrl.UploadCertificate)

	content := []byte("%PDF-1.4\n% certificate\n")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cert.pdf")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/calibrations/3/certificate", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cert.pdf", svc.attachedName)
	assert.Equal(t, content, svc.attachedBody, "файл передан сервису с начала")
}

func TestCalibrationController_UploadCertificateRejectsBadFiles(t *testing.T) {
	ctrl := NewCalibrationController(&fakeCalibrationService{}, 1, zap.NewNop())
	e := newTestEcho()
	e.PUT("/api/calibrations/:id/certificate", ctrl.UploadCertificate)

	t.Run("нет файла", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/calibrations/3/certificate", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("исполняемый файл", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "cert.pdf")
		require.NoError(t, err)
		_, _ = part.Write([]byte("#!/bin/sh\necho hi\n"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPut, "/api/calibrations/3/certificate", &buf)
		req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthController_Check(t *testing.T) {
	tests := []struct {
		name string
		res  dto.HealthDTO
		code int
	}{
		{"healthy", dto.HealthDTO{Status: services.HealthStatusHealthy, Database: "up", Cache: "up"}, http.StatusOK},
		{"unhealthy", dto.HealthDTO{Status: services.HealthStatusUnhealthy, Database: "up", Cache: "down"}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			e.GET("/health", NewHealthController(fakeHealthService{res: tt.res}).Check)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.code, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.res.Status, body["status"])
			assert.Equal(t, tt.res.Cache, body["cache"])
			assert.NotContains(t, body, "body")
		})
	}
}
