package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/drivewise/drivewise-backend/internal/events"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
)

type stubEventService struct {
	result events.ComplianceResultDTO
	err    error
	input  *events.SensorEventInput
}

func (s *stubEventService) ProcessSensorEvent(ctx context.Context, input events.SensorEventInput) (events.ComplianceResultDTO, error) {
	s.input = &input
	return s.result, s.err
}

func TestProcessSensorDataSuccess(t *testing.T) {
	svc := &stubEventService{result: events.ComplianceResultDTO{
		VehicleID:       "KA-01-AB-1234",
		ViolationType:   "speed_violation",
		ComplianceScore: 70,
		TokensEarned:    5,
	}}
	handler := ProcessSensorData(svc, nil)

	body := `{"vehicle_id":"KA-01-AB-1234","sign_type":"speed_limit","sign_value":"55","actual_speed":80}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sensor-data", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input == nil || svc.input.VehicleID != "KA-01-AB-1234" {
		t.Fatalf("service did not receive decoded payload: %+v", svc.input)
	}
	if svc.input.ActualSpeed == nil || *svc.input.ActualSpeed != 80 {
		t.Fatalf("actual_speed not decoded: %+v", svc.input.ActualSpeed)
	}

	var envelope struct {
		Data events.ComplianceResultDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ComplianceScore != 70 {
		t.Fatalf("unexpected score: %d", envelope.Data.ComplianceScore)
	}
}

func TestProcessSensorDataMissingVehicleID(t *testing.T) {
	svc := &stubEventService{}
	handler := ProcessSensorData(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sensor-data", strings.NewReader(`{"sign_type":"no_horn"}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.input != nil {
		t.Fatal("service should not be called on invalid payload")
	}
}

func TestProcessSensorDataServiceError(t *testing.T) {
	svc := &stubEventService{err: pkgerrors.New(pkgerrors.CodeValidation, "unknown sign type")}
	handler := ProcessSensorData(svc, nil)

	body := `{"vehicle_id":"KA-01-AB-1234","sign_type":"traffic_light"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sensor-data", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProcessSensorDataNilService(t *testing.T) {
	handler := ProcessSensorData(nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sensor-data", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
