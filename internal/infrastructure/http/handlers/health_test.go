package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body readinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestLiveness(t *testing.T) {
	rec, _ := serve(t, NewHealthHandler().Liveness)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]Check{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return nil },
	})

	rec, body := serve(t, h.Readiness)
	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("expected ok, got %d %+v", rec.Code, body)
	}
	if len(body.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %+v", body.Dependencies)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]Check{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	})

	rec, body := serve(t, h.Readiness)
	if rec.Code != http.StatusServiceUnavailable || body.Status != "degraded" {
		t.Fatalf("expected degraded, got %d %+v", rec.Code, body)
	}
	if got := body.Dependencies["redis"]; got.Status != "unhealthy" || got.Error != "connection refused" {
		t.Fatalf("unexpected redis status %+v", got)
	}
	if got := body.Dependencies["mongodb"]; got.Status != "ok" {
		t.Fatalf("unexpected mongodb status %+v", got)
	}
}

func TestReadiness_NoDependencies(t *testing.T) {
	rec, body := serve(t, NewHealthDependenciesHandler(nil).Readiness)
	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("expected ok, got %d %+v", rec.Code, body)
	}
}
