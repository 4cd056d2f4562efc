package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"component-schema-service/internal/domain"
	"component-schema-service/internal/usecase"
)

// mockVariableStore はテスト用のモック変数ストア。
type mockVariableStore struct {
	byName map[string]*domain.Variable
	byID   map[string]*domain.Variable
	nextID int
}

func newMockVariableStore() *mockVariableStore {
	return &mockVariableStore{
		byName: map[string]*domain.Variable{},
		byID:   map[string]*domain.Variable{},
	}
}

func (m *mockVariableStore) GetByName(ctx context.Context, name string) (*domain.Variable, error) {
	return m.byName[name], nil
}

func (m *mockVariableStore) Create(ctx context.Context, variable *domain.Variable) error {
	m.nextID++
	variable.ID = "var-" + strconv.Itoa(m.nextID)
	m.byName[variable.Name] = variable
	m.byID[variable.ID] = variable
	return nil
}

func (m *mockVariableStore) Update(ctx context.Context, id string, value json.RawMessage) error {
	v, ok := m.byID[id]
	if !ok {
		return errors.New("variable not found")
	}
	v.Value = value
	return nil
}

func setupMigrationHandler(migrations ...domain.Migration) *MigrationHandler {
	service := usecase.NewMigrationService(newMockVariableStore(), 5*time.Second)
	for _, m := range migrations {
		service.RegisterMigration(m)
	}
	return NewMigrationHandler(service)
}

func TestRunMigrations_Success(t *testing.T) {
	applied := []int{}
	h := setupMigrationHandler(
		domain.Migration{Version: 1, Name: "create_app_settings", Up: func(ctx context.Context) error {
			applied = append(applied, 1)
			return nil
		}},
		domain.Migration{Version: 2, Name: "create_audit_events", Up: func(ctx context.Context) error {
			applied = append(applied, 2)
			return nil
		}},
	)

	req := httptest.NewRequest(http.MethodPost, "/v1/migrations/run", nil)
	rec := httptest.NewRecorder()
	h.RunMigrations(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("want status 200, got %d", rec.Code)
	}
	if len(applied) != 2 {
		t.Errorf("want 2 migrations applied, got %d", len(applied))
	}

	var resp domain.MigrationRunResult
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Ran != 2 {
		t.Errorf("want ran 2, got %d", resp.Ran)
	}
}

func TestRunMigrations_Failure(t *testing.T) {
	h := setupMigrationHandler(
		domain.Migration{Version: 1, Name: "broken", Up: func(ctx context.Context) error {
			return errors.New("boom")
		}},
	)

	req := httptest.NewRequest(http.MethodPost, "/v1/migrations/run", nil)
	rec := httptest.NewRecorder()
	h.RunMigrations(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("want status 409, got %d", rec.Code)
	}

	var resp domain.MigrationRunResult
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Errors) != 1 {
		t.Fatalf("want 1 error, got %d", len(resp.Errors))
	}
	if resp.Errors[0] != "Migration 1 (broken) failed: boom" {
		t.Errorf("unexpected error message: %s", resp.Errors[0])
	}
}

func TestGetMigrationStatus(t *testing.T) {
	h := setupMigrationHandler(
		domain.Migration{Version: 1, Name: "create_app_settings", Up: func(ctx context.Context) error { return nil }},
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/migrations/status", nil)
	rec := httptest.NewRecorder()
	h.GetMigrationStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("want status 200, got %d", rec.Code)
	}

	var resp domain.MigrationStatus
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.CurrentVersion != 0 {
		t.Errorf("want current version 0, got %d", resp.CurrentVersion)
	}
	if resp.PendingMigrations != 1 {
		t.Errorf("want 1 pending, got %d", resp.PendingMigrations)
	}
}
