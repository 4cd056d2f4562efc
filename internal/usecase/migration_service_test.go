package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"component-schema-service/internal/domain"
)

// mockVariableStore はテスト用のインメモリ変数ストア。
type mockVariableStore struct {
	byName    map[string]*domain.Variable
	byID      map[string]*domain.Variable
	nextID    int
	creates   int
	updates   int
	createErr error
}

func newMockVariableStore() *mockVariableStore {
	return &mockVariableStore{
		byName: make(map[string]*domain.Variable),
		byID:   make(map[string]*domain.Variable),
	}
}

func (m *mockVariableStore) GetByName(ctx context.Context, name string) (*domain.Variable, error) {
	return m.byName[name], nil
}

func (m *mockVariableStore) Create(ctx context.Context, variable *domain.Variable) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.creates++
	m.nextID++
	variable.ID = fmt.Sprintf("var-%d", m.nextID)
	m.byName[variable.Name] = variable
	m.byID[variable.ID] = variable
	return nil
}

func (m *mockVariableStore) Update(ctx context.Context, id string, value json.RawMessage) error {
	m.updates++
	if v, ok := m.byID[id]; ok {
		v.Value = value
	}
	return nil
}

// storedVersion は永続化されたバージョンを取り出す。レコードがなければ0。
func (m *mockVariableStore) storedVersion(t *testing.T) int {
	t.Helper()
	v, ok := m.byName["migrations_version"]
	if !ok {
		return 0
	}
	var version int
	if err := json.Unmarshal(v.Value, &version); err != nil {
		t.Fatalf("failed to unmarshal stored version: %v", err)
	}
	return version
}

func noopMigration(version int, name string) domain.Migration {
	return domain.Migration{
		Version: version,
		Name:    name,
		Up:      func(ctx context.Context) error { return nil },
	}
}

func TestMigrationService_RegisterMigration_SortsByVersion(t *testing.T) {
	svc := NewMigrationService(newMockVariableStore(), time.Second)

	// 登録順はバージョン順と無関係
	svc.RegisterMigration(noopMigration(3, "third"))
	svc.RegisterMigration(noopMigration(1, "first"))
	svc.RegisterMigration(noopMigration(2, "second"))

	migrations := svc.GetMigrations()
	if len(migrations) != 3 {
		t.Fatalf("want 3 migrations, got %d", len(migrations))
	}
	for i, want := range []int{1, 2, 3} {
		if migrations[i].Version != want {
			t.Errorf("migrations[%d].Version = %d, want %d", i, migrations[i].Version, want)
		}
	}
}

func TestMigrationService_GetMigrations_ReturnsCopy(t *testing.T) {
	svc := NewMigrationService(newMockVariableStore(), time.Second)
	svc.RegisterMigration(noopMigration(1, "first"))

	migrations := svc.GetMigrations()
	migrations[0].Name = "mutated"

	if svc.GetMigrations()[0].Name != "first" {
		t.Error("GetMigrations did not return a copy")
	}
}

func TestMigrationService_RunMigrations_AppliesInOrder(t *testing.T) {
	store := newMockVariableStore()
	svc := NewMigrationService(store, time.Second)

	var applied []int
	track := func(version int) domain.Migration {
		return domain.Migration{
			Version: version,
			Name:    fmt.Sprintf("m%d", version),
			Up: func(ctx context.Context) error {
				applied = append(applied, version)
				return nil
			},
		}
	}
	svc.RegisterMigration(track(2))
	svc.RegisterMigration(track(1))
	svc.RegisterMigration(track(3))

	result, err := svc.RunMigrations(context.Background())
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	if result.Ran != 3 {
		t.Errorf("want ran=3, got %d", result.Ran)
	}
	if len(result.Errors) != 0 {
		t.Errorf("want no errors, got %v", result.Errors)
	}
	for i, want := range []int{1, 2, 3} {
		if applied[i] != want {
			t.Errorf("applied[%d] = %d, want ascending order", i, applied[i])
		}
	}
	if got := store.storedVersion(t); got != 3 {
		t.Errorf("want persisted version 3, got %d", got)
	}
}

func TestMigrationService_RunMigrations_NonePending(t *testing.T) {
	store := newMockVariableStore()
	svc := NewMigrationService(store, time.Second)
	svc.RegisterMigration(noopMigration(1, "first"))

	if _, err := svc.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	result, err := svc.RunMigrations(context.Background())
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if result.Ran != 0 {
		t.Errorf("want ran=0, got %d", result.Ran)
	}
	if result.Skipped != 1 {
		t.Errorf("want skipped=1, got %d", result.Skipped)
	}
}

func TestMigrationService_RunMigrations_StopsOnFirstFailure(t *testing.T) {
	store := newMockVariableStore()
	svc := NewMigrationService(store, time.Second)

	// v1成功、v2失敗、v3は試行されない
	failV2 := true
	var ranV3 bool
	svc.RegisterMigration(noopMigration(1, "create_x"))
	svc.RegisterMigration(domain.Migration{
		Version: 2, Name: "create_y",
		Up: func(ctx context.Context) error {
			if failV2 {
				return errors.New("boom")
			}
			return nil
		},
	})
	svc.RegisterMigration(domain.Migration{
		Version: 3, Name: "create_z",
		Up: func(ctx context.Context) error {
			ranV3 = true
			return nil
		},
	})

	result, err := svc.RunMigrations(context.Background())
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	if result.Ran != 1 {
		t.Errorf("want ran=1, got %d", result.Ran)
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Migration 2 (create_y) failed: boom" {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if ranV3 {
		t.Error("v3 must not run after v2 failed")
	}
	// 失敗したバージョンは記録されない
	if got := store.storedVersion(t); got != 1 {
		t.Errorf("want persisted version 1, got %d", got)
	}

	// v2を修正して再実行するとv2・v3が適用される（v1は再実行されない）
	failV2 = false
	result, err = svc.RunMigrations(context.Background())
	if err != nil {
		t.Fatalf("RunMigrations (retry) failed: %v", err)
	}
	if result.Ran != 2 {
		t.Errorf("want ran=2 on retry, got %d", result.Ran)
	}
	if len(result.Errors) != 0 {
		t.Errorf("want no errors on retry, got %v", result.Errors)
	}
	if got := store.storedVersion(t); got != 3 {
		t.Errorf("want persisted version 3, got %d", got)
	}
}

func TestMigrationService_RunMigrations_VersionRecordFailure(t *testing.T) {
	store := newMockVariableStore()
	store.createErr = errors.New("store unavailable")
	svc := NewMigrationService(store, time.Second)

	ranV2 := false
	svc.RegisterMigration(noopMigration(1, "create_x"))
	svc.RegisterMigration(domain.Migration{
		Version: 2, Name: "create_y",
		Up: func(ctx context.Context) error {
			ranV2 = true
			return nil
		},
	})

	result, err := svc.RunMigrations(context.Background())
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	// v1のUp自体は成功しているので、マイグレーション失敗とは区別して報告される
	if result.Ran != 1 {
		t.Errorf("want ran=1, got %d", result.Ran)
	}
	want := "Migration 1 (create_x) succeeded but recording its version failed: store unavailable"
	if len(result.Errors) != 1 || result.Errors[0] != want {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if result.Skipped != 1 {
		t.Errorf("want skipped=1 (v2 only), got %d", result.Skipped)
	}
	if ranV2 {
		t.Error("v2 must not run after the version write failed")
	}
	// バージョン未記録なので、ストア復旧後の再実行はv1からやり直す
	if got := store.storedVersion(t); got != 0 {
		t.Errorf("want no persisted version, got %d", got)
	}
	store.createErr = nil
	result, err = svc.RunMigrations(context.Background())
	if err != nil {
		t.Fatalf("RunMigrations (retry) failed: %v", err)
	}
	if result.Ran != 2 || len(result.Errors) != 0 {
		t.Errorf("want clean retry from v1, got %+v", result)
	}
	if got := store.storedVersion(t); got != 2 {
		t.Errorf("want persisted version 2, got %d", got)
	}
}

func TestMigrationService_RunMigrations_VersionAdvancesOneAtATime(t *testing.T) {
	store := newMockVariableStore()
	svc := NewMigrationService(store, time.Second)

	// v2実行時点でv1のバージョンが既に永続化されていることを確認
	svc.RegisterMigration(noopMigration(1, "first"))
	svc.RegisterMigration(domain.Migration{
		Version: 2, Name: "second",
		Up: func(ctx context.Context) error {
			if got := store.storedVersion(t); got != 1 {
				return fmt.Errorf("expected version 1 before v2, got %d", got)
			}
			return nil
		},
	})

	result, err := svc.RunMigrations(context.Background())
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	// 初回のみ作成、以降は同一レコードの更新
	if store.creates != 1 {
		t.Errorf("want 1 create, got %d", store.creates)
	}
	if store.updates != 1 {
		t.Errorf("want 1 update, got %d", store.updates)
	}
}

func TestMigrationService_GetMigrationStatus(t *testing.T) {
	store := newMockVariableStore()
	svc := NewMigrationService(store, time.Second)
	svc.RegisterMigration(noopMigration(1, "first"))
	svc.RegisterMigration(noopMigration(2, "second"))
	svc.RegisterMigration(noopMigration(3, "third"))

	status, err := svc.GetMigrationStatus(context.Background())
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if status.CurrentVersion != 0 || status.TotalMigrations != 3 || status.PendingMigrations != 3 {
		t.Errorf("unexpected status: %+v", status)
	}

	if _, err := svc.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	status, err = svc.GetMigrationStatus(context.Background())
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if status.CurrentVersion != 3 || status.PendingMigrations != 0 {
		t.Errorf("unexpected status after run: %+v", status)
	}
}
