package infra

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func TestGormIntrospector_TableExists(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	introspector := NewGormIntrospector(db)

	exists, err := introspector.TableExists(ctx, "trust_providers")
	if err != nil {
		t.Fatalf("TableExists failed: %v", err)
	}
	if exists {
		t.Error("expected exists=false before creation, got true")
	}

	if err := introspector.Execute(ctx, "CREATE TABLE trust_providers (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	exists, err = introspector.TableExists(ctx, "trust_providers")
	if err != nil {
		t.Fatalf("TableExists failed: %v", err)
	}
	if !exists {
		t.Error("expected exists=true after creation, got false")
	}
}

func TestGormIntrospector_ExecuteInvalidSQL(t *testing.T) {
	ctx := context.Background()
	introspector := NewGormIntrospector(setupTestDB(t))

	if err := introspector.Execute(ctx, "CREATE GIBBERISH"); err == nil {
		t.Error("expected error for invalid SQL, got nil")
	}
}
