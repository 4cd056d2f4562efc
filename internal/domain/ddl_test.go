package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestTableDefinition_BuildCreateSQL_FromColumns(t *testing.T) {
	td := TableDefinition{
		Name: "benefit_scan_batches",
		Columns: []ColumnDefinition{
			{Name: "id", Type: ColumnTypeSerial, NotNull: true, PrimaryKey: true},
			{Name: "label", Type: ColumnTypeVarchar, Length: 64, NotNull: true},
			{Name: "note", Type: ColumnTypeText},
			{Name: "scanned", Type: ColumnTypeBoolean, NotNull: true, Default: "FALSE"},
			{Name: "created_at", Type: ColumnTypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
		},
	}

	sql, err := td.BuildCreateSQL()
	if err != nil {
		t.Fatalf("BuildCreateSQL failed: %v", err)
	}

	if !strings.HasPrefix(sql, "CREATE TABLE IF NOT EXISTS benefit_scan_batches") {
		t.Errorf("unexpected prefix: %s", sql)
	}
	for _, want := range []string{
		"id INTEGER NOT NULL",
		"label VARCHAR(64) NOT NULL",
		"note TEXT",
		"scanned BOOLEAN NOT NULL DEFAULT FALSE",
		"created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP",
		"PRIMARY KEY (id)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("generated SQL missing %q:\n%s", want, sql)
		}
	}
}

func TestTableDefinition_BuildCreateSQL_VarcharDefaultLength(t *testing.T) {
	td := TableDefinition{
		Name:    "t",
		Columns: []ColumnDefinition{{Name: "name", Type: ColumnTypeVarchar}},
	}

	sql, err := td.BuildCreateSQL()
	if err != nil {
		t.Fatalf("BuildCreateSQL failed: %v", err)
	}
	if !strings.Contains(sql, "VARCHAR(255)") {
		t.Errorf("want VARCHAR(255), got: %s", sql)
	}
}

func TestTableDefinition_BuildCreateSQL_ExplicitSQLWins(t *testing.T) {
	td := TableDefinition{
		Name:      "trust_providers",
		CreateSQL: "CREATE TABLE IF NOT EXISTS trust_providers (id INTEGER PRIMARY KEY)",
		Columns:   []ColumnDefinition{{Name: "ignored", Type: ColumnTypeText}},
	}

	sql, err := td.BuildCreateSQL()
	if err != nil {
		t.Fatalf("BuildCreateSQL failed: %v", err)
	}
	if sql != td.CreateSQL {
		t.Errorf("want explicit SQL, got: %s", sql)
	}
}

func TestTableDefinition_BuildCreateSQL_NoDefinition(t *testing.T) {
	td := TableDefinition{Name: "empty"}

	_, err := td.BuildCreateSQL()
	if !errors.Is(err, ErrNoTableDefinition) {
		t.Errorf("want ErrNoTableDefinition, got %v", err)
	}
}

func TestTableDefinition_BuildCreateSQL_UnknownType(t *testing.T) {
	td := TableDefinition{
		Name:    "t",
		Columns: []ColumnDefinition{{Name: "c", Type: ColumnType("uuid")}},
	}

	_, err := td.BuildCreateSQL()
	if !errors.Is(err, ErrUnknownColumnType) {
		t.Errorf("want ErrUnknownColumnType, got %v", err)
	}
}

func TestTableDefinition_BuildDropSQL(t *testing.T) {
	td := TableDefinition{Name: "trust_providers"}
	if got := td.BuildDropSQL(); got != "DROP TABLE IF EXISTS trust_providers CASCADE" {
		t.Errorf("unexpected drop SQL: %s", got)
	}

	td.DropSQL = "DROP TABLE trust_providers"
	if got := td.BuildDropSQL(); got != "DROP TABLE trust_providers" {
		t.Errorf("want explicit drop SQL, got: %s", got)
	}
}

func TestTableDefinition_Checksum(t *testing.T) {
	td := TableDefinition{
		Name:      "t",
		CreateSQL: "CREATE TABLE IF NOT EXISTS t (id INTEGER)",
	}

	sum := td.Checksum(3)
	if len(sum) != 64 {
		t.Errorf("want sha256 hex checksum, got %q", sum)
	}
	if sum != td.Checksum(3) {
		t.Error("checksum is not deterministic")
	}

	// 定義が変わればチェックサムも変わる
	changed := TableDefinition{Name: "t", CreateSQL: "CREATE TABLE IF NOT EXISTS t (id TEXT)"}
	if changed.Checksum(3) == sum {
		t.Error("checksum did not change with definition")
	}
}

func TestTableDefinition_Checksum_VersionTagFallback(t *testing.T) {
	td := TableDefinition{Name: "t"}
	if got := td.Checksum(7); got != "v7" {
		t.Errorf("want v7, got %q", got)
	}
}
