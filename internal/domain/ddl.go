package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ColumnType は抽象カラム型を表す。
type ColumnType string

const (
	ColumnTypeVarchar   ColumnType = "varchar"
	ColumnTypeText      ColumnType = "text"
	ColumnTypeTimestamp ColumnType = "timestamp"
	ColumnTypeInteger   ColumnType = "integer"
	ColumnTypeSerial    ColumnType = "serial"
	ColumnTypeBoolean   ColumnType = "boolean"
)

// defaultVarcharLength はvarchar型で長さ未指定時に使う値。
const defaultVarcharLength = 255

// ColumnDefinition は宣言的テーブル定義の1カラムを表す。
type ColumnDefinition struct {
	Name       string
	Type       ColumnType
	Length     int    // varcharの長さ（0なら255）
	NotNull    bool
	PrimaryKey bool
	Default    string // SQLリテラルをそのまま埋め込む（例: "'active'", "CURRENT_TIMESTAMP"）
}

// TableDefinition はコンポーネントが所有する1テーブルの定義を表す。
// CreateSQL/DropSQLを直接指定するか、Columnsから生成するかのいずれか。
type TableDefinition struct {
	Name      string
	CreateSQL string
	DropSQL   string
	Columns   []ColumnDefinition
}

// sqlType は抽象カラム型をSQL型にマッピングする。
func sqlType(c ColumnDefinition) (string, error) {
	switch c.Type {
	case ColumnTypeVarchar:
		length := c.Length
		if length == 0 {
			length = defaultVarcharLength
		}
		return fmt.Sprintf("VARCHAR(%d)", length), nil
	case ColumnTypeText:
		return "TEXT", nil
	case ColumnTypeTimestamp:
		return "TIMESTAMP", nil
	case ColumnTypeInteger, ColumnTypeSerial:
		return "INTEGER", nil
	case ColumnTypeBoolean:
		return "BOOLEAN", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownColumnType, c.Type)
	}
}

// BuildCreateSQL はCREATE TABLE IF NOT EXISTS文を返す。
// CreateSQLが指定されていればそれを優先し、なければColumnsから生成する。
func (t *TableDefinition) BuildCreateSQL() (string, error) {
	if t.CreateSQL != "" {
		return t.CreateSQL, nil
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%w: table %s", ErrNoTableDefinition, t.Name)
	}

	var defs []string
	var pkCols []string
	for _, c := range t.Columns {
		typ, err := sqlType(c)
		if err != nil {
			return "", err
		}
		def := c.Name + " " + typ
		if c.NotNull {
			def += " NOT NULL"
		}
		if c.Default != "" {
			def += " DEFAULT " + c.Default
		}
		defs = append(defs, def)
		if c.PrimaryKey {
			pkCols = append(pkCols, c.Name)
		}
	}
	if len(pkCols) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(pkCols, ", ")+")")
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.Name, strings.Join(defs, ",\n\t")), nil
}

// BuildDropSQL はDROP TABLE文を返す。DropSQLが指定されていればそれを優先する。
func (t *TableDefinition) BuildDropSQL() string {
	if t.DropSQL != "" {
		return t.DropSQL
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", t.Name)
}

// Checksum はテーブル定義のフィンガープリントを返す。
// 生成SQLのsha256を使い、SQLが導出できない場合はマニフェストバージョンのタグを返す。
func (t *TableDefinition) Checksum(manifestVersion int) string {
	createSQL, err := t.BuildCreateSQL()
	if err != nil {
		return fmt.Sprintf("v%d", manifestVersion)
	}
	sum := sha256.Sum256([]byte(createSQL))
	return hex.EncodeToString(sum[:])
}
