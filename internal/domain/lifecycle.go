package domain

// SchemaOperationType はテーブル単位のスキーマ操作種別を表す。
type SchemaOperationType string

const (
	// SchemaOperationCreate はテーブル作成操作。
	SchemaOperationCreate SchemaOperationType = "create"
	// SchemaOperationDrop はテーブル削除操作。
	SchemaOperationDrop SchemaOperationType = "drop"
	// SchemaOperationRetain はデータ保持のまま無効化する情報操作（DDLなし）。
	SchemaOperationRetain SchemaOperationType = "retain"
)

// SchemaOperation はテーブル1件分の操作結果を表す。
type SchemaOperation struct {
	TableName string              `json:"table_name"`
	Type      SchemaOperationType `json:"type"`
	Success   bool                `json:"success"`
	Error     string              `json:"error,omitempty"`
}

// ComponentLifecycleResult は有効化・無効化操作の集約結果を表す。
// Successは全テーブル操作が成功した場合のみtrue。
type ComponentLifecycleResult struct {
	ComponentID string                `json:"component_id"`
	Success     bool                  `json:"success"`
	Operations  []SchemaOperation     `json:"operations"`
	SchemaState *ComponentSchemaState `json:"schema_state,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// DriftCheckResult はドリフトチェックの結果を表す。
// 状態レコードが存在しない場合、SchemaStateはnilのままドリフトのみ返す。
type DriftCheckResult struct {
	ComponentID string                `json:"component_id"`
	Drift       ComponentSchemaDrift  `json:"drift"`
	SchemaState *ComponentSchemaState `json:"schema_state,omitempty"`
}

// ComponentSchemaInfo は表示用の読み取り専用スナップショット。
// TablesExistはTablesと同じ並び順の物理存在フラグ。
type ComponentSchemaInfo struct {
	ComponentID string                `json:"component_id"`
	HasSchema   bool                  `json:"has_schema"`
	Tables      []string              `json:"tables,omitempty"`
	SchemaState *ComponentSchemaState `json:"schema_state,omitempty"`
	TablesExist []bool                `json:"tables_exist,omitempty"`
}
