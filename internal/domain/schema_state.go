package domain

import "time"

// TableStatus は管理対象テーブルの追跡ステータスを表す。
type TableStatus string

const (
	// TableStatusActive は作成済みで有効なテーブルを表す。
	TableStatusActive TableStatus = "active"
	// TableStatusDropped は削除済みテーブルを表す。
	TableStatusDropped TableStatus = "dropped"
)

// ComponentTableState は管理対象テーブル1件分の追跡エントリ。
type ComponentTableState struct {
	TableName string      `json:"table_name"`
	Status    TableStatus `json:"status"`
	AppliedAt time.Time   `json:"applied_at"`
	DroppedAt *time.Time  `json:"dropped_at,omitempty"`
	Checksum  string      `json:"checksum"`
}

// ComponentSchemaDrift は直近のドリフトチェック結果を表す。
type ComponentSchemaDrift struct {
	LastCheckAt         time.Time `json:"last_check_at"`
	HasUnexpectedTables bool      `json:"has_unexpected_tables"`
	HasMissingTables    bool      `json:"has_missing_tables"`
	Details             []string  `json:"details"`
}

// ComponentSchemaState はコンポーネント単位で永続化されるスキーマ状態。
// スキーマの有効化が完全に成功した場合のみ作成され、
// データ削除を伴う無効化が完全に成功した場合のみ削除される。
type ComponentSchemaState struct {
	ManifestVersion int                   `json:"manifest_version"`
	LastSyncedAt    time.Time             `json:"last_synced_at"`
	Tables          []ComponentTableState `json:"tables"`
	Drift           *ComponentSchemaDrift `json:"drift,omitempty"`
}

// TableStatusByName はテーブル名からステータスを引く。未追跡の場合はok=false。
func (s *ComponentSchemaState) TableStatusByName(name string) (TableStatus, bool) {
	if s == nil {
		return "", false
	}
	for _, t := range s.Tables {
		if t.TableName == name {
			return t.Status, true
		}
	}
	return "", false
}
