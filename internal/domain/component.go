// Package domain はドメインモデルとビジネスルールを定義する。
package domain

// ComponentDefinition はオプション機能コンポーネントの静的定義を表す。
// IDはドット区切りの階層文字列（例: "trust.benefits.scan"）。
type ComponentDefinition struct {
	ID               string
	Name             string
	Description      string
	Category         string
	EnabledByDefault bool
	ManagesSchema    bool
	SchemaManifest   *SchemaManifest
}

// SchemaManifest はコンポーネントが所有するテーブル群を宣言する。
// Versionはマニフェスト定義が変わるたびに単調増加させる。
type SchemaManifest struct {
	Version int
	Tables  []TableDefinition
}

// TableNames はマニフェストに宣言されたテーブル名を宣言順で返す。
func (m *SchemaManifest) TableNames() []string {
	names := make([]string, len(m.Tables))
	for i, t := range m.Tables {
		names[i] = t.Name
	}
	return names
}

// FindTable は指定された名前のテーブル定義を返す。存在しない場合はnil。
func (m *SchemaManifest) FindTable(name string) *TableDefinition {
	for i := range m.Tables {
		if m.Tables[i].Name == name {
			return &m.Tables[i]
		}
	}
	return nil
}
