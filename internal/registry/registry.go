// Package registry はコンポーネント定義の静的レジストリを提供する。
package registry

import (
	"strings"

	"component-schema-service/internal/domain"
)

// ComponentRegistry はコンポーネント定義の読み取り専用レジストリ。
// プロセス起動時に一度構築され、その後変更されない。
type ComponentRegistry struct {
	defs []domain.ComponentDefinition
	byID map[string]*domain.ComponentDefinition
}

// NewComponentRegistry は定義リストからレジストリを構築する。
func NewComponentRegistry(defs []domain.ComponentDefinition) *ComponentRegistry {
	r := &ComponentRegistry{
		defs: make([]domain.ComponentDefinition, len(defs)),
		byID: make(map[string]*domain.ComponentDefinition, len(defs)),
	}
	copy(r.defs, defs)
	for i := range r.defs {
		r.byID[r.defs[i].ID] = &r.defs[i]
	}
	return r
}

// GetByID は指定されたIDの定義を返す。存在しない場合はnil。
func (r *ComponentRegistry) GetByID(id string) *domain.ComponentDefinition {
	return r.byID[id]
}

// GetByCategory は指定されたカテゴリの定義を登録順で返す。
func (r *ComponentRegistry) GetByCategory(category string) []domain.ComponentDefinition {
	var result []domain.ComponentDefinition
	for _, d := range r.defs {
		if d.Category == category {
			result = append(result, d)
		}
	}
	return result
}

// GetAll は全定義のコピーを登録順で返す。
func (r *ComponentRegistry) GetAll() []domain.ComponentDefinition {
	result := make([]domain.ComponentDefinition, len(r.defs))
	copy(result, r.defs)
	return result
}

// ParentID はドット区切りIDの親IDを返す。親がない場合は空文字。
// 純粋な文字列操作であり、親がレジストリに登録されている必要はない。
func ParentID(id string) string {
	idx := strings.LastIndex(id, ".")
	if idx < 0 {
		return ""
	}
	return id[:idx]
}

// AncestorIDs は近い順に全ての祖先IDを返す。
// 例: "a.b.c" -> ["a.b", "a"]。トップレベルIDの場合は空スライス。
func AncestorIDs(id string) []string {
	var ancestors []string
	for parent := ParentID(id); parent != ""; parent = ParentID(parent) {
		ancestors = append(ancestors, parent)
	}
	return ancestors
}
