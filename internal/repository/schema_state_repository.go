package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"component-schema-service/internal/domain"
)

// schemaStateVariablePrefix はスキーマ状態レコード名のプレフィックス。
const schemaStateVariablePrefix = "component_schema_state:"

// VariableStore はスキーマ状態の永続化に使う変数ストアのインターフェース。
type VariableStore interface {
	GetByName(ctx context.Context, name string) (*domain.Variable, error)
	Create(ctx context.Context, variable *domain.Variable) error
	Update(ctx context.Context, id string, value json.RawMessage) error
	Delete(ctx context.Context, id string) error
}

// SchemaStateRepository はコンポーネント単位のスキーマ状態を変数ストアに永続化する。
// 検証は一切行わない薄い永続化シム。
type SchemaStateRepository struct {
	vars VariableStore
}

// NewSchemaStateRepository は新しいSchemaStateRepositoryを生成する。
func NewSchemaStateRepository(vars VariableStore) *SchemaStateRepository {
	return &SchemaStateRepository{vars: vars}
}

// variableName はコンポーネントIDから決定的なレコード名を導出する。
func variableName(componentID string) string {
	return schemaStateVariablePrefix + componentID
}

// Get は指定されたコンポーネントのスキーマ状態を取得する。存在しない場合はnil。
func (r *SchemaStateRepository) Get(ctx context.Context, componentID string) (*domain.ComponentSchemaState, error) {
	variable, err := r.vars.GetByName(ctx, variableName(componentID))
	if err != nil {
		return nil, fmt.Errorf("getting schema state variable: %w", err)
	}
	if variable == nil {
		return nil, nil
	}

	var state domain.ComponentSchemaState
	if err := json.Unmarshal(variable.Value, &state); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal schema state",
			"operation", "get",
			"component_id", componentID,
			"error", err,
		)
		return nil, fmt.Errorf("unmarshaling schema state: %w", err)
	}
	return &state, nil
}

// Save はスキーマ状態をupsertする。既存レコードがあれば更新、なければ作成する。
func (r *SchemaStateRepository) Save(ctx context.Context, componentID string, state *domain.ComponentSchemaState) error {
	value, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling schema state: %w", err)
	}

	name := variableName(componentID)
	existing, err := r.vars.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("getting schema state variable: %w", err)
	}

	if existing != nil {
		if err := r.vars.Update(ctx, existing.ID, value); err != nil {
			return fmt.Errorf("updating schema state: %w", err)
		}
		return nil
	}

	if err := r.vars.Create(ctx, &domain.Variable{Name: name, Value: value}); err != nil {
		return fmt.Errorf("creating schema state: %w", err)
	}
	return nil
}

// Delete はスキーマ状態レコードを削除する。存在しない場合は何もしない。
func (r *SchemaStateRepository) Delete(ctx context.Context, componentID string) error {
	existing, err := r.vars.GetByName(ctx, variableName(componentID))
	if err != nil {
		return fmt.Errorf("getting schema state variable: %w", err)
	}
	if existing == nil {
		return nil
	}
	if err := r.vars.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("deleting schema state: %w", err)
	}
	return nil
}
