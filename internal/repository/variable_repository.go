// Package repository はデータアクセス層の実装を提供する。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"component-schema-service/internal/domain"
)

// VariableModel はgorm用のモデル定義。
type VariableModel struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(191);not null;uniqueIndex:uk_variable_name"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:datetime(6);not null;autoUpdateTime"`
}

// TableName はテーブル名を返す。
func (VariableModel) TableName() string {
	return "variables"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (v *VariableModel) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// toDomain はモデルをドメインエンティティに変換する。
func (v *VariableModel) toDomain() *domain.Variable {
	return &domain.Variable{
		ID:        v.ID,
		Name:      v.Name,
		Value:     json.RawMessage(v.Value),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// VariableRepository は汎用変数ストアへのデータアクセスを提供する。
type VariableRepository struct {
	db *gorm.DB
}

// NewVariableRepository は新しいVariableRepositoryを生成する。
func NewVariableRepository(db *gorm.DB) *VariableRepository {
	return &VariableRepository{db: db}
}

// EnsureTable はvariablesテーブルを作成する（存在する場合は何もしない）。
// マイグレーションバージョン自体をこのテーブルに記録するため、
// マイグレーションではなく接続時にブートストラップする。
func (r *VariableRepository) EnsureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&VariableModel{}); err != nil {
		slog.ErrorContext(ctx, "failed to ensure variables table",
			"operation", "ensure_table",
			"error", err,
		)
		return err
	}
	return nil
}

// GetByName は指定された名前の変数を取得する。存在しない場合はnilを返す。
func (r *VariableRepository) GetByName(ctx context.Context, name string) (*domain.Variable, error) {
	var model VariableModel
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find variable",
			"operation", "get_by_name",
			"name", name,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// Create は新しい変数を保存する。
func (r *VariableRepository) Create(ctx context.Context, variable *domain.Variable) error {
	model := &VariableModel{
		ID:    variable.ID,
		Name:  variable.Name,
		Value: string(variable.Value),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create variable",
			"operation", "create",
			"name", variable.Name,
			"error", err,
		)
		return err
	}
	// gormで設定された値をドメインエンティティに反映
	variable.ID = model.ID
	variable.CreatedAt = model.CreatedAt
	variable.UpdatedAt = model.UpdatedAt
	return nil
}

// Update は指定されたIDの変数の値を更新する。
func (r *VariableRepository) Update(ctx context.Context, id string, value json.RawMessage) error {
	err := r.db.WithContext(ctx).
		Model(&VariableModel{}).
		Where("id = ?", id).
		Update("value", string(value)).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to update variable",
			"operation", "update",
			"id", id,
			"error", err,
		)
		return err
	}
	return nil
}

// Delete は指定されたIDの変数を削除する。存在しない場合は何もしない。
func (r *VariableRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&VariableModel{}).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete variable",
			"operation", "delete",
			"id", id,
			"error", err,
		)
		return err
	}
	return nil
}
