package infra

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
)

// GormIntrospector はgorm経由でテーブル存在確認と生DDL実行を提供する。
type GormIntrospector struct {
	db *gorm.DB
}

// NewGormIntrospector は新しいGormIntrospectorを生成する。
func NewGormIntrospector(db *gorm.DB) *GormIntrospector {
	return &GormIntrospector{db: db}
}

// TableExists は指定された名前のテーブルが物理的に存在するか確認する。
func (i *GormIntrospector) TableExists(ctx context.Context, name string) (bool, error) {
	return i.db.WithContext(ctx).Migrator().HasTable(name), nil
}

// Execute は生のDDL/SQLを実行する。結果行は返さない。
func (i *GormIntrospector) Execute(ctx context.Context, sql string) error {
	if err := i.db.WithContext(ctx).Exec(sql).Error; err != nil {
		slog.ErrorContext(ctx, "failed to execute SQL",
			"operation", "execute",
			"error", err,
		)
		return err
	}
	return nil
}
