// Package migrations は組み込みのワンショット起動マイグレーションを提供する。
// variablesテーブル自体はここでは作らない（バージョン記録の置き場が先に必要なため、
// 接続時にVariableRepository.EnsureTableでブートストラップされる）。
package migrations

import (
	"context"

	"component-schema-service/internal/domain"
	"component-schema-service/internal/usecase"
)

// Register は組み込みマイグレーションをランナーに登録する。
// RunMigrationsより前に呼ぶこと。
func Register(svc *usecase.MigrationService, db usecase.TableIntrospector) {
	svc.RegisterMigration(migrationV1(db))
	svc.RegisterMigration(migrationV2(db))
	svc.RegisterMigration(migrationV3(db))
}

// migrationV1 は共有のapp_settingsテーブルを作成する。
func migrationV1(db usecase.TableIntrospector) domain.Migration {
	return domain.Migration{
		Version:     1,
		Name:        "create_app_settings",
		Description: "アプリケーション共通設定テーブルを作成する",
		Up: func(ctx context.Context) error {
			return db.Execute(ctx, `CREATE TABLE IF NOT EXISTS app_settings (
	id INTEGER NOT NULL,
	name VARCHAR(191) NOT NULL,
	value TEXT,
	PRIMARY KEY (id)
)`)
		},
	}
}

// migrationV2 は監査ログテーブルを作成する。
func migrationV2(db usecase.TableIntrospector) domain.Migration {
	return domain.Migration{
		Version:     2,
		Name:        "create_audit_events",
		Description: "スキーマ操作の監査イベントテーブルを作成する",
		Up: func(ctx context.Context) error {
			return db.Execute(ctx, `CREATE TABLE IF NOT EXISTS audit_events (
	id INTEGER NOT NULL,
	operation VARCHAR(64) NOT NULL,
	component_id VARCHAR(191),
	detail TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (id)
)`)
		},
	}
}

// migrationV3 は監査イベントの検索用インデックスを追加する。
// CREATE INDEXはIF NOT EXISTSが使えない環境があるため、リトライ安全にするには
// 失敗時に再実行されても壊れないDDLのみを使う。
func migrationV3(db usecase.TableIntrospector) domain.Migration {
	return domain.Migration{
		Version:     3,
		Name:        "index_audit_events_component",
		Description: "audit_eventsのcomponent_idインデックスを追加する",
		Up: func(ctx context.Context) error {
			return db.Execute(ctx, "CREATE INDEX IF NOT EXISTS idx_audit_events_component ON audit_events (component_id)")
		},
	}
}
