// Package components は組み込みコンポーネント定義を提供する。
// レジストリの内容はここで静的に宣言され、起動時に一度だけ構築される。
package components

import "component-schema-service/internal/domain"

// Definitions は組み込みコンポーネント定義を返す。
func Definitions() []domain.ComponentDefinition {
	return []domain.ComponentDefinition{
		{
			ID:          "trust",
			Name:        "Trust Administration",
			Description: "信託管理機能のルートコンポーネント。自身はテーブルを所有しない。",
			Category:    "trust",
		},
		{
			ID:               "trust.providers",
			Name:             "Trust Providers",
			Description:      "給付プロバイダと担当者連絡先の管理。",
			Category:         "trust",
			EnabledByDefault: true,
			ManagesSchema:    true,
			SchemaManifest:   trustProvidersManifest(),
		},
		{
			ID:             "trust.benefits.scan",
			Name:           "Benefit Document Scanning",
			Description:    "給付書類のスキャンバッチ管理。",
			Category:       "trust",
			ManagesSchema:  true,
			SchemaManifest: benefitScanManifest(),
		},
		{
			ID:             "ledger.billing",
			Name:           "Billing Runs",
			Description:    "請求実行と明細行の台帳管理。",
			Category:       "ledger",
			ManagesSchema:  true,
			SchemaManifest: ledgerBillingManifest(),
		},
		{
			ID:               "scheduling.dispatch",
			Name:             "Dispatch Scheduling",
			Description:      "派遣スロットの管理。",
			Category:         "scheduling",
			EnabledByDefault: true,
			ManagesSchema:    true,
			SchemaManifest:   dispatchManifest(),
		},
		{
			ID:          "comms.messaging",
			Name:        "Member Messaging",
			Description: "組合員向けメッセージング。テーブルは共有基盤側が所有する。",
			Category:    "comms",
		},
	}
}

// trustProvidersManifest は明示SQL方式のマニフェスト。
func trustProvidersManifest() *domain.SchemaManifest {
	return &domain.SchemaManifest{
		Version: 1,
		Tables: []domain.TableDefinition{
			{
				Name: "trust_providers",
				CreateSQL: `CREATE TABLE IF NOT EXISTS trust_providers (
	id INTEGER NOT NULL,
	name VARCHAR(255) NOT NULL,
	tax_id VARCHAR(32),
	status VARCHAR(16) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (id)
)`,
				DropSQL: "DROP TABLE IF EXISTS trust_providers CASCADE",
			},
			{
				Name: "trust_provider_contacts",
				CreateSQL: `CREATE TABLE IF NOT EXISTS trust_provider_contacts (
	id INTEGER NOT NULL,
	provider_id INTEGER NOT NULL,
	full_name VARCHAR(255) NOT NULL,
	email VARCHAR(255),
	phone VARCHAR(32),
	PRIMARY KEY (id)
)`,
				DropSQL: "DROP TABLE IF EXISTS trust_provider_contacts CASCADE",
			},
		},
	}
}

// benefitScanManifest はカラムリスト方式のマニフェスト。
func benefitScanManifest() *domain.SchemaManifest {
	return &domain.SchemaManifest{
		Version: 2,
		Tables: []domain.TableDefinition{
			{
				Name: "benefit_scan_batches",
				Columns: []domain.ColumnDefinition{
					{Name: "id", Type: domain.ColumnTypeSerial, NotNull: true, PrimaryKey: true},
					{Name: "label", Type: domain.ColumnTypeVarchar, Length: 128, NotNull: true},
					{Name: "processed", Type: domain.ColumnTypeBoolean, NotNull: true, Default: "FALSE"},
					{Name: "created_at", Type: domain.ColumnTypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
				},
			},
			{
				Name: "benefit_scan_documents",
				Columns: []domain.ColumnDefinition{
					{Name: "id", Type: domain.ColumnTypeSerial, NotNull: true, PrimaryKey: true},
					{Name: "batch_id", Type: domain.ColumnTypeInteger, NotNull: true},
					{Name: "file_name", Type: domain.ColumnTypeVarchar, NotNull: true},
					{Name: "ocr_text", Type: domain.ColumnTypeText},
					{Name: "scanned_at", Type: domain.ColumnTypeTimestamp},
				},
			},
		},
	}
}

func ledgerBillingManifest() *domain.SchemaManifest {
	return &domain.SchemaManifest{
		Version: 1,
		Tables: []domain.TableDefinition{
			{
				Name: "ledger_billing_runs",
				Columns: []domain.ColumnDefinition{
					{Name: "id", Type: domain.ColumnTypeSerial, NotNull: true, PrimaryKey: true},
					{Name: "period", Type: domain.ColumnTypeVarchar, Length: 7, NotNull: true},
					{Name: "finalized", Type: domain.ColumnTypeBoolean, NotNull: true, Default: "FALSE"},
					{Name: "created_at", Type: domain.ColumnTypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
				},
			},
			{
				Name: "ledger_billing_lines",
				Columns: []domain.ColumnDefinition{
					{Name: "id", Type: domain.ColumnTypeSerial, NotNull: true, PrimaryKey: true},
					{Name: "run_id", Type: domain.ColumnTypeInteger, NotNull: true},
					{Name: "member_id", Type: domain.ColumnTypeInteger, NotNull: true},
					{Name: "amount_cents", Type: domain.ColumnTypeInteger, NotNull: true},
					{Name: "memo", Type: domain.ColumnTypeText},
				},
			},
		},
	}
}

func dispatchManifest() *domain.SchemaManifest {
	return &domain.SchemaManifest{
		Version: 1,
		Tables: []domain.TableDefinition{
			{
				Name: "dispatch_slots",
				Columns: []domain.ColumnDefinition{
					{Name: "id", Type: domain.ColumnTypeSerial, NotNull: true, PrimaryKey: true},
					{Name: "worker_id", Type: domain.ColumnTypeInteger, NotNull: true},
					{Name: "site", Type: domain.ColumnTypeVarchar, NotNull: true},
					{Name: "starts_at", Type: domain.ColumnTypeTimestamp, NotNull: true},
					{Name: "confirmed", Type: domain.ColumnTypeBoolean, NotNull: true, Default: "FALSE"},
				},
			},
		},
	}
}
