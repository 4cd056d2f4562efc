package domain

import "context"

// Migration は起動時に一度だけ適用されるワンショットマイグレーションを表す。
// Upは失敗時に再実行されるため、途中で失敗しても安全にリトライできるよう書くこと。
type Migration struct {
	Version     int    // 一意なバージョン番号（昇順に適用される）
	Name        string // マイグレーション名（例: "create_app_settings"）
	Description string
	Up          func(ctx context.Context) error
}

// MigrationRunResult はRunMigrations1回分の実行結果を表す。
// Skippedには適用済みと、失敗により今回試行されなかったものの両方を含む。
type MigrationRunResult struct {
	Ran     int      `json:"ran"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// MigrationStatus は現在のマイグレーション状況の読み取り専用スナップショット。
type MigrationStatus struct {
	CurrentVersion    int `json:"current_version"`
	TotalMigrations   int `json:"total_migrations"`
	PendingMigrations int `json:"pending_migrations"`
}
