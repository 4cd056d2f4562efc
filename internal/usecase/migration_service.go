package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"component-schema-service/internal/domain"
)

// migrationVersionVariable は適用済みバージョンを記録する変数レコード名。
const migrationVersionVariable = "migrations_version"

// VariableStore はマイグレーションバージョンの永続化に使う変数ストアのインターフェース。
type VariableStore interface {
	GetByName(ctx context.Context, name string) (*domain.Variable, error)
	Create(ctx context.Context, variable *domain.Variable) error
	Update(ctx context.Context, id string, value json.RawMessage) error
}

// MigrationService はワンショット起動マイグレーションを
// バージョン昇順に一度ずつ適用するランナー。
//
// 登録はプロセス起動時にRunMigrationsより前に行うこと。内部ロックは持たない。
type MigrationService struct {
	vars       VariableStore
	migrations []domain.Migration
	ddlTimeout time.Duration
}

// NewMigrationService は新しいMigrationServiceを生成する。
// ddlTimeoutはマイグレーション・ストア呼び出し1回あたりの上限（0なら無制限）。
func NewMigrationService(vars VariableStore, ddlTimeout time.Duration) *MigrationService {
	return &MigrationService{vars: vars, ddlTimeout: ddlTimeout}
}

func (s *MigrationService) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.ddlTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.ddlTimeout)
}

// RegisterMigration はマイグレーションを登録する。
// 登録順は問わず、登録のたびにバージョン昇順へ並べ直す。
// バージョン重複の検証は行わない（重複時の適用順は登録順に依存する）。
func (s *MigrationService) RegisterMigration(migration domain.Migration) {
	s.migrations = append(s.migrations, migration)
	sort.SliceStable(s.migrations, func(i, j int) bool {
		return s.migrations[i].Version < s.migrations[j].Version
	})
}

// GetMigrations は登録済みマイグレーションのコピーをバージョン昇順で返す。
func (s *MigrationService) GetMigrations() []domain.Migration {
	result := make([]domain.Migration, len(s.migrations))
	copy(result, s.migrations)
	return result
}

// currentVersion は適用済みバージョンを取得する。レコードがなければ0。
// 2番目の戻り値は既存レコードのID（なければ空文字）。
func (s *MigrationService) currentVersion(ctx context.Context) (int, string, error) {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	variable, err := s.vars.GetByName(opCtx, migrationVersionVariable)
	if err != nil {
		return 0, "", fmt.Errorf("getting migration version: %w", err)
	}
	if variable == nil {
		return 0, "", nil
	}

	var version int
	if err := json.Unmarshal(variable.Value, &version); err != nil {
		return 0, "", fmt.Errorf("unmarshaling migration version: %w", err)
	}
	return version, variable.ID, nil
}

// saveVersion は適用済みバージョンを永続化する。
// 既存レコードがあれば更新し、なければ新規作成してIDを返す。
func (s *MigrationService) saveVersion(ctx context.Context, recordID string, version int) (string, error) {
	value, err := json.Marshal(version)
	if err != nil {
		return recordID, fmt.Errorf("marshaling migration version: %w", err)
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	if recordID != "" {
		if err := s.vars.Update(opCtx, recordID, value); err != nil {
			return recordID, fmt.Errorf("updating migration version: %w", err)
		}
		return recordID, nil
	}

	variable := &domain.Variable{Name: migrationVersionVariable, Value: value}
	if err := s.vars.Create(opCtx, variable); err != nil {
		return "", fmt.Errorf("creating migration version: %w", err)
	}
	return variable.ID, nil
}

// RunMigrations は未適用マイグレーションをバージョン昇順に1件ずつ適用する。
//
// 成功するたびにそのマイグレーションのバージョンを記録してから次へ進む。
// 最初の失敗で即座に打ち切り、失敗したバージョンは記録しない
// （次回のRunMigrationsで同じ地点からリトライされる）。
func (s *MigrationService) RunMigrations(ctx context.Context) (*domain.MigrationRunResult, error) {
	current, recordID, err := s.currentVersion(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.MigrationRunResult{}
	var pending []domain.Migration
	for _, m := range s.migrations {
		if m.Version > current {
			pending = append(pending, m)
		} else {
			result.Skipped++
		}
	}

	if len(pending) == 0 {
		return result, nil
	}

	for i, migration := range pending {
		if i > 0 && pending[i-1].Version == migration.Version {
			slog.WarnContext(ctx, "duplicate migration version registered",
				"operation", "run_migrations",
				"version", migration.Version,
				"name", migration.Name,
			)
		}

		slog.InfoContext(ctx, "applying migration",
			"operation", "run_migrations",
			"version", migration.Version,
			"name", migration.Name,
		)

		opCtx, cancel := s.opContext(ctx)
		err := migration.Up(opCtx)
		cancel()
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Migration %d (%s) failed: %v", migration.Version, migration.Name, err))
			result.Skipped += len(pending) - i
			slog.ErrorContext(ctx, "migration failed",
				"operation", "run_migrations",
				"version", migration.Version,
				"name", migration.Name,
				"error", err,
			)
			return result, nil
		}

		// バージョンは一括ではなく1件ずつ前進させる
		recordID, err = s.saveVersion(ctx, recordID, migration.Version)
		if err != nil {
			// マイグレーション自体は成功しているため、失敗として報告しない。
			// バージョンは未記録なので、次回は同じマイグレーションから再実行される
			result.Ran++
			result.Errors = append(result.Errors,
				fmt.Sprintf("Migration %d (%s) succeeded but recording its version failed: %v", migration.Version, migration.Name, err))
			result.Skipped += len(pending) - i - 1
			slog.ErrorContext(ctx, "failed to record migration version",
				"operation", "run_migrations",
				"version", migration.Version,
				"name", migration.Name,
				"error", err,
			)
			return result, nil
		}
		result.Ran++
	}

	return result, nil
}

// GetMigrationStatus は現在のマイグレーション状況を返す。副作用なし。
func (s *MigrationService) GetMigrationStatus(ctx context.Context) (*domain.MigrationStatus, error) {
	current, _, err := s.currentVersion(ctx)
	if err != nil {
		return nil, err
	}

	pending := 0
	for _, m := range s.migrations {
		if m.Version > current {
			pending++
		}
	}

	return &domain.MigrationStatus{
		CurrentVersion:    current,
		TotalMigrations:   len(s.migrations),
		PendingMigrations: pending,
	}, nil
}
