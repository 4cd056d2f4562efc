// Package usecase はアプリケーションのユースケースを実装する。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"component-schema-service/internal/domain"
	"component-schema-service/internal/registry"
)

// SchemaStateRepository はスキーマ状態の永続化インターフェース。
type SchemaStateRepository interface {
	Get(ctx context.Context, componentID string) (*domain.ComponentSchemaState, error)
	Save(ctx context.Context, componentID string, state *domain.ComponentSchemaState) error
	Delete(ctx context.Context, componentID string) error
}

// TableIntrospector はテーブル存在確認と生DDL実行のインターフェース。
type TableIntrospector interface {
	TableExists(ctx context.Context, name string) (bool, error)
	Execute(ctx context.Context, sql string) error
}

// DisableOptions は無効化操作のオプション。
// ゼロ値はデータ保持（DDLを発行せず状態も残す）。
// RemoveDataを明示した場合のみテーブルをドロップする。
type DisableOptions struct {
	RemoveData bool
}

// ComponentLifecycleService はコンポーネントスキーマの
// 有効化・無効化・ドリフトチェックを提供する。
//
// 操作は内部でロックしない。同一コンポーネントへの並行呼び出しは
// 呼び出し側で直列化すること（起動時の単一リーダー実行など）。
type ComponentLifecycleService struct {
	registry     *registry.ComponentRegistry
	stateRepo    SchemaStateRepository
	introspector TableIntrospector
	ddlTimeout   time.Duration
}

// NewComponentLifecycleService は新しいComponentLifecycleServiceを生成する。
// ddlTimeoutはDDL・状態ストア呼び出し1回あたりの上限（0なら無制限）。
func NewComponentLifecycleService(reg *registry.ComponentRegistry, stateRepo SchemaStateRepository, introspector TableIntrospector, ddlTimeout time.Duration) *ComponentLifecycleService {
	return &ComponentLifecycleService{
		registry:     reg,
		stateRepo:    stateRepo,
		introspector: introspector,
		ddlTimeout:   ddlTimeout,
	}
}

// opContext はDDL・ストア呼び出し1回分のコンテキストを導出する。
func (s *ComponentLifecycleService) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.ddlTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.ddlTimeout)
}

// lookupSchemaComponent はコンポーネント定義を解決する。
// 未登録ならErrComponentNotFound。スキーマを管理しない場合はマニフェストnilを返す。
func (s *ComponentLifecycleService) lookupSchemaComponent(componentID string) (*domain.ComponentDefinition, *domain.SchemaManifest, error) {
	def := s.registry.GetByID(componentID)
	if def == nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrComponentNotFound, componentID)
	}
	if !def.ManagesSchema || def.SchemaManifest == nil {
		return def, nil, nil
	}
	return def, def.SchemaManifest, nil
}

// tableExists はタイムアウト付きでテーブル存在を確認する。
func (s *ComponentLifecycleService) tableExists(ctx context.Context, name string) (bool, error) {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	return s.introspector.TableExists(opCtx, name)
}

// execute はタイムアウト付きでDDLを実行する。
func (s *ComponentLifecycleService) execute(ctx context.Context, sql string) error {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	return s.introspector.Execute(opCtx, sql)
}

// EnableComponentSchema はコンポーネントが所有する全テーブルを作成し、
// 全テーブル操作が成功した場合のみスキーマ状態を永続化する。
//
// テーブル単位の失敗は収集して続行する（途中で打ち切らない）。
// 部分的に作成されたテーブルは状態に記録されず、次回のドリフトチェックで検出される。
func (s *ComponentLifecycleService) EnableComponentSchema(ctx context.Context, componentID string) (*domain.ComponentLifecycleResult, error) {
	_, manifest, err := s.lookupSchemaComponent(componentID)
	if err != nil {
		return nil, err
	}

	result := &domain.ComponentLifecycleResult{ComponentID: componentID}

	// スキーマを管理しないコンポーネントの有効化はこの層では何もしない
	if manifest == nil {
		result.Success = true
		return result, nil
	}

	now := time.Now().UTC()
	var tableStates []domain.ComponentTableState
	failed := 0

	for i := range manifest.Tables {
		table := &manifest.Tables[i]
		op := domain.SchemaOperation{TableName: table.Name, Type: domain.SchemaOperationCreate}

		if err := s.createTable(ctx, table); err != nil {
			op.Error = err.Error()
			failed++
			slog.ErrorContext(ctx, "failed to create component table",
				"operation", "enable_component_schema",
				"component_id", componentID,
				"table", table.Name,
				"error", err,
			)
		} else {
			op.Success = true
			tableStates = append(tableStates, domain.ComponentTableState{
				TableName: table.Name,
				Status:    domain.TableStatusActive,
				AppliedAt: now,
				Checksum:  table.Checksum(manifest.Version),
			})
		}
		result.Operations = append(result.Operations, op)
	}

	// 原子性ポリシー: 全テーブルが成功した場合のみ状態を保存する。
	// 物理DDLはテーブル横断のトランザクションを持たないため、
	// 保存された状態を「完全成功」の唯一の根拠とする。
	if failed > 0 {
		result.Error = fmt.Sprintf("%d of %d table operations failed", failed, len(manifest.Tables))
		return result, nil
	}

	state := &domain.ComponentSchemaState{
		ManifestVersion: manifest.Version,
		LastSyncedAt:    now,
		Tables:          tableStates,
	}
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.stateRepo.Save(opCtx, componentID, state); err != nil {
		result.Error = fmt.Sprintf("saving schema state: %v", err)
		return result, nil
	}

	result.Success = true
	result.SchemaState = state
	return result, nil
}

// createTable はテーブルが存在しなければ作成し、作成後の存在を検証する。
func (s *ComponentLifecycleService) createTable(ctx context.Context, table *domain.TableDefinition) error {
	exists, err := s.tableExists(ctx, table.Name)
	if err != nil {
		return fmt.Errorf("checking table existence: %w", err)
	}
	if exists {
		return nil
	}

	createSQL, err := table.BuildCreateSQL()
	if err != nil {
		return err
	}
	if err := s.execute(ctx, createSQL); err != nil {
		return fmt.Errorf("executing create: %w", err)
	}

	// 作成したはずのテーブルが存在しなければ失敗として扱う
	exists, err = s.tableExists(ctx, table.Name)
	if err != nil {
		return fmt.Errorf("verifying table existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: table %s does not exist after create", domain.ErrSchemaOperationFailed, table.Name)
	}
	return nil
}

// DisableComponentSchema はコンポーネントのスキーマを無効化する。
//
// デフォルト（RemoveData=false）ではDDLを発行せず、状態レコードも削除しない。
// RemoveData=trueの場合は存在するテーブルをドロップし、
// 全ドロップが成功した場合のみ状態レコードを削除する。
func (s *ComponentLifecycleService) DisableComponentSchema(ctx context.Context, componentID string, opts DisableOptions) (*domain.ComponentLifecycleResult, error) {
	_, manifest, err := s.lookupSchemaComponent(componentID)
	if err != nil {
		return nil, err
	}

	result := &domain.ComponentLifecycleResult{ComponentID: componentID}

	if manifest == nil {
		result.Success = true
		return result, nil
	}

	if !opts.RemoveData {
		// ソフト無効化: 状態はそのままテーブルを記述し続ける
		for _, name := range manifest.TableNames() {
			result.Operations = append(result.Operations, domain.SchemaOperation{
				TableName: name,
				Type:      domain.SchemaOperationRetain,
				Success:   true,
			})
		}
		opCtx, cancel := s.opContext(ctx)
		defer cancel()
		state, err := s.stateRepo.Get(opCtx, componentID)
		if err != nil {
			result.Error = fmt.Sprintf("getting schema state: %v", err)
			return result, nil
		}
		result.Success = true
		result.SchemaState = state
		return result, nil
	}

	failed := 0
	for i := range manifest.Tables {
		table := &manifest.Tables[i]
		op := domain.SchemaOperation{TableName: table.Name, Type: domain.SchemaOperationDrop}

		if err := s.dropTable(ctx, table); err != nil {
			op.Error = err.Error()
			failed++
			slog.ErrorContext(ctx, "failed to drop component table",
				"operation", "disable_component_schema",
				"component_id", componentID,
				"table", table.Name,
				"error", err,
			)
		} else {
			op.Success = true
		}
		result.Operations = append(result.Operations, op)
	}

	// 部分失敗時は状態を残し、リトライで残りのテーブルを片付けられるようにする
	if failed > 0 {
		result.Error = fmt.Sprintf("%d of %d table operations failed", failed, len(manifest.Tables))
		return result, nil
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.stateRepo.Delete(opCtx, componentID); err != nil {
		result.Error = fmt.Sprintf("deleting schema state: %v", err)
		return result, nil
	}

	result.Success = true
	return result, nil
}

// dropTable はテーブルが存在すればドロップする。存在しなければ何もしない。
func (s *ComponentLifecycleService) dropTable(ctx context.Context, table *domain.TableDefinition) error {
	exists, err := s.tableExists(ctx, table.Name)
	if err != nil {
		return fmt.Errorf("checking table existence: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.execute(ctx, table.BuildDropSQL()); err != nil {
		return fmt.Errorf("executing drop: %w", err)
	}
	return nil
}

// CheckComponentSchemaDrift はマニフェスト宣言の各テーブルについて、
// 追跡ステータスと物理的な存在を突き合わせる。
//
// 観測のみで状態のテーブルエントリは書き換えない。
// 状態レコードが存在する場合のみ、最新のドリフトを書き戻す。
func (s *ComponentLifecycleService) CheckComponentSchemaDrift(ctx context.Context, componentID string) (*domain.DriftCheckResult, error) {
	_, manifest, err := s.lookupSchemaComponent(componentID)
	if err != nil {
		return nil, err
	}

	result := &domain.DriftCheckResult{
		ComponentID: componentID,
		Drift:       domain.ComponentSchemaDrift{LastCheckAt: time.Now().UTC()},
	}

	if manifest == nil {
		return result, nil
	}

	opCtx, cancel := s.opContext(ctx)
	state, err := s.stateRepo.Get(opCtx, componentID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("getting schema state: %w", err)
	}

	for _, name := range manifest.TableNames() {
		exists, err := s.tableExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("checking table existence: %w", err)
		}

		status, tracked := state.TableStatusByName(name)
		trackedActive := tracked && status == domain.TableStatusActive

		switch {
		case trackedActive && !exists:
			result.Drift.HasMissingTables = true
			result.Drift.Details = append(result.Drift.Details,
				fmt.Sprintf("table %s is tracked as active but does not exist", name))
		case !trackedActive && exists:
			result.Drift.HasUnexpectedTables = true
			result.Drift.Details = append(result.Drift.Details,
				fmt.Sprintf("table %s exists but is not tracked as active", name))
		}
	}

	// 状態レコードがない場合はドリフトの計算結果のみ返し、何も永続化しない
	if state != nil {
		drift := result.Drift
		state.Drift = &drift
		opCtx, cancel := s.opContext(ctx)
		defer cancel()
		if err := s.stateRepo.Save(opCtx, componentID, state); err != nil {
			return nil, fmt.Errorf("saving schema state: %w", err)
		}
		result.SchemaState = state
	}

	return result, nil
}

// GetComponentSchemaInfo は表示用の読み取り専用スナップショットを返す。副作用なし。
func (s *ComponentLifecycleService) GetComponentSchemaInfo(ctx context.Context, componentID string) (*domain.ComponentSchemaInfo, error) {
	_, manifest, err := s.lookupSchemaComponent(componentID)
	if err != nil {
		return nil, err
	}

	info := &domain.ComponentSchemaInfo{ComponentID: componentID}
	if manifest == nil {
		return info, nil
	}

	info.HasSchema = true
	info.Tables = manifest.TableNames()

	opCtx, cancel := s.opContext(ctx)
	state, err := s.stateRepo.Get(opCtx, componentID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("getting schema state: %w", err)
	}
	info.SchemaState = state

	info.TablesExist = make([]bool, len(info.Tables))
	for i, name := range info.Tables {
		exists, err := s.tableExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("checking table existence: %w", err)
		}
		info.TablesExist[i] = exists
	}

	return info, nil
}
