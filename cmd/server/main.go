// Package main はAPIサーバーのエントリポイント。
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"component-schema-service/config"
	"component-schema-service/internal/components"
	"component-schema-service/internal/handler"
	"component-schema-service/internal/infra"
	"component-schema-service/internal/migrations"
	"component-schema-service/internal/registry"
	"component-schema-service/internal/repository"
	"component-schema-service/internal/usecase"
)

func main() {
	ctx := context.Background()

	// .envファイルを読み込む（存在しない場合は無視）
	// 既存の環境変数は上書きしない
	_ = godotenv.Load()

	// 設定読み込み
	cfg := config.Load()

	// ログレベル設定
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "DEBUG":
		logLevel = slog.LevelDebug
	case "WARN":
		logLevel = slog.LevelWarn
	case "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// トレーサー初期化（ロガー設定の前に実行）
	tp, err := infra.InitTracer(ctx, cfg)
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// トレース情報付きロガーを設定
	infra.SetupLogger(cfg, logLevel)

	// DB初期化
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is not set")
		os.Exit(1)
	}
	db, err := infra.NewDB(cfg.DatabaseURL, cfg)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}

	// variablesテーブルはマイグレーションのバージョン記録自体が依存するため、
	// 接続時にブートストラップする
	variableRepo := repository.NewVariableRepository(db)
	if err := variableRepo.EnsureTable(ctx); err != nil {
		slog.Error("failed to ensure variables table", "error", err)
		os.Exit(1)
	}

	// DI
	reg := registry.NewComponentRegistry(components.Definitions())
	stateRepo := repository.NewSchemaStateRepository(variableRepo)
	introspector := infra.NewGormIntrospector(db)
	lifecycleService := usecase.NewComponentLifecycleService(reg, stateRepo, introspector, cfg.DDLTimeout)
	migrationService := usecase.NewMigrationService(variableRepo, cfg.DDLTimeout)
	migrations.Register(migrationService, introspector)

	// 起動マイグレーション。失敗したらサーバーは起動しない
	result, err := migrationService.RunMigrations(ctx)
	if err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	if len(result.Errors) > 0 {
		slog.Error("migrations aborted", "errors", result.Errors)
		os.Exit(1)
	}
	slog.Info("migrations applied", "ran", result.Ran, "skipped", result.Skipped)

	// デフォルト有効コンポーネントのスキーマを有効化
	for _, def := range reg.GetAll() {
		if !def.EnabledByDefault || !def.ManagesSchema {
			continue
		}
		res, err := lifecycleService.EnableComponentSchema(ctx, def.ID)
		if err != nil {
			slog.Error("failed to enable component schema", "component_id", def.ID, "error", err)
			os.Exit(1)
		}
		if !res.Success {
			slog.Error("component schema enable incomplete", "component_id", def.ID, "error", res.Error)
			os.Exit(1)
		}
	}

	componentHandler := handler.NewComponentHandler(reg, lifecycleService)
	migrationHandler := handler.NewMigrationHandler(migrationService)
	router := handler.NewRouter(componentHandler, migrationHandler, cfg)

	// サーバー起動
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
