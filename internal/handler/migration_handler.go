package handler

import (
	"net/http"

	"component-schema-service/internal/middleware"
	"component-schema-service/internal/usecase"
	"component-schema-service/pkg/httputil"
)

// MigrationHandler はマイグレーション操作のHTTPハンドラを提供する。
type MigrationHandler struct {
	service *usecase.MigrationService
}

// NewMigrationHandler は新しいMigrationHandlerを生成する。
func NewMigrationHandler(service *usecase.MigrationService) *MigrationHandler {
	return &MigrationHandler{service: service}
}

// RunMigrations は未適用のマイグレーションを順次実行する。
func (h *MigrationHandler) RunMigrations(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RunMigrations(r.Context())
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "RUN_MIGRATIONS", "", "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	if len(result.Errors) > 0 {
		// 最初の失敗で停止済み。適用済み分のバージョンは保存されている。
		middleware.WriteAuditLog(r.Context(), "RUN_MIGRATIONS", "", "FAILED")
		httputil.JSON(w, http.StatusConflict, result)
		return
	}

	middleware.WriteAuditLog(r.Context(), "RUN_MIGRATIONS", "", "SUCCESS")
	httputil.JSON(w, http.StatusOK, result)
}

// GetMigrationStatus は現在のマイグレーション適用状況を返す。
func (h *MigrationHandler) GetMigrationStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.GetMigrationStatus(r.Context())
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	httputil.JSON(w, http.StatusOK, status)
}
