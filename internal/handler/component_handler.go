// Package handler はHTTPハンドラを提供する。
package handler

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"component-schema-service/internal/domain"
	"component-schema-service/internal/middleware"
	"component-schema-service/internal/registry"
	"component-schema-service/internal/usecase"
	"component-schema-service/pkg/httputil"
)

var componentIDRegex = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

// ComponentHandler はコンポーネントスキーマ管理のHTTPハンドラを提供する。
type ComponentHandler struct {
	registry *registry.ComponentRegistry
	service  *usecase.ComponentLifecycleService
}

// NewComponentHandler は新しいComponentHandlerを生成する。
func NewComponentHandler(reg *registry.ComponentRegistry, service *usecase.ComponentLifecycleService) *ComponentHandler {
	return &ComponentHandler{registry: reg, service: service}
}

func validateComponentID(componentID string) error {
	if componentID == "" {
		return domain.ErrInvalidComponentID
	}
	if len(componentID) > 128 {
		return domain.ErrInvalidComponentID
	}
	if !componentIDRegex.MatchString(componentID) {
		return domain.ErrInvalidComponentID
	}
	return nil
}

// ComponentResponse はコンポーネント定義のレスポンス形式。
type ComponentResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Category         string   `json:"category,omitempty"`
	EnabledByDefault bool     `json:"enabled_by_default"`
	ManagesSchema    bool     `json:"manages_schema"`
	Tables           []string `json:"tables,omitempty"`
}

// ComponentListResponse はコンポーネント一覧のレスポンス形式。
type ComponentListResponse struct {
	Components []ComponentResponse `json:"components"`
}

// DisableRequest は無効化リクエストのボディ形式。
// retain_data省略時はデータ保持（安全側）として扱う。
type DisableRequest struct {
	RetainData bool `json:"retain_data"`
}

// ListComponents は登録済みコンポーネントの一覧を返す。
func (h *ComponentHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	defs := h.registry.GetAll()
	response := ComponentListResponse{
		Components: make([]ComponentResponse, len(defs)),
	}
	for i, d := range defs {
		resp := ComponentResponse{
			ID:               d.ID,
			Name:             d.Name,
			Description:      d.Description,
			Category:         d.Category,
			EnabledByDefault: d.EnabledByDefault,
			ManagesSchema:    d.ManagesSchema,
		}
		if d.SchemaManifest != nil {
			resp.Tables = d.SchemaManifest.TableNames()
		}
		response.Components[i] = resp
	}
	httputil.JSON(w, http.StatusOK, response)
}

// GetSchemaInfo はコンポーネントのスキーマ状態スナップショットを返す。
func (h *ComponentHandler) GetSchemaInfo(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "component_id")
	if err := validateComponentID(componentID); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_COMPONENT_ID", "invalid component ID format")
		return
	}

	info, err := h.service.GetComponentSchemaInfo(r.Context(), componentID)
	if err != nil {
		if errors.Is(err, domain.ErrComponentNotFound) {
			httputil.Error(w, http.StatusNotFound, "COMPONENT_NOT_FOUND", "component is not registered")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, info)
}

// EnableSchema はコンポーネントのスキーマを有効化する。
func (h *ComponentHandler) EnableSchema(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "component_id")
	if err := validateComponentID(componentID); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_COMPONENT_ID", "invalid component ID format")
		return
	}

	result, err := h.service.EnableComponentSchema(r.Context(), componentID)
	if err != nil {
		if errors.Is(err, domain.ErrComponentNotFound) {
			middleware.WriteAuditLog(r.Context(), "ENABLE_SCHEMA", componentID, "FAILED")
			httputil.Error(w, http.StatusNotFound, "COMPONENT_NOT_FOUND", "component is not registered")
			return
		}
		middleware.WriteAuditLog(r.Context(), "ENABLE_SCHEMA", componentID, "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	if !result.Success {
		// 一部のテーブル操作が失敗。状態は保存されないため再試行可能。
		middleware.WriteAuditLog(r.Context(), "ENABLE_SCHEMA", componentID, "FAILED")
		httputil.JSON(w, http.StatusConflict, result)
		return
	}

	middleware.WriteAuditLog(r.Context(), "ENABLE_SCHEMA", componentID, "SUCCESS")
	httputil.JSON(w, http.StatusOK, result)
}

// DisableSchema はコンポーネントのスキーマを無効化する。
func (h *ComponentHandler) DisableSchema(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "component_id")
	if err := validateComponentID(componentID); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_COMPONENT_ID", "invalid component ID format")
		return
	}

	// ボディ省略・フィールド省略時はデータ保持にフォールバックする
	req := DisableRequest{RetainData: true}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "request body must be valid JSON")
		return
	}

	result, err := h.service.DisableComponentSchema(r.Context(), componentID, usecase.DisableOptions{RemoveData: !req.RetainData})
	if err != nil {
		if errors.Is(err, domain.ErrComponentNotFound) {
			middleware.WriteAuditLog(r.Context(), "DISABLE_SCHEMA", componentID, "FAILED")
			httputil.Error(w, http.StatusNotFound, "COMPONENT_NOT_FOUND", "component is not registered")
			return
		}
		middleware.WriteAuditLog(r.Context(), "DISABLE_SCHEMA", componentID, "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	if !result.Success {
		// 削除に失敗したテーブルがある場合、状態レコードは残る。
		middleware.WriteAuditLog(r.Context(), "DISABLE_SCHEMA", componentID, "FAILED")
		httputil.JSON(w, http.StatusConflict, result)
		return
	}

	middleware.WriteAuditLog(r.Context(), "DISABLE_SCHEMA", componentID, "SUCCESS")
	httputil.JSON(w, http.StatusOK, result)
}

// CheckDrift はコンポーネントのスキーマドリフトを検査する。
func (h *ComponentHandler) CheckDrift(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "component_id")
	if err := validateComponentID(componentID); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_COMPONENT_ID", "invalid component ID format")
		return
	}

	result, err := h.service.CheckComponentSchemaDrift(r.Context(), componentID)
	if err != nil {
		if errors.Is(err, domain.ErrComponentNotFound) {
			middleware.WriteAuditLog(r.Context(), "CHECK_DRIFT", componentID, "FAILED")
			httputil.Error(w, http.StatusNotFound, "COMPONENT_NOT_FOUND", "component is not registered")
			return
		}
		middleware.WriteAuditLog(r.Context(), "CHECK_DRIFT", componentID, "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "CHECK_DRIFT", componentID, "SUCCESS")
	httputil.JSON(w, http.StatusOK, result)
}
