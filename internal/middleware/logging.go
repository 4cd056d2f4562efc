// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"time"
)

// AuditLog は監査ログの構造体。
type AuditLog struct {
	Operation   string `json:"operation"`
	ComponentID string `json:"component_id,omitempty"`
	Result      string `json:"result"`
	Timestamp   string `json:"timestamp"`
}

// WriteAuditLog は監査ログを出力する。
func WriteAuditLog(ctx context.Context, operation string, componentID string, result string) {
	slog.InfoContext(ctx, "schema operation completed",
		"operation", operation,
		"component_id", componentID,
		"result", result,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}
