package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"component-schema-service/config"
)

// NewRouter はルーターを生成する。
func NewRouter(ch *ComponentHandler, mh *MigrationHandler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// ミドルウェア
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	// ルート定義
	r.Route("/v1/components", func(r chi.Router) {
		r.Get("/", ch.ListComponents)
		r.Route("/{component_id}/schema", func(r chi.Router) {
			r.Get("/", ch.GetSchemaInfo)
			r.Post("/enable", ch.EnableSchema)
			r.Post("/disable", ch.DisableSchema)
			r.Post("/drift", ch.CheckDrift)
		})
	})
	r.Route("/v1/migrations", func(r chi.Router) {
		r.Post("/run", mh.RunMigrations)
		r.Get("/status", mh.GetMigrationStatus)
	})

	if cfg.OtelEnabled {
		return otelhttp.NewHandler(r, "component-schema-service")
	}
	return r
}
