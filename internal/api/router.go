// Package api serves the catalog, its facets and code generation over JSON.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/user/agentcatalog/internal/agent"
	"github.com/user/agentcatalog/internal/codegen"
	"github.com/user/agentcatalog/internal/registry"
	"github.com/user/agentcatalog/internal/telemetry"
)

// Catalog is the read side of the template repository.
type Catalog interface {
	All() []*agent.Template
	BySlug(slug string) *agent.Template
	RawSource(slug string) (string, bool)
	Facets() registry.Facets
}

type handler struct {
	catalog    Catalog
	frameworks *codegen.FrameworksConfig
	metrics    *telemetry.Metrics
}

// NewRouter mounts the /api routes. metrics may be nil.
func NewRouter(catalog Catalog, frameworks *codegen.FrameworksConfig, metrics *telemetry.Metrics) http.Handler {
	if frameworks == nil {
		frameworks = &codegen.FrameworksConfig{Frameworks: []codegen.Framework{}}
	}
	handler := &handler{
		catalog:    catalog,
		frameworks: frameworks,
		metrics:    metrics,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/templates", handler.listTemplates)
	mux.HandleFunc("GET /api/templates/{slug}", handler.getTemplate)
	mux.HandleFunc("GET /api/templates/{slug}/raw", handler.getRawTemplate)
	mux.HandleFunc("POST /api/templates/{slug}/generate", handler.generateCode)

	mux.HandleFunc("GET /api/facets", handler.getFacets)
	mux.HandleFunc("GET /api/frameworks", handler.listFrameworks)
	mux.HandleFunc("GET /api/schema", handler.getSchema)

	return jsonMiddleware(corsMiddleware(mux))
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return io.ErrUnexpectedEOF
	}
	return nil
}
