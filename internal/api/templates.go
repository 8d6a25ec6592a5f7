package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/user/agentcatalog/internal/agent"
	"github.com/user/agentcatalog/internal/codegen"
	"github.com/user/agentcatalog/internal/query"
	"github.com/user/agentcatalog/internal/schema"
)

const errTemplateNotFound = "template not found"

type templateList struct {
	Templates []*agent.Template `json:"templates"`
	Total     int               `json:"total"`
}

// CriteriaFromQuery reads q, category, framework, tag and where. Repeated
// parameters form sets.
func CriteriaFromQuery(r *http.Request) query.Criteria {
	values := r.URL.Query()
	return query.Criteria{
		Query:      strings.TrimSpace(values.Get("q")),
		Categories: nonEmpty(values["category"]),
		Frameworks: nonEmpty(values["framework"]),
		Tags:       nonEmpty(values["tag"]),
		Where:      values.Get("where"),
	}
}

func nonEmpty(values []string) []string {
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (h *handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	matcher, err := query.Compile(CriteriaFromQuery(r))
	if err != nil {
		var exprErr *query.ExprError
		if errors.As(err, &exprErr) {
			jsonError(w, http.StatusBadRequest, exprErr.Error())
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	matched := matcher.Filter(h.catalog.All())
	jsonResponse(w, http.StatusOK, templateList{Templates: matched, Total: len(matched)})
}

func (h *handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	t := h.catalog.BySlug(r.PathValue("slug"))
	if t == nil {
		jsonError(w, http.StatusNotFound, errTemplateNotFound)
		return
	}
	jsonResponse(w, http.StatusOK, t)
}

func (h *handler) getRawTemplate(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.catalog.RawSource(r.PathValue("slug"))
	if !ok {
		jsonError(w, http.StatusNotFound, errTemplateNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(raw))
}

type generateRequest struct {
	Framework string `json:"framework"`
	Template  string `json:"template"`
	Escape    bool   `json:"escape"`
}

func (h *handler) generateCode(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Framework) == "" {
		jsonError(w, http.StatusBadRequest, "framework is required")
		return
	}

	t := h.catalog.BySlug(r.PathValue("slug"))
	if t == nil {
		jsonError(w, http.StatusNotFound, errTemplateNotFound)
		return
	}
	fw := h.frameworks.Framework(req.Framework)
	if fw == nil {
		jsonError(w, http.StatusNotFound, "framework not found")
		return
	}
	variant := fw.Template(req.Template)
	if variant == nil {
		jsonError(w, http.StatusNotFound, "framework template not found")
		return
	}

	var opts []codegen.Option
	if req.Escape {
		opts = append(opts, codegen.WithEscape(codegen.EscapeStringLiteral))
	}
	code, ok := codegen.Generate(t, fw, variant, opts...)
	if !ok {
		jsonError(w, http.StatusNotFound, "nothing to generate")
		return
	}
	h.metrics.RecordGeneration(fw.ID)
	jsonResponse(w, http.StatusOK, code)
}

func (h *handler) getFacets(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.catalog.Facets())
}

func (h *handler) listFrameworks(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.frameworks)
}

func (h *handler) getSchema(w http.ResponseWriter, r *http.Request) {
	data, err := schema.JSON()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
