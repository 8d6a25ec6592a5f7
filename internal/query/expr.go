package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/user/agentcatalog/internal/agent"
)

// ExprError reports a where-expression that failed to compile.
type ExprError struct {
	Source string
	Err    error
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("invalid where expression %q: %v", e.Source, e.Err)
}

func (e *ExprError) Unwrap() error {
	return e.Err
}

// Matcher is compiled Criteria. The Where expression sees each template the
// way the JSON API renders it, e.g.
//
//	settings.reasoning_level == "mandatory" && len(tools.recommended_tools) > 0
type Matcher struct {
	criteria Criteria
	program  *vm.Program
}

func Compile(c Criteria) (*Matcher, error) {
	c.Where = strings.TrimSpace(c.Where)
	m := &Matcher{criteria: c}
	if c.Where == "" {
		return m, nil
	}
	program, err := expr.Compile(c.Where, expr.AsBool())
	if err != nil {
		return nil, &ExprError{Source: c.Where, Err: err}
	}
	m.program = program
	return m, nil
}

func (m *Matcher) Criteria() Criteria {
	return m.criteria
}

// Filter applies the facet criteria first and the expression to the
// survivors. A record whose evaluation fails at runtime does not match.
func (m *Matcher) Filter(records []*agent.Template) []*agent.Template {
	matched := filterFacets(records, m.criteria)
	if m.program == nil {
		return matched
	}
	out := matched[:0]
	for _, r := range matched {
		if m.eval(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *Matcher) Match(r *agent.Template) bool {
	return r != nil && matchFacets(r, m.criteria) && (m.program == nil || m.eval(r))
}

func (m *Matcher) eval(r *agent.Template) bool {
	env, err := exprEnv(r)
	if err != nil {
		return false
	}
	result, err := expr.Run(m.program, env)
	if err != nil {
		return false
	}
	ok, _ := result.(bool)
	return ok
}

func exprEnv(r *agent.Template) (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	env := map[string]any{}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env, nil
}
