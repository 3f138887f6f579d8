// Package policy evaluates role requirements with an embedded Rego module.
package policy

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

const query = "data.grc.authz.allow"

//go:embed authz.rego
var module string

type Engine struct {
	prepared rego.PreparedEvalQuery
}

// NewEngine compiles the authorization module. A custom module replaces the
// embedded one and must define the same decision.
func NewEngine(ctx context.Context, custom string) (*Engine, error) {
	src := module
	if custom != "" {
		src = custom
	}
	prepared, err := rego.New(
		rego.Query(query),
		rego.Module("authz.rego", src),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile authorization policy: %w", err)
	}
	return &Engine{prepared: prepared}, nil
}

// Allowed reports whether a user holding roles satisfies required.
func (e *Engine) Allowed(ctx context.Context, roles, required []string) (bool, error) {
	if roles == nil {
		roles = []string{}
	}
	if required == nil {
		required = []string{}
	}
	results, err := e.prepared.Eval(ctx, rego.EvalInput(map[string]any{
		"roles":    roles,
		"required": required,
	}))
	if err != nil {
		return false, fmt.Errorf("evaluate authorization policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("evaluate authorization policy: unexpected result type %T", results[0].Expressions[0].Value)
	}
	return allowed, nil
}
