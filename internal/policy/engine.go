// Package policy decides whether a caller may read an itinerary it does
// not own. The default policy is ownership-restricted; shared-link style
// reads are a deployment decision, not a code change.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine evaluates the read-access policy.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine with the given rego content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.read_policy.allow"),
		rego.Module("read_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// ReadInput is the policy input for a single-record read.
type ReadInput struct {
	Caller      string `json:"caller"`
	Owner       string `json:"owner"`
	SharedReads bool   `json:"shared_reads"`
}

// AllowRead reports whether caller may read a record owned by owner.
// Policy failures deny: access control must not fail open.
func (e *Engine) AllowRead(ctx context.Context, input ReadInput) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}
	allow, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, nil
	}
	return allow, nil
}

// DefaultPolicy is the default read policy: owners always see their own
// records; cross-owner reads only when the deployment enables shared reads.
const DefaultPolicy = `
package read_policy

default allow = false

allow {
	input.caller == input.owner
}

allow {
	input.shared_reads
}
`
