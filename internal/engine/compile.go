package engine

import "github.com/harvx/rewrite/internal/plan"

// compiledOperation pairs an Operation with its pre-built matcher and
// (when applicable) its capture-expansion template, so neither is rebuilt
// per input item.
type compiledOperation struct {
	op       plan.Operation
	matcher  *matcher
	template *expandTemplate // non-nil only for Replace with Expand=true
	limit    *int            // effective limit: op.Limit, falling back to plan limit
}

// CompiledPlan holds the matchers and templates derived once from a Plan,
// shared across every InputItem the engine processes for that run.
type CompiledPlan struct {
	plan *plan.Plan
	ops  []compiledOperation
}

// Compile builds a CompiledPlan from p. planconfig.Normalize is responsible
// for having already rejected illegal combinations (Expand under literal
// mode, negative limits, malformed regex); Compile re-surfaces any regex
// compile error defensively rather than panicking.
func Compile(p *plan.Plan) (*CompiledPlan, error) {
	cp := &CompiledPlan{plan: p, ops: make([]compiledOperation, 0, len(p.Operations))}
	for _, op := range p.Operations {
		fold := ResolveCaseMode(p.Case, op.Find)
		m, err := compileMatcher(op.Find, p.Mode, fold)
		if err != nil {
			return nil, err
		}

		co := compiledOperation{op: op, matcher: m}
		if op.Limit != nil {
			co.limit = op.Limit
		} else {
			co.limit = p.Limit
		}

		if op.Type == plan.OpReplace && op.Expand {
			tmpl, err := compileExpandTemplate(op.With)
			if err != nil {
				return nil, err
			}
			co.template = tmpl
		}

		cp.ops = append(cp.ops, co)
	}
	return cp, nil
}
