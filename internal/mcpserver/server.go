// Package mcpserver exposes rwx's plan-execution pipeline as a single MCP
// tool, apply_plan, over stdio, so an automated agent can submit a plan
// document and read back the structured report without shelling out to the
// CLI binary.
package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harvx/rewrite/internal/buildinfo"
	"github.com/harvx/rewrite/internal/engine"
	"github.com/harvx/rewrite/internal/plan"
	"github.com/harvx/rewrite/internal/planconfig"
	"github.com/harvx/rewrite/internal/policy"
	"github.com/harvx/rewrite/internal/resolve"
	"github.com/harvx/rewrite/internal/txn"
)

// NewServer builds the MCP server and registers apply_plan.
func NewServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rwx",
		Version: buildinfo.Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply_plan",
		Description: "Normalize and run a plan document -- the same shape rwx apply --plan reads from disk -- through rwx's resolve/engine/transaction/policy pipeline, and return the finalized report.",
	}, applyPlanHandler)

	return server
}

// ApplyPlanArgs is apply_plan's input schema: a plan document only. It
// carries none of the CLI-style scalar overrides rwx apply accepts on the
// command line.
type ApplyPlanArgs struct {
	Document planconfig.Document `json:"document" jsonschema:"the plan document to run"`
}

// ApplyPlanResult mirrors plan.Report in a wire-friendly shape.
type ApplyPlanResult struct {
	TotalItems        int                `json:"total_items"`
	TotalProcessed    int                `json:"total_processed"`
	TotalModified     int                `json:"total_modified"`
	TotalReplacements uint64             `json:"total_replacements"`
	HasErrors         bool               `json:"has_errors"`
	PolicyViolation   string             `json:"policy_violation,omitempty"`
	Committed         bool               `json:"committed"`
	DurationMS        int64              `json:"duration_ms"`
	Outcomes          []plan.ItemOutcome `json:"outcomes"`
	ExitCode          int                `json:"exit_code"`
}

func applyPlanHandler(ctx context.Context, _ *mcp.CallToolRequest, args ApplyPlanArgs) (*mcp.CallToolResult, ApplyPlanResult, error) {
	userDefaults := map[string]any{}
	if path, err := planconfig.UserConfigPath(); err == nil {
		if loaded, err := planconfig.LoadUserConfig(path); err == nil {
			userDefaults = loaded
		}
	}

	p, _, err := planconfig.Normalize(&args.Document, userDefaults, nil)
	if err != nil {
		return toolErr("E_INTERNAL", "normalizing plan: %v", err)
	}

	r, exitCode, err := runPlanForMCP(ctx, p)
	if err != nil {
		return toolErr("E_INTERNAL", "running plan: %v", err)
	}

	return nil, ApplyPlanResult{
		TotalItems:        r.TotalItems,
		TotalProcessed:    r.TotalProcessed,
		TotalModified:     r.TotalModified,
		TotalReplacements: r.TotalReplacements,
		HasErrors:         r.HasErrors,
		PolicyViolation:   r.PolicyViolation,
		Committed:         r.Committed,
		DurationMS:        r.Duration.Milliseconds(),
		Outcomes:          r.Outcomes,
		ExitCode:          int(exitCode),
	}, nil
}

func toolErr(code, format string, args ...any) (*mcp.CallToolResult, ApplyPlanResult, error) {
	r := &mcp.CallToolResult{}
	r.SetError(fmt.Errorf("[%s] %s", code, fmt.Sprintf(format, args...)))
	return r, ApplyPlanResult{}, nil
}

// runPlanForMCP runs the resolve/engine/txn/policy pipeline for a
// normalized Plan whose inputs always come from its own designator list
// (an MCP caller has no argv/stdin of its own to disambiguate), and
// returns the finalized report without emitting any NDJSON.
func runPlanForMCP(ctx context.Context, p *plan.Plan) (*plan.Report, plan.ExitCode, error) {
	start := time.Now()

	if err := policy.PreCheck(p); err != nil {
		return nil, plan.ExitPolicy, err
	}

	forcedMode, positionalFiles := designatorInputMode(p)

	res, err := resolve.Resolve(ctx, resolve.Options{
		ForcedMode:      forcedMode,
		PositionalFiles: positionalFiles,
		GlobInclude:     p.GlobInclude,
		GlobExclude:     p.GlobExclude,
	})
	if err != nil {
		return nil, plan.ExitError, err
	}

	if err := policy.CheckResolved(p, len(res.Items)); err != nil {
		return nil, plan.ExitPolicy, err
	}

	compiled, err := engine.Compile(p)
	if err != nil {
		return nil, plan.ExitError, err
	}

	r := &plan.Report{TotalItems: len(res.Items) + len(res.Skipped)}
	for _, skipped := range res.Skipped {
		r.Append(skipped)
	}

	cache := engine.NewContentCache()
	mgr := txn.NewManager(p)
	for _, item := range res.Items {
		outcome := engine.ProcessItem(item, compiled, cache)
		mgr.Apply(&outcome)
		r.Append(outcome)
	}

	violation := policy.PostCheck(p, r)
	r.PolicyViolation = violation

	transactional := false
	if p.Transaction == plan.TransactionAll {
		if violation != "" || r.HasErrors {
			_ = mgr.DiscardAll()
		} else if err := mgr.CommitAll(); err != nil {
			transactional = true
		} else {
			r.Committed = p.Safety.Writes()
		}
	} else {
		r.Committed = p.Safety.Writes() && violation == "" && !r.HasErrors
	}

	r.Duration = time.Since(start)
	return r, plan.ExitCodeFor(r, transactional), nil
}

func designatorInputMode(p *plan.Plan) (plan.InputMode, []string) {
	var paths []string
	for _, d := range p.Inputs {
		switch d.Kind {
		case plan.DesignatorStdinText:
			return plan.InputStdinText, nil
		case plan.DesignatorMatchStream:
			return plan.InputRgJSON, nil
		case plan.DesignatorStdinPaths:
			return plan.InputStdinPaths, nil
		case plan.DesignatorPath:
			paths = append(paths, d.Path)
		}
	}
	return plan.InputArgs, paths
}
