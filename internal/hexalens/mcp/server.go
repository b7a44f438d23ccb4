package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pmaojo/hexalens/internal/hexalens/analysis"
	"github.com/pmaojo/hexalens/internal/hexalens/audit"
	"github.com/pmaojo/hexalens/internal/hexalens/config"
	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/parser"
	"github.com/pmaojo/hexalens/internal/hexalens/store"
)

// HexalensServer exposes the analysis pipeline over MCP. It coordinates
// the frontend, analyzer and run-history store, and caches the latest
// report for the resource handlers.
type HexalensServer struct {
	Frontend *parser.Frontend
	Analyzer *analysis.Analyzer
	Store    *store.Store
	Config   *config.Config
	RootDir  string

	mu     sync.RWMutex
	report *analysis.Report
	query  *audit.Query
}

// NewServer initializes the MCP server: it loads configuration, opens the
// run-history store and runs the first analysis pass.
func NewServer(rootDir string) (*mcp.Server, *HexalensServer, error) {
	cfg, err := config.LoadConfig(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v. Using defaults.\n", err)
		defaults := config.DefaultConfig
		cfg = &defaults
	}

	st, err := store.NewStore(filepath.Join(rootDir, cfg.PersistenceDir))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init store: %w", err)
	}

	hs := &HexalensServer{
		Frontend: &parser.Frontend{ExcludedDirs: cfg.ExcludedDirs},
		Analyzer: analysis.New(cfg, nil),
		Store:    st,
		Config:   cfg,
		RootDir:  rootDir,
	}
	if _, err := hs.Reanalyze(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: initial analysis failed: %v\n", err)
	}

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "hexalens-mcp",
		Version: "0.1.0",
	}, &mcp.ServerOptions{})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "analyze",
		Description: "Re-run the full architecture analysis and report the health delta",
	}, hs.analyze)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "classify_type",
		Description: "Show the classification of one type with its evidence",
	}, hs.classifyType)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "depends_on_score",
		Description: "Count the distinct types transitively reachable from a type",
	}, hs.dependsOnScore)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "package_coupling",
		Description: "Compute afferent/efferent coupling, instability and distance for a namespace",
	}, hs.packageCoupling)

	s.AddResource(&mcp.Resource{
		Name: "health",
		URI:  "mcp://hexalens/health",
	}, hs.handleHealth)

	s.AddResource(&mcp.Resource{
		Name: "violations",
		URI:  "mcp://hexalens/violations",
	}, hs.handleViolations)

	s.AddResource(&mcp.Resource{
		Name: "classifications",
		URI:  "mcp://hexalens/classifications",
	}, hs.handleClassifications)

	s.AddResource(&mcp.Resource{
		Name: "cycles",
		URI:  "mcp://hexalens/cycles",
	}, hs.handleCycles)

	return s, hs, nil
}

// Reanalyze parses the source tree, runs the pipeline and persists the
// resulting run.
func (hs *HexalensServer) Reanalyze() (*analysis.Report, error) {
	model, err := hs.Frontend.ParseDir(hs.RootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}
	report, query := hs.Analyzer.Run(model)
	if err := hs.Store.SaveReport(report); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to persist run: %v\n", err)
	}

	hs.mu.Lock()
	hs.report = report
	hs.query = query
	hs.mu.Unlock()
	return report, nil
}

func (hs *HexalensServer) current() (*analysis.Report, *audit.Query) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	return hs.report, hs.query
}

// Tool Inputs

// EmptyInput is the input for tools that take no parameters.
type EmptyInput struct{}

// ClassifyTypeInput selects one subject by qualified name.
type ClassifyTypeInput struct {
	Subject string `json:"subject" jsonschema:"required"`
}

// DependsOnInput selects one subject by qualified name.
type DependsOnInput struct {
	Subject string `json:"subject" jsonschema:"required"`
}

// PackageCouplingInput selects one namespace.
type PackageCouplingInput struct {
	Namespace string `json:"namespace" jsonschema:"required"`
}

// Tool Handlers

func (hs *HexalensServer) analyze(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, any, error) {
	report, err := hs.Reanalyze()
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	summary := map[string]interface{}{
		"run_id":     report.RunID,
		"types":      len(report.Results),
		"violations": len(report.Violations),
		"cycles":     len(report.Cycles),
		"health":     report.Health,
		"degraded":   report.Degraded,
	}
	if prev, ok, err := hs.Store.PreviousHealth(report.RunID); err == nil && ok {
		summary["health_delta"] = report.Health.Overall - prev
	}

	jsonBytes, _ := json.MarshalIndent(summary, "", "  ")
	return textResult(string(jsonBytes)), nil, nil
}

func (hs *HexalensServer) classifyType(ctx context.Context, req *mcp.CallToolRequest, input ClassifyTypeInput) (*mcp.CallToolResult, any, error) {
	report, _ := hs.current()
	if report == nil {
		return errorResult("no analysis has run yet"), nil, nil
	}
	for _, res := range report.Results {
		if res.Subject == domain.TypeID(input.Subject) {
			jsonBytes, _ := json.MarshalIndent(res, "", "  ")
			return textResult(string(jsonBytes)), nil, nil
		}
	}
	return errorResult(fmt.Sprintf("unknown type '%s'", input.Subject)), nil, nil
}

func (hs *HexalensServer) dependsOnScore(ctx context.Context, req *mcp.CallToolRequest, input DependsOnInput) (*mcp.CallToolResult, any, error) {
	_, query := hs.current()
	if query == nil {
		return errorResult("no analysis has run yet"), nil, nil
	}
	score := query.DependsOnScore(domain.TypeID(input.Subject))
	jsonBytes, _ := json.MarshalIndent(map[string]interface{}{
		"subject":          input.Subject,
		"depends_on_score": score,
	}, "", "  ")
	return textResult(string(jsonBytes)), nil, nil
}

func (hs *HexalensServer) packageCoupling(ctx context.Context, req *mcp.CallToolRequest, input PackageCouplingInput) (*mcp.CallToolResult, any, error) {
	_, query := hs.current()
	if query == nil {
		return errorResult("no analysis has run yet"), nil, nil
	}
	metrics := query.AnalyzePackageCoupling(input.Namespace)
	jsonBytes, _ := json.MarshalIndent(map[string]interface{}{
		"namespace":    metrics.Namespace,
		"afferent":     metrics.Afferent,
		"efferent":     metrics.Efferent,
		"abstractness": metrics.Abstractness,
		"instability":  metrics.Instability(),
		"distance":     metrics.Distance(),
	}, "", "  ")
	return textResult(string(jsonBytes)), nil, nil
}

// Resource Handlers

func (hs *HexalensServer) handleHealth(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	report, _ := hs.current()
	if report == nil {
		return nil, fmt.Errorf("no analysis has run yet")
	}
	bytes, _ := json.MarshalIndent(report.Health, "", "  ")
	return resourceResult(req, string(bytes)), nil
}

func (hs *HexalensServer) handleViolations(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	report, _ := hs.current()
	if report == nil {
		return nil, fmt.Errorf("no analysis has run yet")
	}
	bytes, _ := json.MarshalIndent(report.Violations, "", "  ")
	return resourceResult(req, string(bytes)), nil
}

func (hs *HexalensServer) handleClassifications(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	report, _ := hs.current()
	if report == nil {
		return nil, fmt.Errorf("no analysis has run yet")
	}
	bytes, _ := json.MarshalIndent(report.Results, "", "  ")
	return resourceResult(req, string(bytes)), nil
}

func (hs *HexalensServer) handleCycles(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	report, _ := hs.current()
	if report == nil {
		return nil, fmt.Errorf("no analysis has run yet")
	}
	bytes, _ := json.MarshalIndent(report.Cycles, "", "  ")
	return resourceResult(req, string(bytes)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func resourceResult(req *mcp.ReadResourceRequest, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: req.Params.URI, MIMEType: "application/json", Text: text},
		},
	}
}
