package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pmaojo/hexalens/internal/hexalens/analysis"
	"github.com/pmaojo/hexalens/internal/hexalens/audit"
	"github.com/pmaojo/hexalens/internal/hexalens/config"
	"github.com/pmaojo/hexalens/internal/hexalens/export"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
	"github.com/pmaojo/hexalens/internal/hexalens/mcp"
	"github.com/pmaojo/hexalens/internal/hexalens/parser"
	"github.com/pmaojo/hexalens/internal/hexalens/store"
	"github.com/pmaojo/hexalens/internal/hexalens/tui"
	"github.com/pmaojo/hexalens/internal/hexalens/watcher"
)

// main starts the Hexalens MCP server over stdio by default; the audit,
// export and tui subcommands run one-shot batch passes instead.
func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "audit":
			handleAudit(os.Args[2:])
			return
		case "export":
			handleExport(os.Args[2:])
			return
		case "tui":
			handleTUI(os.Args[2:])
			return
		}
	}

	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	fmt.Fprintf(os.Stderr, "Starting Hexalens Server in %s...\n", root)

	server, hs, err := mcp.NewServer(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		os.Exit(1)
	}

	w, err := watcher.NewWatcher(root, hs.Config, func() {
		if _, err := hs.Reanalyze(); err != nil {
			log.Printf("Re-analysis failed: %v", err)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to start file watcher: %v\n", err)
	} else {
		w.Start()
		defer w.Close()
	}

	if err := server.Run(context.Background(), &sdk.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}

// runPipeline executes one batch analysis over rootDir and returns
// everything the reporting surfaces need.
func runPipeline(rootDir string) (*config.Config, *graph.Graph, *analysis.Report, *audit.Query, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cfg, err := config.LoadConfig(absRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v. Using defaults.\n", err)
		defaults := config.DefaultConfig
		cfg = &defaults
	}

	frontend := &parser.Frontend{ExcludedDirs: cfg.ExcludedDirs}
	model, err := frontend.ParseDir(absRoot)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to parse sources: %w", err)
	}

	report, query := analysis.New(cfg, nil).Run(model)
	g := query.Graph()

	if st, err := store.NewStore(filepath.Join(absRoot, cfg.PersistenceDir)); err == nil {
		if err := st.SaveReport(report); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to persist run: %v\n", err)
		}
		st.Close()
	}

	return cfg, g, report, query, nil
}

func handleAudit(args []string) {
	auditCmd := flag.NewFlagSet("audit", flag.ExitOnError)
	asJSON := auditCmd.Bool("json", false, "Print the full report as JSON")
	auditCmd.Parse(args)

	rootDir := "."
	if auditCmd.NArg() > 0 {
		rootDir = auditCmd.Arg(0)
	}

	_, _, report, _, err := runPipeline(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Audit failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.Encode(report)
	} else {
		printSummary(report)
	}

	if report.Degraded {
		os.Exit(1)
	}
}

func printSummary(report *analysis.Report) {
	fmt.Printf("Health: %d (%s)\n", report.Health.Overall, report.Health.Grade)
	fmt.Printf("  DDD %d  Hex %d  Deps %d  Coupling %d  Cohesion %d\n",
		report.Health.DDDCompliance, report.Health.HexCompliance,
		report.Health.DependencyQuality, report.Health.Coupling, report.Health.Cohesion)
	fmt.Printf("Types: %d  Cycles: %d  Violations: %d\n",
		len(report.Results), len(report.Cycles), len(report.Violations))
	for _, v := range report.Violations {
		fmt.Printf("  [%s] %s: %s\n", v.Severity, v.Constraint, v.Message)
	}
	for _, d := range report.Diagnostics {
		fmt.Printf("  %s: %s\n", d.Level, d.Message)
	}
}

func handleExport(args []string) {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	format := exportCmd.String("format", "excalidraw", "Export format (excalidraw, json)")
	out := exportCmd.String("out", "architecture.excalidraw", "Output file path")
	exportCmd.Parse(args)

	rootDir := "."
	if exportCmd.NArg() > 0 {
		rootDir = exportCmd.Arg(0)
	}

	_, g, report, query, err := runPipeline(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exporting architecture from %s to %s (format: %s)...\n", rootDir, *out, *format)

	switch *format {
	case "excalidraw":
		err = export.ExportExcalidraw(g, query, *out)
	case "json":
		var f *os.File
		f, err = os.Create(*out)
		if err == nil {
			encoder := json.NewEncoder(f)
			encoder.SetIndent("", "  ")
			err = encoder.Encode(report)
			f.Close()
		}
	default:
		err = fmt.Errorf("unknown format %q", *format)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Export successful!")
}

func handleTUI(args []string) {
	rootDir := "."
	if len(args) > 0 {
		rootDir = args[0]
	}

	_, g, report, query, err := runPipeline(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to analyze: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(tui.NewModel(g, query, report), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
