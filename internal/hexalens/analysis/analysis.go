package analysis

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pmaojo/hexalens/internal/hexalens/audit"
	"github.com/pmaojo/hexalens/internal/hexalens/classify"
	"github.com/pmaojo/hexalens/internal/hexalens/config"
	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
	"github.com/pmaojo/hexalens/internal/hexalens/semantic"
)

// Report is the complete outcome of one analysis run. It is the single
// value every reporting surface consumes.
type Report struct {
	RunID       string                        `json:"run_id"`
	StartedAt   time.Time                     `json:"started_at"`
	Duration    time.Duration                 `json:"duration"`
	Degraded    bool                          `json:"degraded"`
	Results     []domain.ClassificationResult `json:"results"`
	Anchors     []domain.AnchorResult         `json:"anchors"`
	Cycles      []domain.DependencyCycle      `json:"cycles"`
	Coupling    []domain.CouplingMetrics      `json:"coupling"`
	Lakos       domain.LakosMetrics           `json:"lakos"`
	Aggregates  []domain.AggregateInfo        `json:"aggregates"`
	Violations  []domain.Violation            `json:"violations"`
	Health      domain.HealthScore            `json:"health"`
	Diagnostics []domain.Diagnostic           `json:"diagnostics,omitempty"`
}

// Analyzer wires the classification and audit pipeline together.
type Analyzer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New builds an analyzer. A nil logger means slog.Default.
func New(cfg *config.Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// Run executes one synchronous analysis pass over the semantic model:
// graph build, anchor detection, the two classification passes, metrics,
// validators and health score. Structural faults degrade the run instead
// of aborting it.
func (a *Analyzer) Run(model *semantic.Model) (*Report, *audit.Query) {
	start := time.Now()
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: start,
	}

	g := graph.Build(model)
	report.Diagnostics = append(report.Diagnostics, g.Diagnostics()...)

	classifier := classify.NewClassifier(a.cfg.ClassifyProfile(), a.cfg.AnchorConfig())
	results := classifier.Run(g)
	report.Diagnostics = append(report.Diagnostics, results.Diagnostics...)
	report.Results = results.All()
	for _, id := range sortedAnchorIDs(results) {
		report.Anchors = append(report.Anchors, results.Anchors[id])
	}

	q := audit.NewQuery(g, results)
	q.ContextRoot = a.cfg.ContextRoot

	report.Cycles = append(report.Cycles, q.FindDependencyCycles()...)
	report.Cycles = append(report.Cycles, q.FindPackageCycles()...)
	report.Cycles = append(report.Cycles, q.FindBoundedContextCycles()...)
	report.Coupling = q.AllPackageCoupling()
	report.Lakos = q.LakosMetrics()
	report.Aggregates = q.FindAggregates()
	report.Violations = audit.RunValidators(q, audit.DefaultValidators())
	report.Health = audit.HealthCalculator{}.Calculate(q, report.Violations, report.Cycles)

	for _, d := range report.Diagnostics {
		if d.Level == domain.DiagError {
			report.Degraded = true
			break
		}
	}
	report.Duration = time.Since(start)

	a.logger.Info("analysis complete",
		"run_id", report.RunID,
		"types", g.Len(),
		"violations", len(report.Violations),
		"cycles", len(report.Cycles),
		"health", report.Health.Overall,
		"grade", report.Health.Grade,
		"degraded", report.Degraded,
		"duration", report.Duration,
	)
	return report, q
}

func sortedAnchorIDs(results *classify.Results) []domain.TypeID {
	ids := make([]domain.TypeID, 0, len(results.Anchors))
	for id := range results.Anchors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
