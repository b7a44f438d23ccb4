package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pmaojo/hexalens/internal/hexalens/analysis"
	"github.com/pmaojo/hexalens/internal/hexalens/config"
	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/parser"
)

// TestHexalens runs an integration test over the fixture tree.
// It verifies that:
// 1. Go sources are parsed into a semantic model.
// 2. The classifier assigns DDD and port roles.
// 3. The domain-to-infrastructure leak in order.go is reported.
func TestHexalens(t *testing.T) {
	cwd, _ := os.Getwd()
	testRoot := filepath.Join(cwd, "testdata")

	frontend := &parser.Frontend{}
	model, err := frontend.ParseDir(testRoot)
	if err != nil {
		t.Fatalf("ParseDir failed: %v", err)
	}
	if len(model.Types) == 0 {
		t.Fatal("expected types in the fixture tree")
	}

	cfg := config.DefaultConfig
	report, query := analysis.New(&cfg, nil).Run(model)

	// Check classification
	byID := make(map[string]domain.ClassificationResult)
	for _, res := range report.Results {
		byID[string(res.Subject)] = res
	}
	if res := byID["shop/order.Order"]; res.Kind != string(domain.KindAggregateRoot) {
		t.Errorf("expected shop/order.Order to be an AGGREGATE_ROOT, got %q (%s)", res.Kind, res.Status)
	}
	if res := byID["shop/order.OrderRepository"]; res.Kind != string(domain.PortRepository) {
		t.Errorf("expected shop/order.OrderRepository to be a REPOSITORY port, got %q", res.Kind)
	}
	if res := byID["shop/order.OrderService"]; res.Kind != string(domain.KindApplicationService) {
		t.Errorf("expected shop/order.OrderService to be an APPLICATION_SERVICE, got %q", res.Kind)
	}

	// Check layers
	if layer := query.LayerOf("shop/persistence.SqlOrderStore"); layer != "infrastructure" {
		t.Errorf("expected SqlOrderStore in the infrastructure layer, got %q", layer)
	}

	// Check violation: Order holds a persistence row type
	found := false
	for _, v := range report.Violations {
		if v.Constraint == "dependency-direction" &&
			strings.Contains(v.Message, "shop/order.Order") &&
			strings.Contains(v.Message, "shop/persistence.OrderRow") {
			if v.Severity != domain.SeverityBlocker {
				t.Errorf("expected a BLOCKER, got %s", v.Severity)
			}
			found = true
			break
		}
	}
	if !found {
		t.Error("expected dependency-direction violation from shop/order.Order to shop/persistence.OrderRow")
	}

	// Health must reflect the findings without leaving [0,100]
	if report.Health.Overall < 0 || report.Health.Overall > 100 {
		t.Errorf("health out of range: %d", report.Health.Overall)
	}
	if report.Health.Grade == "" {
		t.Error("expected a letter grade")
	}
	if report.Degraded {
		t.Errorf("run degraded unexpectedly: %+v", report.Diagnostics)
	}
}
