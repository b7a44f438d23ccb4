package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmaojo/hexalens/internal/hexalens/classify"
	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
	"github.com/pmaojo/hexalens/internal/hexalens/semantic"
)

// layeredQuery builds a fully classified slice: a domain entity leaking
// into a JPA-style row type, a repository port with its adapter, and the
// application service using the port.
func layeredQuery() *Query {
	g := graph.Build(&semantic.Model{Types: []semantic.TypeInfo{
		classType("shop.order.Order", "shop.order", "shop.persistence.OrderRow"),
		classType("shop.persistence.OrderRow", "shop.persistence"),
		semantic.TypeInfo{
			Qualified: "shop.order.OrderRepository",
			Simple:    "OrderRepository",
			Namespace: "shop.order",
			Kind:      domain.DeclInterface,
		},
		classType("shop.persistence.SqlOrderRepository", "shop.persistence", "shop.order.OrderRepository"),
		classType("shop.order.OrderService", "shop.order", "shop.order.OrderRepository"),
	}})
	results := &classify.Results{
		ByID: map[domain.TypeID]domain.ClassificationResult{
			"shop.order.Order": {Subject: "shop.order.Order", Target: domain.TargetDomain,
				Status: domain.StatusClassified, Kind: string(domain.KindEntity)},
			"shop.order.OrderRepository": {Subject: "shop.order.OrderRepository", Target: domain.TargetPort,
				Status: domain.StatusClassified, Kind: string(domain.PortRepository),
				Direction: domain.DirectionDriven},
			"shop.order.OrderService": {Subject: "shop.order.OrderService", Target: domain.TargetDomain,
				Status: domain.StatusClassified, Kind: string(domain.KindApplicationService)},
		},
		Anchors: map[domain.TypeID]domain.AnchorResult{
			"shop.persistence.OrderRow":           {Type: "shop.persistence.OrderRow", Kind: domain.AnchorInfra},
			"shop.persistence.SqlOrderRepository": {Type: "shop.persistence.SqlOrderRepository", Kind: domain.AnchorInfra},
		},
	}
	return NewQuery(g, results)
}

func TestDependencyDirectionValidator(t *testing.T) {
	q := layeredQuery()
	violations := dependencyDirectionValidator{}.Validate(q)

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, "dependency-direction", v.Constraint)
	assert.Equal(t, domain.SeverityBlocker, v.Severity)
	assert.Equal(t, []domain.TypeID{"shop.order.Order", "shop.persistence.OrderRow"}, v.Types)
	assert.Contains(t, v.Message, "shop.order.Order")
	assert.Contains(t, v.Message, "shop.persistence.OrderRow")
}

func TestPortValidatorsOnCoveredPort(t *testing.T) {
	q := layeredQuery()

	// The port has an infra adapter, is an interface, and the
	// application service uses it.
	assert.Empty(t, portCoverageValidator{}.Validate(q))
	assert.Empty(t, portIsInterfaceValidator{}.Validate(q))
	assert.Empty(t, portDirectionValidator{}.Validate(q))
}

func TestPortCoverageValidatorFlagsUncoveredPort(t *testing.T) {
	g := graph.Build(&semantic.Model{Types: []semantic.TypeInfo{
		semantic.TypeInfo{
			Qualified: "shop.order.OrderRepository",
			Simple:    "OrderRepository",
			Namespace: "shop.order",
			Kind:      domain.DeclInterface,
		},
		classType("shop.order.OrderService", "shop.order", "shop.order.OrderRepository"),
	}})
	results := &classify.Results{
		ByID: map[domain.TypeID]domain.ClassificationResult{
			"shop.order.OrderRepository": {Subject: "shop.order.OrderRepository", Target: domain.TargetPort,
				Status: domain.StatusClassified, Kind: string(domain.PortRepository),
				Direction: domain.DirectionDriven},
			"shop.order.OrderService": {Subject: "shop.order.OrderService", Target: domain.TargetDomain,
				Status: domain.StatusClassified, Kind: string(domain.KindApplicationService)},
		},
		Anchors: map[domain.TypeID]domain.AnchorResult{},
	}
	q := NewQuery(g, results)

	violations := portCoverageValidator{}.Validate(q)
	require.Len(t, violations, 1)
	assert.Equal(t, "port-coverage", violations[0].Constraint)
	assert.Equal(t, domain.SeverityMajor, violations[0].Severity)
	assert.Equal(t, []domain.TypeID{"shop.order.OrderRepository"}, violations[0].Types)
}

func TestPortIsInterfaceValidatorFlagsPinnedClass(t *testing.T) {
	g := graph.Build(&semantic.Model{Types: []semantic.TypeInfo{
		classType("shop.order.OrderGateway", "shop.order"),
	}})
	results := &classify.Results{
		ByID: map[domain.TypeID]domain.ClassificationResult{
			"shop.order.OrderGateway": {Subject: "shop.order.OrderGateway", Target: domain.TargetPort,
				Status: domain.StatusClassified, Kind: string(domain.PortGateway),
				Direction: domain.DirectionDriven},
		},
		Anchors: map[domain.TypeID]domain.AnchorResult{},
	}
	q := NewQuery(g, results)

	violations := portIsInterfaceValidator{}.Validate(q)
	require.Len(t, violations, 1)
	assert.Equal(t, "port-is-interface", violations[0].Constraint)
	assert.Equal(t, domain.SeverityCritical, violations[0].Severity)
	assert.Contains(t, violations[0].Message, "class")
}

func TestPortDirectionValidatorAcceptsCoLocatedDrivingPort(t *testing.T) {
	g := graph.Build(&semantic.Model{Types: []semantic.TypeInfo{
		semantic.TypeInfo{
			Qualified: "shop.order.PlaceOrderUseCase",
			Simple:    "PlaceOrderUseCase",
			Namespace: "shop.order",
			Kind:      domain.DeclInterface,
		},
		classType("shop.order.OrderService", "shop.order"),
	}})
	results := &classify.Results{
		ByID: map[domain.TypeID]domain.ClassificationResult{
			"shop.order.PlaceOrderUseCase": {Subject: "shop.order.PlaceOrderUseCase", Target: domain.TargetPort,
				Status: domain.StatusClassified, Kind: string(domain.PortUseCase),
				Direction: domain.DirectionDriving},
			"shop.order.OrderService": {Subject: "shop.order.OrderService", Target: domain.TargetDomain,
				Status: domain.StatusClassified, Kind: string(domain.KindApplicationService)},
		},
		Anchors: map[domain.TypeID]domain.AnchorResult{},
	}
	q := NewQuery(g, results)

	// Nothing depends on the use case, but an application service lives
	// in the same namespace, which is how implementations surface.
	assert.Empty(t, portDirectionValidator{}.Validate(q))
}

func TestDependencyInversionValidator(t *testing.T) {
	g := graph.Build(&semantic.Model{Types: []semantic.TypeInfo{
		classType("shop.order.OrderService", "shop.order", "shop.persistence.SqlStore"),
		classType("shop.persistence.SqlStore", "shop.persistence"),
	}})
	results := &classify.Results{
		ByID: map[domain.TypeID]domain.ClassificationResult{
			"shop.order.OrderService": {Subject: "shop.order.OrderService", Target: domain.TargetDomain,
				Status: domain.StatusClassified, Kind: string(domain.KindApplicationService)},
		},
		Anchors: map[domain.TypeID]domain.AnchorResult{
			"shop.persistence.SqlStore": {Type: "shop.persistence.SqlStore", Kind: domain.AnchorInfra},
		},
	}
	q := NewQuery(g, results)

	violations := dependencyInversionValidator{}.Validate(q)
	require.Len(t, violations, 1)
	assert.Equal(t, "dependency-inversion", violations[0].Constraint)
	assert.Equal(t, domain.SeverityCritical, violations[0].Severity)
}

func TestRunValidatorsConcatenatesInOrder(t *testing.T) {
	q := layeredQuery()
	violations := RunValidators(q, DefaultValidators())

	var constraints []string
	for _, v := range violations {
		constraints = append(constraints, v.Constraint)
	}
	assert.Contains(t, constraints, "dependency-direction")
	for i := 1; i < len(constraints); i++ {
		if constraints[i] == "dependency-direction" {
			assert.Equal(t, "dependency-direction", constraints[i-1],
				"findings of one validator stay contiguous")
		}
	}
}
