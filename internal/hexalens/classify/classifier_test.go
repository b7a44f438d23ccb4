package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
	"github.com/pmaojo/hexalens/internal/hexalens/semantic"
)

// shopModel is a small but complete slice of an ordering context: an
// aggregate with its identifier, a repository and use case port, and the
// application service wiring them together.
func shopModel() *semantic.Model {
	return &semantic.Model{Types: []semantic.TypeInfo{
		{
			Qualified: "shop.order.Order",
			Simple:    "Order",
			Namespace: "shop.order",
			Kind:      domain.DeclClass,
			Fields: []semantic.FieldInfo{
				{Name: "id", Type: domain.TypeRef{Qualified: "shop.order.OrderId"}},
				{Name: "customerName", Type: domain.TypeRef{Qualified: "string"}},
			},
		},
		{
			Qualified: "shop.order.OrderId",
			Simple:    "OrderId",
			Namespace: "shop.order",
			Kind:      domain.DeclRecord,
			Fields: []semantic.FieldInfo{
				{Name: "value", Type: domain.TypeRef{Qualified: "string"}},
			},
		},
		{
			Qualified: "shop.order.OrderRepository",
			Simple:    "OrderRepository",
			Namespace: "shop.order",
			Kind:      domain.DeclInterface,
			Methods: []semantic.MethodInfo{
				{Name: "save", Params: []domain.Param{{Name: "order", Type: domain.TypeRef{Qualified: "shop.order.Order"}}}},
				{Name: "findById",
					Params:  []domain.Param{{Name: "id", Type: domain.TypeRef{Qualified: "shop.order.OrderId"}}},
					Returns: &domain.TypeRef{Qualified: "shop.order.Order"}},
			},
		},
		{
			Qualified: "shop.order.PlaceOrderUseCase",
			Simple:    "PlaceOrderUseCase",
			Namespace: "shop.order",
			Kind:      domain.DeclInterface,
			Methods: []semantic.MethodInfo{
				{Name: "placeOrder", Params: []domain.Param{{Name: "command", Type: domain.TypeRef{Qualified: "shop.order.PlaceOrderCommand"}}}},
			},
		},
		{
			Qualified: "shop.order.OrderApplicationService",
			Simple:    "OrderApplicationService",
			Namespace: "shop.order",
			Kind:      domain.DeclClass,
			Fields: []semantic.FieldInfo{
				{Name: "orders", Type: domain.TypeRef{Qualified: "shop.order.OrderRepository"}},
			},
			Methods: []semantic.MethodInfo{
				{Name: "placeOrder"},
			},
		},
	}}
}

func runDefault(t *testing.T, model *semantic.Model) *Results {
	t.Helper()
	g := graph.Build(model)
	require.Empty(t, g.Diagnostics())
	return NewClassifier(nil, DefaultAnchorConfig()).Run(g)
}

func TestRunClassifiesRepositoryPort(t *testing.T) {
	results := runDefault(t, shopModel())

	repo := results.ByID["shop.order.OrderRepository"]
	assert.Equal(t, domain.TargetPort, repo.Target)
	assert.Equal(t, domain.StatusClassified, repo.Status)
	assert.Equal(t, string(domain.PortRepository), repo.Kind)
	assert.Equal(t, domain.DirectionDriven, repo.Direction)
	assert.Equal(t, "naming-repository", repo.Criterion)
	assert.Equal(t, domain.ConfidenceHigh, repo.Confidence)

	uc := results.ByID["shop.order.PlaceOrderUseCase"]
	assert.Equal(t, domain.StatusClassified, uc.Status)
	assert.Equal(t, string(domain.PortUseCase), uc.Kind)
	assert.Equal(t, domain.DirectionDriving, uc.Direction)
}

func TestRunPromotesManagedTypeToAggregateRoot(t *testing.T) {
	results := runDefault(t, shopModel())

	order := results.ByID["shop.order.Order"]
	assert.Equal(t, domain.TargetDomain, order.Target)
	assert.Equal(t, domain.StatusClassified, order.Status)
	assert.Equal(t, string(domain.KindAggregateRoot), order.Kind)
	assert.Equal(t, "repository-dominant", order.Criterion)

	// The identity heuristic still matched, at lower priority.
	var kinds []string
	for _, c := range order.Conflicts {
		kinds = append(kinds, c.Kind)
	}
	assert.Contains(t, kinds, string(domain.KindEntity))
}

func TestRunClassifiesSupportingRoles(t *testing.T) {
	results := runDefault(t, shopModel())

	id := results.ByID["shop.order.OrderId"]
	assert.Equal(t, string(domain.KindValueObject), id.Kind)
	assert.Equal(t, "immutable-carrier", id.Criterion)

	app := results.ByID["shop.order.OrderApplicationService"]
	assert.Equal(t, string(domain.KindApplicationService), app.Kind)
	assert.Equal(t, "port-dependency", app.Criterion)
}

func TestRunNamingSuffixDrivingPorts(t *testing.T) {
	results := runDefault(t, &semantic.Model{Types: []semantic.TypeInfo{
		{
			Qualified: "shop.order.NotificationService",
			Simple:    "NotificationService",
			Namespace: "shop.order",
			Kind:      domain.DeclInterface,
			Methods:   []semantic.MethodInfo{{Name: "notify"}},
		},
		{
			Qualified: "shop.order.WebhookHandler",
			Simple:    "WebhookHandler",
			Namespace: "shop.order",
			Kind:      domain.DeclInterface,
			Methods:   []semantic.MethodInfo{{Name: "onEvent"}},
		},
		{
			Qualified: "shop.order.PayCommandHandler",
			Simple:    "PayCommandHandler",
			Namespace: "shop.order",
			Kind:      domain.DeclInterface,
			Methods:   []semantic.MethodInfo{{Name: "onPayment"}},
		},
	}})

	svc := results.ByID["shop.order.NotificationService"]
	assert.Equal(t, domain.StatusClassified, svc.Status)
	assert.Equal(t, string(domain.PortUseCase), svc.Kind)
	assert.Equal(t, domain.DirectionDriving, svc.Direction)
	assert.Equal(t, "naming-service", svc.Criterion)

	hook := results.ByID["shop.order.WebhookHandler"]
	assert.Equal(t, domain.StatusClassified, hook.Status)
	assert.Equal(t, string(domain.PortUseCase), hook.Kind)
	assert.Equal(t, "naming-handler", hook.Criterion)

	// The specific handler suffix wins without a tie against the bare one.
	cmd := results.ByID["shop.order.PayCommandHandler"]
	assert.Equal(t, domain.StatusClassified, cmd.Status)
	assert.Equal(t, string(domain.PortCommand), cmd.Kind)
	assert.Equal(t, "naming-commandhandler", cmd.Criterion)
}

func TestRunEntityWithoutRepository(t *testing.T) {
	results := runDefault(t, &semantic.Model{Types: []semantic.TypeInfo{
		{
			Qualified: "shop.order.Order",
			Simple:    "Order",
			Namespace: "shop.order",
			Kind:      domain.DeclClass,
			Fields: []semantic.FieldInfo{
				{Name: "id", Type: domain.TypeRef{Qualified: "string"}},
				{Name: "status", Type: domain.TypeRef{Qualified: "string"}},
			},
		},
	}})

	order := results.ByID["shop.order.Order"]
	assert.Equal(t, domain.StatusClassified, order.Status)
	assert.Equal(t, string(domain.KindEntity), order.Kind)
	assert.Equal(t, "identity-field", order.Criterion)
	assert.Equal(t, domain.ConfidenceMedium, order.Confidence)
	require.NotEmpty(t, order.Evidence)
	assert.Contains(t, order.Evidence[0].Refs, "shop.order.Order#id")
}

func TestRunTargetPartition(t *testing.T) {
	g := graph.Build(shopModel())
	results := NewClassifier(nil, DefaultAnchorConfig()).Run(g)

	for _, node := range g.Types() {
		res, ok := results.ByID[node.ID]
		require.True(t, ok, "every declared type gets a result")
		if node.IsInterface() {
			assert.Equal(t, domain.TargetPort, res.Target)
		} else {
			assert.Equal(t, domain.TargetDomain, res.Target)
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	g := graph.Build(shopModel())
	first := NewClassifier(nil, DefaultAnchorConfig()).Run(g)
	second := NewClassifier(nil, DefaultAnchorConfig()).Run(g)
	assert.Equal(t, first.ByID, second.ByID)
	assert.Equal(t, first.Anchors, second.Anchors)
}

func TestRunInfraAnchorSuppressesDomainHeuristics(t *testing.T) {
	results := runDefault(t, &semantic.Model{Types: []semantic.TypeInfo{
		{
			Qualified: "shop.persistence.OrderRow",
			Simple:    "OrderRow",
			Namespace: "shop.persistence",
			Kind:      domain.DeclClass,
			Fields: []semantic.FieldInfo{
				{Name: "id", Type: domain.TypeRef{Qualified: "string"}},
			},
		},
	}})

	row := results.ByID["shop.persistence.OrderRow"]
	assert.Equal(t, domain.StatusUnclassified, row.Status)
	assert.Equal(t, domain.AnchorInfra, results.Anchors["shop.persistence.OrderRow"].Kind)
}

func TestRunHonorsOverridesAndExclusions(t *testing.T) {
	profile := &Profile{
		Name: "pinned",
		Overrides: map[domain.TypeID]OverrideSpec{
			"shop.order.OrderId": {
				Target: domain.TargetDomain,
				Kind:   string(domain.KindIdentifier),
				Reason: "identifier by team convention",
			},
		},
		Exclusions: []string{"shop\\.order\\.PlaceOrderUseCase"},
	}
	g := graph.Build(shopModel())
	results := NewClassifier(profile, DefaultAnchorConfig()).Run(g)

	pinned := results.ByID["shop.order.OrderId"]
	assert.Equal(t, domain.StatusClassified, pinned.Status)
	assert.Equal(t, string(domain.KindIdentifier), pinned.Kind)
	assert.Equal(t, "override", pinned.Criterion)
	assert.Equal(t, domain.ConfidenceExplicit, pinned.Confidence)
	assert.Equal(t, "identifier by team convention", pinned.Justification)

	excluded := results.ByID["shop.order.PlaceOrderUseCase"]
	assert.Equal(t, domain.StatusUnclassified, excluded.Status)
}

func TestRunExplicitMarkerBeatsHeuristics(t *testing.T) {
	results := runDefault(t, &semantic.Model{Types: []semantic.TypeInfo{
		{
			Qualified: "shop.order.OrderPlaced",
			Simple:    "OrderPlaced",
			Namespace: "shop.order",
			Kind:      domain.DeclRecord,
			Tags:      []domain.Tag{{Name: "DomainEvent"}},
			Fields: []semantic.FieldInfo{
				{Name: "orderId", Type: domain.TypeRef{Qualified: "string"}},
			},
		},
	}})

	event := results.ByID["shop.order.OrderPlaced"]
	assert.Equal(t, domain.StatusClassified, event.Status)
	assert.Equal(t, string(domain.KindDomainEvent), event.Kind)
	assert.Equal(t, "explicit-domainevent", event.Criterion)
	assert.Equal(t, domain.ConfidenceExplicit, event.Confidence)

	// Both heuristics that also matched are preserved as conflicts.
	var criteria []string
	for _, c := range event.Conflicts {
		criteria = append(criteria, c.Criterion)
	}
	assert.Contains(t, criteria, "identity-field")
	assert.Contains(t, criteria, "immutable-carrier")
}

type panickyCriterion struct{}

func (panickyCriterion) Name() string                    { return "panicky" }
func (panickyCriterion) Priority() int                   { return 10 }
func (panickyCriterion) TargetKind() string              { return "ENTITY" }
func (panickyCriterion) Direction() domain.PortDirection { return "" }
func (panickyCriterion) AppliesTo(*domain.TypeNode) bool { return true }
func (panickyCriterion) Evaluate(*domain.TypeNode, *Context) MatchResult {
	panic("boom")
}

func TestClassifyOneRecoversFromPanic(t *testing.T) {
	c := NewClassifier(nil, DefaultAnchorConfig())
	engine := NewEngine(domain.TargetDomain, []Criterion{panickyCriterion{}})
	node := &domain.TypeNode{ID: "a.T", Qualified: "a.T", Simple: "T", Kind: domain.DeclClass}

	res, diag := c.classifyOne(engine, node, &Context{}, domain.TargetDomain)

	assert.Equal(t, domain.StatusUnclassified, res.Status)
	require.NotNil(t, diag)
	assert.Equal(t, domain.DiagError, diag.Level)
	assert.Equal(t, "a.T", diag.Subject)
	assert.Contains(t, diag.Message, "classification panicked: boom")
}
