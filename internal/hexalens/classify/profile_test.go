package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
	"github.com/pmaojo/hexalens/internal/hexalens/semantic"
)

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		text    string
		pattern string
		want    bool
	}{
		{"shop.generated.OrderStub", "shop.generated.{word}", true},
		{"shop.order.Order", "shop.generated.{word}", false},
		{"shop.legacy.OldOrder", "shop\\.legacy\\..*", true},
		{"shop.order.Order", "shop\\.legacy\\..*", false},
		{"OrderMapperImpl", "MapperImpl", true},
		{"OrderMapper", "MapperImpl", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, matchPattern(c.text, c.pattern), "%q vs %q", c.text, c.pattern)
	}
}

func TestProfileExcluded(t *testing.T) {
	p := &Profile{Exclusions: []string{"shop.generated.{word}", "Stub$"}}
	assert.True(t, p.Excluded("shop.generated.Anything"))
	assert.True(t, p.Excluded("shop.order.OrderStub"))
	assert.False(t, p.Excluded("shop.order.Order"))
}

func TestProfilePriorityOverrides(t *testing.T) {
	p := &Profile{PriorityOverrides: map[string]int{"identity-field": 95}}
	for _, c := range p.DomainCriteria() {
		if c.Name() == "identity-field" {
			assert.Equal(t, 95, c.Priority())
			return
		}
	}
	t.Fatal("identity-field criterion not found")
}

func TestProfileNamingRuleWinsOverHeuristics(t *testing.T) {
	p := &Profile{NamingRules: []NamingRule{
		{Pattern: "{word}Dto", Target: domain.TargetDomain, Kind: string(domain.KindValueObject)},
	}}
	g := graph.Build(&semantic.Model{Types: []semantic.TypeInfo{
		{
			Qualified: "shop.order.OrderDto",
			Simple:    "OrderDto",
			Namespace: "shop.order",
			Kind:      domain.DeclClass,
			Fields: []semantic.FieldInfo{
				{Name: "id", Type: domain.TypeRef{Qualified: "string"}},
			},
		},
	}})

	results := NewClassifier(p, DefaultAnchorConfig()).Run(g)
	res := results.ByID["shop.order.OrderDto"]

	require.Equal(t, domain.StatusClassified, res.Status)
	assert.Equal(t, string(domain.KindValueObject), res.Kind)
	assert.Equal(t, "naming-rule:{word}Dto", res.Criterion)
	assert.Equal(t, domain.ConfidenceExplicit, res.Confidence)
}

func TestProfileNamingRuleForPorts(t *testing.T) {
	p := &Profile{NamingRules: []NamingRule{
		{Pattern: "{word}Facade", Target: domain.TargetPort,
			Kind: string(domain.PortUseCase), Direction: domain.DirectionDriving},
	}}
	g := graph.Build(&semantic.Model{Types: []semantic.TypeInfo{
		{
			Qualified: "shop.order.CheckoutFacade",
			Simple:    "CheckoutFacade",
			Namespace: "shop.order",
			Kind:      domain.DeclInterface,
			Methods:   []semantic.MethodInfo{{Name: "checkout"}},
		},
	}})

	results := NewClassifier(p, DefaultAnchorConfig()).Run(g)
	res := results.ByID["shop.order.CheckoutFacade"]

	require.Equal(t, domain.StatusClassified, res.Status)
	assert.Equal(t, string(domain.PortUseCase), res.Kind)
	assert.Equal(t, domain.DirectionDriving, res.Direction)
}
