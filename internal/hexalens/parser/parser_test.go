package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/semantic"
)

const orderSource = `package order

import (
	"context"
	"time"
)

//hexalens:AggregateRoot
type Order struct {
	ID      OrderID
	Created time.Time
	lines   []OrderLine
}

type OrderID string

type OrderLine struct {
	SKU string ` + "`hexalens:\"Id\"`" + `
}

type OrderRepository interface {
	Save(ctx context.Context, o *Order) error
	FindByID(id OrderID) (*Order, error)
}

func (o *Order) Total() int { return 0 }
`

func parseFixture(t *testing.T, files map[string]string) *semantic.Model {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	f := &Frontend{ExcludedDirs: []string{"vendor"}}
	model, err := f.ParseDir(root)
	require.NoError(t, err)
	return model
}

func typeByQualified(t *testing.T, model *semantic.Model, qualified string) *semantic.TypeInfo {
	t.Helper()
	for i := range model.Types {
		if model.Types[i].Qualified == qualified {
			return &model.Types[i]
		}
	}
	t.Fatalf("type %s not found", qualified)
	return nil
}

func TestParseDirExtractsStructs(t *testing.T) {
	model := parseFixture(t, map[string]string{"order/order.go": orderSource})

	order := typeByQualified(t, model, "order.Order")
	assert.Equal(t, domain.DeclClass, order.Kind)
	assert.Equal(t, "order", order.Namespace)
	assert.Equal(t, []domain.Tag{{Name: "AggregateRoot"}}, order.Tags)

	require.Len(t, order.Fields, 3)
	assert.Equal(t, "ID", order.Fields[0].Name)
	assert.Equal(t, "order.OrderID", order.Fields[0].Type.Qualified)
	assert.Equal(t, []domain.Modifier{domain.ModPublic}, order.Fields[0].Modifiers)
	assert.Equal(t, "time.Time", order.Fields[1].Type.Qualified)
	assert.Equal(t, "lines", order.Fields[2].Name)
	assert.Equal(t, "order.OrderLine", order.Fields[2].Type.Qualified, "slice unwraps to its element")
	assert.Equal(t, []domain.Modifier{domain.ModPrivate}, order.Fields[2].Modifiers)

	require.Len(t, order.Methods, 1)
	assert.Equal(t, "Total", order.Methods[0].Name)
	require.NotNil(t, order.Methods[0].Returns)
	assert.Equal(t, "builtin.int", order.Methods[0].Returns.Qualified)
}

func TestParseDirExtractsNamedBasicTypes(t *testing.T) {
	model := parseFixture(t, map[string]string{"order/order.go": orderSource})

	id := typeByQualified(t, model, "order.OrderID")
	assert.Equal(t, domain.DeclRecord, id.Kind)
	require.NotNil(t, id.SuperType)
	assert.Equal(t, "builtin.string", id.SuperType.Qualified)
}

func TestParseDirExtractsInterfaces(t *testing.T) {
	model := parseFixture(t, map[string]string{"order/order.go": orderSource})

	repo := typeByQualified(t, model, "order.OrderRepository")
	assert.Equal(t, domain.DeclInterface, repo.Kind)
	require.Len(t, repo.Methods, 2)

	save := repo.Methods[0]
	assert.Equal(t, "Save", save.Name)
	require.Len(t, save.Params, 2)
	assert.Equal(t, "ctx", save.Params[0].Name)
	assert.Equal(t, "context.Context", save.Params[0].Type.Qualified)
	assert.Equal(t, "order.Order", save.Params[1].Type.Qualified, "pointer unwraps to its element")
	assert.Nil(t, save.Returns)
	require.Len(t, save.Throws, 1)
	assert.Equal(t, "builtin.error", save.Throws[0].Qualified)

	find := repo.Methods[1]
	assert.Equal(t, "FindByID", find.Name)
	require.NotNil(t, find.Returns)
	assert.Equal(t, "order.Order", find.Returns.Qualified)
	require.Len(t, find.Throws, 1)
}

func TestParseDirFieldTagMarkers(t *testing.T) {
	model := parseFixture(t, map[string]string{"order/order.go": orderSource})

	line := typeByQualified(t, model, "order.OrderLine")
	require.Len(t, line.Fields, 1)
	assert.Equal(t, []domain.Tag{{Name: "Id"}}, line.Fields[0].Tags)
}

func TestParseDirImportAliases(t *testing.T) {
	model := parseFixture(t, map[string]string{"billing/invoice.go": `package billing

import pay "example.com/lib/payments"

type Invoice struct {
	Method pay.Method
}
`})

	inv := typeByQualified(t, model, "billing.Invoice")
	require.Len(t, inv.Fields, 1)
	assert.Equal(t, "example.com/lib/payments.Method", inv.Fields[0].Type.Qualified)
}

func TestParseDirSkipsTestsAndExcludedDirs(t *testing.T) {
	model := parseFixture(t, map[string]string{
		"order/order.go":      orderSource,
		"order/order_test.go": "package order\n\ntype TestHelper struct{}\n",
		"vendor/dep/dep.go":   "package dep\n\ntype Hidden struct{}\n",
	})

	for _, ti := range model.Types {
		assert.NotEqual(t, "TestHelper", ti.Simple)
		assert.NotEqual(t, "Hidden", ti.Simple)
	}
}

func TestParseDirMethodBeforeType(t *testing.T) {
	model := parseFixture(t, map[string]string{"cart/cart.go": `package cart

func (c *Cart) Add(sku string) {}

type Cart struct {
	items []string
}
`})

	cart := typeByQualified(t, model, "cart.Cart")
	assert.Equal(t, domain.DeclClass, cart.Kind)
	require.Len(t, cart.Methods, 1)
	assert.Equal(t, "Add", cart.Methods[0].Name)
	require.Len(t, cart.Fields, 1)
}

func TestParseDirDeterministicOrder(t *testing.T) {
	files := map[string]string{
		"b/b.go": "package b\n\ntype Beta struct{}\n",
		"a/a.go": "package a\n\ntype Alpha struct{}\n",
	}
	model := parseFixture(t, files)

	var qualified []string
	for _, ti := range model.Types {
		qualified = append(qualified, ti.Qualified)
	}
	assert.Equal(t, []string{"a.Alpha", "b.Beta"}, qualified)
}
