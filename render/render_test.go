package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebitommy123/SA/value"
)

func fields(kv ...interface{}) *value.Map {
	m := value.NewMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1].(value.Value))
	}
	return m
}

func TestSAORendersHeaderAndFields(t *testing.T) {
	o := &value.SAO{ID: "a", Source: "hr", Types: []string{"person", "employee"}, Fields: fields("name", value.String("Alice"), "salary", value.Int(100))}
	var b strings.Builder
	require.NoError(t, SAO(&b, o))
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	assert.Equal(t, "#a (person, employee @hr)", lines[0])
	assert.Contains(t, lines, "    name: Alice")
	assert.Contains(t, lines, "    salary: 100")
}

func TestObjectListFlatAcrossIDs(t *testing.T) {
	list := value.NewObjectList([]*value.SAO{
		{ID: "a", Source: "hr", Types: []string{"person"}, Fields: value.NewMap()},
		{ID: "b", Source: "hr", Types: []string{"person"}, Fields: value.NewMap()},
	})
	var b strings.Builder
	require.NoError(t, ObjectList(&b, list))
	assert.Equal(t, "person#a@hr\nperson#b@hr\n", b.String())
}

func TestGroupedAgreementVsDisagreement(t *testing.T) {
	items := []*value.SAO{
		{ID: "a", Source: "hr", Types: []string{"person"}, Fields: fields("name", value.String("Alice"))},
		{ID: "a", Source: "sales", Types: []string{"person"}, Fields: fields("name", value.String("Alicia"))},
	}
	var b strings.Builder
	require.NoError(t, Grouped(&b, items))
	out := b.String()
	assert.Contains(t, out, "name@hr: Alice")
	assert.Contains(t, out, "name@sales: Alicia")
}

func TestObjectListDetectsSameLogicalID(t *testing.T) {
	list := value.NewObjectList([]*value.SAO{
		{ID: "a", Source: "hr", Types: []string{"person"}, Fields: fields("name", value.String("Alice"))},
		{ID: "a", Source: "sales", Types: []string{"person"}, Fields: fields("name", value.String("Alice"))},
	})
	var b strings.Builder
	require.NoError(t, ObjectList(&b, list))
	assert.Contains(t, b.String(), "name: Alice")
	assert.NotContains(t, b.String(), "person#a@hr")
}

func TestEmptyObjectList(t *testing.T) {
	var b strings.Builder
	require.NoError(t, ObjectList(&b, value.NewObjectList(nil)))
	assert.Equal(t, "(empty)\n", b.String())
}

func TestGroupingRendersPerKeySection(t *testing.T) {
	g := value.NewObjectGrouping()
	g.Add(value.GroupKey{Parts: []value.Value{value.String("eng")}}, &value.SAO{ID: "a", Source: "hr", Types: []string{"person"}, Fields: value.NewMap()})
	var b strings.Builder
	require.NoError(t, Grouping(&b, g))
	assert.Contains(t, b.String(), "(eng):")
	assert.Contains(t, b.String(), "person#a@hr")
}
