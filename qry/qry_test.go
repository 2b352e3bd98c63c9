package qry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebitommy123/SA/parse"
	"github.com/sebitommy123/SA/store"
	"github.com/sebitommy123/SA/value"
)

func fields(kv ...interface{}) *value.Map {
	m := value.NewMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1].(value.Value))
	}
	return m
}

func seedHR(s *store.Store) {
	s.ReplaceProvider("hr", []*value.SAO{
		{ID: "a", Source: "hr", Types: []string{"person", "employee"}, Fields: fields("name", value.String("Alice"), "salary", value.Int(100))},
		{ID: "b", Source: "hr", Types: []string{"person", "employee"}, Fields: fields("name", value.String("Bob"), "salary", value.Int(80))},
		{ID: "c", Source: "hr", Types: []string{"person"}, Fields: fields("name", value.String("Carol"), "salary", value.Int(120))},
	})
}

func run(t *testing.T, s *store.Store, q string) (value.Value, error) {
	snap := s.Acquire()
	defer snap.Release()
	return Query(snap, q)
}

func TestEndToEndPersonCount(t *testing.T) {
	s := store.New()
	seedHR(s)
	v, err := run(t, s, "person.count()")
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), v)
}

func TestEndToEndEmployeeCount(t *testing.T) {
	s := store.New()
	seedHR(s)
	v, err := run(t, s, "employee.count()")
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), v)
}

func TestEndToEndIDLookup(t *testing.T) {
	s := store.New()
	seedHR(s)
	v, err := run(t, s, "#a")
	require.NoError(t, err)
	list, ok := v.(*value.ObjectList)
	require.True(t, ok)
	require.Equal(t, 1, list.Len())
	assert.Equal(t, value.String("Alice"), mustField(list.Items[0], "name"))
}

func TestEndToEndFilterEquals(t *testing.T) {
	s := store.New()
	seedHR(s)
	v, err := run(t, s, "person[.salary == 100]")
	require.NoError(t, err)
	list := v.(*value.ObjectList)
	require.Equal(t, 1, list.Len())
	assert.Equal(t, value.String("Alice"), mustField(list.Items[0], "name"))
}

func TestEndToEndLowest(t *testing.T) {
	s := store.New()
	seedHR(s)
	v, err := run(t, s, "person.lowest(.salary).name")
	require.NoError(t, err)
	assert.Equal(t, value.String("Bob"), v)
}

func TestEndToEndSelect(t *testing.T) {
	s := store.New()
	seedHR(s)
	v, err := run(t, s, "person{.name}")
	require.NoError(t, err)
	list := v.(*value.ObjectList)
	require.Equal(t, 3, list.Len())
	for _, o := range list.Items {
		assert.Equal(t, 1, o.Fields.Len())
		_, hasName := o.Fields.Get("name")
		assert.True(t, hasName)
	}
}

func TestEndToEndMissingFieldFiltersToZero(t *testing.T) {
	s := store.New()
	seedHR(s)
	v, err := run(t, s, `person[.nickname == "x"].count()`)
	require.NoError(t, err)
	assert.Equal(t, value.Int(0), v)
}

func TestEndToEndDuplicateCollapses(t *testing.T) {
	s := store.New()
	a := &value.SAO{ID: "a", Source: "hr", Types: []string{"person"}, Fields: value.NewMap()}
	s.ReplaceProvider("hr", []*value.SAO{a, a})
	v, err := run(t, s, "person.count()")
	require.NoError(t, err)
	assert.Equal(t, value.Int(1), v)
}

func TestOptimizerEquivalence(t *testing.T) {
	s := store.New()
	seedHR(s)
	snap := s.Acquire()
	defer snap.Release()

	chain, err := parse.Parse("person[.salary == 100]")
	require.NoError(t, err)

	ev := New(snap, nil)
	optimized, err := ev.EvalFromRoot(chain)
	require.NoError(t, err)

	naive, err := ev.Eval(chain, snap.All())
	require.NoError(t, err)

	assert.Equal(t, optimized.String(), naive.String())
}

func mustField(o *value.SAO, name string) value.Value {
	v, _ := o.Fields.Get(name)
	return v
}
