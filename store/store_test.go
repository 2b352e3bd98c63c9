package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebitommy123/SA/value"
)

func sao(id, source string, types ...string) *value.SAO {
	return &value.SAO{ID: id, Source: source, Types: types, Fields: value.NewMap()}
}

func TestReplaceProviderBasic(t *testing.T) {
	s := New()
	s.ReplaceProvider("hr", []*value.SAO{
		sao("a", "hr", "person"),
		sao("b", "hr", "person", "employee"),
	})

	snap := s.Acquire()
	defer snap.Release()

	assert.Equal(t, 2, snap.All().Len())
	assert.Equal(t, 2, snap.ByType("person").Len())
	assert.Equal(t, 1, snap.ByType("employee").Len())
	assert.Equal(t, 1, snap.ByID("a").Len())
}

func TestReplaceProviderAtomicSwap(t *testing.T) {
	s := New()
	s.ReplaceProvider("hr", []*value.SAO{sao("a", "hr", "person")})
	s.ReplaceProvider("hr", []*value.SAO{sao("b", "hr", "person")})

	snap := s.Acquire()
	defer snap.Release()

	require.Equal(t, 1, snap.All().Len())
	assert.Equal(t, "b", snap.All().Items[0].ID)
}

func TestReplaceProviderClearOnDegraded(t *testing.T) {
	s := New()
	s.ReplaceProvider("hr", []*value.SAO{sao("a", "hr", "person")})
	s.ReplaceProvider("hr", nil)

	snap := s.Acquire()
	defer snap.Release()
	assert.Equal(t, 0, snap.All().Len())
}

func TestReplaceProviderIndependentSources(t *testing.T) {
	s := New()
	s.ReplaceProvider("hr", []*value.SAO{sao("a", "hr", "person")})
	s.ReplaceProvider("sales", []*value.SAO{sao("b", "sales", "person")})

	snap := s.Acquire()
	assert.Equal(t, 2, snap.All().Len())
	snap.Release()

	s.ReplaceProvider("sales", nil)
	snap2 := s.Acquire()
	defer snap2.Release()
	assert.Equal(t, 1, snap2.All().Len())
}

func TestReplaceProviderDuplicateCollapses(t *testing.T) {
	s := New()
	s.ReplaceProvider("hr", []*value.SAO{
		sao("a", "hr", "person"),
		sao("a", "hr", "person"),
	})
	snap := s.Acquire()
	defer snap.Release()
	assert.Equal(t, 1, snap.ByType("person").Len())
}

func TestByLogicalAcrossSources(t *testing.T) {
	s := New()
	s.ReplaceProvider("hr", []*value.SAO{sao("a", "hr", "person")})
	s.ReplaceProvider("sales", []*value.SAO{sao("a", "sales", "person")})

	snap := s.Acquire()
	defer snap.Release()
	logical := snap.ByLogical("person", "a")
	assert.Len(t, logical, 2)
}
