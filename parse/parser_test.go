package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebitommy123/SA/errs"
	"github.com/sebitommy123/SA/value"
)

func TestParseFieldAccess(t *testing.T) {
	c, err := Parse("person.salary")
	require.NoError(t, err)
	require.Len(t, c.Steps, 2)
	assert.Equal(t, "filter", c.Steps[0].Op)
	assert.Equal(t, "get_field", c.Steps[1].Op)
	assert.Equal(t, value.String("salary"), c.Steps[1].Args[0].Steps[0].Lit)
}

func TestParseOperatorCall(t *testing.T) {
	c, err := Parse("person.count()")
	require.NoError(t, err)
	require.Len(t, c.Steps, 2)
	assert.Equal(t, "count", c.Steps[1].Op)
	assert.Empty(t, c.Steps[1].Args)
}

func TestParseIDFilter(t *testing.T) {
	c, err := Parse("#a")
	require.NoError(t, err)
	require.Len(t, c.Steps, 1)
	assert.Equal(t, "filter", c.Steps[0].Op)
	pred := c.Steps[0].Args[0]
	require.Len(t, pred.Steps, 2)
	assert.Equal(t, "get_field", pred.Steps[0].Op)
	assert.Equal(t, "regex_match", pred.Steps[1].Op)
}

func TestParseSourceFilter(t *testing.T) {
	c, err := Parse("@hr")
	require.NoError(t, err)
	require.Len(t, c.Steps, 1)
	assert.Equal(t, "filter", c.Steps[0].Op)
	pred := c.Steps[0].Args[0]
	require.Len(t, pred.Steps, 1)
	assert.Equal(t, "equals", pred.Steps[0].Op)
}

func TestParseBracketFilterVsIndex(t *testing.T) {
	c, err := Parse("person[.salary == 100]")
	require.NoError(t, err)
	assert.Equal(t, "filter", c.Steps[1].Op)

	c2, err := Parse("person[0]")
	require.NoError(t, err)
	assert.Equal(t, "index", c2.Steps[1].Op)
	assert.Equal(t, value.Int(0), c2.Steps[1].Args[0].Steps[0].Lit)
}

func TestParseSelect(t *testing.T) {
	c, err := Parse("person{.name, .salary}")
	require.NoError(t, err)
	require.Len(t, c.Steps, 2)
	assert.Equal(t, "select", c.Steps[1].Op)
	require.Len(t, c.Steps[1].Args, 2)
}

func TestParseSelectRejectsNonFieldEntry(t *testing.T) {
	_, err := Parse("person{count()}")
	require.Error(t, err)
}

func TestParseLogicalPrecedence(t *testing.T) {
	c, err := Parse("person[.a == 1 AND .b == 2 OR .c == 3]")
	require.NoError(t, err)
	pred := c.Steps[1].Args[0]
	require.Len(t, pred.Steps, 1)
	assert.Equal(t, "or", pred.Steps[0].Op)
	left := pred.Steps[0].Args[0]
	assert.Equal(t, "and", left.Steps[0].Op)
}

func TestParseNotBindsTighterThanEquals(t *testing.T) {
	c, err := Parse("person[!.active == true]")
	require.NoError(t, err)
	pred := c.Steps[1].Args[0]
	require.Len(t, pred.Steps, 1)
	assert.Equal(t, "equals", pred.Steps[0].Op)
	left := pred.Steps[0].Args[0]
	assert.Equal(t, "not", left.Steps[0].Op)
}

func TestParseRegexMatch(t *testing.T) {
	c, err := Parse("person[.name =~ 'A.*']")
	require.NoError(t, err)
	pred := c.Steps[1].Args[0]
	require.Len(t, pred.Steps, 2)
	assert.Equal(t, "get_field", pred.Steps[0].Op)
	assert.Equal(t, "regex_match", pred.Steps[1].Op)
}

func TestParseChainedCalls(t *testing.T) {
	c, err := Parse("person.lowest(.salary).name")
	require.NoError(t, err)
	require.Len(t, c.Steps, 3)
	assert.Equal(t, "lowest", c.Steps[1].Op)
	assert.Equal(t, "get_field", c.Steps[2].Op)
	argChain := c.Steps[1].Args[0]
	require.Len(t, argChain.Steps, 1)
	assert.Equal(t, "get_field", argChain.Steps[0].Op)
}

func TestParseErrorReportsOffset(t *testing.T) {
	_, err := Parse("person.[bad")
	require.Error(t, err)
	var pe *errs.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 7, pe.Offset)
}

func TestParseUnterminatedString(t *testing.T) {
	_, err := Parse("person[.name == 'unterminated]")
	require.Error(t, err)
}

func TestRenderRoundTrip(t *testing.T) {
	queries := []string{
		"person",
		"person.salary",
		"person.count()",
		"#a",
		"@hr",
		"person[0]",
	}
	for _, q := range queries {
		c, err := Parse(q)
		require.NoError(t, err, q)
		rendered := RenderChain(c)
		c2, err := Parse(rendered)
		require.NoError(t, err, rendered)
		assert.Equal(t, RenderChain(c), RenderChain(c2), "round-trip mismatch for %q", q)
	}
}
