package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomind-actions/actionkit/action"
)

func buildGraph(t *testing.T, edges map[string][]string, order []string) *graph {
	t.Helper()
	g := newGraph()
	for _, name := range order {
		require.NoError(t, errOrNil(g.addStep(name, edges[name])))
	}
	return g
}

func errOrNil(exc *action.Exception) error {
	if exc == nil {
		return nil
	}
	return exc
}

func TestExecutionPhasesOrdersByDependency(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"a": nil,
		"b": nil,
		"c": {"a", "b"},
		"d": {"c"},
	}, []string{"a", "b", "c", "d"})

	phases, err := g.executionPhases()
	require.Nil(t, err)
	require.Len(t, phases, 3)
	assert.ElementsMatch(t, []string{"a", "b"}, phases[0])
	assert.Equal(t, []string{"c"}, phases[1])
	assert.Equal(t, []string{"d"}, phases[2])
}

func TestExecutionPhasesBreaksTiesByInsertionOrder(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"z": nil,
		"y": nil,
		"x": nil,
	}, []string{"z", "y", "x"})

	phases, err := g.executionPhases()
	require.Nil(t, err)
	require.Len(t, phases, 1)
	assert.Equal(t, []string{"z", "y", "x"}, phases[0])
}

func TestExecutionPhasesDetectsCycle(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}, []string{"a", "b"})

	_, err := g.executionPhases()
	require.NotNil(t, err)
	assert.Equal(t, "cycle", err.Details["code"])
}

func TestExecutionPhasesDetectsUnknownStep(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"a": {"missing"},
	}, []string{"a"})

	_, err := g.executionPhases()
	require.NotNil(t, err)
	assert.Equal(t, "unknown_step", err.Details["code"])
}

func TestAddStepRejectsDuplicates(t *testing.T) {
	g := newGraph()
	require.Nil(t, g.addStep("a", nil))
	err := g.addStep("a", nil)
	require.NotNil(t, err)
	assert.Equal(t, "duplicate_step", err.Details["code"])
}
