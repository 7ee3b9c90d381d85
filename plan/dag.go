package plan

import "github.com/gomind-actions/actionkit/action"

// graph is directly adapted from orchestration/workflow_dag.go's
// WorkflowDAG/DAGNode: the same dependents-rebuild + cycle-detecting DFS +
// level-grouping bookkeeping, renamed to this package's step/phase
// vocabulary and extended with an insertion-order slice so
// executionPhases can break ties deterministically — map iteration order
// in Go is randomized, unlike the teacher's original host runtime.
type graph struct {
	order []string
	steps map[string]*step
}

type step struct {
	Name         string
	Dependencies []string
	Dependents   []string
}

func newGraph() *graph {
	return &graph{steps: make(map[string]*step)}
}

// addStep registers name with its dependencies. A repeated name is a
// duplicate_step error (§4.9).
func (g *graph) addStep(name string, deps []string) *action.Exception {
	if _, exists := g.steps[name]; exists {
		return action.NewException(action.InvalidInput, "duplicate step: "+name, map[string]any{"code": "duplicate_step", "step": name})
	}
	g.steps[name] = &step{Name: name, Dependencies: append([]string(nil), deps...)}
	g.order = append(g.order, name)
	return nil
}

func (g *graph) rebuildDependents() {
	for _, s := range g.steps {
		s.Dependents = nil
	}
	for name, s := range g.steps {
		for _, dep := range s.Dependencies {
			if depStep, ok := g.steps[dep]; ok {
				depStep.Dependents = append(depStep.Dependents, name)
			}
		}
	}
}

// validate checks every dependency resolves (unknown_step) and that the
// graph has no cycles (cycle), matching WorkflowDAG.Validate's two checks.
func (g *graph) validate() *action.Exception {
	for name, s := range g.steps {
		for _, dep := range s.Dependencies {
			if _, ok := g.steps[dep]; !ok {
				return action.NewException(action.InvalidInput, "step "+name+" depends on unknown step "+dep, map[string]any{"code": "unknown_step", "step": name, "dependency": dep})
			}
		}
	}

	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	for _, name := range g.order {
		if !visited[name] {
			if g.hasCycleDFS(name, visited, recStack) {
				return action.NewException(action.InvalidInput, "plan contains a dependency cycle", map[string]any{"code": "cycle"})
			}
		}
	}
	return nil
}

func (g *graph) hasCycleDFS(name string, visited, recStack map[string]bool) bool {
	visited[name] = true
	recStack[name] = true

	s := g.steps[name]
	for _, dependent := range s.Dependents {
		if !visited[dependent] {
			if g.hasCycleDFS(dependent, visited, recStack) {
				return true
			}
		} else if recStack[dependent] {
			return true
		}
	}

	recStack[name] = false
	return false
}

// executionPhases groups steps into topological layers: phase 0 is every
// step with no dependencies, phase k is every step whose dependencies are
// all in phases <k. Ties within a phase are broken by insertion order,
// ported from GetExecutionLevels but iterating g.order instead of the
// teacher's map (whose iteration order is not reproducible in Go).
func (g *graph) executionPhases() ([][]string, *action.Exception) {
	g.rebuildDependents()
	if err := g.validate(); err != nil {
		return nil, err
	}

	var phases [][]string
	processed := make(map[string]bool)

	for {
		var phase []string
		for _, name := range g.order {
			if processed[name] {
				continue
			}
			ready := true
			for _, dep := range g.steps[name].Dependencies {
				if !processed[dep] {
					ready = false
					break
				}
			}
			if ready {
				phase = append(phase, name)
			}
		}
		if len(phase) == 0 {
			break
		}
		for _, name := range phase {
			processed[name] = true
		}
		phases = append(phases, phase)
	}

	return phases, nil
}
