// Package plan implements the DAG-phased multi-step orchestrator (C9):
// build a dependency graph of named steps, resolve it into ordered
// execution phases, and run each phase's steps concurrently through the
// Executor, merging results and halting on first error while letting the
// rest of the failing phase finish (§4.9, §9 Open Question 3).
package plan

import (
	"context"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gomind-actions/actionkit/action"
	"github.com/gomind-actions/actionkit/registry"
)

// StepSpec is the declarative form Build consumes, grounded on
// orchestration/workflow_engine.go's WorkflowStepDefinition: a YAML-
// tagged record naming an action by string and its static params, instead
// of a direct Action reference — the indirection Build resolves through a
// registry.Registry.
type StepSpec struct {
	Name      string         `yaml:"name"`
	Action    string         `yaml:"action"`
	Params    action.Params  `yaml:"params"`
	DependsOn []string       `yaml:"depends_on"`
}

// Executor is the subset of engine.Executor Plan needs.
type Executor interface {
	Execute(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result
}

// entry is one registered step: its Action and the static params to merge
// in alongside the running Params before each invocation.
type entry struct {
	act    action.Action
	params action.Params
}

// Plan is the builder: New, Add, DependsOn accumulate steps; Build parses
// a declarative []StepSpec (e.g. loaded from YAML via ParseSpecs) against
// a registry.Registry.
type Plan struct {
	g       *graph
	entries map[string]entry
}

// New creates an empty Plan.
func New() *Plan {
	return &Plan{g: newGraph(), entries: make(map[string]entry)}
}

// Add registers a named step with its action and optional static params.
// A repeated name is rejected as a duplicate_step error.
func (p *Plan) Add(name string, act action.Action, params action.Params) error {
	if err := p.g.addStep(name, nil); err != nil {
		return err
	}
	p.entries[name] = entry{act: act, params: params}
	return nil
}

// DependsOn records that `name` depends on each of deps. name must already
// have been Added; deps are resolved (and validated) at ExecutionPhases
// time, so forward references are allowed during construction.
func (p *Plan) DependsOn(name string, deps ...string) error {
	s, ok := p.g.steps[name]
	if !ok {
		return action.NewException(action.InvalidInput, "depends_on: unknown step "+name, map[string]any{"code": "unknown_step", "step": name})
	}
	s.Dependencies = append(s.Dependencies, deps...)
	return nil
}

// ParseSpecs decodes a YAML document into []StepSpec, the declarative
// input Build consumes.
func ParseSpecs(doc []byte) ([]StepSpec, error) {
	var specs []StepSpec
	if err := yaml.Unmarshal(doc, &specs); err != nil {
		return nil, action.NewException(action.InvalidInput, "invalid plan document: "+err.Error(), nil)
	}
	return specs, nil
}

// Build constructs a Plan from specs, resolving each spec's Action field
// against reg.
func Build(specs []StepSpec, reg *registry.Registry) (*Plan, error) {
	p := New()
	for _, spec := range specs {
		act, ok := reg.Lookup(spec.Action)
		if !ok {
			return nil, action.NewException(action.InvalidInput, "unknown action: "+spec.Action, map[string]any{"code": "unknown_action", "action": spec.Action})
		}
		if err := p.Add(spec.Name, act, spec.Params); err != nil {
			return nil, err
		}
	}
	for _, spec := range specs {
		if len(spec.DependsOn) == 0 {
			continue
		}
		if err := p.DependsOn(spec.Name, spec.DependsOn...); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ExecutionPhases resolves the dependency graph into topologically
// ordered phases: phase 0 has no dependencies, phase k's steps depend
// only on steps in phases <k. Returns cycle/unknown_step errors.
func (p *Plan) ExecutionPhases() ([][]string, error) {
	phases, err := p.g.executionPhases()
	if err != nil {
		return nil, err
	}
	return phases, nil
}

// RunOptions configures one Plan.Run call.
type RunOptions struct {
	StepOptions action.Options
}

// RunResult is Plan.Run's terminal state: Results holds every step that
// finished (success or failure) before the halt; FirstErr is the first
// error encountered, if any.
type RunResult struct {
	OK       bool
	Results  map[string]action.Result
	FirstErr *action.Exception
}

// Run executes every phase in order, running all of a phase's steps
// concurrently through eng and merging each success into the shared
// running params before the next phase starts. If any step in a phase
// errors, Run still waits for the rest of that phase to finish (§9 Open
// Question 3: await, not abort) before returning the first error
// alongside every result recorded so far.
func (p *Plan) Run(ctx context.Context, eng Executor, initial action.Params, opts RunOptions) (*RunResult, error) {
	phases, err := p.ExecutionPhases()
	if err != nil {
		return nil, err
	}

	running := initial.Clone()
	results := make(map[string]action.Result, len(p.entries))

	for _, phase := range phases {
		type stepOutcome struct {
			name   string
			result action.Result
		}
		outcomes := make([]stepOutcome, len(phase))

		var wg sync.WaitGroup
		for i, name := range phase {
			wg.Add(1)
			go func(i int, name string) {
				defer wg.Done()
				e := p.entries[name]
				stepParams := running.Merge(e.params)
				outcomes[i] = stepOutcome{name: name, result: eng.Execute(ctx, e.act, stepParams, opts.StepOptions)}
			}(i, name)
		}
		wg.Wait()

		var firstErr *action.Exception
		for _, o := range outcomes {
			results[o.name] = o.result
			if o.result.OK {
				running = running.Merge(o.result.Data)
			} else if firstErr == nil {
				firstErr = o.result.Err
			}
		}
		if firstErr != nil {
			return &RunResult{OK: false, Results: results, FirstErr: firstErr}, nil
		}
	}

	return &RunResult{OK: true, Results: results}, nil
}
