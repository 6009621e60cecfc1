package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"

	"github.com/google/uuid"
	"github.com/systemstart/release-notes/pkg/api"
	"github.com/systemstart/release-notes/pkg/config"
	"github.com/systemstart/release-notes/pkg/steps"
)

// Step states as reported in the logs.
const (
	StatePending   = "pending"
	StateRunning   = "running"
	StateSucceeded = "succeeded"
	StateFailed    = "failed"
)

// Task pairs a step with the names of the steps it depends on.
type Task struct {
	Step      steps.Step
	DependsOn []string
}

// Coordinator runs steps one at a time in dependency order.
type Coordinator struct {
	graph *Graph
	steps map[string]steps.Step
	env   config.Env
}

// Report describes a single coordinator run.
type Report struct {
	RunID    string
	Executed []string
	Outputs  *OutputStore
}

// Ran reports whether step name completed successfully.
func (r *Report) Ran(name string) bool {
	_, ok := r.Outputs.Get(name)
	return ok
}

// NewCoordinator builds a coordinator for tasks. The dependency graph is
// validated here, so a malformed graph fails before any step runs.
func NewCoordinator(tasks []Task, env config.Env) (*Coordinator, error) {
	nodes := make([]Node, 0, len(tasks))
	byName := make(map[string]steps.Step, len(tasks))
	for _, t := range tasks {
		name := t.Step.Name()
		nodes = append(nodes, Node{Name: name, DependsOn: t.DependsOn})
		byName[name] = t.Step
	}

	graph, err := NewGraph(nodes)
	if err != nil {
		return nil, err
	}

	return &Coordinator{graph: graph, steps: byName, env: env}, nil
}

// FromWorkflow instantiates the workflow's steps and builds a coordinator.
func FromWorkflow(wf *api.Workflow, deps steps.Deps) (*Coordinator, error) {
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: wf.HTTPTimeoutDuration()}
	}

	tasks := make([]Task, 0, len(wf.Steps))
	for _, cfg := range wf.Steps {
		step, err := steps.NewStep(cfg, deps)
		if err != nil {
			return nil, fmt.Errorf("creating step %q: %w", cfg.Name, err)
		}
		tasks = append(tasks, Task{Step: step, DependsOn: cfg.DependsOn})
	}
	return NewCoordinator(tasks, deps.Env)
}

// Graph returns the coordinator's dependency graph.
func (c *Coordinator) Graph() *Graph { return c.graph }

// Run executes every step exactly once, each after all of its dependencies.
// A step's inputs are the outputs of its dependencies merged in DependsOn
// order, later dependencies winning on key collisions. Steps without
// dependencies receive initial instead. The first error stops the run; the
// report lists the steps that completed before it.
func (c *Coordinator) Run(ctx context.Context, initial api.Values) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Outputs: NewOutputStore(),
	}
	log := slog.With("run", report.RunID)

	inDegree := c.graph.InDegrees()
	ready := c.graph.Roots()
	queued := make(map[string]bool, c.graph.Len())
	for _, name := range ready {
		queued[name] = true
	}

	log.Info("starting workflow", "steps", c.graph.Len(), "order", c.graph.Order())

	if err := c.preflight(log); err != nil {
		return report, err
	}

	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]

		if err := c.runStep(ctx, log, name, initial, report.Outputs); err != nil {
			return report, err
		}
		report.Executed = append(report.Executed, name)

		for _, next := range c.graph.Dependents(name) {
			inDegree[next]--
			if inDegree[next] == 0 && !queued[next] {
				queued[next] = true
				ready = append(ready, next)
			}
		}
	}

	if len(report.Executed) != c.graph.Len() {
		var stuck []string
		for _, name := range c.graph.Names() {
			if !report.Ran(name) {
				stuck = append(stuck, name)
			}
		}
		return report, &api.GraphError{Reason: "steps never became ready", Steps: stuck}
	}

	log.Info("workflow completed", "executed", report.Executed)
	return report, nil
}

// preflight checks the credentials of every step up front so that a single
// run reports all missing names before any step touches the network.
func (c *Coordinator) preflight(log *slog.Logger) error {
	var required []string
	for _, name := range c.graph.Names() {
		log.Debug("step registered", "step", name, "state", StatePending)
		required = append(required, steps.Required(c.steps[name])...)
	}
	if err := c.env.Validate(required...); err != nil {
		log.Error("credential check failed", "error", err)
		return fmt.Errorf("checking credentials: %w", err)
	}
	return nil
}

func (c *Coordinator) runStep(ctx context.Context, log *slog.Logger, name string, initial api.Values, store *OutputStore) error {
	step := c.steps[name]
	log = log.With("step", name)

	inputs := c.inputsFor(name, initial, store)

	if err := c.env.Validate(steps.Required(step)...); err != nil {
		log.Error("step failed", "state", StateFailed, "error", err)
		return fmt.Errorf("step %q: %w", name, err)
	}

	log.Info("running step", "state", StateRunning)
	outputs, err := step.Run(ctx, inputs)
	if err != nil {
		log.Error("step failed", "state", StateFailed, "error", err)
		return fmt.Errorf("step %q failed: %w", name, err)
	}

	if err := store.Put(name, outputs); err != nil {
		return err
	}
	log.Info("step succeeded", "state", StateSucceeded, "outputs", len(outputs))
	return nil
}

func (c *Coordinator) inputsFor(name string, initial api.Values, store *OutputStore) api.Values {
	deps := c.graph.Dependencies(name)
	inputs := make(api.Values)
	for _, dep := range deps {
		if outputs, ok := store.Get(dep); ok {
			maps.Copy(inputs, outputs)
		}
	}
	if len(deps) == 0 {
		inputs = MergeContext(inputs, initial)
	}
	return inputs
}

// RunWorkflow runs wf once with taskContext as the initial context.
func RunWorkflow(ctx context.Context, wf *api.Workflow, deps steps.Deps, taskContext api.Values) error {
	coordinator, err := FromWorkflow(wf, deps)
	if err != nil {
		return err
	}
	_, err = coordinator.Run(ctx, taskContext)
	return err
}

// RunInstances runs wf once per instance. A failed instance is logged and the
// remaining instances still run, except after a configuration error: all
// instances share deps.Env, so the rest are skipped.
func RunInstances(ctx context.Context, wf *api.Workflow, deps steps.Deps, global api.Values, cfg *api.InstancesConfig) error {
	var (
		failed []string
		errs   []error
	)

	for i, inst := range cfg.Instances {
		slog.Info("processing instance", "name", inst.Name, "repository", inst.Repository)

		taskContext := MergeContext(global, inst.TaskContext())
		err := RunWorkflow(ctx, wf, deps, taskContext)
		if err == nil {
			slog.Info("instance succeeded", "name", inst.Name)
			continue
		}

		slog.Error("instance failed", "name", inst.Name, "error", err)
		failed = append(failed, inst.Name)
		errs = append(errs, fmt.Errorf("instance %q: %w", inst.Name, err))

		var cfgErr *api.ConfigurationError
		if errors.As(err, &cfgErr) {
			if skipped := len(cfg.Instances) - i - 1; skipped > 0 {
				slog.Warn("skipping remaining instances", "count", skipped, "missing", cfgErr.Missing)
			}
			break
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d instance(s) failed: %v: %w", len(failed), failed, errors.Join(errs...))
	}

	return nil
}
