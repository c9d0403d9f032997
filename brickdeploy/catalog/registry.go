package catalog

import (
	"context"
	"fmt"
	"sync"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/steelcutops/brickdeploy/brickdeploy/commandmanager"
)

// Action is a named, grouped unit of work. Actions with Commands run them
// over one session; actions with Do run local or custom logic. An action
// with neither only orders its dependencies.
type Action struct {
	Name        string
	Group       string
	Description string
	Commands    []commandmanager.Producer
	Do          func(ctx context.Context, env *Environment) error
	DependsOn   []string
}

// Registry keeps actions in registration order.
type Registry struct {
	sync.RWMutex
	actions map[string]*Action
	order   []string
}

// NewRegistry creates a Registry holding the given actions. Duplicate names
// are rejected.
func NewRegistry(actions ...*Action) (*Registry, error) {
	r := &Registry{actions: make(map[string]*Action)}
	for _, a := range actions {
		if err := r.Add(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a. Names are unique.
func (r *Registry) Add(a *Action) error {
	r.Lock()
	defer r.Unlock()
	if a.Name == "" {
		return fmt.Errorf("action has no name")
	}
	if _, exists := r.actions[a.Name]; exists {
		return fmt.Errorf("action %q already registered", a.Name)
	}
	r.actions[a.Name] = a
	r.order = append(r.order, a.Name)
	return nil
}

func (r *Registry) Get(name string) (*Action, bool) {
	r.RLock()
	defer r.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// Actions returns every action in registration order.
func (r *Registry) Actions() []*Action {
	r.RLock()
	defer r.RUnlock()
	out := make([]*Action, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.actions[name])
	}
	return out
}

// Groups returns the distinct group names in order of first appearance.
func (r *Registry) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, a := range r.Actions() {
		if !seen[a.Group] {
			seen[a.Group] = true
			groups = append(groups, a.Group)
		}
	}
	return groups
}

// Plan lists the actions needed to run name: dependencies first, in declared
// order, each action once.
func (r *Registry) Plan(name string) ([]*Action, error) {
	r.RLock()
	defer r.RUnlock()

	var plan []*Action
	done := make(map[string]bool)
	visiting := make(map[string]bool)

	var visit func(name string, from string) error
	visit = func(name, from string) error {
		if done[name] {
			return nil
		}
		if visiting[name] {
			return fmt.Errorf("dependency cycle through %q", name)
		}
		a, ok := r.actions[name]
		if !ok {
			if from == "" {
				return fmt.Errorf("unknown action %q", name)
			}
			return fmt.Errorf("action %q depends on unknown action %q", from, name)
		}
		visiting[name] = true
		for _, dep := range a.DependsOn {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		visiting[name] = false
		done[name] = true
		plan = append(plan, a)
		return nil
	}

	if err := visit(name, ""); err != nil {
		return nil, err
	}
	return plan, nil
}

// Validate checks that every action can be planned.
func (r *Registry) Validate() error {
	var result *multierror.Error
	for _, a := range r.Actions() {
		if _, err := r.Plan(a.Name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
