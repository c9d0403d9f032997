package catalog

import (
	"context"
	"fmt"
)

// ActionError is returned when an action in a plan fails.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %q failed: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Runner executes actions strictly sequentially.
type Runner struct {
	Registry *Registry
	Env      *Environment
}

func NewRunner(r *Registry, env *Environment) *Runner {
	return &Runner{Registry: r, Env: env}
}

// Run executes name after its dependencies. The first failure stops the plan.
func (r *Runner) Run(ctx context.Context, name string) error {
	plan, err := r.Registry.Plan(name)
	if err != nil {
		return err
	}
	for _, a := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Env.Logger.Debug("Executing action", "action", a.Name, "group", a.Group)
		if err := r.execute(ctx, a); err != nil {
			return &ActionError{Action: a.Name, Err: err}
		}
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, a *Action) error {
	if a.Do != nil {
		return a.Do(ctx, r.Env)
	}
	if len(a.Commands) > 0 {
		return r.Env.RunCommands(a.Commands)
	}
	return nil
}
