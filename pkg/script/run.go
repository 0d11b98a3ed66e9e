package script

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/internal/logging"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/registry"
	"github.com/aretw0/cadbridge/pkg/session"
	"github.com/google/uuid"
)

// MaxOperations bounds the operations one run may execute, repeats included.
const MaxOperations = 10000

// Output is the value returned by one executed operation.
type Output struct {
	Step  string `json:"step"`
	Op    string `json:"op"`
	Value any    `json:"value,omitempty"`
}

// Result summarizes a completed run.
type Result struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Operations int           `json:"operations"`
	Duration   time.Duration `json:"duration"`
	Outputs    []Output      `json:"outputs,omitempty"`
}

// Runner executes documents against a registry.
type Runner struct {
	Registry *registry.Registry
	// Session, when set, is held for the whole run so other clients cannot
	// interleave host calls.
	Session *session.Session
	Logger  *slog.Logger
}

// Run executes doc against cad.
func Run(ctx context.Context, cad *cadbridge.Automation, doc *Document) (*Result, error) {
	r := &Runner{
		Registry: Operations(cad),
		Session:  cad.Session(),
		Logger:   cad.Logger(),
	}
	return r.Run(ctx, doc)
}

// Run executes the steps of doc in order and stops at the first failure.
// The partial result is returned alongside the error.
func (r *Runner) Run(ctx context.Context, doc *Document) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	res := &Result{ID: uuid.NewString(), Name: doc.Name}
	logger = logger.With("run_id", res.ID, "script", doc.Name)

	vars := make(map[string]float64, len(doc.Params))
	for k, v := range doc.Params {
		vars[k] = v
	}

	start := time.Now()
	logger.Info("Script started", "steps", len(doc.Steps))
	exec := &execution{runner: r, logger: logger, result: res}
	body := func(ctx context.Context) error { return exec.steps(ctx, doc.Steps, "", vars) }

	var err error
	if r.Session != nil {
		err = r.Session.Do(ctx, "script", body)
	} else {
		err = body(ctx)
	}
	res.Duration = time.Since(start)
	if err != nil {
		logger.Warn("Script failed", "operations", res.Operations, "err", err)
		return res, err
	}
	logger.Info("Script finished", "operations", res.Operations, "duration", res.Duration)
	return res, nil
}

type execution struct {
	runner *Runner
	logger *slog.Logger
	result *Result
}

func (e *execution) steps(ctx context.Context, steps []Step, prefix string, vars map[string]float64) error {
	for i, s := range steps {
		at := prefix + strconv.Itoa(i+1)
		if s.Repeat == nil {
			if err := e.step(ctx, s, at, vars); err != nil {
				return err
			}
			continue
		}
		values, err := s.Repeat.values(vars)
		if err != nil {
			return fmt.Errorf("step %s: %w", at, err)
		}
		for _, v := range values {
			scope := make(map[string]float64, len(vars)+1)
			for k, x := range vars {
				scope[k] = x
			}
			scope[s.Repeat.Var] = v
			if err := e.step(ctx, s, at+"["+s.Repeat.Var+"="+format(v)+"]", scope); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *execution) step(ctx context.Context, s Step, at string, vars map[string]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Op == "" {
		return e.steps(ctx, s.Steps, at+".", vars)
	}
	if e.result.Operations >= MaxOperations {
		return domain.Invalid("step %s: script exceeds %d operations", at, MaxOperations)
	}

	args, err := resolve(s.Args, vars)
	if err != nil {
		return fmt.Errorf("step %s (%s): %w", at, s.Op, err)
	}
	argMap, _ := args.(map[string]any)

	e.logger.Debug("Step", "step", at, "op", s.Op)
	v, err := e.runner.Registry.Execute(ctx, s.Op, argMap)
	if err != nil {
		return fmt.Errorf("step %s (%s): %w", at, s.Op, err)
	}
	e.result.Operations++
	if v != nil {
		e.result.Outputs = append(e.result.Outputs, Output{Step: at, Op: s.Op, Value: v})
	}
	return nil
}

func (r *Repeat) values(vars map[string]float64) ([]float64, error) {
	from, err := number(r.From, vars)
	if err != nil {
		return nil, fmt.Errorf("repeat from: %w", err)
	}
	to, err := number(r.To, vars)
	if err != nil {
		return nil, fmt.Errorf("repeat to: %w", err)
	}
	step := 1.0
	if r.Step != nil {
		if step, err = number(r.Step, vars); err != nil {
			return nil, fmt.Errorf("repeat step: %w", err)
		}
	}
	for _, v := range []float64{from, to, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, domain.Invalid("repeat %s from %g to %g by %g is not finite", r.Var, from, to, step)
		}
	}
	if step == 0 || (to-from)/step < 0 {
		return nil, domain.Invalid("repeat %s from %g to %g by %g never terminates", r.Var, from, to, step)
	}
	// The count is bounded as a float so the int conversion cannot overflow.
	count := math.Floor((to-from)/step+1e-9) + 1
	if math.IsNaN(count) || count > MaxOperations {
		return nil, domain.Invalid("repeat %s has %g iterations", r.Var, count)
	}
	out := make([]float64, int(count))
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out, nil
}

var (
	wholeExpr = regexp.MustCompile(`^\s*\$\{([^}]*)\}\s*$`)
	embedExpr = regexp.MustCompile(`\$\{([^}]*)\}`)
)

// resolve substitutes ${expr} references in v. A string that is a single
// reference becomes a number; references embedded in longer strings are
// formatted in place.
func resolve(v any, vars map[string]float64) (any, error) {
	switch x := v.(type) {
	case string:
		if m := wholeExpr.FindStringSubmatch(x); m != nil {
			return Eval(m[1], vars)
		}
		if !strings.Contains(x, "${") {
			return x, nil
		}
		var firstErr error
		out := embedExpr.ReplaceAllStringFunc(x, func(ref string) string {
			f, err := Eval(embedExpr.FindStringSubmatch(ref)[1], vars)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return format(f)
		})
		return out, firstErr
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			r, err := resolve(item, vars)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			r, err := resolve(item, vars)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	return v, nil
}

// number reads a repeat bound: a literal or an expression with or without
// the ${} wrapper.
func number(v any, vars map[string]float64) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		if m := wholeExpr.FindStringSubmatch(x); m != nil {
			x = m[1]
		}
		return Eval(x, vars)
	}
	return 0, domain.Invalid("expected a number or expression, got %T", v)
}

func format(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
