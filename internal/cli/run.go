package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/pkg/script"
)

// RunScript loads the script at path and runs it against the configured host.
func RunScript(ctx context.Context, opts Options, path string, params map[string]float64) error {
	w := opts.out()
	doc, err := loadScript(path, params)
	if err != nil {
		return handleExecutionError(w, err, nil)
	}

	sc := NewSignalContext(ctx)
	defer sc.Cancel()

	env, err := Connect(sc, opts)
	if err != nil {
		return handleExecutionError(w, err, sc.Signal())
	}
	defer env.Close()

	res, err := script.Run(sc, env.CAD, doc)
	printResult(w, res)
	return handleExecutionError(w, err, sc.Signal())
}

// Plan runs the script against the simulator and prints every host call it
// would make, without touching a real host.
func Plan(ctx context.Context, opts Options, path string, params map[string]float64) error {
	w := opts.out()
	doc, err := loadScript(path, params)
	if err != nil {
		return handleExecutionError(w, err, nil)
	}

	opts.DryRun = true
	opts.RedisAddr = ""
	env, err := Connect(ctx, opts)
	if err != nil {
		return handleExecutionError(w, err, nil)
	}
	defer env.Close()

	res, runErr := script.Run(ctx, env.CAD, doc)
	for i, c := range env.Host.Calls() {
		fmt.Fprintf(w, "%4d  %s\n", i+1, c)
	}
	printResult(w, res)
	return handleExecutionError(w, runErr, nil)
}

func loadScript(path string, params map[string]float64) (*script.Document, error) {
	doc, err := script.Load(path)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 && doc.Params == nil {
		doc.Params = make(map[string]float64, len(params))
	}
	for k, v := range params {
		doc.Params[k] = v
	}
	return doc, doc.Validate()
}

func printResult(w io.Writer, res *script.Result) {
	if res == nil {
		return
	}
	printSystemMessage(w, "%s: %d operation(s) in %s", res.Name, res.Operations, res.Duration.Round(time.Millisecond))
}

// Recipe connects and runs one built-in recipe.
func Recipe(ctx context.Context, opts Options, build func(ctx context.Context, cad *cadbridge.Automation) (cadbridge.RecipeResult, error)) error {
	w := opts.out()
	sc := NewSignalContext(ctx)
	defer sc.Cancel()

	env, err := Connect(sc, opts)
	if err != nil {
		return handleExecutionError(w, err, sc.Signal())
	}
	defer env.Close()

	res, err := build(sc, env.CAD)
	if err != nil {
		return handleExecutionError(w, err, sc.Signal())
	}
	printOK(w, "%s", res)
	printField(w, "duration", res.Duration.Round(time.Millisecond))
	return nil
}
