package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/internal/config"
	"github.com/aretw0/cadbridge/pkg/adapters/memory"
	"github.com/aretw0/cadbridge/pkg/adapters/ole"
	"github.com/aretw0/cadbridge/pkg/adapters/redis"
	"github.com/aretw0/cadbridge/pkg/observability"
	"github.com/aretw0/cadbridge/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Options carries the persistent command-line flags.
type Options struct {
	ConfigPath string
	Debug      bool
	DryRun     bool
	RedisAddr  string
	Out        io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// Env is a connected Automation with everything that must be released with it.
type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	CAD      *cadbridge.Automation
	Host     *memory.Host // set when running against the simulator
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	closers []func() error
}

// Close disconnects from the host and releases the lock backend.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Connect loads configuration and connects to the host it names, or to the
// in-memory simulator when DryRun is set.
func Connect(ctx context.Context, opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.RedisAddr != "" {
		cfg.Redis.Addr = opts.RedisAddr
	}
	logOpts, err := cfg.Logging()
	if err != nil {
		return nil, err
	}
	templates, err := cfg.DocumentTemplates()
	if err != nil {
		return nil, err
	}

	env := &Env{
		Config:   cfg,
		Logger:   createLogger(logOpts, opts.Debug),
		Registry: prometheus.NewRegistry(),
	}
	env.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	env.Metrics, err = observability.NewMetrics(env.Registry)
	if err != nil {
		return nil, err
	}

	var dialer ports.Dialer
	if opts.DryRun {
		env.Host = memory.NewHost()
		dialer = env.Host
	} else {
		dialer = ole.NewDialer(ole.WithProgID(cfg.Host.ProgID), ole.WithLogger(env.Logger))
	}

	cadOpts := []cadbridge.Option{
		cadbridge.WithLogger(env.Logger),
		cadbridge.WithName(cfg.Host.Name),
		cadbridge.WithHooks(env.Metrics.Hooks()),
		cadbridge.WithHooks(observability.LogHooks(env.Logger)),
		cadbridge.WithTemplates(templates),
		cadbridge.WithoutDocument(),
	}
	if b := cfg.BreakerSettings(); b != nil {
		cadOpts = append(cadOpts, cadbridge.WithBreaker(*b))
	}
	if cfg.Redis.Addr != "" {
		locker, err := redis.Dial(ctx, cfg.Redis.Addr, redis.WithPrefix(cfg.Redis.Prefix))
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, locker.Close)
		cadOpts = append(cadOpts, cadbridge.WithLocker(locker, cfg.Redis.LockTTL))
		env.Logger.Debug("Distributed lock enabled", "addr", cfg.Redis.Addr)
	}

	cad, err := cadbridge.New(ctx, dialer, cadOpts...)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	env.CAD = cad
	env.closers = append(env.closers, func() error {
		cad.Close()
		return nil
	})
	return env, nil
}

// Status prints the connected host and active document.
func Status(ctx context.Context, opts Options) error {
	env, err := Connect(ctx, opts)
	if err != nil {
		return handleExecutionError(opts.out(), err, nil)
	}
	defer env.Close()

	w := opts.out()
	st := env.CAD.Status(ctx)
	printOK(w, "Connected to %s", st.Host)
	printField(w, "revision", st.Revision)
	if st.Document == "" {
		printWarn(w, "No active document")
		return nil
	}
	printField(w, "document", st.Document)
	printField(w, "type", st.Type)
	return nil
}
