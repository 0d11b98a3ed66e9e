package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	cadhttp "github.com/aretw0/cadbridge/pkg/adapters/http"
	cadmcp "github.com/aretw0/cadbridge/pkg/adapters/mcp"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP listener.
const ShutdownTimeout = 5 * time.Second

// Serve exposes the host over HTTP until interrupted. A non-empty addr
// overrides the configured listen address.
func Serve(ctx context.Context, opts Options, addr string) error {
	w := opts.out()
	sc := NewSignalContext(ctx)
	defer sc.Cancel()

	env, err := Connect(sc, opts)
	if err != nil {
		return handleExecutionError(w, err, sc.Signal())
	}
	defer env.Close()

	if addr == "" {
		addr = env.Config.HTTP.Addr
	}
	srv := &http.Server{
		Addr: addr,
		Handler: cadhttp.NewHandler(env.CAD,
			cadhttp.WithLogger(env.Logger),
			cadhttp.WithGatherer(env.Registry),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(sc)
	g.Go(func() error {
		printOK(w, "Listening on http://%s", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			env.Logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		return nil
	})

	err = g.Wait()
	if err == nil {
		printSystemMessage(w, "Server stopped gracefully")
	}
	return handleExecutionError(w, err, sc.Signal())
}

// ServeMCP runs the MCP server over stdio, or over SSE when sseAddr is set.
func ServeMCP(ctx context.Context, opts Options, sseAddr string) error {
	sc := NewSignalContext(ctx)
	defer sc.Cancel()

	env, err := Connect(sc, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	srv := cadmcp.NewServer(env.CAD, cadmcp.WithLogger(env.Logger))
	if sseAddr == "" {
		env.Logger.Info("Starting MCP server", "transport", "stdio")
		return srv.ServeStdio()
	}
	env.Logger.Info("Starting MCP server", "transport", "sse", "addr", sseAddr)
	if err := srv.ServeSSE(sc, sseAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	env.Logger.Info("MCP server stopped gracefully")
	return nil
}
