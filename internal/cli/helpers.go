package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/cadbridge/internal/logging"
	"github.com/fatih/color"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// Debug overrides the configured level.
func createLogger(opts logging.Options, debug bool) *slog.Logger {
	if debug {
		opts.Level = slog.LevelDebug
	}
	return logging.New(opts)
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
	keyColor  = color.New(color.Bold)
)

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func printOK(w io.Writer, format string, args ...any) {
	okColor.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

func printWarn(w io.Writer, format string, args ...any) {
	warnColor.Fprintf(w, "~ %s\n", fmt.Sprintf(format, args...))
}

func printFailure(w io.Writer, format string, args ...any) {
	failColor.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

func printField(w io.Writer, key string, value any) {
	keyColor.Fprintf(w, "  %-10s", key)
	fmt.Fprintf(w, " %v\n", value)
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// handleExecutionError reports err and hides interruptions from the exit code.
func handleExecutionError(w io.Writer, err error, sig os.Signal) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		switch sig {
		case os.Interrupt:
			fmt.Fprintf(w, "[CTRL+C]\n")
			printSystemMessage(w, "Interrupted.")
		case nil:
			printSystemMessage(w, "Cancelled.")
		default:
			printSystemMessage(w, "Terminated.")
		}
		return nil
	}
	printFailure(w, "%v", err)
	return err
}
