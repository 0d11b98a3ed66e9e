//go:build windows

package ole

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// sFalse is returned by CoInitializeEx when the thread is already initialized.
const sFalse = 0x00000001

// Dial attaches to the running application. Every COM call made through the
// returned object runs on one OS thread initialized as a single-threaded
// apartment. Close the object (the session does) to release it.
func (d *Dialer) Dial(ctx context.Context) (ports.Object, error) {
	apt, err := newApartment()
	if err != nil {
		return nil, fmt.Errorf("%w: initializing COM: %v", domain.ErrConnection, err)
	}

	var disp *ole.IDispatch
	err = apt.run(ctx, func() error {
		unknown, err := oleutil.GetActiveObject(d.progID)
		if err != nil {
			return err
		}
		defer unknown.Release()
		disp, err = unknown.QueryInterface(ole.IID_IDispatch)
		return err
	})
	if err != nil {
		apt.stop()
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrConnection, d.progID, err)
	}
	d.logger.Info("Attached to host", "prog_id", d.progID)
	return &application{object: newObject(apt, disp, "Application"), dialer: d}, nil
}

// application is the root object; closing it ends the apartment.
type application struct {
	*object
	dialer *Dialer
}

func (a *application) Close() error {
	a.apt.stop()
	a.dialer.logger.Debug("Released host", "prog_id", a.dialer.progID)
	return nil
}

// apartment serializes COM calls onto one locked OS thread.
type apartment struct {
	calls chan func()
	done  chan struct{}
	once  sync.Once
}

func newApartment() (*apartment, error) {
	a := &apartment{
		calls: make(chan func()),
		done:  make(chan struct{}),
	}
	ready := make(chan error, 1)
	go a.loop(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return a, nil
}

func (a *apartment) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			ready <- err
			return
		}
	}
	defer ole.CoUninitialize()
	ready <- nil

	for {
		select {
		case fn := <-a.calls:
			fn()
		case <-a.done:
			return
		}
	}
}

// run executes fn on the apartment thread. A call already handed to the
// host is not interrupted by ctx.
func (a *apartment) run(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	select {
	case a.calls <- func() { errc <- fn() }:
	case <-a.done:
		return domain.ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-errc
}

// post queues fn without waiting for it.
func (a *apartment) post(fn func()) {
	go func() {
		select {
		case a.calls <- fn:
		case <-a.done:
		}
	}()
}

func (a *apartment) stop() {
	a.once.Do(func() { close(a.done) })
}
