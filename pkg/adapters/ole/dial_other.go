//go:build !windows

package ole

import (
	"context"
	"fmt"
	"runtime"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
)

// Dial fails: COM automation is only available on Windows.
func (d *Dialer) Dial(ctx context.Context) (ports.Object, error) {
	return nil, fmt.Errorf("%w: %s: COM automation is not available on %s", domain.ErrConnection, d.progID, runtime.GOOS)
}
