package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHostContract verifies that a Dialer yields an application object with an
// open part document, as every adapter expects after a successful connect.
func RunHostContract(t *testing.T, dialer Dialer) {
	ctx := context.Background()

	app, err := dialer.Dial(ctx)
	require.NoError(t, err, "Dial should succeed")
	require.NotNil(t, app)

	t.Run("ActiveDoc", func(t *testing.T) {
		v, err := app.Get(ctx, "ActiveDoc")
		require.NoError(t, err)
		doc, ok := AsObject(v)
		require.True(t, ok, "ActiveDoc should be an object")

		kind, err := doc.Get(ctx, "GetType")
		require.NoError(t, err)
		n, err := AsInt32(kind)
		require.NoError(t, err)
		assert.Equal(t, int32(1), n, "contract host must have a part open")
	})

	t.Run("Managers", func(t *testing.T) {
		v, err := app.Get(ctx, "ActiveDoc")
		require.NoError(t, err)
		doc, _ := AsObject(v)
		for _, prop := range []string{"SketchManager", "FeatureManager", "SelectionManager", "Extension"} {
			m, err := doc.Get(ctx, prop)
			require.NoError(t, err, prop)
			_, ok := AsObject(m)
			assert.True(t, ok, "%s should be an object", prop)
		}
	})

	t.Run("SelectPlane", func(t *testing.T) {
		v, _ := app.Get(ctx, "ActiveDoc")
		doc, _ := AsObject(v)
		ext, _ := doc.Get(ctx, "Extension")
		extObj, _ := AsObject(ext)
		ok, err := extObj.Call(ctx, "SelectByID2", "Front Plane", "PLANE", 0.0, 0.0, 0.0, false, int32(0), Null, int32(0))
		require.NoError(t, err)
		assert.True(t, AsBool(ok))
	})
}

// RunLockerContract verifies mutual exclusion of a DistributedLocker.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405.000")

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("Mutual Exclusion", func(t *testing.T) {
		var (
			mu      sync.Mutex
			holders int
			maxSeen int
			wg      sync.WaitGroup
		)
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, key, 5*time.Second)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				holders++
				if holders > maxSeen {
					maxSeen = holders
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				holders--
				mu.Unlock()
				assert.NoError(t, unlock(ctx))
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen, "only one holder at a time")
	})

	t.Run("Context Cancel", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		defer unlock(ctx)

		cctx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(cctx, key, 5*time.Second)
		assert.Error(t, err)
	})
}
