package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := registry.New()
	r.Register(registry.Entry{
		Name: "b.echo",
		Fn: func(_ context.Context, args map[string]any) (any, error) {
			return args["v"], nil
		},
	})
	r.Register(registry.Entry{Name: "a.nil", Fn: func(_ context.Context, args map[string]any) (any, error) {
		return len(args), nil
	}})

	v, err := r.Execute(context.Background(), "b.echo", map[string]any{"v": 3})
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = r.Execute(context.Background(), "a.nil", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	_, err = r.Execute(context.Background(), "c.missing", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownName)

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.nil", entries[0].Name)
}
