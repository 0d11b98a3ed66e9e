package script_test

import (
	"testing"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	vars := map[string]float64{"w": 100, "cell": 8, "i": -3}

	tests := []struct {
		expr string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"w / 2", 50},
		{"-w", -100},
		{"i * cell", -24},
		{"cell * 0.6", 4.8},
		{"2 - -3", 5},
		{"1e3 / 4", 250},
		{"cos(60) * 2", 1},
		{"sqrt(16) + abs(i)", 7},
		{"max(1, w, 3) - min(4, 2)", 98},
		{"2 * pi", 6.283185307179586},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := script.Eval(tt.expr, vars)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"1 +", domain.ErrInvalidParameter},
		{"(1 + 2", domain.ErrInvalidParameter},
		{"1 / 0", domain.ErrInvalidParameter},
		{"w + 1", domain.ErrUnknownName},
		{"foo(1)", domain.ErrUnknownName},
		{"sin(1, 2)", domain.ErrInvalidParameter},
		{"3 4", domain.ErrInvalidParameter},
		{"", domain.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := script.Eval(tt.expr, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
