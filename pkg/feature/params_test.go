package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgs_Arity(t *testing.T) {
	cases := map[string]struct {
		args []any
		want int
	}{
		"FeatureExtrusion3":     {DefaultExtrusion().Args(), 23},
		"FeatureCut":            {DefaultCut().Args(), 13},
		"InsertFeatureChamfer":  {DefaultChamfer().Args(), 8},
		"FeatureFillet3":        {DefaultFillet().Args(), 20},
		"FeatureLinearPattern4": {DefaultLinearPattern().Args(), 15},
		"FeatureRevolve2":       {DefaultRevolve().Args(), 20},
		"InsertRefPlane":        {RefPlaneParams{}.Args(), 6},
		"InsertMirrorFeature2":  {DefaultMirror().Args(), 4},
	}
	for method, tc := range cases {
		t.Run(method, func(t *testing.T) {
			assert.Len(t, tc.args, tc.want)
		})
	}
}

func TestDefaults(t *testing.T) {
	ext := DefaultExtrusion().Args()
	assert.Equal(t, true, ext[17], "Merge")
	assert.Equal(t, true, ext[18], "UseFeatScope")
	assert.Equal(t, true, ext[19], "UseAutoSelect")

	ch := DefaultChamfer().Args()
	assert.Equal(t, int32(2), ch[0])
	assert.Equal(t, int32(1), ch[1])

	f := DefaultFillet().Args()
	assert.Equal(t, int32(195), f[0])
	assert.Equal(t, true, f[13], "TangentPropagation")

	lp := DefaultLinearPattern().Args()
	assert.Equal(t, true, lp[14], "CreateSeeds")
	assert.Equal(t, 1.0, lp[10], "second direction is Y")
}
