package feature

import "github.com/aretw0/cadbridge/pkg/domain"

// ExtrusionParams is the positional argument list of FeatureExtrusion3.
// Lengths are metres, angles radians.
type ExtrusionParams struct {
	SingleDir         bool
	Flip              bool
	Dir               bool
	T1                domain.EndCondition
	T2                domain.EndCondition
	D1                float64
	D2                float64
	Dchk1             bool
	Dchk2             bool
	Ddir1             bool
	Ddir2             bool
	Dang1             float64
	Dang2             float64
	OffsetReverse1    bool
	OffsetReverse2    bool
	TranslateSurface1 bool
	TranslateSurface2 bool
	Merge             bool
	UseFeatScope      bool
	UseAutoSelect     bool
	T0                int32
	StartOffset       float64
	FlipStartOffset   bool
}

// DefaultExtrusion returns a blind, single-direction, merged boss.
func DefaultExtrusion() ExtrusionParams {
	return ExtrusionParams{
		SingleDir:     true,
		T1:            domain.EndBlind,
		T2:            domain.EndBlind,
		Merge:         true,
		UseFeatScope:  true,
		UseAutoSelect: true,
	}
}

// Args flattens the parameters in host order.
func (p ExtrusionParams) Args() []any {
	return []any{
		p.SingleDir, p.Flip, p.Dir,
		int32(p.T1), int32(p.T2),
		p.D1, p.D2,
		p.Dchk1, p.Dchk2, p.Ddir1, p.Ddir2,
		p.Dang1, p.Dang2,
		p.OffsetReverse1, p.OffsetReverse2,
		p.TranslateSurface1, p.TranslateSurface2,
		p.Merge, p.UseFeatScope, p.UseAutoSelect,
		p.T0, p.StartOffset, p.FlipStartOffset,
	}
}

// CutParams is the positional argument list of FeatureCut.
type CutParams struct {
	SingleDir bool
	Flip      bool
	Dir       bool
	T1        domain.EndCondition
	T2        domain.EndCondition
	D1        float64
	D2        float64
	Dchk1     bool
	Dchk2     bool
	Ddir1     bool
	Ddir2     bool
	Dang1     float64
	Dang2     float64
}

// DefaultCut returns a blind, single-direction cut.
func DefaultCut() CutParams {
	return CutParams{SingleDir: true, T1: domain.EndBlind, T2: domain.EndBlind}
}

// Args flattens the parameters in host order.
func (p CutParams) Args() []any {
	return []any{
		p.SingleDir, p.Flip, p.Dir,
		int32(p.T1), int32(p.T2),
		p.D1, p.D2,
		p.Dchk1, p.Dchk2, p.Ddir1, p.Ddir2,
		p.Dang1, p.Dang2,
	}
}

// Chamfer option and type codes.
const (
	ChamferUseSelection int32 = 2
	ChamferAngleDist    int32 = 1
)

// ChamferParams is the positional argument list of InsertFeatureChamfer.
type ChamferParams struct {
	Options         int32
	Type            int32
	Width           float64
	Angle           float64
	OtherDist       float64
	VertexChamDist1 float64
	VertexChamDist2 float64
	VertexChamDist3 float64
}

// DefaultChamfer returns an angle-distance chamfer on the current selection.
func DefaultChamfer() ChamferParams {
	return ChamferParams{Options: ChamferUseSelection, Type: ChamferAngleDist}
}

// Args flattens the parameters in host order.
func (p ChamferParams) Args() []any {
	return []any{
		p.Options, p.Type, p.Width, p.Angle, p.OtherDist,
		p.VertexChamDist1, p.VertexChamDist2, p.VertexChamDist3,
	}
}

// FilletPropagate enables tangent propagation and the other default fillet option bits.
const FilletPropagate int32 = 195

// FilletParams is the positional argument list of FeatureFillet3.
type FilletParams struct {
	Options            int32
	R1                 float64
	FilletType         int32
	OverflowType       int32
	Radii              [9]float64
	TangentPropagation bool
	FullPreview        bool
	PartialPreview     bool
	Isocurves          bool
	Curvature          bool
	Zebra              bool
	Faceted            bool
}

// DefaultFillet returns a constant-radius fillet on the current selection.
func DefaultFillet() FilletParams {
	return FilletParams{Options: FilletPropagate, TangentPropagation: true}
}

// Args flattens the parameters in host order.
func (p FilletParams) Args() []any {
	args := []any{p.Options, p.R1, p.FilletType, p.OverflowType}
	for _, r := range p.Radii {
		args = append(args, r)
	}
	return append(args,
		p.TangentPropagation, p.FullPreview, p.PartialPreview,
		p.Isocurves, p.Curvature, p.Zebra, p.Faceted,
	)
}

// LinearPatternParams is the positional argument list of FeatureLinearPattern4.
type LinearPatternParams struct {
	D1Num           int32
	D1Spacing       float64
	D2Num           int32
	D2Spacing       float64
	D1Reverse       bool
	D2Reverse       bool
	D1              [3]float64
	D2              [3]float64
	GeometryPattern bool
	VarySketch      bool
	CreateSeeds     bool
}

// DefaultLinearPattern returns a one-direction pattern along X.
func DefaultLinearPattern() LinearPatternParams {
	return LinearPatternParams{
		D1Num:       1,
		D2Num:       1,
		D1Reverse:   true,
		D1:          domain.AxisX.Vector(),
		D2:          domain.AxisY.Vector(),
		CreateSeeds: true,
	}
}

// Args flattens the parameters in host order.
func (p LinearPatternParams) Args() []any {
	return []any{
		p.D1Num, p.D1Spacing, p.D2Num, p.D2Spacing,
		p.D1Reverse, p.D2Reverse,
		p.D1[0], p.D1[1], p.D1[2],
		p.D2[0], p.D2[1], p.D2[2],
		p.GeometryPattern, p.VarySketch, p.CreateSeeds,
	}
}

// RevolveParams is the positional argument list of FeatureRevolve2.
type RevolveParams struct {
	SingleDir      bool
	IsSolid        bool
	IsThin         bool
	IsCut          bool
	ReverseDir     bool
	BothDirUpTo    bool
	Dir1Type       domain.EndCondition
	Dir2Type       domain.EndCondition
	Dir1Angle      float64
	Dir2Angle      float64
	OffsetReverse1 bool
	OffsetReverse2 bool
	OffsetDist1    float64
	OffsetDist2    float64
	ThinType       int32
	ThinThickness1 float64
	ThinThickness2 float64
	Merge          bool
	UseFeatScope   bool
	UseAutoSelect  bool
}

// DefaultRevolve returns a blind, single-direction solid revolve.
func DefaultRevolve() RevolveParams {
	return RevolveParams{
		SingleDir:     true,
		IsSolid:       true,
		Dir1Type:      domain.EndBlind,
		Dir2Type:      domain.EndBlind,
		Merge:         true,
		UseFeatScope:  true,
		UseAutoSelect: true,
	}
}

// Args flattens the parameters in host order.
func (p RevolveParams) Args() []any {
	return []any{
		p.SingleDir, p.IsSolid, p.IsThin, p.IsCut, p.ReverseDir, p.BothDirUpTo,
		int32(p.Dir1Type), int32(p.Dir2Type),
		p.Dir1Angle, p.Dir2Angle,
		p.OffsetReverse1, p.OffsetReverse2, p.OffsetDist1, p.OffsetDist2,
		p.ThinType, p.ThinThickness1, p.ThinThickness2,
		p.Merge, p.UseFeatScope, p.UseAutoSelect,
	}
}

// RefPlaneOffset is the reference-plane constraint code for an offset distance.
const RefPlaneOffset int32 = 8

// RefPlaneParams is the positional argument list of InsertRefPlane.
type RefPlaneParams struct {
	FirstConstraint  int32
	FirstValue       float64
	SecondConstraint int32
	SecondValue      float64
	ThirdConstraint  int32
	ThirdValue       float64
}

// Args flattens the parameters in host order.
func (p RefPlaneParams) Args() []any {
	return []any{
		p.FirstConstraint, p.FirstValue,
		p.SecondConstraint, p.SecondValue,
		p.ThirdConstraint, p.ThirdValue,
	}
}

// MirrorParams is the positional argument list of InsertMirrorFeature2.
type MirrorParams struct {
	MirrorBody           bool
	GeometryPattern      bool
	PropagateVisualProps bool
	FullPreview          bool
}

// DefaultMirror mirrors bodies with visual properties.
func DefaultMirror() MirrorParams {
	return MirrorParams{MirrorBody: true, PropagateVisualProps: true, FullPreview: true}
}

// Args flattens the parameters in host order.
func (p MirrorParams) Args() []any {
	return []any{p.MirrorBody, p.GeometryPattern, p.PropagateVisualProps, p.FullPreview}
}
