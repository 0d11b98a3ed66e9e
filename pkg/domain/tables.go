package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// nameTable is a bidirectional lookup between enum values and their names.
// The first name registered for a value is its canonical display name.
type nameTable[T comparable] struct {
	display map[T]string
	lookup  map[string]T
}

func newNameTable[T comparable](entries ...tableEntry[T]) nameTable[T] {
	t := nameTable[T]{
		display: make(map[T]string),
		lookup:  make(map[string]T),
	}
	for _, e := range entries {
		if _, ok := t.display[e.value]; !ok {
			t.display[e.value] = e.names[0]
		}
		for _, n := range e.names {
			t.lookup[strings.ToLower(n)] = e.value
		}
	}
	return t
}

type tableEntry[T comparable] struct {
	value T
	names []string
}

func entry[T comparable](v T, names ...string) tableEntry[T] {
	return tableEntry[T]{value: v, names: names}
}

func (t nameTable[T]) name(v T) (string, bool) {
	n, ok := t.display[v]
	return n, ok
}

func (t nameTable[T]) parse(kind, name string) (T, error) {
	v, ok := t.lookup[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %q", ErrUnknownName, kind, name)
	}
	return v, nil
}

func (t nameTable[T]) names() []string {
	out := make([]string, 0, len(t.lookup))
	for n := range t.lookup {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DocumentType is the host's document kind code.
type DocumentType int32

const (
	DocumentUnknown  DocumentType = 0
	DocumentPart     DocumentType = 1
	DocumentAssembly DocumentType = 2
	DocumentDrawing  DocumentType = 3
)

var documentTypes = newNameTable(
	entry(DocumentPart, "part", "teil", ".sldprt"),
	entry(DocumentAssembly, "assembly", "baugruppe", ".sldasm"),
	entry(DocumentDrawing, "drawing", "zeichnung", ".slddrw"),
)

func (d DocumentType) String() string {
	if n, ok := documentTypes.name(d); ok {
		return n
	}
	return fmt.Sprintf("document(%d)", int32(d))
}

// ParseDocumentType resolves a document kind from its name.
func ParseDocumentType(name string) (DocumentType, error) {
	return documentTypes.parse("document type", name)
}

// DocumentTypeForPath infers the document kind from a file extension.
// Unrecognized extensions are treated as parts.
func DocumentTypeForPath(path string) DocumentType {
	d, err := documentTypes.parse("extension", filepath.Ext(path))
	if err != nil {
		return DocumentPart
	}
	return d
}

// EndCondition is the host's feature end-condition code.
type EndCondition int32

const (
	EndBlind          EndCondition = 0
	EndThroughAll     EndCondition = 1
	EndThroughAllBoth EndCondition = 2
	EndUpToVertex     EndCondition = 3
	EndUpToSurface    EndCondition = 4
	EndMidPlane       EndCondition = 6
)

var endConditions = newNameTable(
	entry(EndBlind, "blind"),
	entry(EndThroughAll, "through_all", "durch_alles"),
	entry(EndThroughAllBoth, "through_all_both"),
	entry(EndUpToVertex, "up_to_vertex"),
	entry(EndUpToSurface, "up_to_surface"),
	entry(EndMidPlane, "mid_plane", "mittelebene"),
)

func (e EndCondition) String() string {
	if n, ok := endConditions.name(e); ok {
		return n
	}
	return fmt.Sprintf("end_condition(%d)", int32(e))
}

// ParseEndCondition resolves an end condition from its name.
func ParseEndCondition(name string) (EndCondition, error) {
	return endConditions.parse("end condition", name)
}

// Relation is the host's sketch constraint-type code.
type Relation int32

const (
	RelationCoincident    Relation = 3
	RelationTangent       Relation = 4
	RelationPerpendicular Relation = 5
	RelationHorizontal    Relation = 6
	RelationVertical      Relation = 7
	RelationParallel      Relation = 8
	RelationConcentric    Relation = 9
	RelationEqual         Relation = 10
	RelationFix           Relation = 11
)

var relations = newNameTable(
	entry(RelationHorizontal, "horizontal"),
	entry(RelationVertical, "vertical", "vertikal"),
	entry(RelationCoincident, "coincident", "koinzident"),
	entry(RelationTangent, "tangent", "tangential"),
	entry(RelationPerpendicular, "perpendicular", "senkrecht"),
	entry(RelationParallel, "parallel"),
	entry(RelationConcentric, "concentric", "konzentrisch"),
	entry(RelationEqual, "equal", "gleich"),
	entry(RelationFix, "fix", "fixiert"),
)

func (r Relation) String() string {
	if n, ok := relations.name(r); ok {
		return n
	}
	return fmt.Sprintf("relation(%d)", int32(r))
}

// ParseRelation resolves a sketch relation from an English or German name.
func ParseRelation(name string) (Relation, error) {
	return relations.parse("relation", name)
}

// RelationNames lists every accepted relation name, aliases included.
func RelationNames() []string {
	return relations.names()
}

// SelectionType is the host's ray-cast selection filter code.
type SelectionType int32

const (
	SelectEdges    SelectionType = 1
	SelectFaces    SelectionType = 2
	SelectVertices SelectionType = 3
)

var selectionTypes = newNameTable(
	entry(SelectFaces, "face", "faces", "flaeche"),
	entry(SelectEdges, "edge", "edges", "kante"),
	entry(SelectVertices, "vertex", "vertices", "punkt"),
)

func (s SelectionType) String() string {
	if n, ok := selectionTypes.name(s); ok {
		return n
	}
	return fmt.Sprintf("selection(%d)", int32(s))
}

// ParseSelectionType resolves a ray-cast filter from its name.
func ParseSelectionType(name string) (SelectionType, error) {
	return selectionTypes.parse("selection type", name)
}

// EntityType is the type string the host uses for select-by-name.
type EntityType string

const (
	EntityPlane       EntityType = "PLANE"
	EntityFace        EntityType = "FACE"
	EntityEdge        EntityType = "EDGE"
	EntityVertex      EntityType = "VERTEX"
	EntityBodyFeature EntityType = "BODYFEATURE"
	EntitySketch      EntityType = "SKETCH"
	EntityAxis        EntityType = "AXIS"
)

// ParseEntityType normalizes an entity type string.
func ParseEntityType(name string) (EntityType, error) {
	e := EntityType(strings.ToUpper(strings.TrimSpace(name)))
	switch e {
	case EntityPlane, EntityFace, EntityEdge, EntityVertex, EntityBodyFeature, EntitySketch, EntityAxis:
		return e, nil
	}
	return "", fmt.Errorf("%w: entity type %q", ErrUnknownName, name)
}

// Plane is the host name of a reference plane or plane-like feature.
type Plane string

const (
	PlaneFront Plane = "Front Plane"
	PlaneTop   Plane = "Top Plane"
	PlaneRight Plane = "Right Plane"
)

var planes = newNameTable(
	entry(PlaneFront, "front", "vorne", "front plane", "ebene vorne"),
	entry(PlaneTop, "top", "oben", "top plane", "ebene oben"),
	entry(PlaneRight, "right", "rechts", "right plane", "ebene rechts"),
)

// ResolvePlane maps a short or localized plane name to its host name.
// Names that are not standard planes are passed through as user-named planes.
func ResolvePlane(name string) Plane {
	if p, err := planes.parse("plane", name); err == nil {
		return p
	}
	return Plane(name)
}

// Axis is a principal modelling axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

var axes = newNameTable(
	entry(AxisX, "X", "x-achse"),
	entry(AxisY, "Y", "y-achse"),
	entry(AxisZ, "Z", "z-achse"),
)

func (a Axis) String() string {
	if n, ok := axes.name(a); ok {
		return n
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Vector returns the unit vector of the axis.
func (a Axis) Vector() [3]float64 {
	switch a {
	case AxisY:
		return [3]float64{0, 1, 0}
	case AxisZ:
		return [3]float64{0, 0, 1}
	default:
		return [3]float64{1, 0, 0}
	}
}

// ParseAxis resolves an axis from its name.
func ParseAxis(name string) (Axis, error) {
	return axes.parse("axis", name)
}

// Direction selects which side(s) of the sketch plane a feature grows into.
// The zero value is Forward.
type Direction int

const (
	DirectionForward Direction = iota
	DirectionReverse
	DirectionBoth
)

var directions = newNameTable(
	entry(DirectionForward, "forward", "normal", "1"),
	entry(DirectionReverse, "reverse", "reversed", "umgekehrt", "-1"),
	entry(DirectionBoth, "both", "symmetric", "beidseitig", "0"),
)

func (d Direction) String() string {
	if n, ok := directions.name(d); ok {
		return n
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection resolves a direction from a name or a numeric code.
func ParseDirection(name string) (Direction, error) {
	return directions.parse("direction", name)
}

// DirectionFromCode maps the numeric convention 1 (forward), -1 (reverse)
// and 0 (both sides) onto a Direction.
func DirectionFromCode(code int) (Direction, error) {
	switch code {
	case 1:
		return DirectionForward, nil
	case -1:
		return DirectionReverse, nil
	case 0:
		return DirectionBoth, nil
	}
	return 0, Invalid("direction code %d (want 1, -1 or 0)", code)
}

// Valid reports whether d is one of the defined directions.
func (d Direction) Valid() bool {
	return d == DirectionForward || d == DirectionReverse || d == DirectionBoth
}

// Valid reports whether a is X, Y or Z.
func (a Axis) Valid() bool {
	return a == AxisX || a == AxisY || a == AxisZ
}

// UnmarshalText lets scripts and configuration name a direction.
func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// UnmarshalText lets scripts and configuration name an axis.
func (a *Axis) UnmarshalText(text []byte) error {
	v, err := ParseAxis(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// UnmarshalText lets scripts and configuration name an end condition.
func (e *EndCondition) UnmarshalText(text []byte) error {
	v, err := ParseEndCondition(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// UnmarshalText lets scripts and configuration name a selection filter.
func (s *SelectionType) UnmarshalText(text []byte) error {
	v, err := ParseSelectionType(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// UnmarshalText lets scripts and configuration name a document type.
func (d *DocumentType) UnmarshalText(text []byte) error {
	v, err := ParseDocumentType(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
