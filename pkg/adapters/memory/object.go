package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/ports"
)

type kind string

const (
	kindApp       kind = "SldWorks"
	kindModel     kind = "ModelDoc2"
	kindSketch    kind = "SketchManager"
	kindFeature   kind = "FeatureManager"
	kindSelection kind = "SelectionManager"
	kindExtension kind = "ModelDocExtension"
	kindBody      kind = "Body2"
	kindEdge      kind = "Edge"
	kindSegment   kind = "SketchSegment"
	kindResult    kind = "Feature"
)

// featureNames maps feature-creation methods to the host's default feature name stem.
var featureNames = map[string]string{
	"FeatureExtrusion3":     "Boss-Extrude",
	"FeatureCut":            "Cut-Extrude",
	"InsertFeatureChamfer":  "Chamfer",
	"FeatureFillet3":        "Fillet",
	"FeatureLinearPattern4": "LPattern",
	"FeatureRevolve2":       "Revolve",
	"InsertRefPlane":        "Plane",
	"InsertMirrorFeature2":  "Mirror",
}

var standardPlanes = map[string]bool{
	string(domain.PlaneFront): true,
	string(domain.PlaneTop):   true,
	string(domain.PlaneRight): true,
}

type object struct {
	host *Host
	kind kind
	doc  *document
	name string
}

func (o *object) String() string {
	if o.name != "" {
		return fmt.Sprintf("%s(%s)", o.kind, o.name)
	}
	return string(o.kind)
}

func (o *object) child(k kind) *object {
	return &object{host: o.host, kind: k, doc: o.doc}
}

// Get reads a property.
func (o *object) Get(ctx context.Context, property string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := o.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.transport != nil {
		return nil, h.transport
	}

	switch o.kind {
	case kindApp:
		switch property {
		case "ActiveDoc":
			d := h.active()
			if d == nil {
				return nil, nil
			}
			return &object{host: h, kind: kindModel, doc: d}, nil
		case "RevisionNumber":
			return h.revision, nil
		}
	case kindModel:
		if !o.alive() {
			return nil, fmt.Errorf("document %q is closed", o.doc.title)
		}
		switch property {
		case "GetType":
			return int32(o.doc.kind), nil
		case "GetTitle":
			return o.doc.title, nil
		case "GetPathName":
			return o.doc.path, nil
		case "SketchManager":
			return o.child(kindSketch), nil
		case "FeatureManager":
			return o.child(kindFeature), nil
		case "SelectionManager":
			return o.child(kindSelection), nil
		case "Extension":
			return o.child(kindExtension), nil
		}
	}
	return nil, fmt.Errorf("%s has no property %q", o.kind, property)
}

// Call invokes a method and records it.
func (o *object) Call(ctx context.Context, method string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := o.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.transport != nil {
		return nil, h.transport
	}

	recorded := make([]any, len(args))
	copy(recorded, args)
	h.calls = append(h.calls, Call{Target: string(o.kind), Method: method, Args: recorded})

	if h.failing[method] {
		return o.failure(method), nil
	}

	switch o.kind {
	case kindApp:
		return o.callApp(method, args)
	case kindModel:
		return o.callModel(method, args)
	case kindSketch:
		return o.callSketch(method, args)
	case kindFeature:
		return o.callFeature(method, args)
	case kindSelection:
		if method == "GetSelectedObjectCount2" {
			return int32(o.doc.selection), nil
		}
	case kindExtension:
		return o.callExtension(method, args)
	case kindBody:
		if method == "GetEdges" {
			edges := make([]any, h.edgesPer)
			for i := range edges {
				edges[i] = &object{host: h, kind: kindEdge, doc: o.doc, name: fmt.Sprintf("%s/edge%d", o.name, i+1)}
			}
			return edges, nil
		}
	case kindEdge:
		if method == "Select4" {
			o.select_(args, 0)
			return true, nil
		}
	}
	return nil, fmt.Errorf("%s has no method %q", o.kind, method)
}

// failure returns the result the host gives when method fails.
func (o *object) failure(method string) any {
	switch method {
	case "SelectByID2", "SelectByRay", "Save3", "SaveAs", "ForceRebuild3", "Select4":
		return false
	}
	return nil
}

func (o *object) alive() bool {
	for _, d := range o.host.docs {
		if d == o.doc {
			return true
		}
	}
	return false
}

func (o *object) model(d *document) *object {
	return &object{host: o.host, kind: kindModel, doc: d}
}

func (o *object) callApp(method string, args []any) (any, error) {
	h := o.host
	switch method {
	case "RevisionNumber":
		return h.revision, nil
	case "NewDocument":
		tmpl := argString(args, 0)
		if tmpl == "" {
			return nil, nil
		}
		return o.model(h.open(templateKind(tmpl), "")), nil
	case "NewPart":
		return o.model(h.open(domain.DocumentPart, "")), nil
	case "NewAssembly":
		return o.model(h.open(domain.DocumentAssembly, "")), nil
	case "NewDrawing":
		return o.model(h.open(domain.DocumentDrawing, "")), nil
	case "OpenDoc6":
		path := argString(args, 0)
		kind, ok := h.files[path]
		if !ok {
			setOut(args, 4, 2) // file not found
			return nil, nil
		}
		if want, err := ports.AsInt32(argAt(args, 1)); err == nil && domain.DocumentType(want) != kind {
			setOut(args, 4, 1) // generic error: wrong type requested
			return nil, nil
		}
		return o.model(h.open(kind, path)), nil
	case "CloseDoc":
		h.close(argString(args, 0))
		return nil, nil
	}
	return nil, fmt.Errorf("%s has no method %q", o.kind, method)
}

func (o *object) callModel(method string, args []any) (any, error) {
	if !o.alive() {
		return nil, fmt.Errorf("document %q is closed", o.doc.title)
	}
	d := o.doc
	switch method {
	case "ClearSelection2":
		d.selection = 0
		return nil, nil
	case "SketchAddConstraints":
		return nil, nil
	case "ForceRebuild3":
		return true, nil
	case "Save3":
		d.saved++
		return true, nil
	case "SaveAs":
		d.path = argString(args, 0)
		d.saved++
		o.host.files[d.path] = d.kind
		return true, nil
	case "GetBodies2":
		bodies := make([]any, d.bodies)
		for i := range bodies {
			bodies[i] = &object{host: o.host, kind: kindBody, doc: d, name: fmt.Sprintf("Body%d", i+1)}
		}
		return bodies, nil
	}
	return nil, fmt.Errorf("%s has no method %q", o.kind, method)
}

func (o *object) callSketch(method string, args []any) (any, error) {
	d := o.doc
	switch method {
	case "InsertSketch":
		if d.inSketch {
			d.inSketch = false
			d.pending = d.segments > 0
			d.selection = 0
		} else {
			d.inSketch = true
			d.segments = 0
			d.sketches++
			d.selection = 0
		}
		return nil, nil
	case "CreateLine", "CreateCircle", "CreateArc", "Create3PointArc", "CreateEllipse", "CreateSpline2":
		if !d.inSketch {
			return nil, nil
		}
		d.segments++
		return &object{host: o.host, kind: kindSegment, doc: d, name: fmt.Sprintf("%s%d", method, d.segments)}, nil
	case "CreateCornerRectangle", "CreateCenterRectangle":
		if !d.inSketch {
			return nil, nil
		}
		lines := make([]any, 4)
		for i := range lines {
			d.segments++
			lines[i] = &object{host: o.host, kind: kindSegment, doc: d, name: fmt.Sprintf("Line%d", d.segments)}
		}
		return lines, nil
	}
	return nil, fmt.Errorf("%s has no method %q", o.kind, method)
}

func (o *object) callFeature(method string, args []any) (any, error) {
	d := o.doc
	stem, ok := featureNames[method]
	if !ok {
		return nil, fmt.Errorf("%s has no method %q", o.kind, method)
	}

	switch method {
	case "FeatureExtrusion3":
		if !d.pending {
			return nil, nil
		}
		d.pending = false
		if d.bodies == 0 {
			d.bodies = 1
		}
	case "FeatureRevolve2":
		if !d.pending {
			return nil, nil
		}
		d.pending = false
		// IsCut is the fourth positional argument.
		if ports.AsBool(argAt(args, 3)) {
			if d.bodies == 0 {
				return nil, nil
			}
		} else if d.bodies == 0 {
			d.bodies = 1
		}
	case "FeatureCut":
		if !d.pending || d.bodies == 0 {
			d.pending = false
			return nil, nil
		}
		d.pending = false
	case "InsertFeatureChamfer", "FeatureFillet3":
		if d.selection == 0 || d.bodies == 0 {
			return nil, nil
		}
	case "FeatureLinearPattern4", "InsertMirrorFeature2":
		if d.selection == 0 {
			return nil, nil
		}
	case "InsertRefPlane":
		if d.selection == 0 {
			return nil, nil
		}
	}

	d.features[method]++
	d.selection = 0
	name := fmt.Sprintf("%s%d", stem, d.features[method])
	return &object{host: o.host, kind: kindResult, doc: d, name: name}, nil
}

func (o *object) callExtension(method string, args []any) (any, error) {
	d := o.doc
	switch method {
	case "SelectByID2":
		name := argString(args, 0)
		if !o.known(name) {
			return false, nil
		}
		o.select_(args, 5)
		return true, nil
	case "SelectByRay":
		if d.bodies == 0 {
			return false, nil
		}
		o.select_(args, 8)
		return true, nil
	}
	return nil, fmt.Errorf("%s has no method %q", o.kind, method)
}

// known reports whether name refers to a plane or a feature in the document.
func (o *object) known(name string) bool {
	if standardPlanes[name] {
		return true
	}
	for method, n := range o.doc.features {
		stem := featureNames[method]
		for i := 1; i <= n; i++ {
			if name == fmt.Sprintf("%s%d", stem, i) {
				return true
			}
		}
	}
	for i := 1; i <= o.doc.sketches; i++ {
		if name == fmt.Sprintf("Sketch%d", i) {
			return true
		}
	}
	return false
}

func (o *object) select_(args []any, appendIdx int) {
	if ports.AsBool(argAt(args, appendIdx)) {
		o.doc.selection++
	} else {
		o.doc.selection = 1
	}
}

func argAt(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func argString(args []any, i int) string {
	s, _ := argAt(args, i).(string)
	return s
}

func setOut(args []any, i int, v int32) {
	if out, ok := argAt(args, i).(*ports.Out); ok {
		out.Value = v
	}
}
