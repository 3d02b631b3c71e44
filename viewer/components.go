package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/molview/camera"
	"github.com/plus3/molview/chem"
	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/scene"
)

// Document is the loaded molecule. Generation increases on every successful load.
type Document struct {
	Molecule   *chem.Molecule
	Path       string
	Generation int
}

// SceneState holds the scene built from the current document generation.
type SceneState struct {
	Scene      *scene.Scene
	Generation int
	Changed    bool
	Err        error

	// pending is a scene already built by ReloadSystem for the next generation.
	pending *scene.Scene
}

type CameraState struct {
	Camera  *camera.Camera
	Changed bool
}

// PickState is the current highlight. Index is -1 when nothing is highlighted.
type PickState struct {
	Index     int
	Point     mgl32.Vec3
	Transform mgl32.Mat4
	Changed   bool
}

// Active reports whether an atom is highlighted.
func (p *PickState) Active() bool { return p.Index >= 0 }

func (p *PickState) clear() {
	if p.Index >= 0 {
		p.Changed = true
	}
	p.Index = -1
	p.Point = mgl32.Vec3{}
	p.Transform = mgl32.Ident4()
}

// InputQueue collects the events delivered since the last frame.
type InputQueue struct {
	Events []Event
}

func (q *InputQueue) Push(ev Event) { q.Events = append(q.Events, ev) }

// FrameStats counts what happened across frames.
type FrameStats struct {
	Frames   int
	Redraws  int
	Skipped  int
	Picks    int
	Misses   int
	Rebuilds int
	Reloads  int
	Failures int
}

// RedrawState tells the renderer whether the frame must be drawn again.
type RedrawState struct {
	Needed bool
	Reason string
}

// AtomTag marks the entity of one drawn atom.
type AtomTag struct {
	ID     chem.AtomID
	Symbol string
}

// BondTag marks the entity of one drawn bond.
type BondTag struct {
	Index int
	A, B  chem.AtomID
}

type Sphere struct {
	Primitive scene.Primitive
	Box       scene.BoundingBox
}

type Cylinder struct {
	Primitive scene.Primitive
}

// AtomView and BondView are the query shapes renderers iterate.
type AtomView struct {
	*AtomTag
	*Sphere
}

type BondView struct {
	*BondTag
	*Cylinder
}

// RegisterComponents adds the viewer's entity components to registry.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[AtomTag](registry)
	ecs.RegisterComponent[BondTag](registry)
	ecs.RegisterComponent[Sphere](registry)
	ecs.RegisterComponent[Cylinder](registry)
}
