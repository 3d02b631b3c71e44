package viewer

import (
	"cmp"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/molview/camera"
	"github.com/plus3/molview/chem"
	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/pick"
	"github.com/plus3/molview/scene"
)

// RayCaster turns a screen position into a world ray. Renderers that can ray
// cast implement it; camera.Camera does so for renderers that cannot.
type RayCaster interface {
	ScreenRay(x, y float32) (pick.Ray, error)
}

// ReloadSystem reads the document again when a Reload event arrives. The scene
// is built before the document is replaced, so a reload that fails to load or
// to build keeps both the current document and its scene.
type ReloadSystem struct {
	Load     Loader
	Pipeline Pipeline
	Builder  *scene.Builder
	Logger   *slog.Logger

	Document ecs.Singleton[Document]
	Scene    ecs.Singleton[SceneState]
	Input    ecs.Singleton[InputQueue]
	Stats    ecs.Singleton[FrameStats]
}

func (s *ReloadSystem) Execute(frame *ecs.UpdateFrame) {
	var reload *Reload
	for _, ev := range s.Input.Get().Events {
		if r, ok := ev.(Reload); ok {
			reload = &r
		}
	}
	if reload == nil {
		return
	}

	doc := s.Document.Get()
	stats := s.Stats.Get()
	path := cmp.Or(reload.Path, doc.Path)

	next, err := LoadDocument(path, s.Load, s.Pipeline)
	if err != nil {
		stats.Failures++
		s.Logger.Warn("reload failed, keeping previous molecule", slog.String("path", path), slog.Any("err", err))
		return
	}

	built, err := s.Builder.Build(next.Molecule)
	if err != nil {
		stats.Failures++
		s.Scene.Get().Err = err
		s.Logger.Warn("scene build failed, keeping previous molecule", slog.String("path", path), slog.Any("err", err))
		return
	}

	s.Scene.Get().pending = built
	doc.Molecule = next.Molecule
	doc.Path = path
	doc.Generation++
	stats.Reloads++
	s.Logger.Info("molecule reloaded",
		slog.String("path", path),
		slog.Int("atoms", doc.Molecule.Len()),
		slog.Int("bonds", doc.Molecule.NumBonds()),
		slog.Int("generation", doc.Generation))
}

// SceneSystem rebuilds the scene whenever the document generation moves on and
// respawns the atom and bond entities through deferred commands.
type SceneSystem struct {
	Builder *scene.Builder
	Logger  *slog.Logger

	Document ecs.Singleton[Document]
	Scene    ecs.Singleton[SceneState]
	Pick     ecs.Singleton[PickState]
	Stats    ecs.Singleton[FrameStats]

	Atoms ecs.Query[AtomView]
	Bonds ecs.Query[BondView]
}

func (s *SceneSystem) Execute(frame *ecs.UpdateFrame) {
	doc := s.Document.Get()
	state := s.Scene.Get()
	if doc.Molecule == nil || doc.Generation == state.Generation {
		return
	}
	state.Generation = doc.Generation

	built := state.pending
	state.pending = nil
	if built == nil {
		var err error
		if built, err = s.Builder.Build(doc.Molecule); err != nil {
			state.Err = err
			s.Stats.Get().Failures++
			s.Logger.Warn("scene rebuild failed, keeping previous scene", slog.Any("err", err))
			return
		}
	}

	for id := range s.Atoms.Iter() {
		frame.Commands.Delete(id)
	}
	for id := range s.Bonds.Iter() {
		frame.Commands.Delete(id)
	}
	spawnPrimitives(frame.Commands.Spawn, built, doc.Molecule)

	state.Scene = built
	state.Err = nil
	state.Changed = true
	s.Pick.Get().clear()
	s.Stats.Get().Rebuilds++

	s.Logger.Debug("scene rebuilt",
		slog.Int("spheres", len(built.Spheres)),
		slog.Int("cylinders", len(built.Cylinders)))
}

func spawnPrimitives(spawn func(...any), built *scene.Scene, mol *chem.Molecule) {
	for i, sphere := range built.Spheres {
		atom := mol.Atoms()[sphere.Source]
		spawn(
			AtomTag{ID: chem.AtomID(sphere.Source), Symbol: atom.Symbol()},
			Sphere{Primitive: sphere, Box: built.Boxes[i]},
		)
	}
	for _, cyl := range built.Cylinders {
		bond := mol.Bonds()[cyl.Source]
		spawn(
			BondTag{Index: cyl.Source, A: bond.A, B: bond.B},
			Cylinder{Primitive: cyl},
		)
	}
}

// CameraSystem applies orbit, zoom and resize input to the camera.
type CameraSystem struct {
	Input  ecs.Singleton[InputQueue]
	Camera ecs.Singleton[CameraState]
}

func (s *CameraSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.Camera.Get()
	cam := state.Camera

	for _, ev := range s.Input.Get().Events {
		switch e := ev.(type) {
		case MouseDrag:
			if e.DX == 0 && e.DY == 0 {
				continue
			}
			cam.Orbit(e.DX, e.DY)
		case Wheel:
			if e.Delta == 0 {
				continue
			}
			cam.Zoom(e.Delta)
		case Resize:
			if e.Width == cam.Width && e.Height == cam.Height {
				continue
			}
			cam.Resize(e.Width, e.Height)
		default:
			continue
		}
		state.Changed = true
	}
}

// PickSystem resolves left clicks to the nearest atom. Misses leave the current
// highlight untouched; other buttons are ignored.
type PickSystem struct {
	Caster   RayCaster
	Resolver pick.Resolver
	Logger   *slog.Logger

	Input  ecs.Singleton[InputQueue]
	Scene  ecs.Singleton[SceneState]
	Pick   ecs.Singleton[PickState]
	Camera ecs.Singleton[CameraState]
	Stats  ecs.Singleton[FrameStats]
}

func (s *PickSystem) Execute(frame *ecs.UpdateFrame) {
	built := s.Scene.Get().Scene
	if built == nil {
		return
	}

	for _, ev := range s.Input.Get().Events {
		switch e := ev.(type) {
		case MousePress:
			if e.Button != MouseLeft {
				continue
			}
			s.click(built, e.X, e.Y)
		case SelectAtom:
			s.selectAtom(built, e.Index)
		}
	}
}

func (s *PickSystem) caster() RayCaster {
	if s.Caster != nil {
		return s.Caster
	}
	return s.Camera.Get().Camera
}

func (s *PickSystem) click(built *scene.Scene, x, y float32) {
	stats := s.Stats.Get()

	var point *mgl32.Vec3
	ray, err := s.caster().ScreenRay(x, y)
	if err != nil {
		s.Logger.Debug("no pick ray", slog.Any("err", err))
	} else if p, ok := pick.PickPoint(ray, built); ok {
		point = &p
	}

	res, ok := s.Resolver.Resolve(point, built.Boxes)
	if !ok {
		stats.Misses++
		return
	}
	stats.Picks++
	s.apply(res)
}

func (s *PickSystem) selectAtom(built *scene.Scene, index int) {
	if index < 0 || index >= len(built.Boxes) {
		s.Pick.Get().clear()
		return
	}
	box := built.Boxes[index]
	s.apply(pick.Result{
		Index:     index,
		Point:     box.Center(),
		Transform: pick.HighlightTransform(box),
	})
}

func (s *PickSystem) apply(res pick.Result) {
	state := s.Pick.Get()
	if state.Index != res.Index {
		s.Logger.Debug("atom picked", slog.Int("atom", res.Index))
	}
	state.Index = res.Index
	state.Point = res.Point
	state.Transform = res.Transform
	state.Changed = true
}

// RedrawSystem decides whether this frame has to be drawn and consumes the
// frame's input. It must run after every system that reads input.
type RedrawSystem struct {
	Input  ecs.Singleton[InputQueue]
	Scene  ecs.Singleton[SceneState]
	Pick   ecs.Singleton[PickState]
	Camera ecs.Singleton[CameraState]
	Redraw ecs.Singleton[RedrawState]
	Stats  ecs.Singleton[FrameStats]
}

func (s *RedrawSystem) Execute(frame *ecs.UpdateFrame) {
	sceneState, pickState, camState := s.Scene.Get(), s.Pick.Get(), s.Camera.Get()
	redraw := s.Redraw.Get()
	stats := s.Stats.Get()

	switch {
	case sceneState.Changed:
		redraw.Reason = "scene"
	case camState.Changed:
		redraw.Reason = "camera"
	case pickState.Changed:
		redraw.Reason = "pick"
	default:
		redraw.Reason = ""
	}
	redraw.Needed = redraw.Reason != ""

	stats.Frames++
	if redraw.Needed {
		stats.Redraws++
	} else {
		stats.Skipped++
	}

	sceneState.Changed = false
	pickState.Changed = false
	camState.Changed = false

	input := s.Input.Get()
	clear(input.Events)
	input.Events = input.Events[:0]
}

// frameMolecule points cam at the molecule so every atom is in view.
func frameMolecule(cam *camera.Camera, mol *chem.Molecule) {
	c := mol.Center()
	radius := float32(mol.Radius()) + float32((chem.DefaultCovalentRadius+0.5)/3.0)
	cam.Frame(mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}, radius)
}
