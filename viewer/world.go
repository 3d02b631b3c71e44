// Package viewer holds the per-frame state of the molecule viewer and the systems
// that advance it. All state lives in ECS singletons and entities; one call to
// World.Step is one display frame on the UI goroutine.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/molview/camera"
	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/scene"
)

// ErrNoMolecule is returned by NewWorld for a document without a molecule.
var ErrNoMolecule = errors.New("document has no molecule")

// Options configure NewWorld. Zero fields take defaults.
type Options struct {
	Builder  *scene.Builder
	Camera   *camera.Camera
	Caster   RayCaster
	Load     Loader
	Pipeline Pipeline
	Logger   *slog.Logger
}

// World owns the storage and scheduler of one viewer.
type World struct {
	Registry  *ecs.ComponentRegistry
	Storage   *ecs.Storage
	Scheduler *ecs.Scheduler

	document *ecs.Singleton[Document]
	scene    *ecs.Singleton[SceneState]
	camera   *ecs.Singleton[CameraState]
	pick     *ecs.Singleton[PickState]
	input    *ecs.Singleton[InputQueue]
	redraw   *ecs.Singleton[RedrawState]
	stats    *ecs.Singleton[FrameStats]
}

// NewWorld builds the initial scene from doc and registers the viewer systems.
// Any error here is a startup failure.
func NewWorld(doc Document, opts Options) (*World, error) {
	if doc.Molecule == nil {
		return nil, ErrNoMolecule
	}
	if opts.Builder == nil {
		opts.Builder = scene.NewBuilder(nil, scene.Options{})
	}
	if opts.Camera == nil {
		opts.Camera = camera.New(800, 600)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	built, err := opts.Builder.Build(doc.Molecule)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	registry := ecs.NewComponentRegistry()
	RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	frameMolecule(opts.Camera, doc.Molecule)

	w := &World{
		Registry:  registry,
		Storage:   storage,
		Scheduler: ecs.NewScheduler(storage),
		document:  ecs.NewSingleton[Document](storage, doc),
		scene: ecs.NewSingleton[SceneState](storage, SceneState{
			Scene:      built,
			Generation: doc.Generation,
			Changed:    true,
		}),
		camera: ecs.NewSingleton[CameraState](storage, CameraState{Camera: opts.Camera}),
		pick: ecs.NewSingleton[PickState](storage, PickState{
			Index:     -1,
			Transform: mgl32.Ident4(),
		}),
		input:  ecs.NewSingleton[InputQueue](storage),
		redraw: ecs.NewSingleton[RedrawState](storage),
		stats:  ecs.NewSingleton[FrameStats](storage),
	}

	spawnPrimitives(func(components ...any) { storage.Spawn(components...) }, built, doc.Molecule)

	w.Scheduler.Register(&ReloadSystem{Load: opts.Load, Pipeline: opts.Pipeline, Builder: opts.Builder, Logger: opts.Logger})
	w.Scheduler.Register(&SceneSystem{Builder: opts.Builder, Logger: opts.Logger})
	w.Scheduler.Register(&CameraSystem{})
	w.Scheduler.Register(&PickSystem{Caster: opts.Caster, Logger: opts.Logger})
	w.Scheduler.Register(&RedrawSystem{})

	opts.Logger.Info("scene built",
		slog.String("title", doc.Molecule.Title),
		slog.Int("atoms", doc.Molecule.Len()),
		slog.Int("spheres", len(built.Spheres)),
		slog.Int("cylinders", len(built.Cylinders)))

	return w, nil
}

// Push queues ev for the next frame.
func (w *World) Push(ev Event) { w.input.Get().Push(ev) }

// Step runs one frame.
func (w *World) Step(dt float64) { w.Scheduler.Once(dt) }

// Register appends a system that runs after the viewer systems, typically a
// renderer that reads RedrawState.
func (w *World) Register(system ecs.System) { w.Scheduler.Register(system) }

func (w *World) Document() *Document     { return w.document.Get() }
func (w *World) Scene() *scene.Scene     { return w.scene.Get().Scene }
func (w *World) SceneState() *SceneState { return w.scene.Get() }
func (w *World) Camera() *camera.Camera  { return w.camera.Get().Camera }
func (w *World) Pick() *PickState        { return w.pick.Get() }
func (w *World) Redraw() *RedrawState    { return w.redraw.Get() }
func (w *World) Stats() *FrameStats      { return w.stats.Get() }

// Invalidate forces a redraw on the next frame, for renderers whose target was
// lost outside the input queue.
func (w *World) Invalidate() { w.camera.Get().Changed = true }
