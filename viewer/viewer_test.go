package viewer_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/plus3/molview/chem"
	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/pick"
	"github.com/plus3/molview/scene"
	"github.com/plus3/molview/viewer"
)

type rayFunc func(x, y float32) (pick.Ray, error)

func (f rayFunc) ScreenRay(x, y float32) (pick.Ray, error) { return f(x, y) }

// downAt casts straight down -Z through (x, y), ignoring the screen position.
func downAt(x, y float32) rayFunc {
	return func(float32, float32) (pick.Ray, error) {
		return pick.Ray{Origin: mgl32.Vec3{x, y, 50}, Direction: mgl32.Vec3{0, 0, -1}}, nil
	}
}

func co2() *chem.Molecule {
	mol := chem.NewMolecule("co2")
	o1 := mol.AddAtom(chem.NewAtom("O", r3.Vec{X: -1.16}))
	c := mol.AddAtom(chem.NewAtom("C", r3.Vec{}))
	o2 := mol.AddAtom(chem.NewAtom("O", r3.Vec{X: 1.16}))
	_ = mol.AddBond(o1, c, 2)
	_ = mol.AddBond(c, o2, 2)
	return mol
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWorld(t *testing.T, caster viewer.RayCaster) *viewer.World {
	t.Helper()
	w, err := viewer.NewWorld(viewer.Document{Molecule: co2(), Path: "co2.xyz"}, viewer.Options{
		Caster: caster,
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	return w
}

func countAtoms(storage *ecs.Storage) int {
	n := 0
	for range ecs.NewView[viewer.AtomView](storage).Iter() {
		n++
	}
	return n
}

func countBonds(storage *ecs.Storage) int {
	n := 0
	for range ecs.NewView[viewer.BondView](storage).Iter() {
		n++
	}
	return n
}

func TestNewWorld(t *testing.T) {
	w := newWorld(t, nil)

	require.NotNil(t, w.Scene())
	assert.Len(t, w.Scene().Spheres, 3)
	assert.Len(t, w.Scene().Cylinders, 2)
	assert.Equal(t, 3, countAtoms(w.Storage))
	assert.Equal(t, 2, countBonds(w.Storage))
	assert.False(t, w.Pick().Active())

	for atom := range ecs.NewView[viewer.AtomView](w.Storage).Values() {
		assert.Equal(t, int(atom.ID), atom.Primitive.Source)
	}
}

func TestNewWorldErrors(t *testing.T) {
	_, err := viewer.NewWorld(viewer.Document{}, viewer.Options{})
	assert.ErrorIs(t, err, viewer.ErrNoMolecule)

	mol := chem.NewMolecule("")
	mol.AddAtom(chem.NewAtom("Zz", r3.Vec{}))
	_, err = viewer.NewWorld(viewer.Document{Molecule: mol}, viewer.Options{Logger: quietLogger()})
	assert.Error(t, err)
}

func TestRedrawOnlyWhenSomethingChanged(t *testing.T) {
	w := newWorld(t, nil)

	w.Step(0)
	assert.True(t, w.Redraw().Needed)
	assert.Equal(t, "scene", w.Redraw().Reason)

	w.Step(0)
	assert.False(t, w.Redraw().Needed)
	w.Step(0)
	assert.False(t, w.Redraw().Needed)

	w.Push(viewer.Wheel{Delta: 1})
	w.Step(0)
	assert.True(t, w.Redraw().Needed)
	assert.Equal(t, "camera", w.Redraw().Reason)

	stats := w.Stats()
	assert.Equal(t, 4, stats.Frames)
	assert.Equal(t, 2, stats.Redraws)
	assert.Equal(t, 2, stats.Skipped)
}

func TestPickHit(t *testing.T) {
	w := newWorld(t, downAt(1.16, 0))
	w.Step(0)

	w.Push(viewer.MousePress{Button: viewer.MouseLeft, X: 10, Y: 10})
	w.Step(0)

	p := w.Pick()
	require.True(t, p.Active())
	assert.Equal(t, 2, p.Index)
	assert.Equal(t, pick.HighlightTransform(w.Scene().Boxes[2]), p.Transform)
	assert.True(t, w.Redraw().Needed)
	assert.Equal(t, "pick", w.Redraw().Reason)
	assert.Equal(t, 1, w.Stats().Picks)
}

func TestPickMissKeepsHighlight(t *testing.T) {
	target := downAt(-1.16, 0)
	w := newWorld(t, rayFunc(func(x, y float32) (pick.Ray, error) { return target(x, y) }))

	w.Push(viewer.MousePress{Button: viewer.MouseLeft})
	w.Step(0)
	require.Equal(t, 0, w.Pick().Index)

	target = downAt(30, 30)
	w.Push(viewer.MousePress{Button: viewer.MouseLeft})
	w.Step(0)

	assert.Equal(t, 0, w.Pick().Index)
	assert.False(t, w.Redraw().Needed)
	assert.Equal(t, 1, w.Stats().Misses)
}

func TestPickCasterError(t *testing.T) {
	w := newWorld(t, rayFunc(func(float32, float32) (pick.Ray, error) {
		return pick.Ray{}, errors.New("no viewport")
	}))

	w.Push(viewer.MousePress{Button: viewer.MouseLeft})
	w.Step(0)
	assert.False(t, w.Pick().Active())
	assert.Equal(t, 1, w.Stats().Misses)
}

func TestNonLeftClicksIgnored(t *testing.T) {
	w := newWorld(t, downAt(0, 0))

	w.Push(viewer.MousePress{Button: viewer.MouseRight})
	w.Push(viewer.MousePress{Button: viewer.MouseMiddle})
	w.Step(0)

	assert.False(t, w.Pick().Active())
	assert.Zero(t, w.Stats().Picks)
	assert.Zero(t, w.Stats().Misses)
}

func TestPickThroughCamera(t *testing.T) {
	w := newWorld(t, nil)
	cam := w.Camera()

	px := cam.Project(mgl32.Vec3{-1.16, 0, 0})
	w.Push(viewer.MousePress{Button: viewer.MouseLeft, X: px[0], Y: px[1]})
	w.Step(0)

	assert.Equal(t, 0, w.Pick().Index)
}

func TestSelectAtom(t *testing.T) {
	w := newWorld(t, nil)

	w.Push(viewer.SelectAtom{Index: 1})
	w.Step(0)
	assert.Equal(t, 1, w.Pick().Index)

	w.Push(viewer.SelectAtom{Index: -1})
	w.Step(0)
	assert.False(t, w.Pick().Active())
}

func TestCameraInput(t *testing.T) {
	w := newWorld(t, nil)
	w.Step(0)

	yaw := w.Camera().Yaw
	w.Push(viewer.MouseDrag{DX: 25, DY: 0})
	w.Push(viewer.Resize{Width: 1024, Height: 768})
	w.Step(0)

	assert.NotEqual(t, yaw, w.Camera().Yaw)
	assert.Equal(t, 1024, w.Camera().Width)
	assert.True(t, w.Redraw().Needed)

	// same size again is not a change
	w.Push(viewer.Resize{Width: 1024, Height: 768})
	w.Step(0)
	assert.False(t, w.Redraw().Needed)
}

func TestInputDrainedEachFrame(t *testing.T) {
	w := newWorld(t, downAt(0, 0))

	w.Push(viewer.MousePress{Button: viewer.MouseLeft})
	w.Step(0)
	w.Step(0)
	w.Step(0)

	assert.Equal(t, 1, w.Stats().Picks)
}

func TestReload(t *testing.T) {
	loads := 0
	load := func(path string) (*chem.Molecule, error) {
		loads++
		mol := chem.NewMolecule("water")
		mol.AddAtom(chem.NewAtom("O", r3.Vec{}))
		mol.AddAtom(chem.NewAtom("H", r3.Vec{X: 0.96}))
		mol.AddAtom(chem.NewAtom("H", r3.Vec{X: -0.24, Y: 0.93}))
		mol.AddAtom(chem.NewAtom("H", r3.Vec{X: 5}))
		return mol, nil
	}

	w, err := viewer.NewWorld(viewer.Document{Molecule: co2(), Path: "a.xyz"}, viewer.Options{
		Load:     load,
		Pipeline: viewer.Pipeline{Rebond: true},
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	w.Push(viewer.SelectAtom{Index: 2})
	w.Step(0)
	require.True(t, w.Pick().Active())

	w.Push(viewer.Reload{})
	w.Step(0)

	assert.Equal(t, 1, loads)
	assert.Equal(t, 1, w.Document().Generation)
	assert.Equal(t, "a.xyz", w.Document().Path)
	assert.Len(t, w.Scene().Spheres, 4)
	assert.Len(t, w.Scene().Cylinders, 2)
	assert.Equal(t, 4, countAtoms(w.Storage))
	assert.Equal(t, 2, countBonds(w.Storage))
	assert.False(t, w.Pick().Active(), "highlight must not outlive its scene")
	assert.Equal(t, "scene", w.Redraw().Reason)
	assert.Equal(t, 1, w.Stats().Reloads)
	assert.Equal(t, 1, w.Stats().Rebuilds)
}

func TestReloadFailureKeepsDocument(t *testing.T) {
	w, err := viewer.NewWorld(viewer.Document{Molecule: co2(), Path: "a.xyz"}, viewer.Options{
		Load:   func(string) (*chem.Molecule, error) { return nil, errors.New("disk on fire") },
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	before := w.Scene()

	w.Push(viewer.Reload{Path: "b.xyz"})
	w.Step(0)

	assert.Equal(t, 0, w.Document().Generation)
	assert.Equal(t, "a.xyz", w.Document().Path)
	assert.Same(t, before, w.Scene())
	assert.Equal(t, 1, w.Stats().Failures)
	assert.Equal(t, 3, countAtoms(w.Storage))
}

func TestReloadBuildFailureKeepsScene(t *testing.T) {
	w, err := viewer.NewWorld(viewer.Document{Molecule: co2(), Path: "a.xyz"}, viewer.Options{
		Load: func(string) (*chem.Molecule, error) {
			mol := chem.NewMolecule("")
			mol.AddAtom(chem.NewAtom("Zz", r3.Vec{}))
			return mol, nil
		},
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	before := w.Scene()
	mol := w.Document().Molecule

	w.Push(viewer.Reload{})
	w.Step(0)

	assert.Same(t, before, w.Scene())
	assert.ErrorIs(t, w.SceneState().Err, scene.ErrUnknownElement)
	assert.Equal(t, 3, countAtoms(w.Storage))

	assert.Same(t, mol, w.Document().Molecule)
	assert.Equal(t, 0, w.Document().Generation)
	assert.Equal(t, 0, w.Stats().Reloads)
	assert.Equal(t, 1, w.Stats().Failures)

	w.Push(viewer.SelectAtom{Index: 0})
	w.Step(0)
	sel, ok := w.Selection()
	require.True(t, ok)
	assert.Equal(t, "O", sel.Symbol)
}

func TestPipeline(t *testing.T) {
	mol := chem.NewMolecule("")
	mol.AddAtom(chem.NewAtom("C", r3.Vec{X: 10}))
	mol.AddAtom(chem.NewAtom("C", r3.Vec{X: 11.5}))
	mol.SetLattice(chem.Lattice{{X: 3}, {Y: 3}, {Z: 3}})

	require.NoError(t, viewer.DefaultPipeline().Apply(mol))
	assert.Nil(t, mol.Lattice())
	assert.Equal(t, 1, mol.NumBonds())
	assert.InDelta(t, 0, mol.Center().X, 1e-12)
}
