package scene_test

import (
	"fmt"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/plus3/molview/chem"
	"github.com/plus3/molview/scene"
)

const eps = 1e-5

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], eps, "want %v got %v", want, got)
	}
}

func ethanol(t *testing.T) *chem.Molecule {
	t.Helper()
	mol := chem.NewMolecule("ethanol")
	for _, a := range []struct {
		symbol  string
		x, y, z float64
	}{
		{"C", 0, 0, 0}, {"C", 1.52, 0, 0}, {"O", 2.03, 1.32, 0},
		{"H", -0.36, 1.03, 0}, {"H", -0.36, -0.51, 0.89}, {"H", -0.36, -0.51, -0.89},
		{"H", 1.88, -0.51, 0.89}, {"H", 1.88, -0.51, -0.89}, {"H", 2.99, 1.25, 0},
	} {
		mol.AddAtom(chem.NewAtom(a.symbol, r3.Vec{X: a.x, Y: a.y, Z: a.z}))
	}
	require.Equal(t, 8, mol.Rebond(chem.DefaultBondTolerance))
	return mol
}

func TestDefaultPalette(t *testing.T) {
	p := scene.DefaultPalette()

	tests := []struct {
		symbol string
		want   color.RGBA
	}{
		{"C", color.RGBA{144, 144, 144, 255}},
		{"H", color.RGBA{255, 255, 255, 255}},
		{"Si", color.RGBA{64, 64, 64, 255}},
		{"O", color.RGBA{255, 13, 13, 255}},
		{"n", color.RGBA{48, 80, 248, 255}},
	}
	for _, tt := range tests {
		c, err := p.Color(tt.symbol)
		require.NoError(t, err, tt.symbol)
		assert.Equal(t, tt.want, c, tt.symbol)
	}

	_, err := p.Color("Xx")
	assert.ErrorIs(t, err, scene.ErrUnknownElement)
}

func TestDefaultPaletteCoversElementTable(t *testing.T) {
	p := scene.DefaultPalette()
	for _, e := range chem.Elements() {
		_, err := p.Color(e.Symbol)
		assert.NoError(t, err, e.Symbol)
	}
	assert.Len(t, scene.DefaultEntries(), len(chem.Elements()))
}

func TestPaletteDuplicate(t *testing.T) {
	_, err := scene.NewPalette([]scene.PaletteEntry{
		{Symbol: "O", Color: color.RGBA{R: 255}},
		{Symbol: "C", Color: color.RGBA{G: 255}},
		{Symbol: "o", Color: color.RGBA{B: 255}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, scene.ErrDuplicateColor)
	assert.Contains(t, err.Error(), "O")
}

func TestPaletteOverride(t *testing.T) {
	base := scene.DefaultPalette()
	p, err := base.Override([]scene.PaletteEntry{
		{Symbol: "C", Color: color.RGBA{R: 1, G: 2, B: 3}},
		{Symbol: "Uuo", Color: color.RGBA{R: 9}},
	})
	require.NoError(t, err)

	c, err := p.Color("C")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, c)

	_, err = p.Color("Uuo")
	assert.NoError(t, err)
	assert.Equal(t, base.Len()+1, p.Len())

	c, err = base.Color("C")
	require.NoError(t, err)
	assert.Equal(t, uint8(144), c.R, "override must not touch the base palette")
}

func TestAtomSize(t *testing.T) {
	carbon := chem.NewAtom("C", r3.Vec{})
	assert.InDelta(t, (0.76+0.5)/3.0, scene.AtomSize(carbon), 1e-6)

	unknown := chem.NewAtom("Xx", r3.Vec{})
	assert.InDelta(t, (0.5+0.5)/3.0, scene.AtomSize(unknown), 1e-6)
}

func TestBuildSpheres(t *testing.T) {
	mol := ethanol(t)
	s, err := scene.NewBuilder(nil, scene.Options{}).Build(mol)
	require.NoError(t, err)

	require.Len(t, s.Spheres, mol.Len())
	require.Len(t, s.Boxes, mol.Len())

	for i, atom := range mol.Atoms() {
		p := atom.Position()
		want := mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
		sphere := s.Spheres[i]

		assert.Equal(t, scene.Sphere, sphere.Kind)
		assert.Equal(t, i, sphere.Source)
		assertVec(t, want, sphere.Position())
		assertVec(t, want, s.Boxes[i].Center())

		size := scene.AtomSize(atom)
		assertVec(t, mgl32.Vec3{2 * size, 2 * size, 2 * size}, s.Boxes[i].Diagonal())
		// unit sphere surface point lands at distance size
		surface := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, sphere.Transform)
		assert.InDelta(t, size, surface.Sub(want).Len(), eps)
	}
}

func TestBuildCylinders(t *testing.T) {
	mol := ethanol(t)
	s, err := scene.NewBuilder(nil, scene.Options{}).Build(mol)
	require.NoError(t, err)
	require.Len(t, s.Cylinders, 8)

	for _, cyl := range s.Cylinders {
		bond := mol.Bonds()[cyl.Source]
		a, _ := mol.Atom(bond.A)
		b, _ := mol.Atom(bond.B)
		pa, pb := a.Position(), b.Position()
		from := mgl32.Vec3{float32(pa.X), float32(pa.Y), float32(pa.Z)}
		to := mgl32.Vec3{float32(pb.X), float32(pb.Y), float32(pb.Z)}

		assertVec(t, from, mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, cyl.Transform))
		assertVec(t, to, mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, cyl.Transform))
	}
}

func TestBuildSkipsDummyBonds(t *testing.T) {
	mol := chem.NewMolecule("")
	mol.AddAtom(chem.NewAtom("C", r3.Vec{}))
	mol.AddAtom(chem.NewAtom("C", r3.Vec{X: 1.5}))
	mol.AddAtom(chem.NewAtom("H", r3.Vec{X: 1.6}))
	require.NoError(t, mol.AddBond(0, 1, 1))
	require.NoError(t, mol.AddDummyBond(1, 2))

	s, err := scene.NewBuilder(nil, scene.Options{}).Build(mol)
	require.NoError(t, err)
	require.Len(t, s.Cylinders, 1)
	assert.Equal(t, 0, s.Cylinders[0].Source)
	assert.Equal(t, 4, s.Len())
}

func TestBuildErrors(t *testing.T) {
	t.Run("unknown element", func(t *testing.T) {
		mol := chem.NewMolecule("")
		mol.AddAtom(chem.NewAtom("C", r3.Vec{}))
		mol.AddAtom(chem.NewAtom("Xx", r3.Vec{X: 1}))

		_, err := scene.NewBuilder(nil, scene.Options{}).Build(mol)
		assert.ErrorIs(t, err, scene.ErrUnknownElement)
		assert.Contains(t, err.Error(), "atom 1")
	})

	t.Run("dangling bond", func(t *testing.T) {
		atoms := []chem.Atom{chem.NewAtom("C", r3.Vec{})}
		mol := chem.FromParts("", atoms, []chem.Bond{{A: 0, B: 3, Order: 1}})

		_, err := scene.NewBuilder(nil, scene.Options{}).Build(mol)
		assert.ErrorIs(t, err, chem.ErrDanglingAtom)
	})

	t.Run("zero length bond", func(t *testing.T) {
		mol := chem.NewMolecule("")
		mol.AddAtom(chem.NewAtom("C", r3.Vec{X: 1}))
		mol.AddAtom(chem.NewAtom("C", r3.Vec{X: 1}))
		require.NoError(t, mol.AddBond(0, 1, 1))

		_, err := scene.NewBuilder(nil, scene.Options{}).Build(mol)
		assert.ErrorIs(t, err, scene.ErrZeroLengthBond)
	})
}

func TestCylinderTransform(t *testing.T) {
	const thickness = 0.07 * 1.2

	tests := []struct {
		name string
		a, b mgl32.Vec3
	}{
		{"along x", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 0, 0}},
		{"along -x", mgl32.Vec3{1, 1, 1}, mgl32.Vec3{-0.5, 1, 1}},
		{"nearly -x", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{-1, 0.001, 0}},
		{"along y", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1.4, 0}},
		{"along -z", mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, 1}},
		{"oblique", mgl32.Vec3{0.3, -1.2, 0.5}, mgl32.Vec3{1.1, 0.4, -0.7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := scene.CylinderTransform(tt.a, tt.b)
			require.NoError(t, err)

			d := tt.b.Sub(tt.a)
			length := d.Len()

			assertVec(t, tt.a, mgl32.TransformCoordinate(mgl32.Vec3{}, m))
			assertVec(t, tt.b, mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, m))

			axis := m.Col(0).Vec3()
			assert.InDelta(t, length, axis.Len(), eps)
			assertVec(t, d.Normalize(), axis.Normalize())

			assert.InDelta(t, thickness, m.Col(1).Vec3().Len(), eps)
			assert.InDelta(t, thickness, m.Col(2).Vec3().Len(), eps)
			assert.InDelta(t, 0, m.Col(1).Vec3().Dot(axis), eps)
		})
	}
}

func TestCylinderTransformZeroLength(t *testing.T) {
	p := mgl32.Vec3{1, 2, 3}
	m, err := scene.CylinderTransform(p, p)
	assert.ErrorIs(t, err, scene.ErrZeroLengthBond)
	for _, v := range m {
		assert.False(t, math.IsNaN(float64(v)), "NaN in transform")
	}
}

func TestCylinderTransformNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	for _, b := range []mgl32.Vec3{{nan, 0, 0}, {0, inf, 0}} {
		m, err := scene.CylinderTransform(mgl32.Vec3{}, b)
		assert.ErrorIs(t, err, scene.ErrNonFinite)
		assert.Equal(t, mgl32.Ident4(), m)
	}
}

func TestBuildRejectsNonFinitePosition(t *testing.T) {
	mol := chem.NewMolecule("")
	mol.AddAtom(chem.NewAtom("C", r3.Vec{}))
	mol.AddAtom(chem.NewAtom("C", r3.Vec{X: math.NaN()}))
	require.NoError(t, mol.AddBond(0, 1, 1))

	s, err := scene.NewBuilder(nil, scene.Options{}).Build(mol)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, scene.ErrNonFinite)
}

func TestBoundingBox(t *testing.T) {
	box := scene.BoundingBox{Min: mgl32.Vec3{-1, 0, 2}, Max: mgl32.Vec3{1, 2, 4}}
	assert.Equal(t, mgl32.Vec3{0, 1, 3}, box.Center())
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, box.Diagonal())
}

func ExampleBuilder_Build() {
	mol := chem.NewMolecule("carbon monoxide")
	c := mol.AddAtom(chem.NewAtom("C", r3.Vec{}))
	o := mol.AddAtom(chem.NewAtom("O", r3.Vec{X: 1.128}))
	_ = mol.AddBond(c, o, 3)

	s, err := scene.NewBuilder(scene.DefaultPalette(), scene.Options{}).Build(mol)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, p := range s.Spheres {
		fmt.Printf("%s %v at %.3f\n", p.Kind, p.Color, p.Position())
	}
	fmt.Println(len(s.Cylinders), "cylinder")
	// Output:
	// sphere {144 144 144 255} at [0.000 0.000 0.000]
	// sphere {255 13 13 255} at [1.128 0.000 0.000]
	// 1 cylinder
}
