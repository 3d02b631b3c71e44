// Package scene turns a molecule into the renderable primitives of a ball-and-stick
// model: one unit sphere per atom and one unit cylinder per bond, each placed by an
// affine transform.
//
// The canonical sphere mesh has radius 1 at the origin. The canonical cylinder runs
// from x=0 to x=1 with radius 1 about the X axis.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/molview/chem"
)

var (
	// ErrZeroLengthBond is returned for a bond whose endpoints coincide.
	ErrZeroLengthBond = errors.New("zero-length bond")
	// ErrNonFinite is returned for an atom or bond endpoint with a NaN or
	// infinite coordinate.
	ErrNonFinite = errors.New("non-finite position")
)

const (
	DefaultBondThickness   = 0.07
	DefaultBondRadiusScale = 1.2

	minBondLength = 1e-6
)

// Kind distinguishes the two primitive shapes.
type Kind uint8

const (
	Sphere Kind = iota
	Cylinder
)

func (k Kind) String() string {
	switch k {
	case Sphere:
		return "sphere"
	case Cylinder:
		return "cylinder"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Primitive is one drawable shape. Source is the atom id for spheres and the bond
// index for cylinders.
type Primitive struct {
	Kind      Kind
	Color     color.RGBA
	Transform mgl32.Mat4
	Source    int
}

// Position returns the translation part of the transform.
func (p Primitive) Position() mgl32.Vec3 {
	return p.Transform.Col(3).Vec3()
}

// BoundingBox is an axis-aligned box around one drawn sphere.
type BoundingBox struct {
	Min, Max mgl32.Vec3
}

func (b BoundingBox) Center() mgl32.Vec3   { return b.Min.Add(b.Max).Mul(0.5) }
func (b BoundingBox) Diagonal() mgl32.Vec3 { return b.Max.Sub(b.Min) }

// Scene is the built primitive set. Boxes is index-aligned with Spheres.
type Scene struct {
	Title     string
	Spheres   []Primitive
	Cylinders []Primitive
	Boxes     []BoundingBox
}

// Len returns the number of primitives.
func (s *Scene) Len() int { return len(s.Spheres) + len(s.Cylinders) }

// Options tune the builder. Zero fields take the defaults.
type Options struct {
	BondThickness   float32
	BondRadiusScale float32
	DefaultRadius   float64
}

func (o Options) withDefaults() Options {
	if o.BondThickness <= 0 {
		o.BondThickness = DefaultBondThickness
	}
	if o.BondRadiusScale <= 0 {
		o.BondRadiusScale = DefaultBondRadiusScale
	}
	if o.DefaultRadius <= 0 {
		o.DefaultRadius = chem.DefaultCovalentRadius
	}
	return o
}

// Builder converts molecules to scenes.
type Builder struct {
	palette *Palette
	opts    Options
}

// NewBuilder returns a builder that colours atoms from palette. A nil palette
// selects DefaultPalette.
func NewBuilder(palette *Palette, opts Options) *Builder {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Builder{palette: palette, opts: opts.withDefaults()}
}

func (b *Builder) Palette() *Palette { return b.palette }

// Build creates one sphere per atom and one cylinder per non-dummy bond. Any atom
// without a palette colour, any bond naming a missing atom and any zero-length bond
// fails the whole build.
func (b *Builder) Build(mol *chem.Molecule) (*Scene, error) {
	atoms := mol.Atoms()
	s := &Scene{
		Title:   mol.Title,
		Spheres: make([]Primitive, 0, len(atoms)),
		Boxes:   make([]BoundingBox, 0, len(atoms)),
	}

	for i, atom := range atoms {
		c, err := b.palette.Color(atom.Symbol())
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", i, err)
		}

		center := toVec3(atom)
		if !finite(center) {
			return nil, fmt.Errorf("atom %d: %w", i, ErrNonFinite)
		}
		size := atomSize(atom, b.opts.DefaultRadius)
		extent := mgl32.Vec3{size, size, size}

		s.Spheres = append(s.Spheres, Primitive{
			Kind:      Sphere,
			Color:     c,
			Transform: mgl32.Translate3D(center[0], center[1], center[2]).Mul4(mgl32.Scale3D(size, size, size)),
			Source:    i,
		})
		s.Boxes = append(s.Boxes, BoundingBox{Min: center.Sub(extent), Max: center.Add(extent)})
	}

	thickness := b.opts.BondThickness * b.opts.BondRadiusScale
	for i, bond := range mol.Bonds() {
		if bond.IsDummy() {
			continue
		}

		from, err := mol.Atom(bond.A)
		if err != nil {
			return nil, fmt.Errorf("bond %d: %w", i, err)
		}
		to, err := mol.Atom(bond.B)
		if err != nil {
			return nil, fmt.Errorf("bond %d: %w", i, err)
		}

		transform, err := cylinderTransform(toVec3(from), toVec3(to), thickness)
		if err != nil {
			return nil, fmt.Errorf("bond %d (%d-%d): %w", i, bond.A, bond.B, err)
		}

		// bonds take the colour of their first atom
		c, _ := b.palette.Color(from.Symbol())
		s.Cylinders = append(s.Cylinders, Primitive{
			Kind:      Cylinder,
			Color:     c,
			Transform: transform,
			Source:    i,
		})
	}

	return s, nil
}

// CylinderTransform places the canonical cylinder between a and b with the default
// thickness: translate(a) * rotate(X -> b-a) * scale(|b-a|, t, t).
func CylinderTransform(a, b mgl32.Vec3) (mgl32.Mat4, error) {
	return cylinderTransform(a, b, DefaultBondThickness*DefaultBondRadiusScale)
}

func cylinderTransform(a, b mgl32.Vec3, thickness float32) (mgl32.Mat4, error) {
	if !finite(a) || !finite(b) {
		return mgl32.Ident4(), ErrNonFinite
	}
	d := b.Sub(a)
	length := d.Len()
	if !(length >= minBondLength) {
		return mgl32.Ident4(), ErrZeroLengthBond
	}

	rotation := shortestArc(d.Mul(1 / length)).Mat4()
	return mgl32.Translate3D(a[0], a[1], a[2]).
		Mul4(rotation).
		Mul4(mgl32.Scale3D(length, thickness, thickness)), nil
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}

var xAxis = mgl32.Vec3{1, 0, 0}

// shortestArc returns the rotation taking the X axis onto the unit vector dir.
// Directions near -X are handled as a half turn about Y followed by a small
// correction, since the direct construction loses precision there.
func shortestArc(dir mgl32.Vec3) mgl32.Quat {
	if xAxis.Dot(dir) > -0.9 {
		return mgl32.QuatBetweenVectors(xAxis, dir)
	}
	flip := mgl32.QuatRotate(math.Pi, mgl32.Vec3{0, 1, 0})
	correction := mgl32.QuatBetweenVectors(xAxis.Mul(-1), dir)
	return correction.Mul(flip).Normalize()
}

func toVec3(a chem.Atom) mgl32.Vec3 {
	p := a.Position()
	return mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
}
