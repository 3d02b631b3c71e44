package main

import (
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/plus3/molview/camera"
	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/viewer"
)

var (
	background = color.RGBA{R: 24, G: 26, B: 32, A: 255}
	highlight  = color.RGBA{R: 255, G: 220, B: 0, A: 255}
	outline    = color.RGBA{A: 160}
)

// shape is one atom or bond flattened to screen space.
type shape struct {
	depth  float32
	atom   bool
	a, b   mgl32.Vec2
	radius float32
	color  color.RGBA
}

// Canvas paints the scene back to front with 2D vector shapes into a cached image.
type Canvas struct {
	atoms  *ecs.View[viewer.AtomView]
	bonds  *ecs.View[viewer.BondView]
	image  *ebiten.Image
	shapes []shape
}

func NewCanvas(storage *ecs.Storage) *Canvas {
	return &Canvas{
		atoms: ecs.NewView[viewer.AtomView](storage),
		bonds: ecs.NewView[viewer.BondView](storage),
	}
}

func (c *Canvas) Image() *ebiten.Image { return c.image }

// Resize reallocates the image when the size changed and reports whether it did.
func (c *Canvas) Resize(width, height int) bool {
	if c.image != nil {
		b := c.image.Bounds()
		if b.Dx() == width && b.Dy() == height {
			return false
		}
		c.image.Deallocate()
	}
	c.image = ebiten.NewImage(max(width, 1), max(height, 1))
	return true
}

func (c *Canvas) Redraw(cam *camera.Camera, p *viewer.PickState) {
	c.shapes = c.shapes[:0]

	for atom := range c.atoms.Values() {
		center := atom.Primitive.Position()
		c.shapes = append(c.shapes, shape{
			depth:  cam.Depth(center),
			atom:   true,
			a:      cam.Project(center),
			radius: atom.Box.Diagonal()[0] / 2 * cam.PixelScale(center),
			color:  atom.Primitive.Color,
		})
	}
	for bond := range c.bonds.Values() {
		m := bond.Primitive.Transform
		start := m.Col(3).Vec3()
		end := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
		mid := start.Add(end).Mul(0.5)
		c.shapes = append(c.shapes, shape{
			depth:  cam.Depth(mid),
			a:      cam.Project(start),
			b:      cam.Project(end),
			radius: m.Col(1).Vec3().Len() * cam.PixelScale(mid),
			color:  bond.Primitive.Color,
		})
	}

	// far to near
	slices.SortFunc(c.shapes, func(x, y shape) int {
		switch {
		case x.depth > y.depth:
			return -1
		case x.depth < y.depth:
			return 1
		}
		return 0
	})

	c.image.Fill(background)
	for _, s := range c.shapes {
		if s.atom {
			vector.DrawFilledCircle(c.image, s.a[0], s.a[1], s.radius, s.color, true)
			vector.StrokeCircle(c.image, s.a[0], s.a[1], s.radius, 1, outline, true)
			continue
		}
		vector.StrokeLine(c.image, s.a[0], s.a[1], s.b[0], s.b[1], max(2*s.radius, 1), s.color, true)
	}

	if p.Active() {
		center := p.Transform.Col(3).Vec3()
		at := cam.Project(center)
		r := p.Transform.Col(0).Vec3().Len() * cam.PixelScale(center)
		vector.StrokeCircle(c.image, at[0], at[1], r, 2, highlight, true)
	}
}
