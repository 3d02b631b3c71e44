// Package pick resolves a clicked world-space point to the nearest atom of a scene.
package pick

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/molview/scene"
)

// highlightShrink divides the half diagonal of the picked atom's box.
const highlightShrink = 1.5

// Ray is a half line. Direction need not be normalised.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectSphere returns the smallest non-negative t where the ray meets the
// sphere.
func (r Ray) IntersectSphere(center mgl32.Vec3, radius float32) (float32, bool) {
	oc := r.Origin.Sub(center)
	a := r.Direction.Dot(r.Direction)
	if a == 0 {
		return 0, false
	}
	b := 2 * oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}

	sq := float32(math.Sqrt(float64(disc)))
	t := (-b - sq) / (2 * a)
	if t < 0 {
		t = (-b + sq) / (2 * a)
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// PickPoint casts ray against the scene's atom spheres and returns the nearest hit.
// Renderers that cannot ray cast their own meshes use it to produce the world point.
func PickPoint(ray Ray, s *scene.Scene) (mgl32.Vec3, bool) {
	best := float32(math.MaxFloat32)
	found := false

	for _, box := range s.Boxes {
		radius := box.Diagonal()[0] / 2
		t, ok := ray.IntersectSphere(box.Center(), radius)
		if ok && t < best {
			best = t
			found = true
		}
	}

	if !found {
		return mgl32.Vec3{}, false
	}
	return ray.At(best), true
}

// Nearest returns the index of the box whose center is closest to point. Equal
// distances go to the lowest index. An empty slice reports false.
func Nearest(point mgl32.Vec3, boxes []scene.BoundingBox) (int, bool) {
	index := -1
	best := float32(math.MaxFloat32)

	for i, box := range boxes {
		d := box.Center().Sub(point).LenSqr()
		if d < best {
			best = d
			index = i
		}
	}

	return index, index >= 0
}

// HighlightTransform places the highlight mesh over box:
// translate(center) * scale((|diagonal| / 2) / 1.5).
func HighlightTransform(box scene.BoundingBox) mgl32.Mat4 {
	c := box.Center()
	s := box.Diagonal().Len() / 2 / highlightShrink
	return mgl32.Translate3D(c[0], c[1], c[2]).Mul4(mgl32.Scale3D(s, s, s))
}

// Result is a resolved pick.
type Result struct {
	Index     int
	Point     mgl32.Vec3
	Transform mgl32.Mat4
}

// Resolver turns pick points into highlight results.
type Resolver struct{}

// Resolve picks the atom nearest to point. A nil point is a missed ray cast and
// yields no result; callers keep their previous highlight.
func (Resolver) Resolve(point *mgl32.Vec3, boxes []scene.BoundingBox) (Result, bool) {
	if point == nil {
		return Result{}, false
	}

	index, ok := Nearest(*point, boxes)
	if !ok {
		return Result{}, false
	}

	return Result{
		Index:     index,
		Point:     *point,
		Transform: HighlightTransform(boxes[index]),
	}, true
}
