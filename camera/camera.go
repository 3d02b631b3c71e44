// Package camera implements the orbit camera shared by the viewers: it owns the
// view and projection matrices and turns screen positions into world-space rays.
package camera

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/molview/pick"
)

// ErrEmptyViewport is returned when a ray is requested from a zero-sized viewport.
var ErrEmptyViewport = errors.New("empty viewport")

// Projection selects how the camera maps eye space to clip space.
type Projection uint8

const (
	Perspective Projection = iota
	Orthographic
)

func (p Projection) String() string {
	switch p {
	case Perspective:
		return "perspective"
	case Orthographic:
		return "orthographic"
	default:
		return fmt.Sprintf("Projection(%d)", uint8(p))
	}
}

// ParseProjection accepts "perspective" or "orthographic" in any case.
func ParseProjection(s string) (Projection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "perspective", "":
		return Perspective, nil
	case "orthographic", "ortho":
		return Orthographic, nil
	default:
		return 0, fmt.Errorf("unknown projection %q", s)
	}
}

const (
	DefaultFovy = 45

	orbitSpeed  = 0.01
	zoomFactor  = 0.9
	minDistance = 0.5
	maxPitch    = math.Pi/2 - 0.01
	frameMargin = 1.2
)

// Camera orbits Target at Distance. Yaw and Pitch are in radians, Fovy in degrees.
type Camera struct {
	Target   mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Distance float32
	Fovy     float32
	Mode     Projection

	Width, Height int
	Near, Far     float32
}

// New returns a perspective camera looking at the origin down -Z.
func New(width, height int) *Camera {
	return &Camera{
		Distance: 10,
		Fovy:     DefaultFovy,
		Width:    width,
		Height:   height,
		Near:     0.1,
		Far:      500,
	}
}

// Eye returns the camera position in world space.
func (c *Camera) Eye() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		cp * float32(math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		cp * float32(math.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// Up is the camera's world up vector.
func (c *Camera) Up() mgl32.Vec3 { return mgl32.Vec3{0, 1, 0} }

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, c.Up())
}

func (c *Camera) Aspect() float32 {
	if c.Height <= 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

func (c *Camera) Projection() mgl32.Mat4 {
	aspect := c.Aspect()
	if c.Mode == Orthographic {
		h := c.Distance * float32(math.Tan(float64(mgl32.DegToRad(c.Fovy))/2))
		w := h * aspect
		return mgl32.Ortho(-w, w, -h, h, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fovy), aspect, c.Near, c.Far)
}

// Orbit rotates the camera around its target by a mouse drag in pixels.
func (c *Camera) Orbit(dx, dy float32) {
	c.Yaw -= dx * orbitSpeed
	c.Pitch = mgl32.Clamp(c.Pitch+dy*orbitSpeed, -maxPitch, maxPitch)
}

// Zoom moves the camera towards the target for positive wheel deltas.
func (c *Camera) Zoom(delta float32) {
	c.Distance *= float32(math.Pow(zoomFactor, float64(delta)))
	c.Distance = mgl32.Clamp(c.Distance, minDistance, c.Far/2)
}

func (c *Camera) Resize(width, height int) {
	c.Width, c.Height = width, height
}

// Frame points the camera at center from far enough away that a sphere of the
// given radius fills the view.
func (c *Camera) Frame(center mgl32.Vec3, radius float32) {
	radius = max(radius, 1)
	half := float64(mgl32.DegToRad(c.Fovy)) / 2
	c.Target = center
	c.Distance = radius * frameMargin / float32(math.Sin(half))
	c.Far = max(c.Far, c.Distance*4)
}

// ScreenRay returns the world ray through pixel (x, y), with y growing downwards.
// The ray starts on the near plane. Perspective rays point away from the eye;
// orthographic rays run from the near plane to the far plane.
func (c *Camera) ScreenRay(x, y float32) (pick.Ray, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return pick.Ray{}, ErrEmptyViewport
	}

	view, proj := c.View(), c.Projection()
	winY := float32(c.Height) - y

	near, err := mgl32.UnProject(mgl32.Vec3{x, winY, 0}, view, proj, 0, 0, c.Width, c.Height)
	if err != nil {
		return pick.Ray{}, fmt.Errorf("unproject near plane: %w", err)
	}

	if c.Mode == Perspective {
		return pick.Ray{Origin: near, Direction: near.Sub(c.Eye()).Normalize()}, nil
	}

	far, err := mgl32.UnProject(mgl32.Vec3{x, winY, 1}, view, proj, 0, 0, c.Width, c.Height)
	if err != nil {
		return pick.Ray{}, fmt.Errorf("unproject far plane: %w", err)
	}
	return pick.Ray{Origin: near, Direction: far.Sub(near).Normalize()}, nil
}

// Project maps a world point to pixel coordinates with y growing downwards.
func (c *Camera) Project(p mgl32.Vec3) mgl32.Vec2 {
	win := mgl32.Project(p, c.View(), c.Projection(), 0, 0, c.Width, c.Height)
	return mgl32.Vec2{win[0], float32(c.Height) - win[1]}
}

// Depth is the distance of p in front of the eye along the view direction.
func (c *Camera) Depth(p mgl32.Vec3) float32 {
	forward := c.Target.Sub(c.Eye()).Normalize()
	return p.Sub(c.Eye()).Dot(forward)
}

// PixelScale is how many pixels one world unit at p covers on screen. Points at
// or behind the eye scale to zero.
func (c *Camera) PixelScale(p mgl32.Vec3) float32 {
	tanHalf := float32(math.Tan(float64(mgl32.DegToRad(c.Fovy)) / 2))
	halfHeight := float32(c.Height) / 2
	if c.Mode == Orthographic {
		return halfHeight / (c.Distance * tanHalf)
	}
	depth := c.Depth(p)
	if depth <= 0 {
		return 0
	}
	return halfHeight / (depth * tanHalf)
}
