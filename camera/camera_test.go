package camera_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/molview/camera"
	"github.com/plus3/molview/pick"
)

func assertVec(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "want %v got %v", want, got)
	}
}

func TestEyeDefaults(t *testing.T) {
	c := camera.New(800, 600)
	assertVec(t, mgl32.Vec3{0, 0, 10}, c.Eye(), 1e-5)

	c.Yaw = math.Pi / 2
	assertVec(t, mgl32.Vec3{10, 0, 0}, c.Eye(), 1e-4)
}

func TestScreenRayThroughCenter(t *testing.T) {
	for _, mode := range []camera.Projection{camera.Perspective, camera.Orthographic} {
		t.Run(mode.String(), func(t *testing.T) {
			c := camera.New(800, 600)
			c.Mode = mode
			c.Target = mgl32.Vec3{1, 2, 3}
			c.Yaw, c.Pitch = 0.3, -0.2

			ray, err := c.ScreenRay(400, 300)
			require.NoError(t, err)

			want := c.Target.Sub(c.Eye()).Normalize()
			assertVec(t, want, ray.Direction.Normalize(), 1e-3)

			// the target lies on the ray
			toTarget := c.Target.Sub(ray.Origin)
			off := toTarget.Sub(ray.Direction.Normalize().Mul(toTarget.Dot(ray.Direction.Normalize())))
			assert.Less(t, off.Len(), float32(1e-2))
		})
	}
}

func TestScreenRayOrientation(t *testing.T) {
	c := camera.New(800, 600)

	left, err := c.ScreenRay(0, 300)
	require.NoError(t, err)
	top, err := c.ScreenRay(400, 0)
	require.NoError(t, err)

	// looking down -Z with Y up: the left edge points to -X and the top row to +Y
	assert.Less(t, left.Direction[0], float32(0))
	assert.Greater(t, top.Direction[1], float32(0))
}

func TestOrthographicRaysAreParallel(t *testing.T) {
	c := camera.New(640, 480)
	c.Mode = camera.Orthographic

	a, err := c.ScreenRay(10, 20)
	require.NoError(t, err)
	b, err := c.ScreenRay(600, 400)
	require.NoError(t, err)

	assertVec(t, a.Direction.Normalize(), b.Direction.Normalize(), 1e-4)
	assert.NotEqual(t, a.Origin, b.Origin)
}

func TestScreenRayHitsProjectedSphere(t *testing.T) {
	c := camera.New(800, 600)
	c.Frame(mgl32.Vec3{}, 3)

	center := mgl32.Vec3{1, -0.5, 0.25}
	px := c.Project(center)

	ray, err := c.ScreenRay(px[0], px[1])
	require.NoError(t, err)

	_, ok := ray.IntersectSphere(center, 0.1)
	assert.True(t, ok)
}

func TestScreenRayEmptyViewport(t *testing.T) {
	c := camera.New(0, 0)
	_, err := c.ScreenRay(0, 0)
	assert.ErrorIs(t, err, camera.ErrEmptyViewport)
}

func TestOrbitClampsPitch(t *testing.T) {
	c := camera.New(800, 600)
	c.Orbit(0, 1e6)
	assert.Less(t, c.Pitch, float32(math.Pi/2))
	c.Orbit(0, -2e6)
	assert.Greater(t, c.Pitch, float32(-math.Pi/2))

	yaw := c.Yaw
	c.Orbit(100, 0)
	assert.NotEqual(t, yaw, c.Yaw)
}

func TestZoom(t *testing.T) {
	c := camera.New(800, 600)
	d := c.Distance

	c.Zoom(1)
	assert.Less(t, c.Distance, d)
	c.Zoom(-2)
	assert.Greater(t, c.Distance, d)

	c.Zoom(1000)
	assert.GreaterOrEqual(t, c.Distance, float32(0.5))
}

func TestFrame(t *testing.T) {
	c := camera.New(800, 600)
	c.Frame(mgl32.Vec3{5, 0, 0}, 10)

	assert.Equal(t, mgl32.Vec3{5, 0, 0}, c.Target)
	assert.Greater(t, c.Distance, float32(10))
	assert.GreaterOrEqual(t, c.Far, c.Distance)
}

func TestParseProjection(t *testing.T) {
	p, err := camera.ParseProjection("Orthographic")
	require.NoError(t, err)
	assert.Equal(t, camera.Orthographic, p)

	p, err = camera.ParseProjection("")
	require.NoError(t, err)
	assert.Equal(t, camera.Perspective, p)

	_, err = camera.ParseProjection("fisheye")
	assert.Error(t, err)
}

var _ interface {
	ScreenRay(x, y float32) (pick.Ray, error)
} = (*camera.Camera)(nil)

func TestPixelScaleMatchesProjection(t *testing.T) {
	for _, mode := range []camera.Projection{camera.Perspective, camera.Orthographic} {
		t.Run(mode.String(), func(t *testing.T) {
			c := camera.New(800, 600)
			c.Mode = mode

			a := c.Project(mgl32.Vec3{0, 0, 0})
			b := c.Project(mgl32.Vec3{1, 0, 0})
			assert.InDelta(t, b.Sub(a).Len(), c.PixelScale(mgl32.Vec3{}), 1e-2)
			assert.InDelta(t, 10, c.Depth(mgl32.Vec3{}), 1e-5)
		})
	}

	c := camera.New(800, 600)
	assert.Zero(t, c.PixelScale(mgl32.Vec3{0, 0, 20}), "behind the eye")
}
