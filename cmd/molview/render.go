package main

import (
	"fmt"
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/molview/camera"
	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/viewer"
)

var (
	background = color.RGBA{R: 24, G: 26, B: 32, A: 255}
	highlight  = color.RGBA{R: 255, G: 220, B: 0, A: 255}
)

// raylib builds cylinders along +Y; the scene's canonical cylinder runs along +X.
var cylinderFix = mgl32.HomogRotate3DZ(-math.Pi / 2)

// Renderer draws the world's atoms and bonds into an offscreen texture, only on
// frames that need it, and blits that texture every frame.
type Renderer struct {
	atoms *ecs.View[viewer.AtomView]
	bonds *ecs.View[viewer.BondView]

	sphere   rl.Mesh
	cylinder rl.Mesh
	material rl.Material
	target   rl.RenderTexture2D
	width    int
	height   int
}

// NewRenderer uploads the unit meshes. It needs an open window.
func NewRenderer(storage *ecs.Storage) *Renderer {
	return &Renderer{
		atoms:    ecs.NewView[viewer.AtomView](storage),
		bonds:    ecs.NewView[viewer.BondView](storage),
		sphere:   rl.GenMeshSphere(1, 16, 16),
		cylinder: rl.GenMeshCylinder(1, 1, 12),
		material: rl.LoadMaterialDefault(),
	}
}

func (r *Renderer) Close() {
	rl.UnloadMesh(&r.sphere)
	rl.UnloadMesh(&r.cylinder)
	rl.UnloadMaterial(r.material)
	if r.width > 0 {
		rl.UnloadRenderTexture(r.target)
	}
}

// Frame draws one display frame. It must run after World.Step so deferred entity
// changes are visible.
func (r *Renderer) Frame(w *viewer.World) {
	cam := w.Camera()
	resized := r.ensureTarget(cam.Width, cam.Height)
	if w.Redraw().Needed || resized {
		r.redraw(cam, w.Pick())
	}

	rl.BeginDrawing()
	rl.ClearBackground(background)
	// render textures are stored upside down
	src := rl.NewRectangle(0, 0, float32(r.width), -float32(r.height))
	rl.DrawTextureRec(r.target.Texture, src, rl.NewVector2(0, 0), color.RGBA{R: 255, G: 255, B: 255, A: 255})
	rl.DrawText(w.Scene().Title, 10, 10, 20, rl.RayWhite)
	if sel, ok := w.Selection(); ok {
		rl.DrawText(selectionLabel(sel), 10, 34, 18, highlight)
	}
	rl.EndDrawing()
}

func (r *Renderer) ensureTarget(width, height int) bool {
	if width == r.width && height == r.height {
		return false
	}
	if r.width > 0 {
		rl.UnloadRenderTexture(r.target)
	}
	r.target = rl.LoadRenderTexture(int32(width), int32(height))
	r.width, r.height = width, height
	return true
}

func (r *Renderer) redraw(cam *camera.Camera, p *viewer.PickState) {
	rl.BeginTextureMode(r.target)
	rl.ClearBackground(background)
	rl.BeginMode3D(toCamera3D(cam))

	for atom := range r.atoms.Values() {
		r.material.Maps.Color = atom.Primitive.Color
		rl.DrawMesh(r.sphere, r.material, toMatrix(atom.Primitive.Transform))
	}
	for bond := range r.bonds.Values() {
		r.material.Maps.Color = bond.Primitive.Color
		rl.DrawMesh(r.cylinder, r.material, toMatrix(bond.Primitive.Transform.Mul4(cylinderFix)))
	}
	if p.Active() {
		center := p.Transform.Col(3).Vec3()
		rl.DrawSphereWires(toVector3(center), p.Transform.At(0, 0), 12, 12, highlight)
	}

	rl.EndMode3D()
	rl.EndTextureMode()
}

func selectionLabel(sel viewer.Selection) string {
	return fmt.Sprintf("%s%d  (%.3f, %.3f, %.3f)  %d bonds",
		sel.Symbol, sel.Index, sel.Position.X, sel.Position.Y, sel.Position.Z, len(sel.Bonds))
}

// toCamera3D mirrors cam for raylib. raylib's orthographic fovy is the height
// of the view volume.
func toCamera3D(cam *camera.Camera) rl.Camera3D {
	projection := rl.CameraPerspective
	fovy := cam.Fovy
	if cam.Mode == camera.Orthographic {
		projection = rl.CameraOrthographic
		fovy = 2 * cam.Distance * float32(math.Tan(float64(mgl32.DegToRad(cam.Fovy))/2))
	}
	return rl.NewCamera3D(toVector3(cam.Eye()), toVector3(cam.Target), toVector3(cam.Up()), fovy, projection)
}

func toVector3(v mgl32.Vec3) rl.Vector3 { return rl.NewVector3(v[0], v[1], v[2]) }

func mgl32Vec(v rl.Vector3) mgl32.Vec3 { return mgl32.Vec3{v.X, v.Y, v.Z} }

func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}
