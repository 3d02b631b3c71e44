// Command molview opens a window showing a molecule as balls and sticks.
// Left click highlights the nearest atom, right drag orbits, the wheel zooms,
// R reloads the file, P switches projection and C clears the highlight.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/plus3/molview/camera"
	"github.com/plus3/molview/config"
	"github.com/plus3/molview/logx"
	"github.com/plus3/molview/pick"
	"github.com/plus3/molview/scene"
	"github.com/plus3/molview/viewer"
	"github.com/plus3/molview/watch"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := flags.Resolve(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level, _ := logx.ParseLevel(cfg.LogLevel)
	logger := logx.Setup(os.Stderr, level)

	if err := run(cfg, logger); err != nil {
		logger.Error("molview failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	doc, err := viewer.LoadDocument(cfg.Molecule, nil, cfg.Pipeline())
	if err != nil {
		return err
	}
	palette, err := cfg.BuildPalette()
	if err != nil {
		return err
	}

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), cfg.Window.Title)
	defer rl.CloseWindow()
	if cfg.Window.FPS > 0 {
		rl.SetTargetFPS(int32(cfg.Window.FPS))
	}

	cam := cfg.NewCamera()
	world, err := viewer.NewWorld(doc, viewer.Options{
		Builder:  scene.NewBuilder(palette, scene.Options{}),
		Camera:   cam,
		Caster:   rayCaster{cam: cam},
		Pipeline: cfg.Pipeline(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	var changes <-chan string
	if cfg.Watch {
		w, err := watch.File(doc.Path, 0, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		changes = w.Changes()
	}

	renderer := NewRenderer(world.Storage)
	defer renderer.Close()

	for !rl.WindowShouldClose() {
		select {
		case path := <-changes:
			world.Push(viewer.Reload{Path: path})
		default:
		}
		pollInput(world)

		world.Step(float64(rl.GetFrameTime()))
		renderer.Frame(world)
	}
	return nil
}

// pollInput turns this frame's raylib input into viewer events.
func pollInput(world *viewer.World) {
	if rl.IsWindowResized() {
		world.Push(viewer.Resize{Width: rl.GetScreenWidth(), Height: rl.GetScreenHeight()})
	}

	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		world.Push(viewer.MousePress{Button: viewer.MouseLeft, X: mouse.X, Y: mouse.Y})
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonMiddle) {
		world.Push(viewer.MousePress{Button: viewer.MouseMiddle, X: mouse.X, Y: mouse.Y})
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		world.Push(viewer.MouseDrag{DX: d.X, DY: d.Y})
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		world.Push(viewer.Wheel{Delta: wheel})
	}

	if rl.IsKeyPressed(rl.KeyR) {
		world.Push(viewer.Reload{})
	}
	if rl.IsKeyPressed(rl.KeyP) {
		cam := world.Camera()
		if cam.Mode == camera.Perspective {
			cam.Mode = camera.Orthographic
		} else {
			cam.Mode = camera.Perspective
		}
		world.Invalidate()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		world.Push(viewer.SelectAtom{Index: -1})
	}
}

// rayCaster lets raylib compute pick rays from the same camera it draws with.
type rayCaster struct {
	cam *camera.Camera
}

func (c rayCaster) ScreenRay(x, y float32) (pick.Ray, error) {
	if c.cam.Width <= 0 || c.cam.Height <= 0 {
		return pick.Ray{}, camera.ErrEmptyViewport
	}
	ray := rl.GetScreenToWorldRayEx(rl.NewVector2(x, y), toCamera3D(c.cam), int32(c.cam.Width), int32(c.cam.Height))
	return pick.Ray{
		Origin:    mgl32Vec(ray.Position),
		Direction: mgl32Vec(ray.Direction),
	}, nil
}
