// Command molinspect shows a molecule in an orthographic 2D rendering with the
// ImGui inspector panels: an atom browser, the selection and frame statistics.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/plus3/molview/camera"
	"github.com/plus3/molview/config"
	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/ecs/debugui"
	debugui_ebiten "github.com/plus3/molview/ecs/debugui/ebiten"
	"github.com/plus3/molview/logx"
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
		logger.Error("molinspect failed", slog.Any("err", err))
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

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.Window.FPS > 0 {
		ebiten.SetTPS(cfg.Window.FPS)
	}
	backend := debugui_ebiten.New(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)

	cam := cfg.NewCamera()
	cam.Mode = camera.Orthographic
	world, err := viewer.NewWorld(doc, viewer.Options{
		Builder:  scene.NewBuilder(palette, scene.Options{}),
		Camera:   cam,
		Pipeline: cfg.Pipeline(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	_, capture := debugui.Attach(world)

	game := &Game{
		world:   world,
		backend: backend,
		capture: capture,
		canvas:  NewCanvas(world.Storage),
	}

	if cfg.Watch {
		w, err := watch.File(doc.Path, 0, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		game.changes = w.Changes()
	}

	return ebiten.RunGame(game)
}

// Game implements ebiten.Game over a viewer world.
type Game struct {
	world   *viewer.World
	backend debugui_ebiten.ImguiBackend
	capture *ecs.Singleton[debugui.ImguiInputState]
	canvas  *Canvas
	changes <-chan string

	lastX, lastY int
	dirty        bool
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	select {
	case path := <-g.changes:
		g.world.Push(viewer.Reload{Path: path})
	default:
	}

	g.backend.Frame(func() {
		g.pollInput()
		g.world.Step(1 / float64(ebiten.TPS()))
	})
	g.dirty = g.dirty || g.world.Redraw().Needed
	return nil
}

func (g *Game) pollInput() {
	state := g.capture.Get()
	push := func(ev viewer.Event) {
		if !state.Captures(ev) {
			g.world.Push(ev)
		}
	}

	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		push(viewer.MousePress{Button: viewer.MouseLeft, X: float32(x), Y: float32(y)})
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		push(viewer.MouseDrag{DX: float32(x - g.lastX), DY: float32(y - g.lastY)})
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		push(viewer.Wheel{Delta: float32(dy)})
	}
	g.lastX, g.lastY = x, y

	if !state.WantCaptureKeyboard && inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.world.Push(viewer.Reload{})
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas.Resize(screen.Bounds().Dx(), screen.Bounds().Dy()) || g.dirty {
		g.canvas.Redraw(g.world.Camera(), g.world.Pick())
		g.dirty = false
	}
	screen.DrawImage(g.canvas.Image(), nil)
	g.backend.Overlay(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend.Layout(outsideWidth, outsideHeight)
	cam := g.world.Camera()
	if cam.Width != outsideWidth || cam.Height != outsideHeight {
		g.world.Push(viewer.Resize{Width: outsideWidth, Height: outsideHeight})
	}
	return outsideWidth, outsideHeight
}
