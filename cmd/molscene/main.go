// Command molscene loads a molecule, builds its scene and prints the primitives
// without opening a window. With -pick it also resolves a highlight.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/molview/config"
	"github.com/plus3/molview/logx"
	"github.com/plus3/molview/pick"
	"github.com/plus3/molview/scene"
	"github.com/plus3/molview/viewer"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("molscene", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := config.RegisterFlags(fs)
	pickAt := fs.String("pick", "", "world point x,y,z to resolve to the nearest atom")
	clickAt := fs.String("click", "", "window pixel x,y to cast a pick ray through")
	summary := fs.Bool("summary", false, "print only the primitive counts")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	target, err := parseTarget(*pickAt, *clickAt)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return 2
	}

	cfg, err := flags.Resolve(fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	level, _ := logx.ParseLevel(cfg.LogLevel)
	logger := logx.New(stderr, level)

	if err := render(cfg, target, *summary, stdout, logger); err != nil {
		logger.Error("molscene failed", slog.Any("err", err))
		return 1
	}
	return 0
}

// pickTarget is what to resolve after the scene is printed: a world point from -pick
// or a window pixel from -click. Both nil means no pick.
type pickTarget struct {
	point *mgl32.Vec3
	click *[2]float32
}

func parseTarget(pickAt, clickAt string) (pickTarget, error) {
	var t pickTarget
	if pickAt != "" {
		p, err := parseVec(pickAt, 3)
		if err != nil {
			return t, fmt.Errorf("-pick: %w", err)
		}
		t.point = &mgl32.Vec3{p[0], p[1], p[2]}
	}
	if clickAt != "" {
		p, err := parseVec(clickAt, 2)
		if err != nil {
			return t, fmt.Errorf("-click: %w", err)
		}
		t.click = &[2]float32{p[0], p[1]}
	}
	return t, nil
}

func render(cfg config.Config, t pickTarget, summary bool, w io.Writer, logger *slog.Logger) error {
	doc, err := viewer.LoadDocument(cfg.Molecule, nil, cfg.Pipeline())
	if err != nil {
		return err
	}
	palette, err := cfg.BuildPalette()
	if err != nil {
		return err
	}
	built, err := scene.NewBuilder(palette, scene.Options{}).Build(doc.Molecule)
	if err != nil {
		return err
	}
	logger.Debug("scene built", slog.String("path", doc.Path), slog.Int("primitives", built.Len()))

	fmt.Fprintf(w, "%s: %d spheres, %d cylinders\n", built.Title, len(built.Spheres), len(built.Cylinders))
	if !summary {
		writeTable(w, built)
	}

	var point *mgl32.Vec3
	switch {
	case t.point != nil:
		point = t.point
	case t.click != nil:
		cam := cfg.NewCamera()
		c, r := doc.Molecule.Center(), doc.Molecule.Radius()
		cam.Frame(mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}, float32(r)+1)
		ray, err := cam.ScreenRay(t.click[0], t.click[1])
		if err != nil {
			return err
		}
		if hit, ok := pick.PickPoint(ray, built); ok {
			point = &hit
		}
	default:
		return nil
	}

	res, ok := pick.Resolver{}.Resolve(point, built.Boxes)
	if !ok {
		fmt.Fprintln(w, "pick: nothing")
		return nil
	}
	sel, _ := viewer.Describe(&doc, &viewer.PickState{Index: res.Index, Point: res.Point})
	fmt.Fprintf(w, "pick: atom %d (%s) at %.3f %.3f %.3f, %d bonds\n",
		sel.Index, sel.Symbol, sel.Position.X, sel.Position.Y, sel.Position.Z, len(sel.Bonds))
	return nil
}

func writeTable(w io.Writer, built *scene.Scene) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tSOURCE\tCOLOR\tPOSITION")
	for _, prims := range [][]scene.Primitive{built.Spheres, built.Cylinders} {
		for _, p := range prims {
			pos := p.Position()
			fmt.Fprintf(tw, "%s\t%d\t#%02x%02x%02x\t%.3f %.3f %.3f\n",
				p.Kind, p.Source, p.Color.R, p.Color.G, p.Color.B, pos[0], pos[1], pos[2])
		}
	}
	tw.Flush()
}

func parseVec(s string, n int) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma separated numbers, got %q", n, s)
	}
	out := make([]float32, n)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("component %d: %q is not finite", i, part)
		}
		out[i] = float32(f)
	}
	return out, nil
}
