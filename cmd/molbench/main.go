// Command molbench drives the viewer frame loop over a synthetic crystal with
// random clicks and prints a timing report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/molview/logx"
	"github.com/plus3/molview/viewer"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "how long to run frames for")
	side := flag.Int("side", 12, "atoms along each edge of the cubic lattice")
	clickRate := flag.Float64("clicks", 0.5, "probability of a click in each frame")
	seed := flag.Uint64("seed", 1, "random seed for click positions")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "include GC pause totals in the report")
	verbose := flag.Bool("v", false, "log informational messages")
	flag.Parse()

	logger := logx.Setup(os.Stderr, logx.LevelFromFlags(false, *verbose, false))

	report := &Report{
		Duration:       *duration,
		Side:           *side,
		ClickRate:      *clickRate,
		GCPauseMetrics: *gcPauseMetrics,
	}

	mol := Lattice(*side, CarbonSpacing)
	report.Atoms = mol.Len()

	start := time.Now()
	pipeline := viewer.DefaultPipeline()
	if err := pipeline.Apply(mol); err != nil {
		logger.Error("prepare lattice", slog.Any("err", err))
		os.Exit(1)
	}
	report.Prepare = time.Since(start)
	report.Bonds = mol.NumBonds()

	start = time.Now()
	world, err := viewer.NewWorld(viewer.Document{Molecule: mol, Path: "lattice"}, viewer.Options{
		Pipeline: pipeline,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("build scene", slog.Any("err", err))
		os.Exit(1)
	}
	report.Build = time.Since(start)

	runtime.ReadMemStats(&report.MemStatsStart)
	logger.Info("running frames", slog.Duration("duration", *duration), slog.Int("atoms", report.Atoms))

	rng := rand.New(rand.NewPCG(*seed, *seed))
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	run(ctx, world, rng, report)

	runtime.ReadMemStats(&report.MemStatsEnd)

	fmt.Println("--- molbench report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Error("generate report", slog.Any("err", err))
		os.Exit(1)
	}
}

// run steps world until ctx is done, clicking at random pixels.
func run(ctx context.Context, world *viewer.World, rng *rand.Rand, report *Report) {
	cam := world.Camera()
	started := time.Now()
	last := started

	for ctx.Err() == nil {
		if rng.Float64() < report.ClickRate {
			world.Push(viewer.MousePress{
				Button: viewer.MouseLeft,
				X:      rng.Float32() * float32(cam.Width),
				Y:      rng.Float32() * float32(cam.Height),
			})
		}
		if rng.IntN(10) == 0 {
			world.Push(viewer.MouseDrag{DX: rng.Float32()*4 - 2, DY: rng.Float32()*4 - 2})
		}

		dt := time.Since(last)
		last = time.Now()

		frameStart := time.Now()
		world.Step(dt.Seconds())
		report.Frame.Samples = append(report.Frame.Samples, time.Since(frameStart))
	}

	report.TotalTime = time.Since(started)
	report.Frame.Finalize()
	report.Stats = *world.Stats()
	report.Systems = world.Scheduler.GetStats().Systems
}
