package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/viewer"
)

type Report struct {
	// Configuration
	Duration  time.Duration
	Side      int
	ClickRate float64

	// Workload
	Atoms   int
	Bonds   int
	Prepare time.Duration
	Build   time.Duration

	// Results
	TotalTime      time.Duration
	Frame          Stats
	Stats          viewer.FrameStats
	Systems        []ecs.SystemStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]
	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// HitRate is the fraction of clicks that highlighted an atom.
func (r *Report) HitRate() float64 {
	clicks := r.Stats.Picks + r.Stats.Misses
	if clicks == 0 {
		return 0
	}
	return float64(r.Stats.Picks) / float64(clicks)
}

const reportTemplate = `
# molview frame benchmark

## Workload
- **Lattice:** {{.Side}}^3 ({{.Atoms}} atoms, {{.Bonds}} bonds)
- **Prepare (rebond + recenter):** {{.Prepare}}
- **Initial scene build:** {{.Build}}
- **Run duration:** {{.Duration}}, click rate {{printf "%.2f" .ClickRate}}

## Frames
- **Frames:** {{.Stats.Frames}} in {{.TotalTime}} ({{.Stats.Redraws}} redrawn, {{.Stats.Skipped}} skipped)
- **Frame time:** avg {{.Frame.Avg}}, min {{.Frame.Min}}, max {{.Frame.Max}}
- **Picks:** {{.Stats.Picks}} hits, {{.Stats.Misses}} misses ({{pct .HitRate}})

## Systems
{{range .Systems}}- **{{.Name}}:** avg {{.AvgDuration}}, max {{.MaxDuration}} over {{.ExecutionCount}} runs
{{end}}
## Memory
- Heap Alloc:  {{mb .MemStatsStart.HeapAlloc}} MB -> {{mb .MemStatsEnd.HeapAlloc}} MB
- Total Alloc: delta {{mb (bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}} MB
- Num GC:      {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pauses
- **Total GC Pause:** {{ns (bsub .MemStatsEnd.PauseTotalNs .MemStatsStart.PauseTotalNs)}}
{{end}}`

var reportFuncs = template.FuncMap{
	"mb": func(v any) string {
		switch val := v.(type) {
		case uint64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		case int64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		default:
			return "N/A"
		}
	},
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns int64) string {
		return time.Duration(ns).String()
	},
	"pct": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f*100)
	},
}

func (r *Report) Generate(w io.Writer) error {
	tmpl, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}
