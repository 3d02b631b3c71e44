package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/viewer"
)

// PerformanceStats graphs frame times and shows the viewer's frame counters.
type PerformanceStats struct {
	timer        *FrameTimer
	frameHistory []float32
	frameIndex   int
}

func NewPerformanceStats(historyFrames int) *PerformanceStats {
	return &PerformanceStats{
		timer:        NewFrameTimer(),
		frameHistory: make([]float32, historyFrames),
	}
}

// Record adds one frame time in milliseconds to the history ring.
func (ps *PerformanceStats) Record(ms float32) {
	ps.frameHistory[ps.frameIndex] = ms
	ps.frameIndex = (ps.frameIndex + 1) % len(ps.frameHistory)
}

// Average is the mean of the recorded frame times in milliseconds.
func (ps *PerformanceStats) Average() float32 {
	var sum float32
	for _, ft := range ps.frameHistory {
		sum += ft
	}
	return sum / float32(len(ps.frameHistory))
}

func (ps *PerformanceStats) Render(storage *ecs.Storage, scheduler *ecs.Scheduler, frames *viewer.FrameStats) {
	ps.Record(ps.timer.GetDeltaTime() * 1000)

	imgui.SetNextWindowPosV(imgui.NewVec2(380, 320), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 300), imgui.CondOnce)
	if !imgui.BeginV("Performance", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	avg := ps.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	imgui.Separator()
	imgui.Text(fmt.Sprintf("Frames: %d (drawn %d, skipped %d)", frames.Frames, frames.Redraws, frames.Skipped))
	imgui.Text(fmt.Sprintf("Picks: %d hits, %d misses", frames.Picks, frames.Misses))
	imgui.Text(fmt.Sprintf("Reloads: %d  Rebuilds: %d  Failures: %d", frames.Reloads, frames.Rebuilds, frames.Failures))

	stats := storage.CollectStats()
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Entities: %d in %d archetypes", stats.TotalEntityCount, stats.ArchetypeCount))

	if imgui.TreeNodeStr("Archetypes") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("ArchStatsTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("ID")
			imgui.TableSetupColumn("Components")
			imgui.TableSetupColumn("Entities")
			imgui.TableHeadersRow()

			for _, arch := range stats.ArchetypeBreakdown {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("0x%X", arch.ID))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%v", arch.ComponentTypes))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", arch.EntityCount))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, sys := range scheduler.GetStats().Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(sys.Name)
				imgui.TableNextColumn()
				imgui.Text(sys.LastDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.MaxDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singletons") {
		for _, name := range stats.SingletonTypes {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}

	imgui.End()
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{lastFrameTime: time.Now()}
}

// GetDeltaTime returns the seconds since the previous call.
func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
