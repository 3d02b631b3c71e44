// Package debugui draws Dear ImGui inspector panels over a running viewer.
// Panels are ECS entities carrying an ImguiItem; ImguiSystem queues their
// render functions so they run after the frame's systems.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/viewer"
)

// ImguiItem is a component holding one panel's render function.
type ImguiItem struct {
	Render func()
}

// ImguiInputState records whether ImGui wants the mouse or keyboard this frame.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Captures reports whether ev belongs to ImGui rather than the 3D view.
func (s *ImguiInputState) Captures(ev viewer.Event) bool {
	switch ev.(type) {
	case viewer.MousePress, viewer.MouseDrag, viewer.Wheel:
		return s.WantCaptureMouse
	}
	return false
}

// ImguiSystem refreshes ImguiInputState and defers every panel's render.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	io := imgui.CurrentIO()
	state := i.InputState.Get()
	state.WantCaptureMouse = io.WantCaptureMouse()
	state.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for item := range i.Items.Values() {
		frame.Commands.Defer(item.Render)
	}
}

// Panels are the inspector windows attached to one world.
type Panels struct {
	Atoms       *AtomBrowser
	Selection   *SelectionInspector
	Performance *PerformanceStats
}

// Attach registers the panel components on w, spawns one entity per panel and
// appends ImguiSystem to the schedule. The returned state is read by the entry
// point to keep ImGui clicks out of the 3D view.
func Attach(w *viewer.World) (*Panels, *ecs.Singleton[ImguiInputState]) {
	ecs.RegisterComponent[ImguiItem](w.Registry)
	input := ecs.NewSingleton[ImguiInputState](w.Storage)

	p := &Panels{
		Atoms:       NewAtomBrowser(100),
		Selection:   NewSelectionInspector(),
		Performance: NewPerformanceStats(120),
	}

	w.Storage.Spawn(ImguiItem{Render: func() {
		p.Atoms.Render(w.Document(), w.Pick(), w.Push)
	}})
	w.Storage.Spawn(ImguiItem{Render: func() {
		p.Selection.Render(w.Storage, w.Document(), w.Pick())
	}})
	w.Storage.Spawn(ImguiItem{Render: func() {
		p.Performance.Render(w.Storage, w.Scheduler, w.Stats())
	}})

	w.Register(&ImguiSystem{})
	return p, input
}
