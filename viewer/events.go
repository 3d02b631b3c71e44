package viewer

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// Event is an input delivered to the next frame.
type Event interface {
	event()
}

// MousePress is a button going down at pixel (X, Y).
type MousePress struct {
	Button MouseButton
	X, Y   float32
}

// MouseDrag is pointer movement with the orbit button held.
type MouseDrag struct {
	DX, DY float32
}

// Wheel is a scroll of Delta notches; positive zooms in.
type Wheel struct {
	Delta float32
}

// Resize reports a new viewport size in pixels.
type Resize struct {
	Width, Height int
}

// Reload asks for the document to be read again from Path, or from the current
// document path when Path is empty.
type Reload struct {
	Path string
}

// SelectAtom highlights an atom by index without a ray cast. A negative Index
// clears the highlight.
type SelectAtom struct {
	Index int
}

func (MousePress) event() {}
func (MouseDrag) event()  {}
func (Wheel) event()      {}
func (Resize) event()     {}
func (Reload) event()     {}
func (SelectAtom) event() {}
