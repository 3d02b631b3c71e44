package debugui

import (
	"fmt"
	"image/color"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/molview/ecs"
	"github.com/plus3/molview/viewer"
)

// SelectionInspector shows the highlighted atom, its bonds and the raw ECS
// components of its entity.
type SelectionInspector struct {
	atoms    *ecs.View[viewer.AtomView]
	ref      *ecs.EntityRef
	refIndex int
}

func NewSelectionInspector() *SelectionInspector {
	return &SelectionInspector{}
}

func (si *SelectionInspector) Render(storage *ecs.Storage, doc *viewer.Document, p *viewer.PickState) {
	imgui.SetNextWindowPosV(imgui.NewVec2(380, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 300), imgui.CondOnce)
	if !imgui.BeginV("Selection", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	sel, ok := viewer.Describe(doc, p)
	if !ok {
		imgui.Text("No atom selected")
		return
	}

	imgui.Text(fmt.Sprintf("Atom %d: %s", sel.Index, sel.Symbol))
	imgui.Text(fmt.Sprintf("Position: %.4f %.4f %.4f", sel.Position.X, sel.Position.Y, sel.Position.Z))
	imgui.Text(fmt.Sprintf("Covalent radius: %.3f", sel.CovalentRadius))
	imgui.Text(fmt.Sprintf("Drawn radius: %.3f", sel.Size))
	imgui.Text(fmt.Sprintf("Pick point: %.3f %.3f %.3f", p.Point[0], p.Point[1], p.Point[2]))
	imgui.Separator()

	if len(sel.Bonds) == 0 {
		imgui.Text("No bonds")
	}
	for _, b := range sel.Bonds {
		imgui.BulletText(fmt.Sprintf("%s%d  order %d  %.3f", b.Symbol, b.Other, b.Order, b.Length))
	}

	id, ok := si.entity(storage, sel.Index)
	if !ok {
		return
	}
	imgui.Separator()
	if imgui.TreeNodeStr(fmt.Sprintf("Entity %d", id)) {
		archetype := storage.GetArchetypeById(id.ArchetypeId())
		if archetype != nil {
			for _, compType := range archetype.Types() {
				component := storage.GetComponent(id, compType)
				if component == nil {
					continue
				}
				if imgui.TreeNodeStr(compType.String()) {
					renderValue(reflect.ValueOf(component))
					imgui.TreePop()
				}
			}
		}
		imgui.TreePop()
	}
}

// entity finds the entity drawing atom index. The last match is remembered
// through an EntityRef, which a scene rebuild clears.
func (si *SelectionInspector) entity(storage *ecs.Storage, index int) (ecs.EntityId, bool) {
	if si.atoms == nil {
		si.atoms = ecs.NewView[viewer.AtomView](storage)
	}
	if si.refIndex == index && si.atoms.GetRef(si.ref) != nil {
		return si.ref.Id, true
	}
	for id, atom := range si.atoms.Iter() {
		if int(atom.ID) == index {
			si.ref = storage.CreateEntityRef(id)
			si.refIndex = index
			return id, true
		}
	}
	return 0, false
}

// renderValue draws the exported fields of a struct read-only.
func renderValue(val reflect.Value) {
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			imgui.Text("nil")
			return
		}
		val = val.Elem()
	}
	for _, field := range globalReflectionCache.GetFields(val.Type()) {
		renderField(field.Name, val.Field(field.Index), field)
	}
}

var (
	matType   = reflect.TypeFor[mgl32.Mat4]()
	vec3Type  = reflect.TypeFor[mgl32.Vec3]()
	colorType = reflect.TypeFor[color.RGBA]()
)

func renderField(name string, val reflect.Value, field FieldInfo) {
	if field.IsPointer {
		if val.IsNil() {
			imgui.Text(fmt.Sprintf("%s: nil", name))
			return
		}
		val = val.Elem()
	}

	switch {
	case val.Type() == matType:
		m := val.Interface().(mgl32.Mat4)
		if imgui.TreeNodeStr(name) {
			for row := range 4 {
				imgui.Text(fmt.Sprintf("% .3f % .3f % .3f % .3f", m.At(row, 0), m.At(row, 1), m.At(row, 2), m.At(row, 3)))
			}
			imgui.TreePop()
		}
	case val.Type() == vec3Type:
		v := val.Interface().(mgl32.Vec3)
		imgui.Text(fmt.Sprintf("%s: %.3f %.3f %.3f", name, v[0], v[1], v[2]))
	case val.Type() == colorType:
		c := val.Interface().(color.RGBA)
		imgui.Text(fmt.Sprintf("%s: #%02x%02x%02x", name, c.R, c.G, c.B))
	case field.IsStruct:
		if imgui.TreeNodeStr(name) {
			renderValue(val)
			imgui.TreePop()
		}
	case field.IsSlice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))
	case field.IsMap:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))
	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}
