package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/molview/viewer"
)

// sortable table columns, in display order
var atomColumns = []struct {
	name string
	key  viewer.Column
}{
	{"#", viewer.ColumnIndex},
	{"Element", viewer.ColumnSymbol},
	{"Position", viewer.ColumnIndex},
	{"Size", viewer.ColumnSize},
	{"Bonds", viewer.ColumnNeighbors},
}

// AtomBrowser lists the atoms of the document. Clicking a row highlights the atom.
type AtomBrowser struct {
	filter    string
	rows      []viewer.AtomRow
	rowsGen   int
	rowsMol   any
	column    viewer.Column
	ascending bool
	perPage   int
	page      int
}

func NewAtomBrowser(perPage int) *AtomBrowser {
	return &AtomBrowser{
		ascending: true,
		perPage:   perPage,
	}
}

func (b *AtomBrowser) Render(doc *viewer.Document, p *viewer.PickState, push func(viewer.Event)) {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(360, 420), imgui.CondOnce)
	if !imgui.BeginV("Atoms", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	b.refresh(doc)

	imgui.InputTextWithHint("##filter", "Element or index...", &b.filter, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear") {
		b.filter = ""
		b.page = 0
		push(viewer.SelectAtom{Index: -1})
	}

	rows := viewer.FilterRows(b.rows, b.filter)
	pages := max(1, (len(rows)+b.perPage-1)/b.perPage)
	b.page = min(b.page, pages-1)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("AtomTable", int32(len(atomColumns)), tableFlags, imgui.NewVec2(0, -30), 0) {
		for _, col := range atomColumns {
			imgui.TableSetupColumn(col.name)
		}
		imgui.TableHeadersRow()

		specs := imgui.TableGetSortSpecs()
		if specs.SpecsDirty() && specs.SpecsCount() > 0 {
			spec := specs.Specs()
			b.column = atomColumns[spec.ColumnIndex()].key
			b.ascending = spec.SortDirection() == imgui.SortDirectionAscending
			viewer.SortRows(b.rows, b.column, b.ascending)
			rows = viewer.FilterRows(b.rows, b.filter)
			specs.SetSpecsDirty(false)
		}

		start := b.page * b.perPage
		end := min(start+b.perPage, len(rows))
		for _, row := range rows[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			selected := p.Index == row.Index
			if imgui.SelectableBoolV(fmt.Sprintf("%d", row.Index), selected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				push(viewer.SelectAtom{Index: row.Index})
			}

			imgui.TableNextColumn()
			imgui.Text(row.Symbol)
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.3f %.3f %.3f", row.Position.X, row.Position.Y, row.Position.Z))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.3f", row.Size))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Neighbors))
		}

		imgui.EndTable()
	}

	if pages > 1 {
		imgui.Text(fmt.Sprintf("Page %d / %d (%d atoms)", b.page+1, pages, len(rows)))
		imgui.SameLine()
		if imgui.Button("Prev") && b.page > 0 {
			b.page--
		}
		imgui.SameLine()
		if imgui.Button("Next") && b.page < pages-1 {
			b.page++
		}
	} else {
		imgui.Text(fmt.Sprintf("%d atoms", len(rows)))
	}

	imgui.End()
}

// refresh rebuilds the row cache when a new document generation arrives.
func (b *AtomBrowser) refresh(doc *viewer.Document) {
	if b.rows != nil && b.rowsGen == doc.Generation && b.rowsMol == any(doc.Molecule) {
		return
	}
	b.rows = viewer.AtomRows(doc.Molecule)
	if b.rows == nil {
		b.rows = []viewer.AtomRow{}
	}
	b.rowsGen = doc.Generation
	b.rowsMol = doc.Molecule
	viewer.SortRows(b.rows, b.column, b.ascending)
}
