package viewer

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/plus3/molview/chem"
	"github.com/plus3/molview/scene"
)

// AtomRow is one line of an atom listing.
type AtomRow struct {
	Index     int
	Symbol    string
	Position  r3.Vec
	Size      float32
	Neighbors int
}

// Column selects the key SortRows orders by.
type Column int

const (
	ColumnIndex Column = iota
	ColumnSymbol
	ColumnSize
	ColumnNeighbors
)

// AtomRows lists every atom of mol in index order.
func AtomRows(mol *chem.Molecule) []AtomRow {
	if mol == nil {
		return nil
	}
	degree := make([]int, mol.Len())
	for _, b := range mol.Bonds() {
		if b.Dummy || int(b.A) >= len(degree) || int(b.B) >= len(degree) || b.A < 0 || b.B < 0 {
			continue
		}
		degree[b.A]++
		degree[b.B]++
	}

	rows := make([]AtomRow, mol.Len())
	for i, atom := range mol.Atoms() {
		rows[i] = AtomRow{
			Index:     i,
			Symbol:    atom.Symbol(),
			Position:  atom.Position(),
			Size:      scene.AtomSize(atom),
			Neighbors: degree[i],
		}
	}
	return rows
}

// FilterRows keeps the rows whose symbol equals filter, ignoring case, or whose
// index is filter. An empty filter keeps everything.
func FilterRows(rows []AtomRow, filter string) []AtomRow {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return rows
	}
	index, err := strconv.Atoi(filter)
	isIndex := err == nil

	var out []AtomRow
	for _, row := range rows {
		if strings.EqualFold(row.Symbol, filter) || (isIndex && row.Index == index) {
			out = append(out, row)
		}
	}
	return out
}

// SortRows orders rows in place by col. Equal keys keep index order.
func SortRows(rows []AtomRow, col Column, ascending bool) {
	slices.SortStableFunc(rows, func(a, b AtomRow) int {
		var c int
		switch col {
		case ColumnIndex:
			c = cmp.Compare(a.Index, b.Index)
		case ColumnSymbol:
			c = strings.Compare(a.Symbol, b.Symbol)
		case ColumnSize:
			c = cmp.Compare(a.Size, b.Size)
		case ColumnNeighbors:
			c = cmp.Compare(a.Neighbors, b.Neighbors)
		}
		if !ascending {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.Index, b.Index)
		}
		return c
	})
}

// BondInfo describes one bond from the selected atom's side.
type BondInfo struct {
	Other  int
	Symbol string
	Order  int
	Length float64
}

// Selection is what is known about the highlighted atom.
type Selection struct {
	Index          int
	Symbol         string
	Position       r3.Vec
	Size           float32
	CovalentRadius float64
	Bonds          []BondInfo
}

// Describe returns the details of the highlighted atom of doc. It reports false
// when nothing is highlighted or the highlight does not belong to doc.
func Describe(doc *Document, p *PickState) (Selection, bool) {
	if doc == nil || doc.Molecule == nil || p == nil || !p.Active() {
		return Selection{}, false
	}
	mol := doc.Molecule
	atom, err := mol.Atom(chem.AtomID(p.Index))
	if err != nil {
		return Selection{}, false
	}

	radius, ok := atom.CovalentRadius()
	if !ok {
		radius = chem.DefaultCovalentRadius
	}
	sel := Selection{
		Index:          p.Index,
		Symbol:         atom.Symbol(),
		Position:       atom.Position(),
		Size:           scene.AtomSize(atom),
		CovalentRadius: radius,
	}

	id := chem.AtomID(p.Index)
	for _, b := range mol.Bonds() {
		if b.Dummy || (b.A != id && b.B != id) {
			continue
		}
		other := b.Other(id)
		o, err := mol.Atom(other)
		if err != nil {
			continue
		}
		sel.Bonds = append(sel.Bonds, BondInfo{
			Other:  int(other),
			Symbol: o.Symbol(),
			Order:  b.Order,
			Length: r3.Norm(r3.Sub(o.Position(), atom.Position())),
		})
	}
	return sel, true
}

// Selection describes the current highlight.
func (w *World) Selection() (Selection, bool) {
	return Describe(w.Document(), w.Pick())
}
