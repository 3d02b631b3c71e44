// Package chem holds the molecule model the viewer draws: atoms with 3D positions,
// the bond graph between them and an optional periodic lattice.
package chem

import (
	"errors"
	"fmt"

	"github.com/kamstrup/intmap"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrDanglingAtom is returned when an AtomID does not resolve to an atom.
	ErrDanglingAtom = errors.New("dangling atom reference")
	// ErrSelfBond is returned when a bond would connect an atom to itself.
	ErrSelfBond = errors.New("atom bonded to itself")
)

// AtomID indexes an atom inside its Molecule.
type AtomID int

// Atom is a chemical element instance with a position in Ångström.
type Atom struct {
	symbol   string
	position r3.Vec
}

// NewAtom creates an atom; the symbol is normalised with NormalizeSymbol.
func NewAtom(symbol string, position r3.Vec) Atom {
	return Atom{symbol: NormalizeSymbol(symbol), position: position}
}

func (a Atom) Symbol() string   { return a.symbol }
func (a Atom) Position() r3.Vec { return a.position }

// CovalentRadius returns the tabulated covalent radius of the atom's element.
func (a Atom) CovalentRadius() (float64, bool) {
	e, ok := elementsBySymbol[a.symbol]
	if !ok || e.CovalentRadius == 0 {
		return 0, false
	}
	return e.CovalentRadius, true
}

// Bond is an unordered pair of atoms. Dummy bonds are kept in the graph but never drawn.
type Bond struct {
	A, B  AtomID
	Order int
	Dummy bool
}

func (b Bond) IsDummy() bool { return b.Dummy }

// Other returns the endpoint of b that is not id.
func (b Bond) Other(id AtomID) AtomID {
	if b.A == id {
		return b.B
	}
	return b.A
}

// Lattice holds the three cell vectors of a periodic structure.
type Lattice [3]r3.Vec

// Molecule owns its atoms and bonds. Atoms are addressed by AtomID.
type Molecule struct {
	Title string

	atoms   []Atom
	bonds   []Bond
	lattice *Lattice
	pairs   *intmap.Map[uint64, int]
}

// NewMolecule returns an empty molecule.
func NewMolecule(title string) *Molecule {
	return &Molecule{
		Title: title,
		pairs: intmap.New[uint64, int](64),
	}
}

// FromParts builds a molecule from raw atom and bond lists without checking them.
// Use Validate before trusting bonds that came from outside this package.
func FromParts(title string, atoms []Atom, bonds []Bond) *Molecule {
	m := NewMolecule(title)
	m.atoms = atoms
	m.bonds = bonds
	for i, b := range bonds {
		m.pairs.Put(pairKey(b.A, b.B), i)
	}
	return m
}

func (m *Molecule) Len() int          { return len(m.atoms) }
func (m *Molecule) Atoms() []Atom     { return m.atoms }
func (m *Molecule) Bonds() []Bond     { return m.bonds }
func (m *Molecule) NumBonds() int     { return len(m.bonds) }
func (m *Molecule) Lattice() *Lattice { return m.lattice }

// SetLattice attaches periodic cell vectors.
func (m *Molecule) SetLattice(l Lattice) {
	m.lattice = &l
}

// AddAtom appends an atom and returns its id.
func (m *Molecule) AddAtom(a Atom) AtomID {
	m.atoms = append(m.atoms, a)
	return AtomID(len(m.atoms) - 1)
}

// Atom returns the atom with the given id. Unlike an unchecked index it reports a
// dangling id as ErrDanglingAtom.
func (m *Molecule) Atom(id AtomID) (Atom, error) {
	if id < 0 || int(id) >= len(m.atoms) {
		return Atom{}, fmt.Errorf("%w: atom %d of %d", ErrDanglingAtom, id, len(m.atoms))
	}
	return m.atoms[id], nil
}

// AddBond connects a and b. Adding an existing pair again updates its order.
func (m *Molecule) AddBond(a, b AtomID, order int) error {
	return m.addBond(a, b, order, false)
}

// AddDummyBond records a bond that is part of the graph but not rendered.
func (m *Molecule) AddDummyBond(a, b AtomID) error {
	return m.addBond(a, b, 0, true)
}

func (m *Molecule) addBond(a, b AtomID, order int, dummy bool) error {
	if _, err := m.Atom(a); err != nil {
		return fmt.Errorf("bond %d-%d: %w", a, b, err)
	}
	if _, err := m.Atom(b); err != nil {
		return fmt.Errorf("bond %d-%d: %w", a, b, err)
	}
	if a == b {
		return fmt.Errorf("bond %d-%d: %w", a, b, ErrSelfBond)
	}

	if m.pairs == nil {
		m.pairs = intmap.New[uint64, int](64)
	}

	key := pairKey(a, b)
	if idx, ok := m.pairs.Get(key); ok {
		m.bonds[idx].Order = order
		m.bonds[idx].Dummy = dummy
		return nil
	}

	m.pairs.Put(key, len(m.bonds))
	m.bonds = append(m.bonds, Bond{A: a, B: b, Order: order, Dummy: dummy})
	return nil
}

// HasBond reports whether a and b are bonded, dummy bonds included.
func (m *Molecule) HasBond(a, b AtomID) bool {
	if m.pairs == nil {
		return false
	}
	_, ok := m.pairs.Get(pairKey(a, b))
	return ok
}

// Neighbors returns the atoms bonded to id through non-dummy bonds.
func (m *Molecule) Neighbors(id AtomID) []AtomID {
	var result []AtomID
	for _, b := range m.bonds {
		if b.Dummy || (b.A != id && b.B != id) {
			continue
		}
		result = append(result, b.Other(id))
	}
	return result
}

// ClearBonds drops the whole bond graph.
func (m *Molecule) ClearBonds() {
	m.bonds = m.bonds[:0]
	if m.pairs != nil {
		m.pairs.Clear()
	}
}

// Validate checks that every bond resolves to two atoms of this molecule.
func (m *Molecule) Validate() error {
	var errs []error
	for i, b := range m.bonds {
		if _, err := m.Atom(b.A); err != nil {
			errs = append(errs, fmt.Errorf("bond %d: %w", i, err))
		}
		if _, err := m.Atom(b.B); err != nil {
			errs = append(errs, fmt.Errorf("bond %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func pairKey(a, b AtomID) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(uint32(a))<<32 | uint64(uint32(b))
}
