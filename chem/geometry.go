package chem

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultBondTolerance scales the sum of covalent radii when rebonding.
	DefaultBondTolerance = 1.15
	// DefaultCovalentRadius stands in for elements without a tabulated radius.
	DefaultCovalentRadius = 0.5
	// overlapDistance marks pairs too close to be a real bond.
	overlapDistance = 0.4
)

// Center returns the geometric center of the atoms, or the origin for an empty molecule.
func (m *Molecule) Center() r3.Vec {
	if len(m.atoms) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for _, a := range m.atoms {
		sum = r3.Add(sum, a.position)
	}
	return r3.Scale(1/float64(len(m.atoms)), sum)
}

// Radius returns the largest distance from Center to any atom.
func (m *Molecule) Radius() float64 {
	center := m.Center()
	var radius float64
	for _, a := range m.atoms {
		radius = max(radius, r3.Norm(r3.Sub(a.position, center)))
	}
	return radius
}

// Recenter translates every atom so that Center is the origin.
func (m *Molecule) Recenter() {
	center := m.Center()
	for i := range m.atoms {
		m.atoms[i].position = r3.Sub(m.atoms[i].position, center)
	}
}

// UnbuildCrystal drops the lattice so the structure is handled as an isolated molecule.
// Atom positions are kept as they are.
func (m *Molecule) UnbuildCrystal() {
	m.lattice = nil
}

// Rebond replaces the bond graph with one derived from geometry. Two atoms are
// bonded when their distance is within tolerance times the sum of their covalent
// radii. Pairs closer than 0.4 Å become dummy bonds. A non-positive tolerance
// selects DefaultBondTolerance.
func (m *Molecule) Rebond(tolerance float64) int {
	if tolerance <= 0 {
		tolerance = DefaultBondTolerance
	}

	m.ClearBonds()

	radii := make([]float64, len(m.atoms))
	for i, a := range m.atoms {
		r, ok := a.CovalentRadius()
		if !ok {
			r = DefaultCovalentRadius
		}
		radii[i] = r
	}

	for i := range m.atoms {
		for j := i + 1; j < len(m.atoms); j++ {
			d := r3.Norm(r3.Sub(m.atoms[i].position, m.atoms[j].position))
			limit := (radii[i] + radii[j]) * tolerance
			// NaN distances never bond
			if !(d <= limit) {
				continue
			}

			a, b := AtomID(i), AtomID(j)
			if d < overlapDistance {
				// ids come from the loop, both always resolve
				_ = m.AddDummyBond(a, b)
				continue
			}
			_ = m.AddBond(a, b, 1)
		}
	}

	return len(m.bonds)
}
