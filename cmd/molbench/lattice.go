package main

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/plus3/molview/chem"
)

// CarbonSpacing is the C-C single bond length in Ångström.
const CarbonSpacing = 1.54

// Lattice returns a side×side×side simple cubic block of carbon atoms, spacing
// apart, with no bonds. Every other layer is silicon so both colours are drawn.
func Lattice(side int, spacing float64) *chem.Molecule {
	mol := chem.NewMolecule(fmt.Sprintf("lattice %d^3", side))
	for x := range side {
		for y := range side {
			for z := range side {
				symbol := "C"
				if z%2 == 1 {
					symbol = "Si"
				}
				mol.AddAtom(chem.NewAtom(symbol, r3.Vec{
					X: float64(x) * spacing,
					Y: float64(y) * spacing,
					Z: float64(z) * spacing,
				}))
			}
		}
	}
	return mol
}
