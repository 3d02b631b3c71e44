package viewer

import (
	"fmt"

	"github.com/plus3/molview/chem"
	"github.com/plus3/molview/chem/chemio"
)

// Loader reads a molecule from path.
type Loader func(path string) (*chem.Molecule, error)

// Pipeline is the preparation applied to every molecule after it is read and
// before a scene is built from it.
type Pipeline struct {
	UnbuildCrystal bool
	Rebond         bool
	BondTolerance  float64
	Recenter       bool
}

// DefaultPipeline drops lattices, rebuilds bonds from geometry and recenters.
func DefaultPipeline() Pipeline {
	return Pipeline{
		UnbuildCrystal: true,
		Rebond:         true,
		BondTolerance:  chem.DefaultBondTolerance,
		Recenter:       true,
	}
}

// Apply prepares mol in place and validates its bond graph.
func (p Pipeline) Apply(mol *chem.Molecule) error {
	if p.UnbuildCrystal {
		mol.UnbuildCrystal()
	}
	if p.Rebond {
		mol.Rebond(p.BondTolerance)
	}
	if p.Recenter {
		mol.Recenter()
	}
	return mol.Validate()
}

// LoadDocument reads and prepares the molecule at path. A nil load uses chemio.Load.
func LoadDocument(path string, load Loader, pipeline Pipeline) (Document, error) {
	if load == nil {
		load = chemio.Load
	}

	mol, err := load(path)
	if err != nil {
		return Document{}, err
	}
	if err := pipeline.Apply(mol); err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return Document{Molecule: mol, Path: path}, nil
}
