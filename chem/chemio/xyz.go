package chemio

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/plus3/molview/chem"
)

var latticePattern = regexp.MustCompile(`(?i)lattice\s*=\s*"([^"]*)"`)

// ReadXYZ parses a plain or extended XYZ file. The first line holds the atom count,
// the second a free comment that may carry an extended XYZ Lattice="..." key.
// XYZ carries no connectivity so the molecule has no bonds.
func ReadXYZ(r io.Reader) (*chem.Molecule, error) {
	sc := bufio.NewScanner(r)
	line := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line++
		return sc.Text(), true
	}

	countLine, ok := next()
	if !ok {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, malformed(1, "empty file")
	}
	count, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil || count < 0 {
		return nil, malformed(line, "bad atom count %q", countLine)
	}

	comment, ok := next()
	if !ok {
		return nil, malformed(line+1, "missing comment line")
	}

	mol := chem.NewMolecule("")
	lattice, hasLattice, err := parseLattice(comment)
	if err != nil {
		return nil, malformed(line, "%v", err)
	}
	if hasLattice {
		mol.SetLattice(lattice)
	} else {
		mol.Title = strings.TrimSpace(comment)
	}

	for i := 0; i < count; i++ {
		text, ok := next()
		if !ok {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, malformed(line+1, "expected %d atoms, got %d", count, i)
		}

		fields := strings.Fields(text)
		if len(fields) < 4 {
			return nil, malformed(line, "atom line needs symbol and three coordinates")
		}
		pos, err := parseVec(fields[1:4])
		if err != nil {
			return nil, malformed(line, "%v", err)
		}
		mol.AddAtom(chem.NewAtom(fields[0], pos))
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}
	return mol, nil
}

func parseLattice(comment string) (chem.Lattice, bool, error) {
	m := latticePattern.FindStringSubmatch(comment)
	if m == nil {
		return chem.Lattice{}, false, nil
	}

	fields := strings.Fields(m[1])
	if len(fields) != 9 {
		return chem.Lattice{}, false, errLattice(len(fields))
	}

	var lattice chem.Lattice
	for i := range lattice {
		v, err := parseVec(fields[i*3 : i*3+3])
		if err != nil {
			return chem.Lattice{}, false, err
		}
		lattice[i] = v
	}
	return lattice, true, nil
}

func parseVec(fields []string) (r3.Vec, error) {
	var xyz [3]float64
	for i, f := range fields {
		v, err := parseCoord(f)
		if err != nil {
			return r3.Vec{}, err
		}
		xyz[i] = v
	}
	return r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

type errLattice int

func (e errLattice) Error() string {
	return "lattice needs 9 numbers, got " + strconv.Itoa(int(e))
}
