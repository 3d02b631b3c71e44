package chemio

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/plus3/molview/chem"
)

// ReadSDF parses the first record of an MDL molfile or SD file (V2000 connection
// table). Bond atom indices are 1-based in the file and checked against the atom
// block; a bond that names a missing atom is reported as ErrMalformed.
func ReadSDF(r io.Reader) (*chem.Molecule, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	for sc.Scan() {
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "$$$$" {
			break
		}
		lines = append(lines, text)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(lines) < 4 {
		return nil, malformed(len(lines)+1, "missing header or counts line")
	}

	counts := lines[3]
	if strings.Contains(counts, "V3000") {
		return nil, malformed(4, "V3000 connection tables are not supported")
	}
	atomCount, err := column(counts, 0, 3)
	if err != nil {
		return nil, malformed(4, "atom count: %v", err)
	}
	bondCount, err := column(counts, 3, 6)
	if err != nil {
		return nil, malformed(4, "bond count: %v", err)
	}
	if atomCount < 0 || bondCount < 0 {
		return nil, malformed(4, "negative atom or bond count")
	}
	if len(lines) < 4+atomCount+bondCount {
		return nil, malformed(len(lines), "expected %d atoms and %d bonds", atomCount, bondCount)
	}

	mol := chem.NewMolecule(strings.TrimSpace(lines[0]))

	for i := 0; i < atomCount; i++ {
		lineNo := 5 + i
		text := lines[4+i]
		if len(text) < 34 {
			return nil, malformed(lineNo, "atom line too short")
		}

		var xyz [3]float64
		for k := range xyz {
			v, err := parseCoord(strings.TrimSpace(text[k*10 : k*10+10]))
			if err != nil {
				return nil, malformed(lineNo, "coordinate: %v", err)
			}
			xyz[k] = v
		}

		symbol := strings.TrimSpace(text[31:34])
		if symbol == "" {
			return nil, malformed(lineNo, "missing element symbol")
		}
		mol.AddAtom(chem.NewAtom(symbol, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}))
	}

	for i := 0; i < bondCount; i++ {
		lineNo := 5 + atomCount + i
		text := lines[4+atomCount+i]

		from, err := column(text, 0, 3)
		if err != nil {
			return nil, malformed(lineNo, "bond atom: %v", err)
		}
		to, err := column(text, 3, 6)
		if err != nil {
			return nil, malformed(lineNo, "bond atom: %v", err)
		}
		order, err := column(text, 6, 9)
		if err != nil {
			return nil, malformed(lineNo, "bond order: %v", err)
		}

		if err := mol.AddBond(chem.AtomID(from-1), chem.AtomID(to-1), order); err != nil {
			return nil, malformed(lineNo, "%v", err)
		}
	}

	return mol, nil
}

// column reads a right-aligned integer from the fixed-width field [start, end).
func column(text string, start, end int) (int, error) {
	if len(text) < end {
		end = len(text)
	}
	if start >= end {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(strings.TrimSpace(text[start:end]))
}
