// Package chemio reads molecular structure files into chem.Molecule values.
//
// Supported formats are plain and extended XYZ and MDL molfiles (V2000), the
// latter also as the first record of an SD file.
package chemio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/plus3/molview/chem"
)

var (
	// ErrUnsupportedFormat is returned for file extensions without a reader.
	ErrUnsupportedFormat = errors.New("unsupported structure format")
	// ErrMalformed is returned when a file does not follow its format.
	ErrMalformed = errors.New("malformed structure file")
)

// Format identifies a structure file format.
type Format string

const (
	FormatXYZ Format = "xyz"
	FormatSDF Format = "sdf"
)

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xyz", ".extxyz":
		return FormatXYZ, nil
	case ".sdf", ".mol", ".sd":
		return FormatSDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads the structure file at path. The molecule title defaults to the file
// base name when the file carries none.
func Load(path string) (*chem.Molecule, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open molecule: %w", err)
	}
	defer f.Close()

	mol, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if mol.Title == "" {
		mol.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return mol, nil
}

// Read parses r in the given format.
func Read(r io.Reader, format Format) (*chem.Molecule, error) {
	switch format {
	case FormatXYZ:
		return ReadXYZ(r)
	case FormatSDF:
		return ReadSDF(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func malformed(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, line, fmt.Sprintf(format, args...))
}

// parseCoord parses one coordinate. NaN and infinities are rejected.
func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("coordinate %q is not finite", s)
	}
	return v, nil
}
