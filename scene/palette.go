package scene

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/plus3/molview/chem"
)

var (
	// ErrUnknownElement is returned when the palette has no colour for a symbol.
	ErrUnknownElement = errors.New("unknown element")
	// ErrDuplicateColor is returned when a palette lists the same symbol twice.
	ErrDuplicateColor = errors.New("duplicate palette entry")
)

// PaletteEntry assigns an opaque colour to a chemical symbol.
type PaletteEntry struct {
	Symbol string
	Color  color.RGBA
}

// Palette maps chemical symbols to opaque RGB colours. The zero value is empty.
type Palette struct {
	colors map[string]color.RGBA
}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 255} }

// Jmol CPK colours, with carbon and silicon darkened for contrast on a light
// background.
var defaultEntries = []PaletteEntry{
	{"H", rgb(255, 255, 255)}, {"He", rgb(217, 255, 255)},
	{"Li", rgb(204, 128, 255)}, {"Be", rgb(194, 255, 0)}, {"B", rgb(255, 181, 181)},
	{"C", rgb(144, 144, 144)}, {"N", rgb(48, 80, 248)}, {"O", rgb(255, 13, 13)},
	{"F", rgb(144, 224, 80)}, {"Ne", rgb(179, 227, 245)},
	{"Na", rgb(171, 92, 242)}, {"Mg", rgb(138, 255, 0)}, {"Al", rgb(191, 166, 166)},
	{"Si", rgb(64, 64, 64)}, {"P", rgb(255, 128, 0)}, {"S", rgb(255, 255, 48)},
	{"Cl", rgb(31, 240, 31)}, {"Ar", rgb(128, 209, 227)},
	{"K", rgb(143, 64, 212)}, {"Ca", rgb(61, 255, 0)}, {"Sc", rgb(230, 230, 230)},
	{"Ti", rgb(191, 194, 199)}, {"V", rgb(166, 166, 171)}, {"Cr", rgb(138, 153, 199)},
	{"Mn", rgb(156, 122, 199)}, {"Fe", rgb(224, 102, 51)}, {"Co", rgb(240, 144, 160)},
	{"Ni", rgb(80, 208, 80)}, {"Cu", rgb(200, 128, 51)}, {"Zn", rgb(125, 128, 176)},
	{"Ga", rgb(194, 143, 143)}, {"Ge", rgb(102, 143, 143)}, {"As", rgb(189, 128, 227)},
	{"Se", rgb(255, 161, 0)}, {"Br", rgb(166, 41, 41)}, {"Kr", rgb(92, 184, 209)},
	{"Rb", rgb(112, 46, 176)}, {"Sr", rgb(0, 255, 0)}, {"Y", rgb(148, 255, 255)},
	{"Zr", rgb(148, 224, 224)}, {"Nb", rgb(115, 194, 201)}, {"Mo", rgb(84, 181, 181)},
	{"Tc", rgb(59, 158, 158)}, {"Ru", rgb(36, 143, 143)}, {"Rh", rgb(10, 125, 140)},
	{"Pd", rgb(0, 105, 133)}, {"Ag", rgb(192, 192, 192)}, {"Cd", rgb(255, 217, 143)},
	{"In", rgb(166, 117, 115)}, {"Sn", rgb(102, 128, 128)}, {"Sb", rgb(158, 99, 181)},
	{"Te", rgb(212, 122, 0)}, {"I", rgb(148, 0, 148)}, {"Xe", rgb(66, 158, 176)},
	{"Cs", rgb(87, 23, 143)}, {"Ba", rgb(0, 201, 0)}, {"La", rgb(112, 212, 255)},
	{"Hf", rgb(77, 194, 255)}, {"Ta", rgb(77, 166, 255)}, {"W", rgb(33, 148, 214)},
	{"Re", rgb(38, 125, 171)}, {"Os", rgb(38, 102, 150)}, {"Ir", rgb(23, 84, 135)},
	{"Pt", rgb(208, 208, 224)}, {"Au", rgb(255, 209, 35)}, {"Hg", rgb(184, 184, 208)},
	{"Tl", rgb(166, 84, 77)}, {"Pb", rgb(87, 89, 97)}, {"Bi", rgb(158, 79, 181)},
	{"Po", rgb(171, 92, 0)}, {"At", rgb(117, 79, 69)}, {"Rn", rgb(66, 130, 150)},
}

// NewPalette builds a palette from entries. A symbol listed twice is rejected with
// ErrDuplicateColor rather than letting one entry silently win.
func NewPalette(entries []PaletteEntry) (*Palette, error) {
	p := &Palette{colors: make(map[string]color.RGBA, len(entries))}
	for _, e := range entries {
		symbol := chem.NormalizeSymbol(e.Symbol)
		if symbol == "" {
			return nil, errors.New("palette entry without symbol")
		}
		if _, exists := p.colors[symbol]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColor, symbol)
		}
		c := e.Color
		c.A = 255
		p.colors[symbol] = c
	}
	return p, nil
}

// DefaultPalette returns the built-in element colours.
func DefaultPalette() *Palette {
	p, err := NewPalette(defaultEntries)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultEntries returns a copy of the built-in palette entries.
func DefaultEntries() []PaletteEntry {
	return append([]PaletteEntry(nil), defaultEntries...)
}

// Override returns a copy of p with entries replacing or extending its colours.
// Duplicates within entries are an error.
func (p *Palette) Override(entries []PaletteEntry) (*Palette, error) {
	overrides, err := NewPalette(entries)
	if err != nil {
		return nil, err
	}

	merged := &Palette{colors: make(map[string]color.RGBA, len(p.colors)+len(overrides.colors))}
	for symbol, c := range p.colors {
		merged.colors[symbol] = c
	}
	for symbol, c := range overrides.colors {
		merged.colors[symbol] = c
	}
	return merged, nil
}

// Color returns the colour for symbol. There is no fallback colour.
func (p *Palette) Color(symbol string) (color.RGBA, error) {
	c, ok := p.colors[chem.NormalizeSymbol(symbol)]
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
	}
	return c, nil
}

func (p *Palette) Len() int { return len(p.colors) }

// Symbols returns the symbols with a colour, sorted.
func (p *Palette) Symbols() []string {
	symbols := make([]string, 0, len(p.colors))
	for symbol := range p.colors {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// AtomSize is the drawn sphere radius for an atom: (covalent radius + 0.5) / 3.
// Atoms without a tabulated radius use 0.5.
func AtomSize(atom chem.Atom) float32 {
	return atomSize(atom, chem.DefaultCovalentRadius)
}

func atomSize(atom chem.Atom, fallback float64) float32 {
	r, ok := atom.CovalentRadius()
	if !ok {
		r = fallback
	}
	return float32((r + 0.5) / 3.0)
}
