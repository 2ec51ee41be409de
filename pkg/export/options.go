package export

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Page sizes accepted by Options.PageSize.
const (
	PageA4     = "A4"
	PageLetter = "Letter"
	PageLegal  = "Legal"
)

// Orientations accepted by Options.Orientation.
const (
	Portrait  = "portrait"
	Landscape = "landscape"
)

const (
	pointsPerCM      = 72 / 2.54
	baseFontSize     = 11.0
	leadingFactor    = 1.4
	helveticaAdvance = 0.5
)

// Options controls page geometry. Zero values fall back to DefaultOptions.
type Options struct {
	MarginCM    float64 `yaml:"margin_cm" json:"margin_cm"`
	PageSize    string  `yaml:"page_size" json:"page_size"`
	Orientation string  `yaml:"orientation" json:"orientation"`
	Scale       float64 `yaml:"scale" json:"scale"`
}

// DefaultOptions mirrors the print settings of the contract screen.
func DefaultOptions() Options {
	return Options{
		MarginCM:    2,
		PageSize:    PageA4,
		Orientation: Portrait,
		Scale:       1,
	}
}

// Normalize fills zero values from DefaultOptions and validates the rest.
func (o Options) Normalize() (Options, error) {
	def := DefaultOptions()
	if o.MarginCM == 0 {
		o.MarginCM = def.MarginCM
	}
	if o.MarginCM < 0 {
		return o, fmt.Errorf("export: negative margin %.2fcm", o.MarginCM)
	}
	if o.Scale == 0 {
		o.Scale = def.Scale
	}
	if o.Scale < 0 {
		return o, fmt.Errorf("export: negative scale %.2f", o.Scale)
	}
	if strings.TrimSpace(o.PageSize) == "" {
		o.PageSize = def.PageSize
	}
	if _, err := pageSize(o.PageSize); err != nil {
		return o, err
	}
	switch strings.ToLower(strings.TrimSpace(o.Orientation)) {
	case "":
		o.Orientation = def.Orientation
	case Portrait:
		o.Orientation = Portrait
	case Landscape:
		o.Orientation = Landscape
	default:
		return o, fmt.Errorf("export: unknown orientation %q", o.Orientation)
	}
	return o, nil
}

// pageSize resolves name to portrait dimensions in points.
func pageSize(name string) (fpdf.SizeType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "a4":
		return fpdf.SizeType{Wd: 595.28, Ht: 841.89}, nil
	case "letter":
		return fpdf.SizeType{Wd: 612, Ht: 792}, nil
	case "legal":
		return fpdf.SizeType{Wd: 612, Ht: 1008}, nil
	default:
		return fpdf.SizeType{}, fmt.Errorf("export: unknown page size %q", name)
	}
}

// geometry is the resolved layout for a normalized Options value.
type geometry struct {
	size     fpdf.SizeType
	margin   float64
	fontSize float64
	leading  float64
	columns  int
	rows     int
}

func (o Options) geometry() geometry {
	size, _ := pageSize(o.PageSize)
	if o.Orientation == Landscape {
		size = fpdf.SizeType{Wd: size.Ht, Ht: size.Wd}
	}
	margin := o.MarginCM * pointsPerCM
	fontSize := baseFontSize * o.Scale
	leading := fontSize * leadingFactor

	g := geometry{
		size:     size,
		margin:   margin,
		fontSize: fontSize,
		leading:  leading,
		columns:  int((size.Wd - 2*margin) / (fontSize * helveticaAdvance)),
		rows:     int((size.Ht - 2*margin) / leading),
	}
	if g.columns < 1 {
		g.columns = 1
	}
	if g.rows < 1 {
		g.rows = 1
	}
	return g
}
