package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/edesteves10/contrat-cond/internal/logging"
	"github.com/edesteves10/contrat-cond/pkg/preview"
)

// ErrEmptyDocument is returned when there is no text to print.
var ErrEmptyDocument = errors.New("export: document is empty")

const (
	fontName = "Helvetica"
	creator  = "contratcond"
)

// PDF writes contract documents as PDF.
type PDF struct {
	options Options
	logger  logging.Logger
}

// Option configures a PDF exporter.
type Option func(*PDF)

// WithOptions sets the page geometry.
func WithOptions(options Options) Option {
	return func(p *PDF) {
		p.options = options
	}
}

// WithLogger sets the logger used to report finished exports.
func WithLogger(logger logging.Logger) Option {
	return func(p *PDF) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPDF builds an exporter. It fails when the options describe an unknown
// page size or orientation.
func NewPDF(options ...Option) (*PDF, error) {
	p := &PDF{
		options: DefaultOptions(),
		logger:  logging.Nop{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	normalized, err := p.options.Normalize()
	if err != nil {
		return nil, err
	}
	p.options = normalized
	return p, nil
}

// Options reports the effective page geometry.
func (p *PDF) Options() Options {
	return p.options
}

// Export writes doc as a PDF to w.
func (p *PDF) Export(ctx context.Context, doc preview.Document, w io.Writer) error {
	data, pages, err := p.Render(ctx, doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	p.logger.InfoCtx(ctx, "contract exported",
		"filename", doc.Filename,
		"pages", pages,
		"bytes", len(data),
	)
	return nil
}

// Render builds the PDF in memory and reports the page count.
func (p *PDF) Render(ctx context.Context, doc preview.Document) ([]byte, int, error) {
	lines := doc.Lines()
	if strings.TrimSpace(strings.Join(lines, "")) == "" {
		return nil, 0, ErrEmptyDocument
	}

	g := p.options.geometry()
	pages := paginate(wrapLines(foldLines(lines), g.columns), g.rows)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           g.size,
	})
	pdf.SetCreator(creator, false)
	pdf.SetMargins(g.margin, g.margin, g.margin)
	pdf.SetAutoPageBreak(false, g.margin)
	for _, pageLines := range pages {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		pdf.AddPage()
		pdf.SetFont(fontName, "", g.fontSize)
		y := g.margin + g.fontSize
		for _, line := range pageLines {
			if line != "" {
				pdf.Text(g.margin, y, line)
			}
			y += g.leading
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("export: build pdf: %w", err)
	}
	return buf.Bytes(), len(pages), nil
}

// Bytes is a convenience wrapper returning the encoded document.
func (p *PDF) Bytes(ctx context.Context, doc preview.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Export(ctx, doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var punctuation = strings.NewReplacer(
	"–", "-",
	"—", "-",
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"…", "...",
	"\u00a0", " ",
)

// Fold reduces s to printable ASCII. Accents are stripped, typographic
// punctuation is simplified and anything else becomes "?".
func Fold(s string) string {
	s = punctuation.Replace(s)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case r < 0x20:
			return -1
		case r > 0x7e:
			return '?'
		}
		return r
	}, folded)
}

func foldLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimRight(Fold(line), " ")
	}
	return out
}

// wrapLines breaks every line at word boundaries so none exceeds columns.
// Words longer than a line are split.
func wrapLines(lines []string, columns int) []string {
	var out []string
	for _, line := range lines {
		out = append(out, wrap(line, columns)...)
	}
	return out
}

func wrap(line string, columns int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}
	var (
		out     []string
		current string
	)
	for _, word := range words {
		for len(word) > columns {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			out = append(out, word[:columns])
			word = word[columns:]
		}
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= columns:
			current += " " + word
		default:
			out = append(out, current)
			current = word
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

func paginate(lines []string, rows int) [][]string {
	var pages [][]string
	for len(lines) > rows {
		pages = append(pages, lines[:rows])
		lines = lines[rows:]
	}
	if len(lines) > 0 {
		pages = append(pages, lines)
	}
	return pages
}
