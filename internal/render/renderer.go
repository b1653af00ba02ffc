package render

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"

	apperrors "biopsycli/internal/errors"
	"biopsycli/internal/files"
	"biopsycli/pkg/contracts/domain"
)

// DefaultSpecimenMaxChars caps the specimen line.
const DefaultSpecimenMaxChars = 40

// Options configures the document layout.
type Options struct {
	Title            string
	Subtitle         string
	SpecimenMaxChars int
	Compress         bool
	// Clock stamps the generation line and document dates. Nil means
	// time.Now.
	Clock func() time.Time
}

// DefaultOptions returns the standard report header and caps.
func DefaultOptions() Options {
	return Options{
		Title:            "KIDNEY BIOPSY PATHOLOGY REPORT",
		Subtitle:         "Department of Pathology - Medical Analysis Center",
		SpecimenMaxChars: DefaultSpecimenMaxChars,
	}
}

// Renderer turns normalized records into PDF documents.
type Renderer struct {
	opts   Options
	files  *files.Manager
	logger *slog.Logger
}

// New creates a Renderer. Zero-valued options fall back to DefaultOptions.
func New(opts Options, logger *slog.Logger) *Renderer {
	def := DefaultOptions()
	if opts.Title == "" {
		opts.Title = def.Title
	}
	if opts.Subtitle == "" {
		opts.Subtitle = def.Subtitle
	}
	if opts.SpecimenMaxChars <= 0 {
		opts.SpecimenMaxChars = def.SpecimenMaxChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		opts:   opts,
		files:  files.NewManager(logger),
		logger: logger.With(slog.String("component", "renderer")),
	}
}

// Render returns the PDF bytes for n.
func (r *Renderer) Render(n domain.Normalized) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderTo(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderToFile writes the PDF for n to path, replacing any existing file.
// Nothing is written when rendering fails.
func (r *Renderer) RenderToFile(n domain.Normalized, path string) error {
	data, err := r.Render(n)
	if err != nil {
		return err
	}
	if err := r.files.WriteFile(path, data); err != nil {
		return apperrors.NewRenderError("write document", err).WithContext("path", path)
	}
	return nil
}

// RenderTo draws the report for n and writes the PDF to w.
func (r *Renderer) RenderTo(w io.Writer, n domain.Normalized) error {
	now := r.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.opts.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle(r.opts.Title, true)
	pdf.SetCreator("biopsycli", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, s := range r.Layout(n) {
		if i > 0 {
			pdf.Ln(2)
		}
		if s.Heading != "" {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 6, tr(s.Heading), "", 1, "L", false, 0, "")
		}
		for _, l := range s.Lines {
			drawLine(pdf, tr, l)
		}
	}

	if err := pdf.Error(); err != nil {
		return apperrors.NewRenderError("layout document", err)
	}
	if err := pdf.Output(w); err != nil {
		return apperrors.NewRenderError("serialize document", err)
	}
	return nil
}

func drawLine(pdf *fpdf.Fpdf, tr func(string) string, l Line) {
	switch l.Kind {
	case LineTitle:
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tr(l.Text()), "", 1, "C", false, 0, "")
	case LineSubtitle:
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, tr(l.Text()), "", 1, "C", false, 0, "")
		pdf.Ln(2)
	case LineField:
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, tr(l.Text()), "", 1, "L", false, 0, "")
	case LineText:
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(l.Text()), "", "L", false)
	case LineTimestamp:
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 6, tr(l.Text()), "", 1, "C", false, 0, "")
	default:
		panic(fmt.Sprintf("render: unknown line kind %d", l.Kind))
	}
}
