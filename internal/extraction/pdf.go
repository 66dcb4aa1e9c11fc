package extraction

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// MaxDocumentSize is the per-file upload limit.
	MaxDocumentSize = 5 << 20

	pdfMagic = "%PDF-"
)

// TextDecoder converts document bytes into plain text.
type TextDecoder interface {
	Name() string
	Decode(ctx context.Context, data []byte) (string, error)
}

// CheckUpload validates that data looks like a PDF within the size limit.
func CheckUpload(data []byte) error {
	if len(data) > MaxDocumentSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), MaxDocumentSize)
	}
	if !bytes.HasPrefix(data, []byte(pdfMagic)) {
		return ErrNotPDF
	}
	return nil
}

// PDFDecoder reads the text layer of a PDF. Glyphs sharing a baseline form one
// output line and pages are separated by a blank line.
type PDFDecoder struct{}

func (PDFDecoder) Name() string { return "pdf" }

func (PDFDecoder) Decode(ctx context.Context, data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		writeLines(&b, page.Content().Text)
		b.WriteString("\n")
	}

	return b.String(), nil
}

const (
	// baselineTolerance is the fraction of the font size a glyph may move
	// vertically and still belong to the current line.
	baselineTolerance = 0.5
	// wordGap is the fraction of the font size of horizontal space that
	// separates two words.
	wordGap = 0.15
)

// writeLines lays out positioned glyphs in content order. A new line starts
// when the baseline moves, and a space is inserted where glyphs are set apart
// without an explicit space character.
func writeLines(b *strings.Builder, glyphs []pdf.Text) {
	var (
		prev    pdf.Text
		started bool
		spaced  bool
	)

	for _, g := range glyphs {
		// TJ arrays are terminated with a synthetic newline glyph.
		if g.S == "" || g.S == "\n" {
			continue
		}

		if started {
			size := math.Max(1, math.Max(prev.FontSize, g.FontSize))
			gap := g.X - (prev.X + prev.W)
			switch {
			case math.Abs(g.Y-prev.Y) > size*baselineTolerance:
				b.WriteString("\n")
				spaced = true
			case !spaced && g.S != " " && (gap > size*wordGap || gap < -size):
				b.WriteString(" ")
			}
		}

		b.WriteString(g.S)
		prev = g
		started = true
		spaced = g.S == " "
	}

	if started {
		b.WriteString("\n")
	}
}
