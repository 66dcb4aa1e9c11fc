package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
)

// layoutStream sets lines with T*, relative Td moves, a same-line Td jump and a
// kerned TJ array, the way TeX and office producers lay out text.
const layoutStream = `BT
/F1 12 Tf
14 TL
72 720 Td
(John Michael Smith) Tj
T*
(Work Experience) Tj
0 -14 Td
(Senior) Tj
60 0 Td
(Engineer at Acme) Tj
-60 -14 Td
(Built REST APIs using Node.js and MongoDB for 6 years) Tj
T*
(Projects) Tj
T*
(Docker tooling) Tj
T*
(Skills) Tj
T*
[(Node.js,)-3000(MongoDB)] TJ
ET`

// buildPDF assembles a single-page PDF with a Helvetica font of fixed glyph width.
func buildPDF(t *testing.T, stream string) []byte {
	t.Helper()

	widths := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func TestPDFDecoderKeepsLines(t *testing.T) {
	t.Parallel()

	data := buildPDF(t, layoutStream)
	if err := CheckUpload(data); err != nil {
		t.Fatalf("fixture rejected: %v", err)
	}

	got, err := (PDFDecoder{}).Decode(context.Background(), data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := strings.Join([]string{
		"John Michael Smith",
		"Work Experience",
		"Senior Engineer at Acme",
		"Built REST APIs using Node.js and MongoDB for 6 years",
		"Projects",
		"Docker tooling",
		"Skills",
		"Node.js, MongoDB",
	}, "\n") + "\n\n"
	if got != want {
		t.Fatalf("unexpected text:\n%q\nwant:\n%q", got, want)
	}
}

func TestExtractFromPDF(t *testing.T) {
	t.Parallel()

	doc, err := New(nil, nil).Extract(context.Background(), buildPDF(t, layoutStream))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	p := doc.Profile
	if p.Name != "John Michael Smith" {
		t.Fatalf("expected name from the first line, got %q", p.Name)
	}
	for _, skill := range []string{"node.js", "mongodb", "docker", "rest"} {
		if !slices.Contains(p.Skills, skill) {
			t.Fatalf("expected skill %q in %v", skill, p.Skills)
		}
	}
	if !strings.Contains(p.ExperienceText, "mongodb") || !strings.Contains(p.ExperienceText, "built rest apis") {
		t.Fatalf("unexpected experience text %q", p.ExperienceText)
	}
	if !strings.Contains(p.ProjectsText, "docker tooling") {
		t.Fatalf("unexpected projects text %q", p.ProjectsText)
	}
}

func TestPDFDecoderEmptyPage(t *testing.T) {
	t.Parallel()

	got, err := (PDFDecoder{}).Decode(context.Background(), buildPDF(t, "BT\nET"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.TrimSpace(got) != "" {
		t.Fatalf("expected no text, got %q", got)
	}

	_, err = New(nil, nil).Extract(context.Background(), buildPDF(t, "BT\nET"))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}
