package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is a paged text source. Pages are numbered from 1.
type Document interface {
	NumPage() int
	PageText(n int) (string, error)
}

// ProgressFunc receives the page about to be read and the page count.
type ProgressFunc func(current, total int)

// StatusFunc receives human readable status messages.
type StatusFunc func(msg string)

// ExtractOptions carries the optional notifications fired once per page.
type ExtractOptions struct {
	Progress ProgressFunc
	Status   StatusFunc
}

func (o ExtractOptions) progress(cur, total int) {
	if o.Progress != nil {
		o.Progress(cur, total)
	}
}

func (o ExtractOptions) status(msg string) {
	if o.Status != nil {
		o.Status(msg)
	}
}

// ExtractResult contains the production rows found in a document
type ExtractResult struct {
	Lines        []string
	Pages        int
	EmptyPages   int
	SkippedPages int // Pages whose text could not be read
}

// PDFParser reads MTR03 report PDFs.
type PDFParser struct {
	logger *slog.Logger
}

// NewPDFParser creates a new PDF parser instance.
func NewPDFParser(logger *slog.Logger) *PDFParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFParser{logger: logger}
}

// Open parses an in-memory PDF.
func (p *PDFParser) Open(data []byte) (Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &pdfDocument{reader: r}, nil
}

// OpenFile parses the PDF at path. The returned closer releases the file.
func (p *PDFParser) OpenFile(path string) (Document, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat PDF: %w", err)
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &pdfDocument{reader: r}, f, nil
}

// ExtractLines reads every page of doc and keeps the production rows.
// Unreadable pages are logged and skipped.
func (p *PDFParser) ExtractLines(ctx context.Context, doc Document, opts ExtractOptions) (*ExtractResult, error) {
	total := doc.NumPage()
	result := &ExtractResult{
		Lines: make([]string, 0, total*32),
		Pages: total,
	}

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		opts.status(fmt.Sprintf("Lendo PDF: página %d/%d...", i, total))
		opts.progress(i, total)

		text, err := doc.PageText(i)
		if err != nil {
			p.logger.Warn("skipping unreadable page",
				slog.Int("page", i),
				slog.Any("error", err),
			)
			result.SkippedPages++
			continue
		}
		if text == "" {
			result.EmptyPages++
			continue
		}

		result.Lines = append(result.Lines, FilterLines(text)...)
	}

	return result, nil
}

// ExtractLinesFromBytes opens an in-memory PDF and extracts its rows.
func (p *PDFParser) ExtractLinesFromBytes(ctx context.Context, data []byte, opts ExtractOptions) (*ExtractResult, error) {
	doc, err := p.Open(data)
	if err != nil {
		return nil, err
	}
	return p.ExtractLines(ctx, doc, opts)
}

// ExtractLinesFromFile opens the PDF at path and extracts its rows.
func (p *PDFParser) ExtractLinesFromFile(ctx context.Context, path string, opts ExtractOptions) (*ExtractResult, error) {
	doc, closer, err := p.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return p.ExtractLines(ctx, doc, opts)
}

type pdfDocument struct {
	reader *pdf.Reader
}

func (d *pdfDocument) NumPage() int {
	return d.reader.NumPage()
}

// PageText rebuilds the page's visual rows, top to bottom, one per line.
func (d *pdfDocument) PageText(n int) (text string, err error) {
	// ledongthuc/pdf panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: malformed content: %v", n, r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", fmt.Errorf("page %d: %w", n, err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if line := joinWords(row.Content); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// joinWords concatenates the text runs of one row in reading order, putting a
// space wherever the gap to the previous run is wider than a fifth of the
// font size.
func joinWords(texts []pdf.Text) string {
	words := make([]pdf.Text, len(texts))
	copy(words, texts)
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].X < words[j].X
	})

	var b strings.Builder
	var prevEnd float64
	for _, t := range words {
		if t.S == "" {
			continue
		}
		if b.Len() > 0 && t.X-prevEnd > wordGap(t.FontSize) {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return strings.TrimSpace(b.String())
}

func wordGap(fontSize float64) float64 {
	if fontSize <= 0 {
		return 1
	}
	return fontSize / 5
}
