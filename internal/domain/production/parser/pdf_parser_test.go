package parser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocument struct {
	pages []string
	errs  map[int]error
}

func (d *fakeDocument) NumPage() int { return len(d.pages) }

func (d *fakeDocument) PageText(n int) (string, error) {
	if err, ok := d.errs[n]; ok {
		return "", err
	}
	return d.pages[n-1], nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPDFParser_ExtractLines(t *testing.T) {
	doc := &fakeDocument{
		pages: []string{
			"RELATORIO MTR03\n12/3 05/01 GALPAO-1 1.000,00 45000 90\n12/3 06/01 GALPAO-1 2.000,00 45000 80",
			"",
			"broken",
			"12/3 07/01 GALPAO-2 500 45000 50\nTotal geral 3.500,00",
		},
		errs: map[int]error{3: errors.New("bad stream")},
	}

	var progress [][2]int
	var status []string
	opts := ExtractOptions{
		Progress: func(cur, total int) { progress = append(progress, [2]int{cur, total}) },
		Status:   func(msg string) { status = append(status, msg) },
	}

	result, err := NewPDFParser(quietLogger()).ExtractLines(context.Background(), doc, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"12/3 05/01 GALPAO-1 1.000,00 45000 90",
		"12/3 06/01 GALPAO-1 2.000,00 45000 80",
		"12/3 07/01 GALPAO-2 500 45000 50",
	}, result.Lines)
	assert.Equal(t, 4, result.Pages)
	assert.Equal(t, 1, result.EmptyPages)
	assert.Equal(t, 1, result.SkippedPages)

	assert.Equal(t, [][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}, progress)
	require.Len(t, status, 4)
	assert.Equal(t, "Lendo PDF: página 1/4...", status[0])
	assert.Equal(t, "Lendo PDF: página 4/4...", status[3])
}

func TestPDFParser_ExtractLines_NilCallbacks(t *testing.T) {
	doc := &fakeDocument{pages: []string{"12/3 05/01 GALPAO-1 1.000,00 45000 90"}}

	result, err := NewPDFParser(nil).ExtractLines(context.Background(), doc, ExtractOptions{})

	require.NoError(t, err)
	assert.Len(t, result.Lines, 1)
}

func TestPDFParser_ExtractLines_Cancelled(t *testing.T) {
	doc := &fakeDocument{pages: []string{"a", "b", "c"}}

	t.Run("before the first page", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewPDFParser(quietLogger()).ExtractLines(ctx, doc, ExtractOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("between pages", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pages := 0
		opts := ExtractOptions{Progress: func(cur, _ int) {
			pages = cur
			if cur == 2 {
				cancel()
			}
		}}

		_, err := NewPDFParser(quietLogger()).ExtractLines(ctx, doc, opts)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 2, pages)
	})
}

func TestPDFParser_Open(t *testing.T) {
	p := NewPDFParser(quietLogger())

	t.Run("rejects non-PDF bytes", func(t *testing.T) {
		_, err := p.Open([]byte("not a pdf"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := p.ExtractLinesFromFile(context.Background(), "testdata/does-not-exist.pdf", ExtractOptions{})
		assert.Error(t, err)
	})
}

func TestJoinWords(t *testing.T) {
	t.Run("orders runs and spaces wide gaps", func(t *testing.T) {
		texts := []pdf.Text{
			{X: 40, W: 20, S: "05/01", FontSize: 10},
			{X: 10, W: 10, S: "12", FontSize: 10},
			{X: 20, W: 10, S: "/3", FontSize: 10},
			{X: 70, W: 30, S: "GALPAO", FontSize: 10},
		}
		assert.Equal(t, "12/3 05/01 GALPAO", joinWords(texts))
	})

	t.Run("skips empty runs", func(t *testing.T) {
		texts := []pdf.Text{
			{X: 0, W: 5, S: "a", FontSize: 10},
			{X: 5, W: 0, S: "", FontSize: 10},
			{X: 5, W: 5, S: "b", FontSize: 10},
		}
		assert.Equal(t, "ab", joinWords(texts))
	})

	t.Run("zero font size uses a unit gap", func(t *testing.T) {
		texts := []pdf.Text{
			{X: 0, W: 5, S: "a"},
			{X: 5.5, W: 5, S: "b"},
			{X: 12, W: 5, S: "c"},
		}
		assert.Equal(t, "ab c", joinWords(texts))
	})

	t.Run("does not reorder the input", func(t *testing.T) {
		texts := []pdf.Text{{X: 10, S: "b"}, {X: 0, W: 1, S: "a"}}
		joinWords(texts)
		assert.Equal(t, "b", texts[0].S)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", strings.TrimSpace(joinWords(nil)))
	})
}
