// Package testdata generates synthetic MTR03 report lines for tests and
// benchmarks.
package testdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/mtr03-counter/pkg/quantity"
)

// Generator produces report rows using gofakeit.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a new generator with a random seed.
func NewGenerator() *Generator {
	return &Generator{faker: gofakeit.New(0)}
}

// NewGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// ============================================================================
// Report Rows
// ============================================================================

// Row is one generated production row together with the values a correct
// parse must yield.
type Row struct {
	Lot     string
	Date    time.Time
	Shed    string
	Total   decimal.Decimal
	Hens    int
	Percent decimal.Decimal
}

// Good returns Total × Percent / 100.
func (r Row) Good() decimal.Decimal {
	return r.Total.Mul(r.Percent).Div(decimal.NewFromInt(100))
}

// Line renders the row the way the report prints it, with a short dd/mm date.
func (r Row) Line() string {
	return fmt.Sprintf("%s %s %s %s %d %s",
		r.Lot,
		r.Date.Format("02/01"),
		r.Shed,
		quantity.FormatBR(r.Total, 2),
		r.Hens,
		quantity.FormatBR(r.Percent, 2),
	)
}

// LineWithYear renders the row with a full dd/mm/yyyy date.
func (r Row) LineWithYear() string {
	return strings.Replace(r.Line(), r.Date.Format("02/01"), r.Date.Format("02/01/2006"), 1)
}

var sheds = []string{"GALPAO-1", "GALPAO-2", "GALPAO-3", "AVIARIO-A", "AVIARIO-B", "NUCLEO-7"}

// Row generates a random row dated on day.
func (g *Generator) Row(day time.Time) Row {
	return Row{
		Lot:     fmt.Sprintf("%d/%d", g.faker.Number(1, 999), g.faker.Number(1, 9)),
		Date:    day,
		Shed:    g.faker.RandomString(sheds),
		Total:   decimal.NewFromInt(int64(g.faker.Number(100, 250000))),
		Hens:    g.faker.Number(1000, 90000),
		Percent: decimal.NewFromInt(int64(g.faker.Number(7000, 9999))).Div(decimal.NewFromInt(100)),
	}
}

// Rows generates one row per day for days consecutive days from start.
func (g *Generator) Rows(start time.Time, days int) []Row {
	rows := make([]Row, days)
	for i := 0; i < days; i++ {
		rows[i] = g.Row(start.AddDate(0, 0, i))
	}
	return rows
}

// Lines renders rows as report lines.
func Lines(rows []Row) []string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.Line()
	}
	return lines
}

// Noise returns report header and footer lines that are not production rows.
func (g *Generator) Noise(n int) []string {
	templates := []string{
		"RELATORIO MTR03 - PRODUCAO DE OVOS",
		"Granja %s Pagina %d",
		"Lote Data Galpao Total Aves Aproveitamento",
		"Emitido em %s",
		"Total geral %s",
	}

	lines := make([]string, n)
	for i := range lines {
		switch t := templates[i%len(templates)]; {
		case strings.Count(t, "%") == 2:
			lines[i] = fmt.Sprintf(t, g.faker.LastName(), g.faker.Number(1, 40))
		case strings.Contains(t, "Emitido"):
			lines[i] = fmt.Sprintf(t, g.faker.Date().Format("02/01/2006 15:04"))
		case strings.Contains(t, "%"):
			lines[i] = fmt.Sprintf(t, quantity.FormatBR(decimal.NewFromInt(int64(g.faker.Number(1000, 999999))), 2))
		default:
			lines[i] = t
		}
	}
	return lines
}
