package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/testdata"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParser_ParseLine(t *testing.T) {
	parser := NewParser(ParserConfig{Year: 2025})

	t.Run("total and percentage from trailing numbers", func(t *testing.T) {
		rec, ok := parser.ParseLine("1 01/03 x 1.000,00 400 95")
		require.True(t, ok)
		assert.Equal(t, date(2025, time.March, 1), rec.Date)
		require.True(t, rec.HasCounts())
		assert.True(t, decimal.NewFromInt(1000).Equal(rec.Total.Decimal), "total %s", rec.Total.Decimal)
		assert.True(t, decimal.NewFromInt(950).Equal(rec.Good.Decimal), "good %s", rec.Good.Decimal)
	})

	t.Run("report row", func(t *testing.T) {
		rec, ok := parser.ParseLine("12/3 05/01 GALPAO-1 12.345,00 45000 94,50")
		require.True(t, ok)
		assert.Equal(t, date(2025, time.January, 5), rec.Date)
		assert.True(t, decimal.NewFromInt(12345).Equal(rec.Total.Decimal))
		assert.True(t, decimal.RequireFromString("11666.025").Equal(rec.Good.Decimal), "good %s", rec.Good.Decimal)
	})

	t.Run("full date keeps its own year", func(t *testing.T) {
		rec, ok := parser.ParseLine("12/3 05/01/2024 GALPAO 100 1 50")
		require.True(t, ok)
		assert.Equal(t, date(2024, time.January, 5), rec.Date)
		assert.True(t, decimal.NewFromInt(50).Equal(rec.Good.Decimal))
	})

	t.Run("too few tokens", func(t *testing.T) {
		_, ok := parser.ParseLine("12/3 05/01 100 95")
		assert.False(t, ok)
	})

	t.Run("invalid calendar date is dropped", func(t *testing.T) {
		_, ok := parser.ParseLine("12/3 31/02 GALPAO 100 1 50")
		assert.False(t, ok)
	})

	t.Run("non-date second token is dropped", func(t *testing.T) {
		_, ok := parser.ParseLine("12/3 GALPAO 05/01 100 1 50")
		assert.False(t, ok)
	})

	t.Run("single digit day without year is dropped", func(t *testing.T) {
		// 4 characters: no year is appended and day/month alone is not a date
		_, ok := parser.ParseLine("12/3 5/01 GALPAO 100 1 50")
		assert.False(t, ok)
	})

	t.Run("fewer than three numbers keeps a null record", func(t *testing.T) {
		rec, ok := parser.ParseLine("A 01/03 B C D")
		require.True(t, ok)
		assert.Equal(t, date(2025, time.March, 1), rec.Date)
		assert.False(t, rec.Total.Valid)
		assert.False(t, rec.Good.Valid)
		assert.False(t, rec.HasCounts())
	})

	t.Run("dot-only number keeps a null record", func(t *testing.T) {
		rec, ok := parser.ParseLine("12/3 05/01 GALPAO ... 1 50")
		require.True(t, ok)
		assert.False(t, rec.HasCounts())
	})

	t.Run("extra trailing number shifts the fields", func(t *testing.T) {
		rec, ok := parser.ParseLine("12/3 05/01 GALPAO 1.000 80 95 7")
		require.True(t, ok)
		assert.True(t, decimal.NewFromInt(80).Equal(rec.Total.Decimal))
		assert.True(t, decimal.RequireFromString("5.6").Equal(rec.Good.Decimal))
	})

	t.Run("keeps the source line", func(t *testing.T) {
		line := "12/3 05/01 GALPAO 100 1 50"
		rec, ok := parser.ParseLine(line)
		require.True(t, ok)
		assert.Equal(t, line, rec.Line)
	})
}

func TestParser_Parse(t *testing.T) {
	lines := []string{
		"12/3 05/01 GALPAO-1 1.000,00 45000 90",
		"12/3 06/01 GALPAO-1 2.000,00 45000 80",
		"12/3 07/01",
		"12/3 32/01 GALPAO-1 2.000,00 45000 80",
		"A 08/01 GALPAO SEM CONTAGEM",
	}

	result := NewParser(ParserConfig{Year: 2025}).Parse(lines)

	assert.Equal(t, 5, result.TotalLines)
	assert.Equal(t, 3, result.ParsedRows)
	assert.Equal(t, 2, result.SkippedRows)
	assert.Equal(t, 1, result.NullCountRows)
	require.Len(t, result.Records, 3)

	assert.Equal(t, date(2025, time.January, 5), result.Records[0].Date)
	assert.Equal(t, date(2025, time.January, 6), result.Records[1].Date)
	assert.Equal(t, date(2025, time.January, 8), result.Records[2].Date)
}

func TestPreprocess_GeneratedRows(t *testing.T) {
	gen := testdata.NewGeneratorWithSeed(7)
	rows := gen.Rows(date(2024, time.December, 20), 30)

	t.Run("short dates take the report year", func(t *testing.T) {
		result := Preprocess(testdata.Lines(rows), 2030)
		require.Len(t, result.Records, len(rows))
		for i, rec := range result.Records {
			assert.Equal(t, 2030, rec.Date.Year())
			assert.Equal(t, rows[i].Date.Month(), rec.Date.Month())
			assert.Equal(t, rows[i].Date.Day(), rec.Date.Day())
			assert.True(t, rows[i].Total.Equal(rec.Total.Decimal), "row %d total", i)
			assert.True(t, rows[i].Good().Equal(rec.Good.Decimal), "row %d good", i)
		}
	})

	t.Run("full dates are kept", func(t *testing.T) {
		lines := make([]string, len(rows))
		for i, r := range rows {
			lines[i] = r.LineWithYear()
		}
		result := Preprocess(lines, 2030)
		require.Len(t, result.Records, len(rows))
		for i, rec := range result.Records {
			assert.Equal(t, rows[i].Date, rec.Date)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, time.Now().Year(), DefaultConfig().Year)
}
