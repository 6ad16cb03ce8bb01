package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/testdata"
)

func TestMatchLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		match bool
	}{
		{"report row", "12/3 05/01 GALPAO-1 12.345,00 45000 94,50", true},
		{"row with full date", "12/3 05/01/2025 GALPAO-1 100 1 50", true},
		{"lot and date only", "7/1 31/12", true},
		{"no slash", "Total geral 1.234,00", false},
		{"date without lot", "05/01 GALPAO 100 1 50", false},
		{"issue timestamp", "Emitido em 02/01/2024 15:04", false},
		{"single digit date", "12/3 5/1 GALPAO 100 1 50", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := MatchLine(tt.line)
			assert.Equal(t, tt.match, ok)
		})
	}
}

func TestMatchLine_NonBreakingSpaces(t *testing.T) {
	line := "12/3\u00a005/01\u00a0GALPAO-1 100\u00a01 50"

	clean, ok := MatchLine(line)

	assert.True(t, ok)
	assert.Equal(t, "12/3 05/01 GALPAO-1 100 1 50", clean)
	assert.NotContains(t, clean, nbsp)
}

func TestFilterLines(t *testing.T) {
	t.Run("keeps rows in page order", func(t *testing.T) {
		text := strings.Join([]string{
			"RELATORIO MTR03",
			"12/3 05/01 GALPAO-1 1.000,00 45000 90",
			"Lote Data Galpao Total Aves Aproveitamento",
			"12/3 06/01 GALPAO-1 2.000,00 45000 80",
			"",
		}, "\n")

		lines := FilterLines(text)

		assert.Equal(t, []string{
			"12/3 05/01 GALPAO-1 1.000,00 45000 90",
			"12/3 06/01 GALPAO-1 2.000,00 45000 80",
		}, lines)
	})

	t.Run("drops generated noise", func(t *testing.T) {
		gen := testdata.NewGeneratorWithSeed(3)
		noise := gen.Noise(50)
		assert.Empty(t, FilterLines(strings.Join(noise, "\n")))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, FilterLines(""))
	})
}
