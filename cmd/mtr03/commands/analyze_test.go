package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/mtr03-counter/internal/domain/production"
	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/service"
)

func resetAnalyzeFlags(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&analyzeEnd, "end", "", "")
	analyzeStart, analyzeEnd, analyzeYear, analyzeCount, analyzeDays = "", "", 2025, 1, 7
	return cmd
}

func TestAnalyzeInput(t *testing.T) {
	t.Run("end selects manual mode", func(t *testing.T) {
		cmd := resetAnalyzeFlags(t)
		analyzeStart = "01/03/2025"
		require.NoError(t, cmd.Flags().Set("end", "31/03/2025"))

		in, err := analyzeInput(cmd)
		require.NoError(t, err)
		assert.Equal(t, service.ModeManual, in.Mode)
		assert.Equal(t, "31/03/2025", production.FormatDate(in.End))
	})

	t.Run("automatic by default", func(t *testing.T) {
		cmd := resetAnalyzeFlags(t)
		analyzeStart = "01/01/2025"
		analyzeCount, analyzeDays = 4, 14

		in, err := analyzeInput(cmd)
		require.NoError(t, err)
		assert.Equal(t, service.ModeAutomatic, in.Mode)
		assert.Equal(t, 4, in.Count)
		assert.Equal(t, 14, in.Days)
		assert.Equal(t, 2025, in.Year)
	})

	t.Run("bad dates", func(t *testing.T) {
		cmd := resetAnalyzeFlags(t)
		analyzeStart = "2025-01-01"
		_, err := analyzeInput(cmd)
		assert.Error(t, err)

		cmd = resetAnalyzeFlags(t)
		analyzeStart = "01/01/2025"
		require.NoError(t, cmd.Flags().Set("end", "32/01/2025"))
		_, err = analyzeInput(cmd)
		assert.Error(t, err)
	})
}

func sampleResults() []production.Result {
	jan1 := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []production.Result{{
		Interval: production.Interval{Start: jan1, End: jan1.AddDate(0, 0, 6)},
		Total:    decimal.NewFromInt(1234567),
		Good:     decimal.NewFromInt(1000000),
	}}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &service.Report{
		Results: sampleResults(),
		Total:   decimal.NewFromInt(1234567),
		Good:    decimal.NewFromInt(1000000),
	})

	out := buf.String()
	assert.Contains(t, out, "Início")
	assert.Contains(t, out, "01/01/2025")
	assert.Contains(t, out, "1.234.567")
	assert.Contains(t, out, "Intervalos calculados: 1")
	assert.Contains(t, out, "Bons (soma): 1.000.000")
}

func TestWriteExport(t *testing.T) {
	dir := t.TempDir()

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "out.csv")
		require.NoError(t, writeExport(path, sampleResults()))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "Início,Fim,Total Ovos,Ovos Bons\n"))
	})

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(dir, "resultados_mtr03.xlsx")
		require.NoError(t, writeExport(path, sampleResults()))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("PK")))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, writeExport(filepath.Join(dir, "out.pdf"), sampleResults()))
	})
}
