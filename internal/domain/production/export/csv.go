package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/mtr03-counter/internal/domain/production"
)

// csvRow maps a result to the export columns.
type csvRow struct {
	Start string `csv:"Início"`
	End   string `csv:"Fim"`
	Total string `csv:"Total Ovos"`
	Good  string `csv:"Ovos Bons"`
}

// WriteCSV writes results as comma separated values with the export header.
// Counts keep full precision in dotted decimal form.
func WriteCSV(w io.Writer, results []production.Result) error {
	rows := make([]*csvRow, len(results))
	for i, r := range results {
		rows[i] = &csvRow{
			Start: production.FormatDate(r.Start),
			End:   production.FormatDate(r.End),
			Total: r.Total.String(),
			Good:  r.Good.String(),
		}
	}

	if len(rows) == 0 {
		if _, err := fmt.Fprintf(w, "%s,%s,%s,%s\n", Header[0], Header[1], Header[2], Header[3]); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		return nil
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
