package export

import (
	"encoding/csv"
	"io"

	"fintrack/internal/core"
)

// CSVEncoder writes RFC 4180 CSV with a header row.
type CSVEncoder struct{}

func (CSVEncoder) Extension() string   { return "csv" }
func (CSVEncoder) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVEncoder) Encode(w io.Writer, t core.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
