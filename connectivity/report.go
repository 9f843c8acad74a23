package connectivity

import (
	"encoding/csv"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteTSV writes summaries as a tab-delimited table with a header.
func WriteTSV(w io.Writer, summaries []Summary) error {
	if summaries == nil {
		summaries = []Summary{}
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	sw := gocsv.NewSafeCSVWriter(cw)
	if err := gocsv.MarshalCSV(&summaries, sw); err != nil {
		return err
	}
	sw.Flush()

	return sw.Error()
}
