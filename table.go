package brainatlas

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/csimplestring/go-csv/detector"
)

// Delimiters that a table may plausibly use.
const tableDelimiters = "\t,;|"

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file. Detector candidates that are
// not plausible table delimiters (such as the decimal point) are passed over,
// and if none remain the header line decides between tab and comma.
func DetermineDelimiter(r io.Reader) rune {
	var head bytes.Buffer
	d := detector.New()
	delimiters := d.DetectDelimiter(io.TeeReader(r, &head), '"')

	for _, delim := range delimiters {
		if len(delim) > 0 && strings.ContainsRune(tableDelimiters, rune(delim[0])) {
			return rune(delim[0])
		}
	}

	firstLine := head.String()
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	if strings.Count(firstLine, "\t") > strings.Count(firstLine, ",") {
		return '\t'
	}

	return ','
}

// ReadTable loads a delimited table from a local path or a gs:// URL, undoing
// any compression and detecting the delimiter. Cached tables are small, so the
// whole file is held in memory.
func ReadTable(ctx context.Context, path string, client *storage.Client) ([]byte, rune, error) {
	rc, err := OpenFileOrGoogleStorage(ctx, path, client)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	r, err := MaybeDecompressReader(rc)
	if err != nil {
		return nil, 0, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return body, DetermineDelimiter(bytes.NewReader(body)), nil
}

// NewTableReader returns a csv.Reader over body with the given delimiter.
func NewTableReader(body []byte, delim rune) *csv.Reader {
	cr := csv.NewReader(bytes.NewReader(body))
	cr.Comma = delim
	cr.LazyQuotes = true

	return cr
}
