package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/totemtrack/go-track-sheets/models"
)

// DecodeRows parses a CSV export into raw rows keyed by header name.
//
// Headers are kept verbatim (no trimming) because downstream column
// matching distinguishes naming variants that differ only by trailing
// whitespace. Rows that fail to parse are skipped, not fatal; only a
// payload with no usable content is an error.
func DecodeRows(payload []byte) ([]models.RawRow, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, ErrEmptyPayload
	}

	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []models.RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				slog.Warn("skipping malformed csv line", slog.Int("line", parseErr.Line))
				continue
			}
			return nil, fmt.Errorf("read row: %w", err)
		}

		row := make(models.RawRow, len(header))
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}

	// A header with no data rows is a source-level failure, same as an
	// empty body: the sheet export came back without content.
	if len(rows) == 0 {
		return nil, ErrEmptyPayload
	}
	return rows, nil
}

// ExportURL rewrites a Google Sheets share link into its CSV export form,
// selecting the tab identified by gid. A URL that already points at an
// export passes through unchanged apart from the format parameters.
func ExportURL(shareURL, gid string) string {
	u := strings.Replace(shareURL, "/edit", "/export", 1)
	u = strings.Replace(u, "?usp=sharing", "", 1)
	if strings.Contains(u, "format=csv") {
		return u
	}
	u += "?format=csv"
	if gid != "" {
		u += "&gid=" + gid
	}
	return u
}
