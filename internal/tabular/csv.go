package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close() //nolint:errcheck
	return ReadCSV(ctx, f)
}

// ReadCSV parses a header row and data rows from r.
func ReadCSV(ctx context.Context, r io.Reader) (*Table, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rowCh, errCh := streamCSV(ctx, r)

	var b builder
	first := true
	for row := range rowCh {
		if first {
			first = false
			if err := b.header(row.cells); err != nil {
				return nil, err
			}
			continue
		}
		if err := b.row(row.line, row.cells); err != nil {
			return nil, err
		}
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return b.done()
}

type csvRow struct {
	line  int
	cells []string
}

// streamCSV reads r and sends rows to a channel. Both channels are closed
// when processing completes.
func streamCSV(ctx context.Context, r io.Reader) (<-chan csvRow, <-chan error) {
	rowCh := make(chan csvRow, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}
			line, _ := reader.FieldPos(0)

			select {
			case rowCh <- csvRow{line: line, cells: record}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// WriteCSVFile writes rows to path.
func WriteCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "csv: create file")
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrap(f.Close(), "csv: close file")
}

// WriteCSV writes rows to w.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return eris.Wrap(err, "csv: write rows")
	}
	return nil
}
