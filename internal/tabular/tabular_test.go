package tabular

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"in.csv", FormatCSV, false},
		{"IN.CSV", FormatCSV, false},
		{"dir/in.xlsx", FormatXLSX, false},
		{"in.xls", "", true},
		{"in", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCSV_Basic(t *testing.T) {
	input := "patientid, age,gender\nP1,67,Female\n\nP2,72\n"
	table, err := ReadCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"patientid", "age", "gender"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, map[string]string{"patientid": "P1", "age": "67", "gender": "Female"}, table.Rows[0].Fields)
	assert.Equal(t, 4, table.Rows[1].Line)
	assert.Equal(t, "", table.Rows[1].Fields["gender"])
}

func TestReadCSV_QuotedMultiline(t *testing.T) {
	input := "patientid,note\n\"P1\",\"a\nb\"\nP2,c\n"
	table, err := ReadCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "a\nb", table.Rows[0].Fields["note"])
	assert.Equal(t, 4, table.Rows[1].Line)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "no header row"},
		{"blank header", "patientid,,age\n", "column 2 is empty"},
		{"duplicate header", "age,age\n", "duplicate column"},
		{"too many cells", "patientid\nP1,67\n", "line 2 has 2 cells"},
		{"bad quoting", "patientid\n\"P1\n", "read row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadCSV_ErrorDoesNotBlock(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("a\n1,2\n")
	for range 500 {
		sb.WriteString("x\n")
	}
	_, err := ReadCSV(context.Background(), strings.NewReader(sb.String()))
	assert.Error(t, err)
}

func TestReadCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadCSV(ctx, strings.NewReader("patientid\nP1\n"))
	assert.Error(t, err)
}

func TestReadXLSX_Basic(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"patientid", "age", ""},
		{"P1", "67"},
		{"", ""},
		{"P2", "70", ""},
	})

	table, err := ReadXLSX(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"patientid", "age"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, 4, table.Rows[1].Line)
	assert.Equal(t, "70", table.Rows[1].Fields["age"])
}

func TestReadXLSX_Missing(t *testing.T) {
	_, err := ReadXLSX(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	rows := [][]string{
		{"patientid", "predmort", "method", "error"},
		{"P1", "0.0201", "labeled", ""},
		{"P2", "", "", "sts: request transport: status 502"},
	}
	for _, ext := range []string{".csv", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out"+ext)
			require.NoError(t, Write(path, rows))

			table, err := Read(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, rows[0], table.Header)
			require.Len(t, table.Rows, 2)
			assert.Equal(t, "0.0201", table.Rows[0].Fields["predmort"])
			assert.Equal(t, "", table.Rows[1].Fields["predmort"])
			assert.Equal(t, rows[2][3], table.Rows[1].Fields["error"])
		})
	}
}

func TestWriteCSVFile_Content(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSVFile(path, [][]string{{"a", "b"}, {"1", "x,y"}}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"x,y\"\n", string(b))
}

func TestWrite_Unsupported(t *testing.T) {
	assert.Error(t, Write(filepath.Join(t.TempDir(), "out.txt"), nil))
	_, err := Read(context.Background(), "in.json")
	assert.Error(t, err)
}
