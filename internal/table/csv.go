package table

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"html"
	"io"
)

// Defaults of the inline download link.
const (
	DefaultLinkTitle = "Download CSV file"
	DefaultFilename  = "comparison_data.csv"
)

// WriteCSV writes the header and every row as UTF-8 CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// CSV returns the table encoded by WriteCSV.
func (t *Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURI returns the CSV as an inline base64 data resource.
func (t *Table) DataURI() (string, error) {
	b, err := t.CSV()
	if err != nil {
		return "", err
	}
	return "data:file/csv;base64," + base64.StdEncoding.EncodeToString(b), nil
}

// DownloadLink returns an HTML anchor that downloads the CSV as filename.
// Empty arguments fall back to DefaultLinkTitle and DefaultFilename.
func (t *Table) DownloadLink(title, filename string) (string, error) {
	if title == "" {
		title = DefaultLinkTitle
	}
	if filename == "" {
		filename = DefaultFilename
	}
	uri, err := t.DataURI()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<a href="%s" download="%s">%s</a>`, uri, html.EscapeString(filename), html.EscapeString(title)), nil
}
