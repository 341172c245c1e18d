package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is a titled table inside a Document.
type Section struct {
	Heading string
	Data    Dataset
}

// Document groups sections under a title, with optional subtitle lines.
type Document struct {
	Title     string
	Subtitles []string
	Sections  []Section
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writeDataset(writer, data); err != nil {
		return nil, err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderDocument writes every section as its own header block separated by a blank record.
func (e *CSVExporter) RenderDocument(doc Document) ([]byte, error) {
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("csv document requires at least one section")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	for i, section := range doc.Sections {
		if i > 0 {
			if err := writer.Write([]string{""}); err != nil {
				return nil, fmt.Errorf("write csv separator: %w", err)
			}
		}
		if section.Heading != "" {
			if err := writer.Write([]string{"# " + section.Heading}); err != nil {
				return nil, fmt.Errorf("write csv heading: %w", err)
			}
		}
		if err := writeDataset(writer, section.Data); err != nil {
			return nil, fmt.Errorf("section %q: %w", section.Heading, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDataset(writer *csv.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("csv requires at least one header")
	}
	if err := writer.Write(data.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	return nil
}
