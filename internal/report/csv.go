package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/ucomment/internal/model"
)

// CSVWriter writes comment records as CSV rows.
//
// The header row is written on construction. Every row is flushed as soon
// as it is appended, so rows written before a fatal error stay on disk.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
	rows   int
}

// NewCSVWriter seeds output with the header row and returns a writer for it.
func NewCSVWriter(output io.Writer) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(output)}
	if err := cw.write(model.CSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return cw, nil
}

// CreateCSVFile creates (or truncates) path, creating parent directories,
// and returns a CSVWriter that owns the file.
func CreateCSVFile(path string) (*CSVWriter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // path is built from the operator's output directory
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	cw, err := NewCSVWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	cw.closer = f
	return cw, nil
}

// Append writes c as one row and flushes it.
func (cw *CSVWriter) Append(c model.Comment) error {
	if err := cw.write(c.Row()); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	cw.rows++
	return nil
}

// Rows returns the number of comment rows written, header excluded.
func (cw *CSVWriter) Rows() int {
	return cw.rows
}

// Close flushes pending output and closes the underlying file, if owned.
func (cw *CSVWriter) Close() error {
	cw.w.Flush()
	err := cw.w.Error()
	if cw.closer != nil {
		err = errors.Join(err, cw.closer.Close())
		cw.closer = nil
	}
	return err
}

func (cw *CSVWriter) write(record []string) error {
	if err := cw.w.Write(record); err != nil {
		return err
	}
	cw.w.Flush()
	return cw.w.Error()
}

// Appender is anything that accepts comment records.
type Appender interface {
	Append(c model.Comment) error
}

// MultiSink appends every record to all of its sinks in order.
// It stops on the first error.
type MultiSink struct {
	sinks []Appender
}

// NewMultiSink creates a MultiSink. Nil sinks are ignored.
func NewMultiSink(sinks ...Appender) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Append implements the crawler sink contract.
func (m *MultiSink) Append(c model.Comment) error {
	for _, s := range m.sinks {
		if err := s.Append(c); err != nil {
			return err
		}
	}
	return nil
}
