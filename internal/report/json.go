package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/ucomment/internal/model"
)

// JSONWriter outputs crawl history in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indentString is the indentation string. Empty means compact output.
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawls as a JSON array followed by a newline.
func (w *JSONWriter) Write(crawls []*model.Crawl) (int, error) {
	if crawls == nil {
		crawls = []*model.Crawl{}
	}

	var (
		data []byte
		err  error
	)
	if w.indentString != "" {
		data, err = json.MarshalIndent(crawls, "", w.indentString)
	} else {
		data, err = json.Marshal(crawls)
	}
	if err != nil {
		return 0, err
	}

	return w.output.Write(append(data, '\n'))
}
