// File: internal/reporting/reporter.go
package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

// Output formats understood by New.
const (
	FormatJSON  = "json"
	FormatSARIF = "sarif"
	FormatText  = "text"
)

// ErrUnsupportedFormat is returned by New for an unknown format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

var extensions = map[string]string{
	FormatJSON:  ".json",
	FormatSARIF: ".sarif",
	FormatText:  ".txt",
}

// Reporter renders integrated reports to an output.
type Reporter interface {
	// Write renders a single report.
	Write(report *schemas.IntegratedReport) error
	// Close finalizes the output and closes any underlying resources (e.g., file handles).
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) (string, error) {
	ext, ok := extensions[format]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return ext, nil
}

// New creates a reporter for format that writes to outputPath, or to stdout
// when the path is empty or "stdout". The format is checked before any file
// is created.
func New(format, outputPath, toolVersion string) (Reporter, error) {
	if _, err := Extension(format); err != nil {
		return nil, err
	}

	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		// Wrap Stdout so Close() is a no-op.
		writer = &nopWriteCloser{os.Stdout}
	} else {
		path, err := homedir.Expand(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to expand output path %s: %w", outputPath, err)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	return NewWithWriter(format, writer, toolVersion)
}

// NewWithWriter creates a reporter for format that takes ownership of
// writer. On error the writer is closed.
func NewWithWriter(format string, writer io.WriteCloser, toolVersion string) (Reporter, error) {
	switch format {
	case FormatSARIF:
		return NewSARIFReporter(writer, toolVersion), nil
	case FormatJSON:
		return NewJSONReporter(writer), nil
	case FormatText:
		return NewTextReporter(writer), nil
	default:
		writer.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// NopCloser returns w with a Close method that does nothing, for writers the
// caller keeps ownership of.
func NopCloser(w io.Writer) io.WriteCloser {
	return &nopWriteCloser{w}
}
