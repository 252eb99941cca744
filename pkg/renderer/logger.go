package renderer

import (
	"fmt"
	"io"
	"os"

	"github.com/df07/glimmer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to an io.Writer
type DefaultLogger struct {
	w io.Writer
}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(dl.w, format, args...)
}

// NewDefaultLogger creates a logger that writes to stdout
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{w: os.Stdout}
}

// NewWriterLogger creates a logger that writes to w
func NewWriterLogger(w io.Writer) core.Logger {
	return &DefaultLogger{w: w}
}

// NopLogger discards all output
type NopLogger struct{}

func (NopLogger) Printf(format string, args ...interface{}) {}
