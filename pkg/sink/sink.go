// Package sink provides report sinks that render the engine's annotated
// diff report, plus a columnar snapshot writer for the raw input table.
// Sinks own all output-side I/O; the engine only returns structured
// results.
package sink

import (
	"io"

	"github.com/tdiff/tdiff/pkg/reconcile"
)

// Sink renders an annotated diff report to a writer. Implementations
// translate the per-cell annotations into whatever styling their format
// supports; formats without styling render plain values.
type Sink interface {
	// Write renders the report. Callers are expected to skip Empty
	// results; passing one is an error.
	Write(w io.Writer, res *reconcile.Result) error

	// Ext returns the file extension for this format, without the dot.
	Ext() string
}
