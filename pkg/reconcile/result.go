package reconcile

import (
	"fmt"

	"github.com/tdiff/tdiff/pkg/table"
)

// Annotation is the per-cell presentational hint attached to the output
// table. Values themselves are never polluted with marker strings; the
// annotation grid runs parallel to the table so a rendering collaborator
// can apply styling out of band.
type Annotation string

const (
	// AnnotationNone marks a cell with no special state. It is the zero
	// value so an unannotated grid cell needs no explicit write.
	AnnotationNone Annotation = ""

	// AnnotationMissing marks a cell with no corresponding row or value
	// on its side of the comparison.
	AnnotationMissing Annotation = "missing"

	// AnnotationChanged marks a cell whose value exists on both sides
	// but differs, subject to the latest-version exception.
	AnnotationChanged Annotation = "changed"
)

// Kind tags the engine's return contract explicitly, so callers never
// resort to runtime introspection to distinguish outcomes.
type Kind string

const (
	// KindEmpty indicates no differences were produced. This is a valid
	// terminal outcome, not an error: it covers both an empty input
	// table and a table whose consecutive versions are fully identical.
	KindEmpty Kind = "empty"

	// KindAnnotated indicates a non-empty diff report with a per-cell
	// annotation grid.
	KindAnnotated Kind = "annotated"
)

// Result is the outcome of one reconciliation run.
type Result struct {
	// Kind tags the outcome; Table and Annotations are nil when Empty.
	Kind Kind

	// Table is the flat diff report: two rows per version comparison,
	// columns ordered version, identity, payload, group back-reference.
	Table *table.Table

	// Annotations is the per-cell grid parallel to Table.Rows.
	Annotations [][]Annotation

	// Stats summarizes the run, including valid-but-unusual anomalies
	// the algorithm absorbs without raising.
	Stats Stats
}

// Stats provides summary statistics for a reconciliation run.
type Stats struct {
	Rows                int // input rows
	Groups              int // identity groups seen
	SingleVersionGroups int // groups with fewer than two versions
	Pairs               int // consecutive-version diff pairs emitted
	OutputRows          int // rows in the diff report (2 per pair)
	DuplicateKeyFanouts int // extra pairs from duplicate merge keys
}

// Empty returns true if the run produced no differences.
func (r *Result) Empty() bool {
	return r.Kind == KindEmpty
}

// HasDifferences returns true if the run produced a diff report.
func (r *Result) HasDifferences() bool {
	return r.Kind == KindAnnotated
}

// String returns a human-readable summary of the result.
func (r *Result) String() string {
	if r.Empty() {
		if r.Stats.Rows == 0 {
			return "No input rows"
		}
		return "No differences detected"
	}
	return fmt.Sprintf("Differences: %d pairs across %d groups (%d rows)",
		r.Stats.Pairs, r.Stats.Groups-r.Stats.SingleVersionGroups, r.Stats.OutputRows)
}
