// Package source provides record sources that materialize the flat input
// table the reconciliation engine consumes. Sources own all input-side
// I/O: connections, statement execution, and fetching. The engine never
// touches a database.
package source

import (
	"context"

	"github.com/tdiff/tdiff/pkg/table"
)

// Source supplies a fully buffered input table. An empty table is a valid
// result and means "no data", not an error.
type Source interface {
	Fetch(ctx context.Context) (*table.Table, error)
}
