package sink

import (
	"encoding/csv"
	"io"

	"github.com/tdiff/tdiff/pkg/errors"
	"github.com/tdiff/tdiff/pkg/reconcile"
	"github.com/tdiff/tdiff/pkg/table"
)

// CSV renders the diff report as plain comma-separated values. CSV has no
// cell styling, so annotations are not represented; values are written in
// their unpolluted form.
type CSV struct{}

// NewCSV creates a CSV sink.
func NewCSV() *CSV {
	return &CSV{}
}

// Ext implements Sink.
func (s *CSV) Ext() string {
	return "csv"
}

// Write implements Sink.
func (s *CSV) Write(w io.Writer, res *reconcile.Result) error {
	if res == nil || res.Empty() {
		return errors.NewSinkError("csv", "", errors.New("refusing to write an empty result"))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(res.Table.Columns); err != nil {
		return errors.WrapSink("csv", "", err)
	}

	record := make([]string, len(res.Table.Columns))
	for _, row := range res.Table.Rows {
		for i, v := range row {
			record[i] = table.Format(v)
		}
		if err := cw.Write(record); err != nil {
			return errors.WrapSink("csv", "", err)
		}
	}

	cw.Flush()
	return errors.WrapSink("csv", "", cw.Error())
}
