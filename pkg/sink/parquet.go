package sink

import (
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/tdiff/tdiff/pkg/errors"
	"github.com/tdiff/tdiff/pkg/table"
)

// WriteSnapshot writes the raw input table as a snappy-compressed Parquet
// file. Column types are inferred from the first non-null value per
// column; all-null columns fall back to strings. Cells that do not fit
// their column's inferred type are written as nulls.
func WriteSnapshot(w io.Writer, tbl *table.Table) error {
	if tbl.Empty() {
		return errors.NewSinkError("parquet", "", errors.New("refusing to write an empty snapshot"))
	}

	fields := make([]arrow.Field, len(tbl.Columns))
	for i, name := range tbl.Columns {
		fields[i] = arrow.Field{Name: name, Type: inferType(tbl, i), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer builder.Release()

	for _, row := range tbl.Rows {
		for i := range tbl.Columns {
			appendValue(builder.Field(i), row[i])
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	arrowTable := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer arrowTable.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	err := pqarrow.WriteTable(arrowTable, w, int64(tbl.Len()), props, pqarrow.DefaultWriterProps())
	return errors.WrapSink("parquet", "", err)
}

// inferType picks an Arrow type from the first non-null cell of a column.
func inferType(tbl *table.Table, col int) arrow.DataType {
	for _, row := range tbl.Rows {
		switch row[col].(type) {
		case nil:
			continue
		case int64:
			return arrow.PrimitiveTypes.Int64
		case float64:
			return arrow.PrimitiveTypes.Float64
		case bool:
			return arrow.FixedWidthTypes.Boolean
		case time.Time:
			return arrow.FixedWidthTypes.Timestamp_us
		default:
			return arrow.BinaryTypes.String
		}
	}
	return arrow.BinaryTypes.String
}

// appendValue appends one cell to its column builder, coercing where the
// value class matches and writing a null where it does not.
func appendValue(fb array.Builder, v table.Value) {
	if v == nil {
		fb.AppendNull()
		return
	}

	switch b := fb.(type) {
	case *array.Int64Builder:
		switch x := v.(type) {
		case int64:
			b.Append(x)
		case float64:
			b.Append(int64(x))
		default:
			b.AppendNull()
		}
	case *array.Float64Builder:
		switch x := v.(type) {
		case float64:
			b.Append(x)
		case int64:
			b.Append(float64(x))
		default:
			b.AppendNull()
		}
	case *array.BooleanBuilder:
		if x, ok := v.(bool); ok {
			b.Append(x)
		} else {
			b.AppendNull()
		}
	case *array.TimestampBuilder:
		if x, ok := v.(time.Time); ok {
			b.Append(arrow.Timestamp(x.UnixMicro()))
		} else {
			b.AppendNull()
		}
	case *array.StringBuilder:
		b.Append(table.Format(v))
	default:
		fb.AppendNull()
	}
}
