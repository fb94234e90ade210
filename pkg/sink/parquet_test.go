package sink_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdiff/tdiff/pkg/sink"
	"github.com/tdiff/tdiff/pkg/table"
)

func TestWriteSnapshot(t *testing.T) {
	tbl := table.New("ROW_NUM", "ACC_NO", "AMOUNT", "STAMP", "ACTIVE")
	tbl.Append(1, "A-1", 100.5, time.Date(2023, 5, 8, 10, 0, 0, 0, time.UTC), true)
	tbl.Append(2, "A-2", nil, nil, false)

	var buf bytes.Buffer
	require.NoError(t, sink.WriteSnapshot(&buf, tbl))

	// Parquet files are framed by the PAR1 magic bytes.
	out := buf.Bytes()
	require.Greater(t, len(out), 8)
	assert.Equal(t, []byte("PAR1"), out[:4])
	assert.Equal(t, []byte("PAR1"), out[len(out)-4:])
}

func TestWriteSnapshotAllNullColumn(t *testing.T) {
	// A column with no non-null value falls back to a string column.
	tbl := table.New("A", "B")
	tbl.Append(1, nil)
	tbl.Append(2, nil)

	var buf bytes.Buffer
	require.NoError(t, sink.WriteSnapshot(&buf, tbl))
	assert.NotZero(t, buf.Len())
}

func TestWriteSnapshotRefusesEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	err := sink.WriteSnapshot(&buf, table.New("A"))
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
