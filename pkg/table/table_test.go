package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdiff/tdiff/pkg/errors"
	"github.com/tdiff/tdiff/pkg/table"
)

func TestAppendNormalizesAndPads(t *testing.T) {
	tbl := table.New("A", "B", "C")
	tbl.Append(1, "x") // short row

	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, table.Row{int64(1), "x", nil}, tbl.Rows[0])
	assert.False(t, tbl.Empty())
}

func TestColumnIndex(t *testing.T) {
	tbl := table.New("A", "B")
	assert.Equal(t, 1, tbl.ColumnIndex("B"))
	assert.Equal(t, -1, tbl.ColumnIndex("Z"))
}

func TestIndexesMissingColumn(t *testing.T) {
	tbl := table.New("A", "B")

	idx, err := tbl.Indexes([]string{"B", "A"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, idx)

	_, err = tbl.Indexes([]string{"A", "Z"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidSchema(err))
	assert.Contains(t, err.Error(), "Z")
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := table.New("A", "B")
	tbl.Append(1, "x")

	c := tbl.Clone()
	c.Rows[0][0] = int64(99)
	c.Columns[0] = "Z"

	assert.Equal(t, int64(1), tbl.Rows[0][0])
	assert.Equal(t, "A", tbl.Columns[0])
}

func TestNilTableLen(t *testing.T) {
	var tbl *table.Table
	assert.Equal(t, 0, tbl.Len())
}
