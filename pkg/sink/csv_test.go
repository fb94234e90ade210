package sink_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdiff/tdiff/pkg/reconcile"
	"github.com/tdiff/tdiff/pkg/sink"
	"github.com/tdiff/tdiff/pkg/table"
)

// sampleResult builds a small annotated result by hand: one pair where
// AMOUNT changed and the new side's STATUS is missing.
func sampleResult() *reconcile.Result {
	tbl := table.New("ROW_NUM", "ACC_NO", "AMOUNT", "STATUS", "GROUP_KEYS")
	tbl.Append(1, "A-1", 100.0, "OK", "(100)")
	tbl.Append(2, "A-1", 200.0, nil, "(100)")

	none := reconcile.AnnotationNone
	return &reconcile.Result{
		Kind:  reconcile.KindAnnotated,
		Table: tbl,
		Annotations: [][]reconcile.Annotation{
			{none, none, reconcile.AnnotationChanged, none, none},
			{none, none, none, reconcile.AnnotationMissing, none},
		},
		Stats: reconcile.Stats{Rows: 2, Groups: 1, Pairs: 1, OutputRows: 2},
	}
}

func TestCSVWrite(t *testing.T) {
	var buf bytes.Buffer
	s := sink.NewCSV()
	assert.Equal(t, "csv", s.Ext())

	require.NoError(t, s.Write(&buf, sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ROW_NUM,ACC_NO,AMOUNT,STATUS,GROUP_KEYS", lines[0])
	assert.Equal(t, "1,A-1,100,OK,(100)", lines[1])
	// Values stay unpolluted; a missing cell is simply empty.
	assert.Equal(t, "2,A-1,200,,(100)", lines[2])
}

func TestCSVRefusesEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	err := sink.NewCSV().Write(&buf, &reconcile.Result{Kind: reconcile.KindEmpty})
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
