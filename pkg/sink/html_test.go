package sink_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdiff/tdiff/pkg/reconcile"
	"github.com/tdiff/tdiff/pkg/sink"
)

func TestHTMLWrite(t *testing.T) {
	var buf bytes.Buffer
	s := sink.NewHTML("Differences for 12345")
	assert.Equal(t, "html", s.Ext())

	require.NoError(t, s.Write(&buf, sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "<title>Differences for 12345</title>")
	assert.Contains(t, out, "<th>ROW_NUM</th>")
	assert.Contains(t, out, `td.missing { background-color: lightblue; }`)
	assert.Contains(t, out, `td.changed { background-color: pink; }`)

	// Annotations become CSS classes; plain cells carry none.
	assert.Contains(t, out, `<td class="changed">100</td>`)
	assert.Contains(t, out, `<td class="missing"></td>`)
	assert.Contains(t, out, `<td>OK</td>`)
	assert.Equal(t, 1, strings.Count(out, `class="changed"`))
	assert.Equal(t, 1, strings.Count(out, `class="missing"`))
}

func TestHTMLEscapesValues(t *testing.T) {
	res := sampleResult()
	res.Table.Rows[0][1] = "<script>alert(1)</script>"

	var buf bytes.Buffer
	require.NoError(t, sink.NewHTML("t").Write(&buf, res))
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
}

func TestHTMLDefaultTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sink.NewHTML("").Write(&buf, sampleResult()))
	assert.Contains(t, buf.String(), "<title>Differences</title>")
}

func TestHTMLRefusesEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	err := sink.NewHTML("t").Write(&buf, &reconcile.Result{Kind: reconcile.KindEmpty})
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
