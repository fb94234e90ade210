package sink

import (
	"html/template"
	"io"

	"github.com/tdiff/tdiff/pkg/errors"
	"github.com/tdiff/tdiff/pkg/reconcile"
	"github.com/tdiff/tdiff/pkg/table"
)

// HTML renders the diff report as a styled HTML table: missing cells on a
// light blue background, changed cells on pink.
type HTML struct {
	title string
}

// NewHTML creates an HTML sink with the given document title.
func NewHTML(title string) *HTML {
	if title == "" {
		title = "Differences"
	}
	return &HTML{title: title}
}

// Ext implements Sink.
func (s *HTML) Ext() string {
	return "html"
}

type htmlCell struct {
	Value string
	Class string
}

type htmlReport struct {
	Title   string
	Columns []string
	Rows    [][]htmlCell
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
table { border-collapse: collapse; font-family: monospace; }
th, td { border: 1px solid #999; padding: 2px 6px; white-space: nowrap; }
th { background-color: #eee; }
td.missing { background-color: lightblue; }
td.changed { background-color: pink; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td{{if .Class}} class="{{.Class}}"{{end}}>{{.Value}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))

// Write implements Sink.
func (s *HTML) Write(w io.Writer, res *reconcile.Result) error {
	if res == nil || res.Empty() {
		return errors.NewSinkError("html", "", errors.New("refusing to write an empty result"))
	}

	report := htmlReport{
		Title:   s.title,
		Columns: res.Table.Columns,
		Rows:    make([][]htmlCell, len(res.Table.Rows)),
	}

	for i, row := range res.Table.Rows {
		cells := make([]htmlCell, len(row))
		for j, v := range row {
			cells[j] = htmlCell{
				Value: table.Format(v),
				Class: cellClass(res.Annotations[i][j]),
			}
		}
		report.Rows[i] = cells
	}

	return errors.WrapSink("html", "", htmlTemplate.Execute(w, report))
}

// cellClass maps an annotation onto a CSS class.
func cellClass(a reconcile.Annotation) string {
	switch a {
	case reconcile.AnnotationMissing:
		return "missing"
	case reconcile.AnnotationChanged:
		return "changed"
	default:
		return ""
	}
}
