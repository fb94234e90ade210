// Package reconcile implements the versioned row reconciliation engine.
//
// The engine accepts one flat table of records, partitions it into groups
// by identity, orders each group's versions, pairwise-diffs adjacent
// versions using the merge key for row correspondence, classifies each
// field as present, missing, or changed, and assembles a normalized,
// deterministically sorted diff report annotated for presentation.
//
// The engine is pure with respect to its input: it performs no I/O, emits
// no logs, and given the same input table always yields the same output.
package reconcile

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tdiff/tdiff/pkg/errors"
	"github.com/tdiff/tdiff/pkg/table"
)

// defaultGroupColumn is the name of the back-reference column appended to
// every diff report row.
const defaultGroupColumn = "GROUP_KEYS"

// keySep joins key components; an unlikely byte keeps distinct tuples
// from colliding after concatenation.
const keySep = "\x1f"

// Reconciler diffs consecutive versions of grouped records.
type Reconciler interface {
	// Reconcile compares consecutive versions within each identity group
	// of t and returns the annotated diff report, or an Empty result when
	// the input holds no rows or no differences.
	Reconcile(t *table.Table) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	schema       *table.Schema
	ignoreFields map[string]bool
	groupColumn  string
}

// New creates a Reconciler for the given schema.
func New(schema *table.Schema, opts ...Option) (Reconciler, error) {
	if schema == nil {
		return nil, errors.NewSchemaError("", "schema is required")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	r := &reconciler{
		schema:       schema,
		ignoreFields: make(map[string]bool),
		groupColumn:  defaultGroupColumn,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// layout binds the schema to a concrete input table: resolved column
// positions plus the fixed output column order (version, identity,
// payload, group back-reference).
//
// Grouping uses the identity columns outside the merge key: the merge key
// must be free to differ between rows of one group, otherwise one-sided
// correspondences could never arise.
type layout struct {
	version  int
	identity []int
	grouping []int
	merge    []int
	payload  []int

	outCols []string
	// offsets into an output row
	identityOff int
	payloadOff  int
	groupOff    int
}

// outRow is one synthesized report row with its parallel annotations and
// the typed sort key computed at creation, so re-sorting never needs to
// recover values from presentation markers.
type outRow struct {
	cells   table.Row
	ann     []Annotation
	sortKey []float64
}

// group is the set of input rows sharing one grouping tuple.
type group struct {
	identity table.Row // values of the grouping columns
	rows     []int
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(t *table.Table) (*Result, error) {
	stats := Stats{Rows: t.Len()}
	if t.Len() == 0 {
		return &Result{Kind: KindEmpty, Stats: stats}, nil
	}

	lay, err := r.bind(t)
	if err != nil {
		return nil, err
	}

	versions, err := r.validate(t, lay)
	if err != nil {
		return nil, err
	}

	groups := r.partition(t, lay, versions)
	stats.Groups = len(groups)

	var out []*outRow
	for _, g := range groups {
		out = append(out, r.diffGroup(t, lay, g, versions, &stats)...)
	}

	if len(out) == 0 {
		return &Result{Kind: KindEmpty, Stats: stats}, nil
	}

	// Re-sort the flat report on the typed numeric projection of
	// (version, identity components); ties keep construction order,
	// which is itself deterministic.
	sort.SliceStable(out, func(i, j int) bool {
		return lessKeys(out[i].sortKey, out[j].sortKey)
	})

	report := table.New(lay.outCols...)
	annotations := make([][]Annotation, len(out))
	for i, row := range out {
		report.Rows = append(report.Rows, row.cells)
		annotations[i] = row.ann
	}

	stats.OutputRows = len(out)
	return &Result{
		Kind:        KindAnnotated,
		Table:       report,
		Annotations: annotations,
		Stats:       stats,
	}, nil
}

// bind resolves schema columns against the input table and fixes the
// output column order.
func (r *reconciler) bind(t *table.Table) (*layout, error) {
	versionIdx, err := t.Indexes([]string{r.schema.Version})
	if err != nil {
		return nil, err
	}
	identityIdx, err := t.Indexes(r.schema.Identity)
	if err != nil {
		return nil, err
	}
	mergeIdx, err := t.Indexes(r.schema.MergeKey)
	if err != nil {
		return nil, err
	}

	payloadNames := r.schema.Payload(t)
	payloadIdx, err := t.Indexes(payloadNames)
	if err != nil {
		return nil, err
	}

	lay := &layout{
		version:  versionIdx[0],
		identity: identityIdx,
		merge:    mergeIdx,
		payload:  payloadIdx,
	}

	inMerge := make(map[int]bool, len(mergeIdx))
	for _, idx := range mergeIdx {
		inMerge[idx] = true
	}
	for _, idx := range identityIdx {
		if !inMerge[idx] {
			lay.grouping = append(lay.grouping, idx)
		}
	}

	lay.outCols = append(lay.outCols, r.schema.Version)
	lay.outCols = append(lay.outCols, r.schema.Identity...)
	lay.outCols = append(lay.outCols, payloadNames...)
	lay.outCols = append(lay.outCols, r.groupColumn)

	lay.identityOff = 1
	lay.payloadOff = 1 + len(lay.identity)
	lay.groupOff = lay.payloadOff + len(lay.payload)

	return lay, nil
}

// validate enforces row well-formedness and extracts the version ordinal
// for every row. The engine fails fast on the first violation; guessing
// would corrupt grouping.
func (r *reconciler) validate(t *table.Table, lay *layout) ([]int64, error) {
	versions := make([]int64, len(t.Rows))
	for i, row := range t.Rows {
		v, err := versionOf(row[lay.version])
		if err != nil {
			return nil, errors.NewMalformedRowError(i, r.schema.Version, err.Error())
		}
		versions[i] = v

		for k, idx := range lay.identity {
			if row[idx] == nil {
				return nil, errors.NewMalformedRowError(i, r.schema.Identity[k], "identity value is required")
			}
		}
	}
	return versions, nil
}

// versionOf coerces a cell into an integral version ordinal.
func versionOf(v table.Value) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return int64(x), nil
		}
		return 0, errors.New("version is not an integral number")
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, errors.New("version is not numeric")
		}
		return n, nil
	case nil:
		return 0, errors.New("version value is required")
	default:
		return 0, errors.New("version is not numeric")
	}
}

// partition globally sorts rows by (version, identity components) for
// deterministic presentation, then partitions them into groups on the
// grouping columns. Groups come back ordered by their grouping tuples so
// iteration order is a documented total order rather than incidental
// input order.
func (r *reconciler) partition(t *table.Table, lay *layout, versions []int64) []*group {
	order := make([]int, len(t.Rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if versions[i] != versions[j] {
			return versions[i] < versions[j]
		}
		for _, idx := range lay.identity {
			if c := table.Compare(t.Rows[i][idx], t.Rows[j][idx]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	byKey := make(map[string]*group)
	var groups []*group
	for _, i := range order {
		row := t.Rows[i]
		var sb strings.Builder
		for _, idx := range lay.grouping {
			sb.WriteString(table.Key(row[idx]))
			sb.WriteString(keySep)
		}
		key := sb.String()

		g, ok := byKey[key]
		if !ok {
			identity := make(table.Row, len(lay.grouping))
			for k, idx := range lay.grouping {
				identity[k] = row[idx]
			}
			g = &group{identity: identity}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, i)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		for k := range groups[a].identity {
			if c := table.Compare(groups[a].identity[k], groups[b].identity[k]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	return groups
}

// diffGroup produces the report rows for one group: k distinct versions
// yield k-1 consecutive pairs, each diffed via merge-key correspondence.
// Groups with fewer than two versions contribute nothing.
func (r *reconciler) diffGroup(t *table.Table, lay *layout, g *group, versions []int64, stats *Stats) []*outRow {
	byVersion := make(map[int64][]int)
	var distinct []int64
	for _, i := range g.rows {
		v := versions[i]
		if _, ok := byVersion[v]; !ok {
			distinct = append(distinct, v)
		}
		byVersion[v] = append(byVersion[v], i)
	}
	sort.Slice(distinct, func(a, b int) bool { return distinct[a] < distinct[b] })

	if len(distinct) < 2 {
		stats.SingleVersionGroups++
		return nil
	}
	groupMax := distinct[len(distinct)-1]

	var out []*outRow
	for i := 0; i+1 < len(distinct); i++ {
		oldV, newV := distinct[i], distinct[i+1]
		out = append(out, r.diffVersions(t, lay, g, byVersion[oldV], byVersion[newV], oldV, newV, groupMax, stats)...)
	}
	return out
}

// diffVersions computes the full outer join between the old and new
// version subsets on the merge key and emits one DiffPair (two rows) per
// correspondence. Duplicate merge keys within one side fan out to the
// Cartesian product of matches; that is accepted behavior, surfaced via
// Stats rather than raised.
func (r *reconciler) diffVersions(t *table.Table, lay *layout, g *group, oldRows, newRows []int, oldV, newV, groupMax int64, stats *Stats) []*outRow {
	oldByKey, oldOrder := indexByMergeKey(t, lay, oldRows)
	newByKey, newOrder := indexByMergeKey(t, lay, newRows)

	var out []*outRow
	emit := func(oldSide, newSide *outRow) {
		stats.Pairs++
		out = append(out, oldSide, newSide)
	}

	for _, key := range oldOrder {
		olds := oldByKey[key]
		news, both := newByKey[key]
		if both {
			if n := len(olds) * len(news); n > 1 {
				stats.DuplicateKeyFanouts += n - 1
			}
			for _, o := range olds {
				for _, n := range news {
					oldSide := r.sideRow(t, lay, g, o, oldV)
					newSide := r.sideRow(t, lay, g, n, newV)
					r.classify(lay, oldSide, newSide, newV == groupMax)
					emit(oldSide, newSide)
				}
			}
			continue
		}

		// left_only: the old row is taken as-is, the new side is
		// synthesized with all payload missing.
		if len(olds) > 1 {
			stats.DuplicateKeyFanouts += len(olds) - 1
		}
		for _, o := range olds {
			emit(r.sideRow(t, lay, g, o, oldV), r.missingRow(t, lay, g, o, newV))
		}
	}

	for _, key := range newOrder {
		if _, both := oldByKey[key]; both {
			continue
		}
		news := newByKey[key]
		if len(news) > 1 {
			stats.DuplicateKeyFanouts += len(news) - 1
		}
		for _, n := range news {
			emit(r.missingRow(t, lay, g, n, oldV), r.sideRow(t, lay, g, n, newV))
		}
	}

	return out
}

// indexByMergeKey buckets row indexes by their merge-key tuple, keeping
// first-appearance key order for deterministic join traversal.
func indexByMergeKey(t *table.Table, lay *layout, rows []int) (map[string][]int, []string) {
	byKey := make(map[string][]int, len(rows))
	var order []string
	for _, i := range rows {
		var sb strings.Builder
		for _, idx := range lay.merge {
			sb.WriteString(table.Key(t.Rows[i][idx]))
			sb.WriteString(keySep)
		}
		key := sb.String()
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], i)
	}
	return byKey, order
}

// sideRow materializes one side of a DiffPair from an existing input row.
// Null payload cells are annotated missing; everything else starts
// unannotated and may be upgraded to changed by classify.
func (r *reconciler) sideRow(t *table.Table, lay *layout, g *group, rowIdx int, version int64) *outRow {
	row := t.Rows[rowIdx]
	or := r.newOutRow(lay, g, version)

	for k, idx := range lay.identity {
		v := row[idx]
		or.cells[lay.identityOff+k] = v
		num, _ := table.Numeric(v)
		or.sortKey[1+k] = num
	}
	for k, idx := range lay.payload {
		v := row[idx]
		or.cells[lay.payloadOff+k] = v
		if v == nil {
			or.ann[lay.payloadOff+k] = AnnotationMissing
		}
	}

	return or
}

// missingRow synthesizes the absent side of a one-sided correspondence.
// Identity columns are shared by construction (grouping values across the
// group, merge-key values within the correspondence), so they are copied
// from the counterpart row unannotated; every payload cell is missing.
func (r *reconciler) missingRow(t *table.Table, lay *layout, g *group, counterpart int, version int64) *outRow {
	row := t.Rows[counterpart]
	or := r.newOutRow(lay, g, version)

	for k, idx := range lay.identity {
		v := row[idx]
		or.cells[lay.identityOff+k] = v
		num, _ := table.Numeric(v)
		or.sortKey[1+k] = num
	}
	for k := range lay.payload {
		or.ann[lay.payloadOff+k] = AnnotationMissing
	}
	return or
}

// newOutRow allocates a report row with its version, group back-reference,
// and the typed sort key for final normalization. Identity components of
// the sort key default to +Inf until the caller fills them in.
func (r *reconciler) newOutRow(lay *layout, g *group, version int64) *outRow {
	n := len(lay.outCols)
	or := &outRow{
		cells: make(table.Row, n),
		ann:   make([]Annotation, n),
	}
	or.cells[0] = version
	or.cells[lay.groupOff] = groupRef(g.identity)

	or.sortKey = make([]float64, 1+len(lay.identity))
	or.sortKey[0] = float64(version)
	for k := 1; k < len(or.sortKey); k++ {
		or.sortKey[k] = math.Inf(1)
	}
	return or
}

// classify applies the three-way field classification to a both-sided
// correspondence. The newest version in a group is never marked changed
// on its own side: its value will become the old side of a later
// comparison and would otherwise be annotated twice.
func (r *reconciler) classify(lay *layout, oldSide, newSide *outRow, newIsMax bool) {
	for k := range lay.payload {
		name := lay.outCols[lay.payloadOff+k]
		if r.ignoreFields[name] {
			continue
		}

		pos := lay.payloadOff + k
		vo := oldSide.cells[pos]
		vn := newSide.cells[pos]

		switch {
		case vo == nil && vn != nil:
			// a value newly appeared from a previously-missing state
			newSide.ann[pos] = AnnotationChanged
		case vn == nil && vo != nil:
			// a value disappeared
			oldSide.ann[pos] = AnnotationChanged
		case vo != nil && vn != nil && !table.Equal(vo, vn):
			oldSide.ann[pos] = AnnotationChanged
			if !newIsMax {
				newSide.ann[pos] = AnnotationChanged
			}
		}
	}
}

// groupRef renders the grouping tuple as the back-reference carried on
// every report row.
func groupRef(identity table.Row) string {
	parts := make([]string, len(identity))
	for i, v := range identity {
		parts[i] = table.Format(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// lessKeys orders sort keys lexicographically. Non-numeric components
// were projected to +Inf at row creation, so they sort last.
func lessKeys(a, b []float64) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
