package merger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
)

// Engine drives the merge strategies. It holds no state between calls;
// construct once and reuse, but never share one in-progress call's output
// handle across goroutines.
type Engine struct {
	reader TableReader
	opts   Options
	log    *zap.SugaredLogger
}

// New returns an engine reading sources through reader.
func New(reader TableReader, opts Options) *Engine {
	return &Engine{
		reader: reader,
		opts:   opts,
		log:    opts.logger(),
	}
}

// Validate checks a relation spec against the registered datasets without
// executing any join.
func (e *Engine) Validate(spec *model.RelationSpec, datasets []model.Dataset) error {
	return spec.Validate(datasets)
}

// Merge executes one of the relational strategies (single, chain, star) and
// returns the merged table projected onto outputColumns, alongside a report
// of non-fatal findings. The simple strategy produces one table per sheet and
// goes through MergeSimple instead.
func (e *Engine) Merge(ctx context.Context, spec *model.RelationSpec, datasets []model.Dataset, outputColumns []string) (*model.MergeTable, *Report, error) {
	report := &Report{}
	if err := spec.Validate(datasets); err != nil {
		return nil, report, err
	}
	if len(outputColumns) == 0 {
		return nil, report, &model.ValidationError{Msg: "no output columns requested"}
	}
	if spec.Kind == model.RelationSimple {
		return nil, report, &model.ValidationError{Msg: "simple relation produces per-sheet tables; use MergeSimple"}
	}

	// One step for validation, one per dataset read, one per join.
	steps := newStepper(2*len(datasets), e.opts)
	steps.step(StageValidate, "relation %s validated over %d datasets", spec.Kind, len(datasets))

	tables := make(map[string]*model.MergeTable, len(datasets))
	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		t, err := e.readDataset(ds)
		if err != nil {
			// Relational strategies depend on every dataset; a failed read
			// is fatal here, unlike the simple workflow.
			return nil, report, err
		}
		tables[ds.ID] = t
		steps.step(StageRead, "read dataset %s (%d rows)", ds.ID, t.RowCount())
	}

	var (
		result *model.MergeTable
		err    error
	)
	switch spec.Kind {
	case model.RelationSingle:
		result, err = e.mergeSingle(ctx, spec, datasets, tables, steps)
	case model.RelationChain:
		result, err = e.mergeChain(ctx, spec, datasets, tables, steps, report)
	case model.RelationStar:
		result, err = e.mergeStar(ctx, spec, datasets, tables, steps)
	default:
		err = &model.ValidationError{Msg: fmt.Sprintf("unknown relation kind %q", spec.Kind)}
	}
	if err != nil {
		return nil, report, err
	}

	projected, err := projectColumns(result, outputColumns)
	if err != nil {
		return nil, report, err
	}
	e.log.Infow("merge complete",
		"kind", spec.Kind,
		"rows", projected.RowCount(),
		"columns", len(projected.Columns))
	return projected, report, nil
}

// readDataset loads the dataset's primary (first) sheet as a table.
func (e *Engine) readDataset(ds model.Dataset) (*model.MergeTable, error) {
	sheets, err := e.reader.ListSheets(ds.Source)
	if err != nil {
		return nil, &ReadError{Dataset: ds.ID, Err: err}
	}
	if len(sheets) == 0 {
		return nil, &ReadError{Dataset: ds.ID, Err: fmt.Errorf("source has no sheets")}
	}
	header, err := e.reader.ReadHeader(ds.Source, sheets[0])
	if err != nil {
		return nil, &ReadError{Dataset: ds.ID, Sheet: sheets[0], Err: err}
	}
	rows, err := e.reader.ReadRows(ds.Source, sheets[0])
	if err != nil {
		return nil, &ReadError{Dataset: ds.ID, Sheet: sheets[0], Err: err}
	}
	t := model.NewMergeTable(header)
	t.Rows = rows
	return t, nil
}

// mergeSingle joins every dataset after the first against the accumulated
// copy of dataset[0]'s reference field, full outer semantics.
func (e *Engine) mergeSingle(ctx context.Context, spec *model.RelationSpec, datasets []model.Dataset, tables map[string]*model.MergeTable, steps *stepper) (*model.MergeTable, error) {
	base := datasets[0]
	acc := tables[base.ID]
	baseField := spec.RefFields[base.ID]

	for _, ds := range datasets[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		refField := spec.RefFields[ds.ID]
		acc = e.joinInto(acc, tables[ds.ID], ds, baseField, refField)
		steps.step(StageJoin, "joined dataset %s on %s=%s", ds.ID, baseField, refField)
	}
	return acc, nil
}

// mergeChain walks the edge list from edges[0]'s source, consuming any edge
// whose source is merged and target is not. A full no-progress scan triggers
// the cross-join fallback for one disconnected dataset; residual edges that
// only point at already-merged datasets are dropped with a warning.
func (e *Engine) mergeChain(ctx context.Context, spec *model.RelationSpec, datasets []model.Dataset, tables map[string]*model.MergeTable, steps *stepper, report *Report) (*model.MergeTable, error) {
	byID := make(map[string]model.Dataset, len(datasets))
	for _, ds := range datasets {
		byID[ds.ID] = ds
	}

	rootID := spec.Edges[0].SourceID
	merged := map[string]bool{rootID: true}
	acc := tables[rootID]
	remaining := append([]model.ChainEdge(nil), spec.Edges...)

	for len(merged) < len(datasets) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		progress := false
		// Scan a snapshot; commit removals only after the pass so the list
		// being iterated is never mutated live.
		snapshot := append([]model.ChainEdge(nil), remaining...)
		consumed := make(map[int]bool)
		for i, edge := range snapshot {
			if !merged[edge.SourceID] || merged[edge.TargetID] {
				continue
			}
			ds := byID[edge.TargetID]
			acc = e.joinInto(acc, tables[edge.TargetID], ds, edge.SourceField, edge.TargetField)
			merged[edge.TargetID] = true
			consumed[i] = true
			progress = true
			steps.step(StageJoin, "joined dataset %s on %s=%s", edge.TargetID, edge.SourceField, edge.TargetField)
		}
		if progress {
			next := remaining[:0]
			for i, edge := range snapshot {
				if !consumed[i] {
					next = append(next, edge)
				}
			}
			remaining = next
			continue
		}

		// No edge connects the merged set to an unmerged dataset. Fall back
		// to a cross join for one of them, which can be combinatorially
		// explosive.
		ds, ok := firstUnmerged(datasets, merged)
		if !ok {
			return nil, fmt.Errorf("%w: no unmerged dataset for fallback", ErrUnresolvableGraph)
		}
		if limit := e.opts.CrossJoinLimit; limit > 0 && acc.RowCount()*tables[ds.ID].RowCount() > limit {
			return nil, fmt.Errorf("%w: dataset %q would produce %d rows",
				ErrCrossJoinLimit, ds.ID, acc.RowCount()*tables[ds.ID].RowCount())
		}
		report.warnf("dataset %q has no join path to the merged set; applying cross join (%d x %d rows)",
			ds.ID, acc.RowCount(), tables[ds.ID].RowCount())
		e.log.Warnw("cross join fallback",
			"dataset", ds.ID,
			"accumulatedRows", acc.RowCount(),
			"datasetRows", tables[ds.ID].RowCount())
		acc = e.crossInto(acc, tables[ds.ID], ds)
		merged[ds.ID] = true
		steps.step(StageJoin, "cross joined dataset %s", ds.ID)
	}

	if len(remaining) > 0 {
		report.warnf("dropping %d unresolved edges pointing only at already-merged datasets", len(remaining))
		e.log.Warnw("dropping residual edges", "count", len(remaining))
	}
	return acc, nil
}

// mergeStar seeds the result with the center dataset and outer-joins each
// spoke in declared order. Spoke order affects column ordering only.
func (e *Engine) mergeStar(ctx context.Context, spec *model.RelationSpec, datasets []model.Dataset, tables map[string]*model.MergeTable, steps *stepper) (*model.MergeTable, error) {
	byID := make(map[string]model.Dataset, len(datasets))
	for _, ds := range datasets {
		byID[ds.ID] = ds
	}

	acc := tables[spec.CenterID]
	for _, spoke := range spec.Spokes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds := byID[spoke.RelatedID]
		acc = e.joinInto(acc, tables[spoke.RelatedID], ds, spoke.CenterField, spoke.RelatedField)
		steps.step(StageJoin, "joined spoke %s on %s=%s", spoke.RelatedID, spoke.CenterField, spoke.RelatedField)
	}
	return acc, nil
}

// joinInto conflict-resolves the incoming table's columns against acc and
// outer-joins it in on (accField, refField).
func (e *Engine) joinInto(acc, incoming *model.MergeTable, ds model.Dataset, accField, refField string) *model.MergeTable {
	mapping := ResolveColumns(acc.ColumnSet(), incoming.Columns, refField, NamePrefix(ds.DisplayName))
	renamed := &model.MergeTable{
		Columns: renameColumns(incoming.Columns, mapping),
		Rows:    renameRows(incoming.Rows, mapping),
	}
	return outerJoin(acc, renamed, accField, mapping[refField])
}

// crossInto conflict-resolves (no join key) and applies a Cartesian join.
func (e *Engine) crossInto(acc, incoming *model.MergeTable, ds model.Dataset) *model.MergeTable {
	mapping := ResolveColumns(acc.ColumnSet(), incoming.Columns, "", NamePrefix(ds.DisplayName))
	renamed := &model.MergeTable{
		Columns: renameColumns(incoming.Columns, mapping),
		Rows:    renameRows(incoming.Rows, mapping),
	}
	return crossJoin(acc, renamed)
}

func firstUnmerged(datasets []model.Dataset, merged map[string]bool) (model.Dataset, bool) {
	for _, ds := range datasets {
		if !merged[ds.ID] {
			return ds, true
		}
	}
	return model.Dataset{}, false
}

// projectColumns maps each requested logical name to its possibly-renamed
// actual column and returns a table holding those columns, in request order,
// under the requested names. Requested names that resolve nowhere are
// skipped; zero resolved columns is a validation failure.
func projectColumns(t *model.MergeTable, requested []string) (*model.MergeTable, error) {
	type pick struct{ logical, actual string }
	var picks []pick
	for _, name := range requested {
		if actual, ok := matchOutputColumn(name, t.Columns); ok {
			picks = append(picks, pick{logical: name, actual: actual})
		}
	}
	if len(picks) == 0 {
		return nil, fmt.Errorf("%w: requested %v", ErrNoOutputColumns, requested)
	}

	columns := make([]string, len(picks))
	for i, p := range picks {
		columns[i] = p.logical
	}
	out := model.NewMergeTable(columns)
	out.Rows = make([]model.Row, len(t.Rows))
	for i, row := range t.Rows {
		r := make(model.Row, len(picks))
		for _, p := range picks {
			if v, ok := row[p.actual]; ok {
				r[p.logical] = v
			}
		}
		out.Rows[i] = r
	}
	return out, nil
}
