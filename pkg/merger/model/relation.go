package model

import "fmt"

// RelationKind selects the merge strategy.
type RelationKind string

const (
	// RelationSimple concatenates same-named sheets across datasets.
	RelationSimple RelationKind = "simple"
	// RelationSingle joins every dataset against dataset[0]'s reference field.
	RelationSingle RelationKind = "single"
	// RelationChain joins datasets along an ordered list of directed edges.
	RelationChain RelationKind = "chain"
	// RelationStar joins spoke datasets onto one center dataset.
	RelationStar RelationKind = "star"
)

// ChainEdge is one directed join in a chain relation.
type ChainEdge struct {
	SourceID    string `json:"source_id" yaml:"source"`
	TargetID    string `json:"target_id" yaml:"target"`
	SourceField string `json:"source_field" yaml:"source_field"`
	TargetField string `json:"target_field" yaml:"target_field"`
}

// Spoke is one dataset joined directly onto the center of a star relation.
type Spoke struct {
	RelatedID    string `json:"related_id" yaml:"related"`
	CenterField  string `json:"center_field" yaml:"center_field"`
	RelatedField string `json:"related_field" yaml:"related_field"`
}

// RelationSpec is the tagged configuration describing how datasets relate.
// Exactly one variant's fields are consulted, selected by Kind.
type RelationSpec struct {
	Kind RelationKind `json:"kind" yaml:"kind"`

	// SelectedSheets lists the sheet names to merge (Simple only).
	SelectedSheets []string `json:"selected_sheets,omitempty" yaml:"sheets,omitempty"`
	// RefFields maps dataset ID to its reference field (Single only).
	RefFields map[string]string `json:"ref_fields,omitempty" yaml:"ref_fields,omitempty"`
	// Edges is the ordered join list (Chain only).
	Edges []ChainEdge `json:"edges,omitempty" yaml:"edges,omitempty"`
	// CenterID names the center dataset (Star only).
	CenterID string `json:"center_id,omitempty" yaml:"center,omitempty"`
	// Spokes is the ordered spoke list (Star only).
	Spokes []Spoke `json:"spokes,omitempty" yaml:"spokes,omitempty"`
}

// ValidationError reports configuration rejected before any join runs.
type ValidationError struct {
	Dataset string
	Field   string
	Msg     string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Dataset != "" && e.Field != "":
		return fmt.Sprintf("invalid relation: dataset %q field %q: %s", e.Dataset, e.Field, e.Msg)
	case e.Dataset != "":
		return fmt.Sprintf("invalid relation: dataset %q: %s", e.Dataset, e.Msg)
	default:
		return fmt.Sprintf("invalid relation: %s", e.Msg)
	}
}

// Validate checks the relation against the registered datasets. Every referenced
// dataset ID and field must exist, and the variant's collection fields must be
// non-empty. Datasets themselves are not modified.
func (s *RelationSpec) Validate(datasets []Dataset) error {
	if len(datasets) == 0 {
		return &ValidationError{Msg: "no datasets registered"}
	}
	byID := make(map[string]*Dataset, len(datasets))
	for i := range datasets {
		byID[datasets[i].ID] = &datasets[i]
	}

	switch s.Kind {
	case RelationSimple:
		if len(s.SelectedSheets) == 0 {
			return &ValidationError{Msg: "simple relation selects zero sheets"}
		}
	case RelationSingle:
		for _, d := range datasets {
			field, ok := s.RefFields[d.ID]
			if !ok {
				return &ValidationError{Dataset: d.ID, Msg: "no reference field declared"}
			}
			if err := requireField(byID, d.ID, field); err != nil {
				return err
			}
		}
	case RelationChain:
		if len(s.Edges) == 0 {
			return &ValidationError{Msg: "chain relation has zero edges"}
		}
		for _, e := range s.Edges {
			if err := requireField(byID, e.SourceID, e.SourceField); err != nil {
				return err
			}
			if err := requireField(byID, e.TargetID, e.TargetField); err != nil {
				return err
			}
		}
	case RelationStar:
		if len(s.Spokes) == 0 {
			return &ValidationError{Msg: "star relation has zero spokes"}
		}
		if _, ok := byID[s.CenterID]; !ok {
			return &ValidationError{Dataset: s.CenterID, Msg: "unknown center dataset"}
		}
		for _, sp := range s.Spokes {
			if err := requireField(byID, s.CenterID, sp.CenterField); err != nil {
				return err
			}
			if err := requireField(byID, sp.RelatedID, sp.RelatedField); err != nil {
				return err
			}
		}
	default:
		return &ValidationError{Msg: fmt.Sprintf("unknown relation kind %q", s.Kind)}
	}
	return nil
}

func requireField(byID map[string]*Dataset, id, field string) error {
	d, ok := byID[id]
	if !ok {
		return &ValidationError{Dataset: id, Msg: "unknown dataset"}
	}
	if field == "" {
		return &ValidationError{Dataset: id, Msg: "empty field name"}
	}
	if !d.HasColumn(field) {
		return &ValidationError{Dataset: id, Field: field, Msg: "field not present in dataset columns"}
	}
	return nil
}
