// Package jobspec loads a declarative YAML description of a merge job:
// the datasets, the relation between them and the requested output columns.
package jobspec

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/DaJu-Duck/excel-merger/pkg/merger"
	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
)

// DatasetSpec declares one input source.
type DatasetSpec struct {
	// ID is the identifier the relation refers to. Defaults to the file
	// name without extension when omitted.
	ID string `yaml:"id"`
	// Name is the display name. Defaults to the file base name.
	Name string `yaml:"name"`
	// Path is the source file path.
	Path string `yaml:"path"`
}

// Job is a complete merge job description.
type Job struct {
	// Output is the path the merged workbook is written to.
	Output string `yaml:"output"`
	// Columns lists the requested output columns for relational strategies.
	Columns []string `yaml:"columns"`
	// Datasets lists the input sources in order; order matters for the
	// single strategy (the first dataset is the base) and for append.
	Datasets []DatasetSpec `yaml:"datasets"`
	// Relation declares how the datasets relate.
	Relation model.RelationSpec `yaml:"relation"`
}

// Load reads and decodes a job file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}
	if len(job.Datasets) == 0 {
		return nil, fmt.Errorf("job file %s declares no datasets", path)
	}
	for i := range job.Datasets {
		d := &job.Datasets[i]
		if d.Path == "" {
			return nil, fmt.Errorf("job file %s: dataset %d has no path", path, i)
		}
		if d.Name == "" {
			d.Name = filepath.Base(d.Path)
		}
		if d.ID == "" {
			d.ID = merger.NamePrefix(d.Name)
		}
	}
	return &job, nil
}

// Build registers the job's datasets, reading each source's primary sheet
// header through reader to populate the column sets relation validation
// checks against.
func (j *Job) Build(reader merger.TableReader) ([]model.Dataset, error) {
	datasets := make([]model.Dataset, 0, len(j.Datasets))
	for _, spec := range j.Datasets {
		sheets, err := reader.ListSheets(spec.Path)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", spec.ID, err)
		}
		var columns []string
		if len(sheets) > 0 {
			columns, err = reader.ReadHeader(spec.Path, sheets[0])
			if err != nil {
				return nil, fmt.Errorf("dataset %q: %w", spec.ID, err)
			}
		}
		datasets = append(datasets, model.Dataset{
			ID:          spec.ID,
			DisplayName: spec.Name,
			Source:      spec.Path,
			Columns:     columns,
		})
	}
	return datasets, nil
}
