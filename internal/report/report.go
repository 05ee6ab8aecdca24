// Package report writes a YAML record of a batch run.
package report

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/shamspias/shrink"
)

// Report is the document written after a batch.
type Report struct {
	RunID      string              `yaml:"run_id"`
	StartedAt  time.Time           `yaml:"started_at"`
	FinishedAt time.Time           `yaml:"finished_at"`
	InputDir   string              `yaml:"input_dir"`
	OutputDir  string              `yaml:"output_dir"`
	Format     shrink.Format       `yaml:"format"`
	TargetKB   float64             `yaml:"target_kb,omitempty"`
	Summary    shrink.BatchSummary `yaml:"summary"`
	Files      []File              `yaml:"files"`
}

// File is one entry per batch item.
type File struct {
	Input     string  `yaml:"input"`
	Output    string  `yaml:"output,omitempty"`
	OK        bool    `yaml:"ok"`
	Error     string  `yaml:"error,omitempty"`
	Original  int64   `yaml:"original_bytes,omitempty"`
	Final     int64   `yaml:"final_bytes,omitempty"`
	Quality   int     `yaml:"quality,omitempty"`
	Scale     float64 `yaml:"scale,omitempty"`
	MetTarget bool    `yaml:"met_target"`
	Reduction float64 `yaml:"reduction,omitempty"`
}

// Files converts batch results into report entries, preserving order.
func Files(results []shrink.BatchResult) []File {
	files := make([]File, 0, len(results))
	for _, r := range results {
		f := File{Input: r.Item.Src, Output: r.Item.Dst, OK: r.Err == nil}
		if r.Err != nil {
			f.Error = r.Err.Error()
			f.Output = ""
		} else if r.Result != nil {
			f.Output = r.Result.Output
			f.Original = r.Result.OriginalSize
			f.Final = r.Result.FinalSize
			f.Reduction = r.Result.Reduction
			if o := r.Result.Outcome; o != nil {
				f.Quality = o.Quality
				f.Scale = o.Scale
				f.MetTarget = o.MetTarget
			}
		}
		files = append(files, f)
	}
	return files
}

// Write encodes rep as YAML to path.
func Write(fs afero.Fs, path string, rep *Report) error {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write report %q: %w", path, err)
	}
	return nil
}

// Read decodes a report previously written by Write.
func Read(fs afero.Fs, path string) (*Report, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read report %q: %w", path, err)
	}
	var rep Report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &rep, nil
}
