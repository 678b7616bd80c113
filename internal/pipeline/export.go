package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"flowprep/internal/config"
	"flowprep/internal/storage"
	"flowprep/internal/table"
	"flowprep/internal/transformer/builtin"
)

// Output table names, before storage.table_prefix is applied.
const (
	TableReduced = "reduced"
	TableXTrain  = "x_train"
	TableYTrain  = "y_train"
	TableXTest   = "x_test"
	TableYTest   = "y_test"
)

// Artifact file names inside artifacts.dir.
const (
	LabelEncodingFile = "label_encoding.json"
	ScalingFile       = "scaling.json"
	ReportFile        = "report.json"
)

// NamedTable pairs an output table with its name.
type NamedTable struct {
	Name  string
	Table *table.Table
}

// Tables returns the five output tables in write order.
func (r *Result) Tables() []NamedTable {
	return []NamedTable{
		{TableReduced, r.Reduced},
		{TableXTrain, r.Dataset.TrainX},
		{TableYTrain, r.Dataset.TrainY},
		{TableXTest, r.Dataset.TestX},
		{TableYTest, r.Dataset.TestY},
	}
}

// Report is the run summary written next to the replay artifacts.
type Report struct {
	Job        string                    `json:"job"`
	HadMissing []string                  `json:"had_missing"`
	Eliminated builtin.EliminationReport `json:"eliminated"`
	Features   []string                  `json:"features"`
	TrainRows  int                       `json:"train_rows"`
	TestRows   int                       `json:"test_rows"`
}

// Export writes the output tables to the configured storage and the replay
// artifacts to artifacts.dir. Either is skipped when unconfigured.
func Export(ctx context.Context, p config.Pipeline, res *Result) error {
	if p.Storage.Kind != "" {
		if err := WriteTables(ctx, p, res); err != nil {
			return err
		}
	}
	if p.Artifacts.Dir != "" {
		if err := WriteArtifacts(p.Artifacts.Dir, p.Job, res); err != nil {
			return err
		}
	}
	return nil
}

// WriteTables writes the five output tables through the storage factory,
// one table at a time.
func WriteTables(ctx context.Context, p config.Pipeline, res *Result) error {
	sink := storage.Sink{
		Kind:            p.Storage.Kind,
		DSN:             p.Storage.DSN,
		TablePrefix:     p.Storage.TablePrefix,
		AutoCreateTable: p.Storage.AutoCreateTable,
		Options: storage.WriteOptions{
			Job:           p.Job,
			BatchSize:     p.Storage.BatchSize,
			ChannelBuffer: p.Runtime.ChannelBuffer,
		},
	}
	for _, nt := range res.Tables() {
		if _, err := sink.Write(ctx, nt.Name, nt.Table); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	return nil
}

// WriteArtifacts writes the label encoding, the scaling parameters and the
// run report as indented JSON into dir, creating it if needed.
func WriteArtifacts(dir, job string, res *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("artifacts: %w", err)
	}
	ds := res.Dataset
	files := []struct {
		name string
		v    any
	}{
		{LabelEncodingFile, ds.Encoding},
		{ScalingFile, ds.Scaling},
		{ReportFile, Report{
			Job:        job,
			HadMissing: res.HadMissing,
			Eliminated: res.Report,
			Features:   ds.Scaling.Names,
			TrainRows:  ds.TrainX.NumRows(),
			TestRows:   ds.TestX.NumRows(),
		}},
	}
	for _, f := range files {
		b, err := json.MarshalIndent(f.v, "", "  ")
		if err != nil {
			return fmt.Errorf("artifacts: %s: %w", f.name, err)
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
			return fmt.Errorf("artifacts: %w", err)
		}
		log.Printf("artifacts: wrote %s (%d bytes)", path, len(b)+1)
	}
	return nil
}

// ReadLabelEncoding loads a label encoding written by WriteArtifacts.
func ReadLabelEncoding(dir string) (builtin.LabelEncoding, error) {
	var enc builtin.LabelEncoding
	err := readJSON(filepath.Join(dir, LabelEncodingFile), &enc)
	return enc, err
}

// ReadScaling loads scaling parameters written by WriteArtifacts.
func ReadScaling(dir string) (builtin.ScalingParameters, error) {
	var sp builtin.ScalingParameters
	err := readJSON(filepath.Join(dir, ScalingFile), &sp)
	return sp, err
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("artifacts: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("artifacts: %s: %w", path, err)
	}
	return nil
}
