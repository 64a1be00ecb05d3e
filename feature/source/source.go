package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"datarec/core/errors"
	"datarec/core/frame"
	"datarec/core/storage"
	"datarec/core/utils"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ErrLoad marks failures that happened while reading a source.
var ErrLoad = errors.New("source load failed")

// Type selects a source backend.
type Type string

const (
	TypeCSV    Type = "csv"
	TypeXLSX   Type = "xlsx"
	TypeSQL    Type = "sql"
	TypeObject Type = "object"
)

// Source produces a keyed table.
type Source interface {
	Load(ctx context.Context) (*frame.Table, error)
}

// Spec describes one side of a job.
type Spec struct {
	Type Type `yaml:"type" json:"type" validate:"required,oneof=csv xlsx sql object"`
	// Path is the file for csv and xlsx sources, relative to the job file.
	Path string `yaml:"path,omitempty" json:"path,omitempty" validate:"required_if=Type csv,required_if=Type xlsx"`
	// Sheet selects a workbook sheet. Empty means the first one.
	Sheet string `yaml:"sheet,omitempty" json:"sheet,omitempty"`
	// Query is the SQL statement of a sql source.
	Query string `yaml:"query,omitempty" json:"query,omitempty"`
	// Table reads a whole table instead of a query.
	Table string `yaml:"table,omitempty" json:"table,omitempty"`
	// Bucket overrides the configured storage bucket.
	Bucket string `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	// Object is the object name of an object source.
	Object string `yaml:"object,omitempty" json:"object,omitempty" validate:"required_if=Type object"`
	// Format is csv or xlsx. Empty uses the file extension.
	Format     string                `yaml:"format,omitempty" json:"format,omitempty" validate:"omitempty,oneof=csv xlsx"`
	Key        []string              `yaml:"key" json:"key" validate:"min=1,dive,required"`
	Types      map[string]frame.Kind `yaml:"types,omitempty" json:"types,omitempty" validate:"dive,keys,required,endkeys,oneof=string int float bool time"`
	TimeLayout string                `yaml:"time_layout,omitempty" json:"time_layout,omitempty"`
}

// Validate checks the spec without touching any backend.
func (s Spec) Validate() error {
	if err := utils.ValidateStruct(s); err != nil {
		return err
	}
	if s.Type == TypeSQL {
		switch {
		case s.Query == "" && s.Table == "":
			return errors.NewArgumentError("query", "", "a sql source needs a query or a table")
		case s.Query != "" && s.Table != "":
			return errors.NewArgumentError("table", s.Table, "cannot be combined with query")
		}
	}
	return nil
}

// Env carries the shared backends sources are opened against.
type Env struct {
	DB      *gorm.DB
	Storage storage.Client
	// Bucket is the default bucket for object sources.
	Bucket string
	// BaseDir resolves relative file paths.
	BaseDir string
}

// Open validates spec and returns the matching source.
func (e Env) Open(spec Spec) (Source, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	switch spec.Type {
	case TypeCSV:
		return &CSV{Path: e.resolve(spec.Path), Spec: spec}, nil
	case TypeXLSX:
		return &XLSX{Path: e.resolve(spec.Path), Spec: spec}, nil
	case TypeSQL:
		if e.DB == nil {
			return nil, errors.NewConfigError("source", "sql source requires a database connection", nil)
		}
		return NewSQL(e.DB, spec), nil
	case TypeObject:
		if e.Storage == nil {
			return nil, errors.NewConfigError("source", "object source requires a storage client", nil)
		}
		bucket := spec.Bucket
		if bucket == "" {
			bucket = e.Bucket
		}
		return NewObject(e.Storage, bucket, spec), nil
	}
	return nil, errors.NewArgumentError("type", spec.Type, "unknown source type")
}

func (e Env) resolve(path string) string {
	if filepath.IsAbs(path) || e.BaseDir == "" {
		return path
	}
	return filepath.Join(e.BaseDir, path)
}

// LoadPair loads the baseline and candidate concurrently. The first failure
// cancels the other load.
func LoadPair(ctx context.Context, baseline, candidate Source) (*frame.Table, *frame.Table, error) {
	var b, c *frame.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := baseline.Load(gctx)
		if err != nil {
			return fmt.Errorf("%w: baseline: %w", ErrLoad, err)
		}
		b = t
		return nil
	})
	g.Go(func() error {
		t, err := candidate.Load(gctx)
		if err != nil {
			return fmt.Errorf("%w: candidate: %w", ErrLoad, err)
		}
		c = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return b, c, nil
}

// formatOf returns the file format of name, preferring an explicit format.
func formatOf(explicit, name string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return "csv", nil
	case ".xlsx", ".xlsm":
		return "xlsx", nil
	default:
		return "", errors.NewArgumentError("format", ext, "cannot infer format, set csv or xlsx")
	}
}

// fromText converts rows of text cells into a keyed table. Short rows are
// padded with nulls.
func fromText(header []string, rows [][]string, spec Spec) (*frame.Table, error) {
	if err := checkTypes(header, spec.Types); err != nil {
		return nil, err
	}
	kinds := make([]frame.Kind, len(header))
	for j, h := range header {
		kinds[j] = spec.Types[h]
	}
	records := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, errors.NewShapeError(fmt.Sprintf("row %d", i+1),
				fmt.Sprintf("has %d fields, header has %d", len(row), len(header)))
		}
		rec := make([]any, len(header))
		for j, raw := range row {
			v, err := frame.Parse(kinds[j], raw, spec.TimeLayout)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, header[j], err)
			}
			rec[j] = v
		}
		records[i] = rec
	}
	return frame.FromRecords(header, records, spec.Key...)
}

func checkTypes(header []string, types map[string]frame.Kind) error {
	for col := range types {
		found := false
		for _, h := range header {
			if h == col {
				found = true
				break
			}
		}
		if !found {
			return errors.NewNotFoundError("typed column", col)
		}
	}
	return nil
}
