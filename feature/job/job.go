package job

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"datarec/core/errors"
	"datarec/core/reconcile"
	"datarec/core/utils"
	"datarec/feature/source"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Check names accepted in a column rule.
const (
	CheckSkip   = "skip"
	CheckEqual  = "equal"
	CheckAbsTol = "abs_tol"
	CheckRelTol = "rel_tol"
)

// Job is one reconciliation job file.
type Job struct {
	Name           string      `yaml:"name,omitempty" json:"name"`
	Description    string      `yaml:"description,omitempty" json:"description,omitempty"`
	Baseline       source.Spec `yaml:"baseline" json:"baseline"`
	Candidate      source.Spec `yaml:"candidate" json:"candidate"`
	OrderBy        string      `yaml:"order_by,omitempty" json:"order_by,omitempty"`
	CheckAll       *bool       `yaml:"check_all,omitempty" json:"check_all,omitempty"`
	Presence       Presence    `yaml:"presence,omitempty" json:"presence,omitempty"`
	DisplayRows    int         `yaml:"display_rows,omitempty" json:"display_rows,omitempty" validate:"gte=0"`
	RaiseOnFailure bool        `yaml:"raise_on_failure,omitempty" json:"raise_on_failure,omitempty"`
	Columns        ColumnRules `yaml:"columns,omitempty" json:"columns,omitempty" validate:"dive"`

	// dir resolves relative source paths.
	dir string
}

// Presence toggles the key presence checks. Both default to on.
type Presence struct {
	Missing *bool `yaml:"missing,omitempty" json:"missing,omitempty"`
	Extra   *bool `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// ColumnRule configures the check for one column or column pattern.
type ColumnRule struct {
	Column string              `yaml:"-" json:"column" validate:"required"`
	Check  string              `yaml:"check" json:"check" validate:"required,oneof=skip equal abs_tol rel_tol"`
	Tol    *float64            `yaml:"tol,omitempty" json:"tol,omitempty"`
	Sort   reconcile.SortOrder `yaml:"sort,omitempty" json:"sort,omitempty" validate:"omitempty,oneof=asc desc"`
	Regex  bool                `yaml:"regex,omitempty" json:"regex,omitempty"`
}

// ColumnRules is the ordered columns mapping of a job.
type ColumnRules []ColumnRule

// UnmarshalYAML reads the mapping in document order. A rule is either a
// bare check name or a mapping of check fields.
func (r *ColumnRules) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: columns must be a mapping", node.Line)
	}
	rules := make(ColumnRules, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		var rule ColumnRule
		switch v.Kind {
		case yaml.ScalarNode:
			rule.Check = v.Value
		case yaml.MappingNode:
			if err := v.Decode(&rule); err != nil {
				return err
			}
		default:
			return fmt.Errorf("line %d: rule for %q must be a check name or a mapping", v.Line, k.Value)
		}
		if seen[k.Value] {
			return fmt.Errorf("line %d: column %q configured twice", k.Line, k.Value)
		}
		seen[k.Value] = true
		rule.Column = k.Value
		rules = append(rules, rule)
	}
	*r = rules
	return nil
}

// MarshalYAML writes the rules back as an ordered mapping.
func (r ColumnRules) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, rule := range r {
		var v yaml.Node
		if rule.Tol == nil && rule.Sort == "" && !rule.Regex {
			v = yaml.Node{Kind: yaml.ScalarNode, Value: rule.Check}
		} else if err := v.Encode(rule); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: rule.Column}, &v)
	}
	return node, nil
}

// Load reads and validates the job file at path. A job without a name is
// named after its file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job %s: %w", path, err)
	}
	j, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", path, err)
	}
	if j.Name == "" {
		j.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	j.dir = filepath.Dir(path)
	return j, nil
}

// Parse decodes and validates a job document. Unknown fields are rejected.
func Parse(data []byte) (*Job, error) {
	var j Job
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&j); err != nil {
		return nil, errors.NewConfigError("job", "malformed yaml", err)
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return &j, nil
}

// Validate checks the job and both source specs.
func (j *Job) Validate() error {
	if err := utils.ValidateStruct(j); err != nil {
		return err
	}
	if err := j.Baseline.Validate(); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	if err := j.Candidate.Validate(); err != nil {
		return fmt.Errorf("candidate: %w", err)
	}
	for _, rule := range j.Columns {
		if err := rule.validate(); err != nil {
			return err
		}
	}
	_, err := j.Rules()
	return err
}

func (r ColumnRule) validate() error {
	param := "columns." + r.Column
	tolerance := r.Check == CheckAbsTol || r.Check == CheckRelTol
	switch {
	case tolerance && r.Tol == nil:
		return errors.NewArgumentError(param+".tol", nil, "is required for "+r.Check)
	case tolerance && *r.Tol < 0:
		return errors.NewArgumentError(param+".tol", *r.Tol, "must be >= 0")
	case !tolerance && r.Tol != nil:
		return errors.NewArgumentError(param+".tol", *r.Tol, "only applies to abs_tol and rel_tol")
	case !tolerance && r.Sort != reconcile.SortNone:
		return errors.NewArgumentError(param+".sort", r.Sort, "only applies to abs_tol and rel_tol")
	case r.Check == CheckSkip && r.Regex:
		return errors.NewArgumentError(param+".regex", true, "skip takes exact column names")
	}
	return nil
}

// Rules compiles the column rules into reconcile rules.
func (j *Job) Rules() ([]reconcile.Rule, error) {
	rules := make([]reconcile.Rule, 0, len(j.Columns))
	for _, r := range j.Columns {
		var opts []reconcile.CheckOption
		if r.Regex {
			opts = append(opts, reconcile.WithRegex())
		}
		if r.Sort != reconcile.SortNone {
			opts = append(opts, reconcile.WithSort(r.Sort))
		}
		switch r.Check {
		case CheckSkip:
			rules = append(rules, reconcile.Skip(r.Column))
		case CheckEqual:
			rules = append(rules, reconcile.Rule{Column: r.Column, Check: reconcile.NewEqual(opts...)})
		case CheckAbsTol, CheckRelTol:
			check, err := toleranceCheck(r, opts)
			if err != nil {
				return nil, fmt.Errorf("columns.%s: %w", r.Column, err)
			}
			rules = append(rules, reconcile.Rule{Column: r.Column, Check: check})
		}
	}
	return rules, nil
}

func toleranceCheck(r ColumnRule, opts []reconcile.CheckOption) (reconcile.ColumnCheck, error) {
	if r.Tol == nil {
		return nil, errors.NewArgumentError("tol", nil, "is required")
	}
	if r.Check == CheckAbsTol {
		check, err := reconcile.NewAbsTol(*r.Tol, opts...)
		if err != nil {
			return nil, err
		}
		return check, nil
	}
	check, err := reconcile.NewRelTol(*r.Tol, opts...)
	if err != nil {
		return nil, err
	}
	return check, nil
}

// Reconciler builds the reconciler configured by the job.
func (j *Job) Reconciler(logger *zap.Logger) (*reconcile.Reconciler, error) {
	rules, err := j.Rules()
	if err != nil {
		return nil, err
	}
	opts := []reconcile.Option{
		reconcile.WithOrderBy(j.OrderBy),
		reconcile.WithDefaultCheck(enabled(j.CheckAll)),
		reconcile.WithMissingCheck(enabled(j.Presence.Missing)),
		reconcile.WithExtraCheck(enabled(j.Presence.Extra)),
		reconcile.WithLogger(logger),
	}
	if j.DisplayRows > 0 {
		opts = append(opts, reconcile.WithDisplayRows(j.DisplayRows))
	}
	return reconcile.New(rules, opts...), nil
}

// RunOptions returns the run options the job asks for.
func (j *Job) RunOptions() []reconcile.RunOption {
	if j.RaiseOnFailure {
		return []reconcile.RunOption{reconcile.RaiseOnFailure()}
	}
	return nil
}

// Sources opens both sides of the job against env. Relative file paths are
// resolved against the job file's directory.
func (j *Job) Sources(env source.Env) (source.Source, source.Source, error) {
	if j.dir != "" && env.BaseDir == "" {
		env.BaseDir = j.dir
	}
	b, err := env.Open(j.Baseline)
	if err != nil {
		return nil, nil, fmt.Errorf("baseline: %w", err)
	}
	c, err := env.Open(j.Candidate)
	if err != nil {
		return nil, nil, fmt.Errorf("candidate: %w", err)
	}
	return b, c, nil
}

func enabled(b *bool) bool {
	return b == nil || *b
}
