package reconcile

import (
	"datarec/core/errors"
	"datarec/core/frame"
)

// Direction selects which side of a presence check is reported.
type Direction string

const (
	// Missing reports baseline keys absent from the candidate.
	Missing Direction = "missing"
	// Extra reports candidate keys absent from the baseline.
	Extra Direction = "extra"
)

// Presence check names.
const (
	MissingCheckName = "missing_keys_check"
	ExtraCheckName   = "extra_keys_check"
)

// PresenceCheck compares identity keys. Missing shows the baseline rows whose
// key the candidate lacks, out of all baseline rows; Extra shows the candidate
// rows whose key the baseline lacks, out of all candidate rows.
func PresenceCheck(direction Direction, baseline, candidate *frame.Table) (CheckResult, error) {
	var (
		from, other *frame.Table
		name        string
	)
	switch direction {
	case Missing:
		from, other, name = baseline, candidate, MissingCheckName
	case Extra:
		from, other, name = candidate, baseline, ExtraCheckName
	default:
		return CheckResult{}, errors.NewArgumentError("direction", string(direction), "must be missing or extra")
	}

	rows, err := from.SelectKeys(from.KeyDifference(other))
	if err != nil {
		return CheckResult{}, err
	}
	return CheckResult{
		Failed:      rows,
		Check:       name,
		TotalRows:   from.NumRows(),
		DisplayRows: DefaultDisplayRows,
	}, nil
}
