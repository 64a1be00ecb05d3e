package reconcile

import (
	"fmt"

	"datarec/core/frame"
)

// Clip restricts both tables to rows whose orderBy value is at or before the
// last value both tables reach: min(max(baseline), max(candidate)). orderBy
// may name a column or a key dimension. Rows with a null order value are
// dropped; when either side has no order value at all both tables come back
// empty.
func Clip(baseline, candidate *frame.Table, orderBy string) (*frame.Table, *frame.Table, error) {
	bs, err := baseline.Lookup(orderBy)
	if err != nil {
		return nil, nil, fmt.Errorf("baseline: %w", err)
	}
	cs, err := candidate.Lookup(orderBy)
	if err != nil {
		return nil, nil, fmt.Errorf("candidate: %w", err)
	}

	bMax, bOK, err := bs.Max()
	if err != nil {
		return nil, nil, fmt.Errorf("baseline: %w", err)
	}
	cMax, cOK, err := cs.Max()
	if err != nil {
		return nil, nil, fmt.Errorf("candidate: %w", err)
	}

	var latest any
	if bOK && cOK {
		latest = bMax
		c, err := frame.Compare(cMax, bMax)
		if err != nil {
			return nil, nil, err
		}
		if c < 0 {
			latest = cMax
		}
	}

	b, err := clipTo(baseline, bs, latest)
	if err != nil {
		return nil, nil, fmt.Errorf("baseline: %w", err)
	}
	c, err := clipTo(candidate, cs, latest)
	if err != nil {
		return nil, nil, fmt.Errorf("candidate: %w", err)
	}
	return b, c, nil
}

func clipTo(t *frame.Table, order *frame.Series, latest any) (*frame.Table, error) {
	mask := make([]bool, order.Len())
	if latest != nil {
		for i := range mask {
			v := order.Value(i)
			if frame.IsNull(v) {
				continue
			}
			c, err := frame.Compare(v, latest)
			if err != nil {
				return nil, err
			}
			mask[i] = c <= 0
		}
	}
	return t.Filter(mask)
}
