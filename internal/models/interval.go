package models

import (
	"time"

	"github.com/agro-ad/backend/internal/errs"
)

// Interval is a time window from Start to End.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval validates start < end.
func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// Validate rejects zero and empty intervals.
func (iv Interval) Validate() error {
	if iv.Start.IsZero() || iv.End.IsZero() {
		return errs.Invalid("window", "start and end are required")
	}
	if !iv.Start.Before(iv.End) {
		return errs.Invalid("window", "end must be after start")
	}
	return nil
}

// IsEmpty is true when the interval can never be active.
func (iv Interval) IsEmpty() bool {
	return !iv.Start.Before(iv.End)
}

// Includes reports start <= t <= end. Both ends are closed here, unlike Overlaps.
func (iv Interval) Includes(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// Overlaps is true iff a.Start < b.End and a.End > b.Start. Touching intervals do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Contains is true iff outer.Start <= inner.Start and outer.End >= inner.End.
func Contains(outer, inner Interval) bool {
	return !inner.Start.Before(outer.Start) && !inner.End.After(outer.End)
}

// ClampTo returns the intersection of inner and outer. The result may be empty.
func ClampTo(inner, outer Interval) Interval {
	out := inner
	if outer.Start.After(out.Start) {
		out.Start = outer.Start
	}
	if outer.End.Before(out.End) {
		out.End = outer.End
	}
	return out
}
