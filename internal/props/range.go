package props

import "fmt"

// ValueRange is an acceptable numeric range for a negotiable property.
// A nil bound means the range is open on that side.
type ValueRange struct {
	Min *float64
	Max *float64
}

// Bound is a convenience constructor for literal ranges.
func Bound(min, max *float64) ValueRange {
	return ValueRange{Min: min, Max: max}
}

// MinOnly returns a range with a lower bound and no upper bound.
func MinOnly(min float64) ValueRange {
	return ValueRange{Min: &min}
}

// Contains reports whether v lies within the range.
func (r ValueRange) Contains(v float64) bool {
	return (r.Min == nil || v >= *r.Min) && (r.Max == nil || v <= *r.Max)
}

// Clamp returns v unchanged when it is in range, otherwise the nearest bound.
// A range with Min > Max is a configuration error.
func (r ValueRange) Clamp(v float64) (float64, error) {
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return 0, fmt.Errorf("cannot clamp to a range in which min=%v > max=%v", *r.Min, *r.Max)
	}
	if r.Min != nil && v < *r.Min {
		return *r.Min, nil
	}
	if r.Max != nil && v > *r.Max {
		return *r.Max, nil
	}
	return v, nil
}

func (r ValueRange) String() string {
	min, max := "-inf", "+inf"
	if r.Min != nil {
		min = fmt.Sprintf("%v", *r.Min)
	}
	if r.Max != nil {
		max = fmt.Sprintf("%v", *r.Max)
	}
	return fmt.Sprintf("(%s, %s)", min, max)
}
