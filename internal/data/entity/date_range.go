package entity

import (
	"errors"
	"time"
)

const DateLayout = "2006-01-02"

var ErrEmptyRange = errors.New("end date must be after start date")

// DateRange is a half-open range of whole calendar days [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both bounds to UTC calendar days and rejects end <= start.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: TruncateDay(start), End: TruncateDay(end)}
	if !r.End.After(r.Start) {
		return DateRange{}, ErrEmptyRange
	}
	return r, nil
}

func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e)
}

func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps is the half-open intersection test: a.start < b.end AND a.end > b.start.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// Nights is the number of whole days covered by the range.
func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// EndsBefore reports whether the whole range lies before the day of now.
func (r DateRange) EndsBefore(now time.Time) bool {
	return !r.End.After(TruncateDay(now))
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}
