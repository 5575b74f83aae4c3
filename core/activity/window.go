package activity

import (
	"time"

	"github.com/pkg/errors"
)

const (
	dateLayout      = "2006-01-02"
	clockLayout     = "15:04"
	clockLayoutSecs = "15:04:05"
)

// CombineDateTime combines separate date ("2006-01-02") and clock ("15:04" or
// "15:04:05") strings into a single instant in the given location.
// Admin tooling submits the window as split fields; they are normalized
// here, at the boundary, so status resolution never deals with strings.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if clock == "" {
		clock = "00:00"
	}

	layout := dateLayout + " " + clockLayout
	if len(clock) > len(clockLayout) {
		layout = dateLayout + " " + clockLayoutSecs
	}

	t, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "combining %q %q", date, clock)
	}
	return t, nil
}
