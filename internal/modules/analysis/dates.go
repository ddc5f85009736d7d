package analysis

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ValidateDate parses a YYYY-MM-DD date string into a calendar date.
// time.Parse rejects impossible dates (month 13, February 30) on its own,
// so no extra calendar checks are needed. Range ordering (start < end) is
// the caller's concern.
func ValidateDate(text string) (time.Time, error) {
	t, err := time.Parse(dateLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, text)
	}
	return t, nil
}
