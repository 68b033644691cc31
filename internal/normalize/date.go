package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidDate is returned when raw date text matches no configured layout
// or falls outside the accepted calendar range.
var ErrInvalidDate = errors.New("invalid date")

// DateLayout identifies how an institution prints transaction dates.
type DateLayout int

const (
	// DMY is DD/MM/YYYY (dash separators are accepted too).
	DMY DateLayout = iota
	// DMYShort is DD/MM/YY.
	DMYShort
	// DayMonYear is DD MMM YYYY, e.g. "15 Jan 2024".
	DayMonYear
	// DayMonShortYear is DD MMM YY, e.g. "28 Nov 24".
	DayMonShortYear
)

// ISODate is the canonical textual form of every normalized date.
const ISODate = "2006-01-02"

const (
	minYear = 1990
	maxYear = 2100
)

var (
	layouts = map[DateLayout]string{
		DMY:             "2/1/2006",
		DMYShort:        "2/1/06",
		DayMonYear:      "2 Jan 2006",
		DayMonShortYear: "2 Jan 06",
	}

	// trailingTime matches "| 14:05", " 14:05", " 2:05:33 PM" and similar.
	trailingTime = regexp.MustCompile(`(?i)[\s|,]*\d{1,2}:\d{2}(?::\d{2})?(?:\s*[ap]m)?\s*$`)
	spaces       = regexp.MustCompile(`\s+`)
)

func (l DateLayout) String() string {
	switch l {
	case DMY:
		return "DD/MM/YYYY"
	case DMYShort:
		return "DD/MM/YY"
	case DayMonYear:
		return "DD MMM YYYY"
	case DayMonShortYear:
		return "DD MMM YY"
	default:
		return fmt.Sprintf("DateLayout(%d)", int(l))
	}
}

// ParseDate parses raw date text printed in layout. Any trailing time of day
// is discarded. The result is midnight UTC.
func ParseDate(raw string, layout DateLayout) (time.Time, error) {
	goLayout, ok := layouts[layout]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown layout %s", ErrInvalidDate, layout)
	}

	s := strings.TrimSpace(trailingTime.ReplaceAllString(raw, ""))
	s = strings.TrimRight(s, "|, ")
	s = spaces.ReplaceAllString(s, " ")
	if layout == DMY || layout == DMYShort {
		s = strings.ReplaceAll(s, "-", "/")
	}
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	t, err := time.Parse(goLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not %s", ErrInvalidDate, raw, layout)
	}
	if t.Year() < minYear || t.Year() > maxYear {
		return time.Time{}, fmt.Errorf("%w: %q out of range", ErrInvalidDate, raw)
	}
	return t, nil
}

// FormatDate renders t in the canonical ISO form.
func FormatDate(t time.Time) string {
	return t.Format(ISODate)
}
