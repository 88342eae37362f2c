package catalog

import (
	"strconv"
	"strings"
	"time"
)

var releaseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2 January 2006",
	"02 January 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"January 2 2006",
	"January 2, 2006",
	"January 2006",
	"Jan 2006",
}

// ParseReleaseDate normalises the ISO-like and "DD Month YYYY" forms that
// appear in mixes.json.
func ParseReleaseDate(raw string) (time.Time, bool) {
	raw = strings.Join(strings.Fields(raw), " ")
	if raw == "" {
		return time.Time{}, false
	}
	raw = stripOrdinal(raw)
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// stripOrdinal turns "1st March 2020" into "1 March 2020".
func stripOrdinal(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return raw
	}
	first := fields[0]
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(first, suffix) {
			if _, err := strconv.Atoi(strings.TrimSuffix(first, suffix)); err == nil {
				fields[0] = strings.TrimSuffix(first, suffix)
				return strings.Join(fields, " ")
			}
		}
	}
	return raw
}

// monthQuery is a parsed "YYYY-MM" or "YYYY" date filter. month is 0 when
// only the year was given.
type monthQuery struct {
	year  int
	month time.Month
}

// parseMonthQuery parses a date filter. ok is false for anything it does not
// understand, in which case the filter is ignored.
func parseMonthQuery(raw string) (monthQuery, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return monthQuery{}, false
	}
	if t, err := time.Parse("2006-01", raw); err == nil {
		return monthQuery{year: t.Year(), month: t.Month()}, true
	}
	if t, err := time.Parse("2006", raw); err == nil {
		return monthQuery{year: t.Year()}, true
	}
	return monthQuery{}, false
}

func (q monthQuery) matches(t time.Time) bool {
	if t.Year() != q.year {
		return false
	}
	return q.month == 0 || t.Month() == q.month
}
