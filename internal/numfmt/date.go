package numfmt

import (
	"strconv"
	"strings"
)

// CanonicalDateLayout is the Go layout of the DD.MM.YYYY form all extracted
// dates are rendered in.
const CanonicalDateLayout = "02.01.2006"

var dateSeparators = strings.NewReplacer("/", ".", "-", ".")

// NormalizeDate rewrites a day.month.year date into canonical DD.MM.YYYY
// form. Slashes and dashes are accepted as separators, day and month are
// zero-padded, and two-digit years pivot at 50 (49 → 2049, 50 → 1950).
// Anything that does not split into exactly three components is returned
// unchanged; this function never fails.
func NormalizeDate(raw string) string {
	parts := strings.Split(dateSeparators.Replace(strings.TrimSpace(raw)), ".")
	if len(parts) != 3 {
		return raw
	}
	day, month, year := parts[0], parts[1], parts[2]
	if day == "" || month == "" || year == "" {
		return raw
	}
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	if len(year) == 2 {
		n, err := strconv.Atoi(year)
		if err != nil {
			return raw
		}
		if n < 50 {
			year = "20" + parts[2]
		} else {
			year = "19" + parts[2]
		}
	}
	return day + "." + month + "." + year
}
