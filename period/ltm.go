package period

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/finstmt/finstmt/facttable"
)

// Range is one per-calendar-year segment of a rolling window.
type Range struct {
	Year        int `json:"year"`
	StartPeriod int `json:"startPeriod"`
	EndPeriod   int `json:"endPeriod"`
}

// Months returns the number of periods the range covers.
func (r Range) Months() int {
	return r.EndPeriod - r.StartPeriod + 1
}

// Contains reports whether the (year, period) pair falls inside the range.
func (r Range) Contains(year, period int) bool {
	return year == r.Year && period >= r.StartPeriod && period <= r.EndPeriod
}

// LatestAvailable returns the most recent (year, period) pair present in the
// fact table. ok is false when the table is empty.
func LatestAvailable(t *facttable.Table) (year, period int, ok bool) {
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		if !ok || row.Year > year || (row.Year == year && row.Period > period) {
			year, period, ok = row.Year, row.Period, true
		}
	}
	return year, period, ok
}

// CalculateLTMRange walks backward from (year, period) for window periods and
// returns the covered segments in chronological order, one per calendar year
// crossed. Invalid inputs yield an empty slice.
func CalculateLTMRange(year, period, window int) []Range {
	if year <= 0 || period < 1 || period > 12 || window <= 0 {
		return []Range{}
	}

	// Absolute month indices, inclusive on both ends.
	end := year*12 + period - 1
	start := end - window + 1
	if start < 12 { // window would reach before year 1
		return []Range{}
	}

	ranges := make([]Range, 0, window/12+2)
	for y := start / 12; y <= end/12; y++ {
		r := Range{Year: y, StartPeriod: 1, EndPeriod: 12}
		if y == start/12 {
			r.StartPeriod = start%12 + 1
		}
		if y == end/12 {
			r.EndPeriod = end%12 + 1
		}
		ranges = append(ranges, r)
	}

	return ranges
}

// Availability is the result of checking whether the source data covers a
// rolling window.
type Availability struct {
	Complete     bool   `json:"complete"`
	ActualMonths int    `json:"actualMonths"`
	Message      string `json:"message"`
}

// CheckAvailability compares the years the ranges require against the years
// actually present in the source. When data is missing, the
// fewer-months-than-requested message takes priority over the missing-years
// message.
func CheckAvailability(ranges []Range, availableYears []int) Availability {
	if len(ranges) == 0 {
		return Availability{Message: "no LTM ranges calculated"}
	}

	window := 0
	actual := 0
	missing := make([]int, 0)

	for _, r := range ranges {
		window += r.Months()
		if slices.Contains(availableYears, r.Year) {
			actual += r.Months()
		} else if !slices.Contains(missing, r.Year) {
			missing = append(missing, r.Year)
		}
	}

	if len(missing) == 0 {
		return Availability{Complete: true, ActualMonths: actual, Message: "complete"}
	}

	if actual > 0 {
		return Availability{
			ActualMonths: actual,
			Message:      fmt.Sprintf("only %d months available", actual),
		}
	}

	years := make([]string, len(missing))
	for i, y := range missing {
		years[i] = strconv.Itoa(y)
	}
	return Availability{
		Message: fmt.Sprintf("missing data for year(s) %s", strings.Join(years, ", ")),
	}
}

// Label derives the human-readable window label, e.g.
// "LTM (2024 P7 - 2025 P6)".
func Label(ranges []Range) string {
	if len(ranges) == 0 {
		return "LTM (No Data)"
	}

	first := ranges[0]
	last := ranges[len(ranges)-1]

	return fmt.Sprintf("LTM (%d P%d - %d P%d)",
		first.Year, first.StartPeriod, last.Year, last.EndPeriod)
}

// FilterTable keeps only the fact rows whose (year, period) falls within one
// of the ranges, preserving row order.
func FilterTable(t *facttable.Table, ranges []Range) *facttable.Table {
	return t.Select(func(row facttable.Row) bool {
		for _, r := range ranges {
			if r.Contains(row.Year, row.Period) {
				return true
			}
		}
		return false
	})
}
