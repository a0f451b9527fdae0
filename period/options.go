// Package period selects the reporting periods a statement compares: either
// two (or more) calendar years in normal mode, or a rolling trailing-N-period
// window (LTM) ending at the latest available period.
package period

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slices"
)

// DefaultWindow is the rolling-window length used when none is configured.
const DefaultWindow = 12

// Selection is the set of periods within the selected years: either every
// period ("all" in JSON) or an explicit list of period numbers.
type Selection struct {
	All  bool
	List []int
}

// AllPeriods selects every period within the chosen years.
func AllPeriods() Selection {
	return Selection{All: true}
}

// PeriodList selects an explicit set of period numbers.
func PeriodList(periods ...int) Selection {
	return Selection{List: periods}
}

// Contains reports whether the selection includes the given period.
func (s Selection) Contains(period int) bool {
	if s.All {
		return true
	}
	return slices.Contains(s.List, period)
}

// MarshalJSON renders the selection as "all" or an explicit list.
func (s Selection) MarshalJSON() ([]byte, error) {
	if s.All {
		return json.Marshal("all")
	}
	return json.Marshal(s.List)
}

// UnmarshalJSON accepts the string "all" or an array of period numbers.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var all string
	if err := json.Unmarshal(data, &all); err == nil {
		if all != "all" {
			return fmt.Errorf("invalid period selection %q, expected \"all\" or a list", all)
		}
		*s = Selection{All: true}
		return nil
	}

	var list []int
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("invalid period selection: %w", err)
	}
	for _, p := range list {
		if p < 1 || p > 12 {
			return fmt.Errorf("invalid period %d, must be 1-12", p)
		}
	}
	*s = Selection{List: list}
	return nil
}

// Options defines the reporting periods for one render call.
type Options struct {
	Years   []int     `json:"years"`
	Periods Selection `json:"periods"`

	// LTM switches to rolling-window mode; Years and Periods are then
	// ignored in favor of the trailing window ending at the latest
	// available period.
	LTM    bool `json:"ltm,omitempty"`
	Window int  `json:"window,omitempty"`
}

// Normal creates two-period comparison options over all periods of the
// given years.
func Normal(years ...int) Options {
	return Options{Years: years, Periods: AllPeriods()}
}

// Rolling creates LTM options with the default window length.
func Rolling() Options {
	return Options{LTM: true, Window: DefaultWindow}
}

// WindowLength returns the configured window length, defaulting to 12.
func (o Options) WindowLength() int {
	if o.Window > 0 {
		return o.Window
	}
	return DefaultWindow
}

// PriorCurrent returns the prior and current comparison years (the lowest and
// highest selected years). ok is false when no years are selected.
func (o Options) PriorCurrent() (prior, current int, ok bool) {
	if len(o.Years) == 0 {
		return 0, 0, false
	}
	prior, current = o.Years[0], o.Years[0]
	for _, y := range o.Years[1:] {
		if y < prior {
			prior = y
		}
		if y > current {
			current = y
		}
	}
	return prior, current, true
}

// Includes reports whether a (year, period) pair falls within the selected
// comparison periods. Only meaningful in normal mode.
func (o Options) Includes(year, period int) bool {
	return slices.Contains(o.Years, year) && o.Periods.Contains(period)
}
