package core

import "time"

// ViewMode selects which report the presentation layer is showing.
type ViewMode string

const (
	ViewWeekly  ViewMode = "weekly"
	ViewMonthly ViewMode = "monthly"
	ViewAnnual  ViewMode = "annual"
)

// NavState is the navigation state shared between the presentation layer
// and the selectors. Transitions are pure value replacements; nothing here
// touches the record collection.
type NavState struct {
	Mode          ViewMode
	WeekAnchor    time.Time
	Year          int
	SelectedMonth string // YYYY-MM while in month detail, "" in the year grid
	DetailList    bool   // month detail: false = calendar, true = list
}

// NewNavState opens the default weekly view anchored on now.
func NewNavState(now time.Time) NavState {
	return NavState{Mode: ViewWeekly, WeekAnchor: now, Year: now.Year()}
}

// WithMode switches the top-level view.
func (n NavState) WithMode(mode ViewMode) NavState {
	n.Mode = mode
	return n
}

// StepWeek shifts the weekly window by whole weeks.
func (n NavState) StepWeek(delta int) NavState {
	n.WeekAnchor = StepWeek(n.WeekAnchor, delta)
	return n
}

// StepYear shifts the year used by the monthly grid and the annual view.
func (n NavState) StepYear(delta int) NavState {
	n.Year += delta
	return n
}

// SelectMonth enters month detail; an empty key returns to the year grid
// and resets the calendar/list toggle.
func (n NavState) SelectMonth(key string) NavState {
	n.SelectedMonth = key
	if key == "" {
		n.DetailList = false
	}
	return n
}

// StepMonth moves the month detail by whole months, rolling over years.
// Outside month detail it is a no-op.
func (n NavState) StepMonth(delta int) NavState {
	if n.SelectedMonth == "" {
		return n
	}
	n.SelectedMonth = StepMonthKey(n.SelectedMonth, delta)
	return n
}

// ToggleDetailList flips the month detail between calendar and list.
func (n NavState) ToggleDetailList() NavState {
	n.DetailList = !n.DetailList
	return n
}

// Home resets every window to the present, matching the home button.
func (n NavState) Home(now time.Time) NavState {
	return NewNavState(now)
}
