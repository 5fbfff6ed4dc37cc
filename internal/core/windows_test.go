package core

import (
	"testing"
)

func TestWeekStart(t *testing.T) {
	cases := []struct {
		anchor string
		want   string
	}{
		{"2024-03-14", "2024-03-11"}, // Thursday
		{"2024-03-11", "2024-03-11"}, // Monday is its own start
		{"2024-03-17", "2024-03-11"}, // Sunday belongs to the preceding Monday
		{"2024-01-01", "2024-01-01"},
	}
	for _, c := range cases {
		anchor, _ := ParseDateKey(c.anchor)
		if got := DateKey(WeekStart(anchor)); got != c.want {
			t.Fatalf("WeekStart(%s): got %s want %s", c.anchor, got, c.want)
		}
	}
}

func TestWeekOf(t *testing.T) {
	records := []Record{
		recordOn("2024-03-11", 300, 0, 0, 3, 6),
		recordOn("2024-03-14", 500, 50, 0, 5, 10),
		recordOn("2024-03-17", 80, 0, 0, 1, 2),
		recordOn("2024-03-10", 999, 0, 0, 9, 9), // previous week
		recordOn("2024-03-18", 999, 0, 0, 9, 9), // next week
	}
	snap := Aggregate(records, testNow)
	week := WeekOf(snap, testNow, testNow)

	if week.StartKey != "2024-03-11" || week.EndKey != "2024-03-17" {
		t.Fatalf("bounds: %s..%s", week.StartKey, week.EndKey)
	}
	if week.WeekNumber != 11 {
		t.Fatalf("week number: got %d", week.WeekNumber)
	}
	if week.RecordedDays != 3 {
		t.Fatalf("recorded days: got %d", week.RecordedDays)
	}
	if week.TotalIncome != 930 || week.TotalTrips != 18 || week.TotalHours != 9 {
		t.Fatalf("totals: income=%v trips=%v hours=%v", week.TotalIncome, week.TotalTrips, week.TotalHours)
	}
	if week.MaxDailyIncome != 550 {
		t.Fatalf("max daily income: got %v", week.MaxDailyIncome)
	}
	if !week.Days[3].IsToday {
		t.Fatalf("thursday slot should be today")
	}
	if week.Days[0].Income != 300 || week.Days[6].Income != 80 {
		t.Fatalf("slot incomes: mon=%v sun=%v", week.Days[0].Income, week.Days[6].Income)
	}
}

func TestWeekOfEmptyKeepsScaleFloor(t *testing.T) {
	week := WeekOf(Aggregate(nil, testNow), testNow, testNow)
	if week.MaxDailyIncome != 100 {
		t.Fatalf("scale floor: got %v", week.MaxDailyIncome)
	}
	if week.HourlyWage != 0 || week.AvgNetTrip != 0 {
		t.Fatalf("empty week ratios: wage=%v net=%v", week.HourlyWage, week.AvgNetTrip)
	}
}

func TestStepMonthKey(t *testing.T) {
	cases := []struct {
		key   string
		delta int
		want  string
	}{
		{"2024-01", -1, "2023-12"},
		{"2024-12", 1, "2025-01"},
		{"2024-03", 0, "2024-03"},
		{"2024-03", -15, "2022-12"},
		{"2024-03", 22, "2026-01"},
		{"garbage", 1, "garbage"},
		{"2024-13", 1, "2024-13"},
	}
	for _, c := range cases {
		if got := StepMonthKey(c.key, c.delta); got != c.want {
			t.Fatalf("StepMonthKey(%s, %d): got %s want %s", c.key, c.delta, got, c.want)
		}
	}
}

func TestMonthOf(t *testing.T) {
	records := []Record{
		recordOn("2024-03-05", 200, 0, 0, 2, 4),
		recordOn("2024-03-14", 500, 100, 0, 5, 10),
	}
	snap := Aggregate(records, testNow)
	month := MonthOf(snap, "2024-03")

	if month.Year != 2024 || month.Month != 3 {
		t.Fatalf("bucket identity: %d-%d", month.Year, month.Month)
	}
	if len(month.List) != 2 || month.List[0].DateKey() != "2024-03-14" {
		t.Fatalf("list: %+v", month.List)
	}
	if month.HourlyWageVal != (800.0 / 7.0) {
		t.Fatalf("hourly: got %v", month.HourlyWageVal)
	}
	// March 2024 starts on a Friday: four pad cells, 31 day cells.
	if len(month.Calendar) != 4+31 {
		t.Fatalf("calendar cells: got %d", len(month.Calendar))
	}
	if month.Calendar[0].Day != 0 || month.Calendar[4].Day != 1 {
		t.Fatalf("calendar offset: first=%d fifth=%d", month.Calendar[0].Day, month.Calendar[4].Day)
	}
	cell := month.Calendar[4+14-1]
	if cell.Day != 14 || cell.Record == nil {
		t.Fatalf("day-14 cell: %+v", cell)
	}
}

func TestMonthOfAbsentKey(t *testing.T) {
	snap := Aggregate(nil, testNow)
	month := MonthOf(snap, "2019-07")
	if month.Year != 2019 || month.Month != 7 {
		t.Fatalf("zero month identity: %d-%d", month.Year, month.Month)
	}
	if month.TotalIncome != 0 || len(month.List) != 0 {
		t.Fatalf("zero month not empty: %+v", month)
	}
	if len(month.Calendar) == 0 {
		t.Fatalf("zero month still gets a calendar")
	}
}

func TestCalendarGridMondayOffset(t *testing.T) {
	// September 2024 starts on a Sunday: six pad cells.
	cells := CalendarGrid(2024, 9, nil)
	if len(cells) != 6+30 {
		t.Fatalf("cells: got %d", len(cells))
	}
	if cells[5].Day != 0 || cells[6].Day != 1 {
		t.Fatalf("offset: %d %d", cells[5].Day, cells[6].Day)
	}

	// April 2024 starts on a Monday: no pad cells.
	cells = CalendarGrid(2024, 4, nil)
	if len(cells) != 30 || cells[0].Day != 1 {
		t.Fatalf("monday-start month: len=%d first=%d", len(cells), cells[0].Day)
	}
}

func TestYearOfAttendance(t *testing.T) {
	records := []Record{
		recordOn("2024-01-02", 10, 0, 0, 1.0, 1),  // off
		recordOn("2024-01-03", 10, 0, 0, 1.01, 1), // half
		recordOn("2024-01-04", 10, 0, 0, 3.99, 1), // half
		recordOn("2024-01-05", 10, 0, 0, 4.0, 1),  // full
		// Split day summing past the full threshold.
		recordOn("2024-01-06", 10, 0, 0, 2, 1),
		recordOn("2024-01-06", 10, 0, 0, 2.5, 1),
	}
	snap := Aggregate(records, testNow)
	year := YearOf(snap, 2024, testNow)

	if year.OffDays != 1 || year.HalfDays != 2 || year.FullDays != 2 {
		t.Fatalf("attendance: off=%d half=%d full=%d", year.OffDays, year.HalfDays, year.FullDays)
	}
}

func TestYearOfSeriesAndRemaining(t *testing.T) {
	records := []Record{
		recordOn("2024-01-10", 100, 0, 0, 2, 4),
		recordOn("2024-03-14", 400, 0, 0, 4, 8),
		recordOn("2023-06-01", 999, 0, 0, 9, 9),
	}
	snap := Aggregate(records, testNow)
	year := YearOf(snap, 2024, testNow)

	if year.Series[0].Income != 100 || year.Series[2].Income != 400 {
		t.Fatalf("series: jan=%v mar=%v", year.Series[0].Income, year.Series[2].Income)
	}
	if year.Series[1].Income != 0 {
		t.Fatalf("empty month not zero-filled")
	}
	// testNow is 2024-03-14 18:30; Dec 31 midnight is 292 days minus a
	// fraction away, so the ceiling lands on 292.
	if year.RemainingDays != 292 {
		t.Fatalf("remaining days: got %d", year.RemainingDays)
	}

	past := YearOf(snap, 2023, testNow)
	if past.RemainingDays != 0 {
		t.Fatalf("non-current year remaining: got %d", past.RemainingDays)
	}
	if past.Series[5].Income != 999 {
		t.Fatalf("prior-year series: %v", past.Series[5].Income)
	}
}

func TestRecentWindowExcludesToday(t *testing.T) {
	records := []Record{
		recordOn("2024-03-14", 100, 0, 0, 1, 1), // today
		recordOn("2024-03-13", 200, 0, 0, 1, 1),
		recordOn("2024-03-07", 300, 0, 0, 1, 1),
		recordOn("2024-03-06", 400, 0, 0, 1, 1), // eight days back
	}
	recent := RecentWindow(records, testNow)

	if recent.StartKey != "2024-03-07" || recent.EndKey != "2024-03-13" {
		t.Fatalf("bounds: %s..%s", recent.StartKey, recent.EndKey)
	}
	if len(recent.Records) != 2 {
		t.Fatalf("records: got %d", len(recent.Records))
	}
	if recent.Records[0].DateKey() != "2024-03-13" || recent.Records[1].DateKey() != "2024-03-07" {
		t.Fatalf("order: %s, %s", recent.Records[0].DateKey(), recent.Records[1].DateKey())
	}
}
