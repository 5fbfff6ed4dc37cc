package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type (
	// DaySlot is one of the seven Monday..Sunday slots of a weekly window.
	DaySlot struct {
		DateKey string
		Income  float64
		IsToday bool
	}

	// WeekStats is the weekly view-model: seven day slots plus totals and
	// derived ratios for the Monday-start week containing the anchor date.
	WeekStats struct {
		WeekNumber     int
		StartKey       string
		EndKey         string
		Days           [7]DaySlot
		RecordedDays   int
		TotalIncome    float64
		TotalHours     float64
		TotalTrips     float64
		TripCost       float64
		Promo          float64
		Tips           float64
		MaxDailyIncome float64
		HourlyWage     float64
		AvgNetTrip     float64
		AvgGrossTrip   float64
	}

	// CalendarCell is one cell of the month grid. Leading pad cells carry
	// Day 0; a populated cell may carry the first record of that date.
	CalendarCell struct {
		Day    int
		Record *Record
	}

	// MonthStats is the month-detail view-model: the month bucket, its
	// derived ratios, the calendar grid and the date-descending record list.
	MonthStats struct {
		MonthBucket
		HourlyWageVal   float64
		TripsPerHourVal float64
		AvgNetTripVal   float64
		AvgGrossTripVal float64
		Calendar        []CalendarCell
		List            []Record
	}

	// YearPoint is one month of the 12-point annual series.
	YearPoint struct {
		Month        int
		Income       float64
		Trips        float64
		Hours        float64
		HourlyWage   float64
		TripsPerHour float64
	}

	// YearStats is the annual view-model: the monthly series, the summary
	// sums, the attendance-day classification and, for the current year
	// only, the days left until December 31.
	YearStats struct {
		Year          int
		Series        [12]YearPoint
		TripCost      float64
		Promo         float64
		Tips          float64
		TotalHours    float64
		FullDays      int
		HalfDays      int
		OffDays       int
		RemainingDays int
	}

	// RecentStats is the rolling seven-day lookback that excludes today.
	RecentStats struct {
		StartKey string
		EndKey   string
		Records  []Record
	}
)

// WeekStart returns the Monday of the week containing anchor, at the
// anchor's local midnight. Sunday counts as day seven of its week.
func WeekStart(anchor time.Time) time.Time {
	y, m, d := anchor.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, anchor.Location())
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7
	}
	return day.AddDate(0, 0, -(wd - 1))
}

// StepWeek shifts an anchor by whole weeks; the window accepts arbitrary
// anchors, not just the current week.
func StepWeek(anchor time.Time, delta int) time.Time {
	return anchor.AddDate(0, 0, 7*delta)
}

// WeekOf computes the weekly window for the anchor's Monday-start week.
func WeekOf(snap Snapshot, anchor, now time.Time) WeekStats {
	start := WeekStart(anchor)
	todayKey := DateKey(now)

	stats := WeekStats{
		WeekNumber: ISOWeekNumber(start),
		StartKey:   DateKey(start),
	}
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		key := DateKey(d)
		if i == 6 {
			stats.EndKey = key
		}
		slot := DaySlot{DateKey: key, IsToday: key == todayKey}
		if bucket, ok := snap.Days[key]; ok {
			slot.Income = bucket.TotalIncome
			stats.TotalIncome += bucket.TotalIncome
			stats.TotalHours += bucket.TotalHours
			stats.TotalTrips += bucket.TripCount
			stats.TripCost += bucket.TripCost
			stats.Promo += bucket.Promo
			stats.Tips += bucket.Tips
			stats.RecordedDays++
		}
		stats.Days[i] = slot
	}

	// Chart scale floor mirrors the rendered minimum bar height.
	stats.MaxDailyIncome = 100
	for _, s := range stats.Days {
		if s.Income > stats.MaxDailyIncome {
			stats.MaxDailyIncome = s.Income
		}
	}

	stats.HourlyWage = SafeDiv(stats.TotalIncome, stats.TotalHours)
	stats.AvgNetTrip = SafeDiv(stats.TripCost, stats.TotalTrips)
	stats.AvgGrossTrip = SafeDiv(stats.TripCost+stats.Promo, stats.TotalTrips)
	return stats
}

// ParseMonthKey splits a YYYY-MM key. The boolean is false for malformed
// keys or out-of-range months.
func ParseMonthKey(key string) (year, month int, ok bool) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || m < 1 || m > 12 || y < 1 {
		return 0, 0, false
	}
	return y, m, true
}

// StepMonthKey shifts a YYYY-MM key by delta months, rolling over year
// boundaries in both directions. Malformed keys come back unchanged.
func StepMonthKey(key string, delta int) string {
	y, m, ok := ParseMonthKey(key)
	if !ok {
		return key
	}
	idx := y*12 + (m - 1) + delta
	return fmt.Sprintf("%04d-%02d", idx/12, idx%12+1)
}

// MonthOf computes the month-detail view-model for a YYYY-MM key. A key
// with no bucket yields an all-zero month so navigation never fails.
func MonthOf(snap Snapshot, key string) MonthStats {
	year, month, ok := ParseMonthKey(key)
	if !ok {
		return MonthStats{MonthBucket: MonthBucket{Key: key}}
	}
	bucket, found := snap.Months[key]
	if !found {
		bucket = MonthBucket{Key: key, Year: year, Month: month}
	}
	stats := MonthStats{
		MonthBucket:     bucket,
		HourlyWageVal:   bucket.HourlyWage(),
		TripsPerHourVal: bucket.TripsPerHour(),
		AvgNetTripVal:   bucket.AvgNetTrip(),
		AvgGrossTripVal: bucket.AvgGrossTrip(),
		Calendar:        CalendarGrid(year, month, bucket.Records),
	}
	stats.List = append(stats.List, bucket.Records...)
	SortByDateDesc(stats.List)
	return stats
}

// CalendarGrid lays out one calendar month as a Monday-first grid: pad
// cells for the weekday offset of day one, then one cell per day carrying
// the first record whose date key matches that day. Days with several
// records show only one in the grid; the full set stays in the list view.
func CalendarGrid(year, month int, records []Record) []CalendarCell {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := int(first.Weekday())
	if offset == 0 {
		offset = 7
	}
	offset--

	cells := make([]CalendarCell, 0, offset+daysInMonth)
	for i := 0; i < offset; i++ {
		cells = append(cells, CalendarCell{})
	}
	for day := 1; day <= daysInMonth; day++ {
		key := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		cell := CalendarCell{Day: day}
		for i := range records {
			if records[i].DateKey() == key {
				cell.Record = &records[i]
				break
			}
		}
		cells = append(cells, cell)
	}
	return cells
}

// YearOf computes the annual view-model for the given year. The remaining
// day count is only produced when year matches the injected now's year.
func YearOf(snap Snapshot, year int, now time.Time) YearStats {
	stats := YearStats{Year: year}

	dailyHours := make(map[string]float64)
	for m := 1; m <= 12; m++ {
		key := fmt.Sprintf("%04d-%02d", year, m)
		point := YearPoint{Month: m}
		if bucket, ok := snap.Months[key]; ok {
			point.Income = bucket.TotalIncome
			point.Trips = bucket.TripCount
			point.Hours = bucket.TotalHours
			point.HourlyWage = bucket.HourlyWage()
			point.TripsPerHour = bucket.TripsPerHour()

			stats.TripCost += bucket.TripCost
			stats.Promo += bucket.Promo
			stats.Tips += bucket.Tips
			stats.TotalHours += bucket.TotalHours
			for _, r := range bucket.Records {
				if k := r.DateKey(); k != "" {
					dailyHours[k] += r.TotalHours
				}
			}
		}
		stats.Series[m-1] = point
	}

	for _, h := range dailyHours {
		switch {
		case h <= 1:
			stats.OffDays++
		case h < 4:
			stats.HalfDays++
		default:
			stats.FullDays++
		}
	}

	if year == now.Year() {
		endOfYear := time.Date(year, time.December, 31, 0, 0, 0, 0, now.Location())
		remaining := int(math.Ceil(endOfYear.Sub(now).Hours() / 24))
		if remaining < 0 {
			remaining = 0
		}
		stats.RemainingDays = remaining
	}
	return stats
}

// RecentWindow selects the records of the seven days before now, today
// excluded, newest first.
func RecentWindow(records []Record, now time.Time) RecentStats {
	keys := make(map[string]bool, 7)
	stats := RecentStats{}
	for i := 1; i <= 7; i++ {
		key := DateKey(now.AddDate(0, 0, -i))
		keys[key] = true
		if i == 1 {
			stats.EndKey = key
		}
		if i == 7 {
			stats.StartKey = key
		}
	}
	for _, r := range records {
		if keys[r.DateKey()] {
			stats.Records = append(stats.Records, r)
		}
	}
	SortByDateDesc(stats.Records)
	return stats
}
