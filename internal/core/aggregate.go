package core

import (
	"fmt"
	"time"
)

type (
	// DayBucket is the merge of every record sharing one date key. The
	// non-summed fields (ID, Date) come from the first record encountered in
	// input order; the summed fields are order-independent.
	DayBucket struct {
		ID          string
		Date        time.Time
		TotalIncome float64
		TripCost    float64
		Promo       float64
		Tips        float64
		TripCount   float64
		TotalHours  float64
		Entries     int
	}

	// MonthBucket sums unmerged records for one YYYY-MM key and retains the
	// constituent records for the detail list and calendar views. Unlike the
	// day map, two same-day records both appear in Records and both count
	// toward the totals independently.
	MonthBucket struct {
		Key         string
		Year        int
		Month       int
		TotalIncome float64
		TripCost    float64
		Promo       float64
		Tips        float64
		TripCount   float64
		TotalHours  float64
		Records     []Record
	}

	// AnnualTotals covers the year of the injected now only.
	AnnualTotals struct {
		Year        int
		TotalIncome float64
		TotalHours  float64
		TotalTrips  float64
		TripCost    float64
		Promo       float64
	}

	// TodayTotals sums records whose date key equals now's date key.
	TodayTotals struct {
		Income    float64
		Hours     float64
		Trips     float64
		HasRecord bool
	}

	// Snapshot is the output of one wholesale aggregation pass. It is a
	// plain value with no hidden cache; callers recompute it from scratch
	// whenever the record collection changes.
	Snapshot struct {
		Days   map[string]DayBucket
		Months map[string]MonthBucket
		Annual AnnualTotals
		Today  TodayTotals
	}
)

// Aggregate folds the full record collection into the snapshot every view
// derives from. Records without a valid date key are skipped entirely.
// The pass is idempotent: the same records and now always produce a
// structurally identical snapshot.
func Aggregate(records []Record, now time.Time) Snapshot {
	snap := Snapshot{
		Days:   make(map[string]DayBucket),
		Months: make(map[string]MonthBucket),
		Annual: AnnualTotals{Year: now.Year()},
	}
	todayKey := DateKey(now)
	yearKey := fmt.Sprintf("%04d", now.Year())

	for _, r := range records {
		key := r.DateKey()
		if key == "" {
			continue
		}

		day, seen := snap.Days[key]
		if !seen {
			day = DayBucket{ID: r.ID, Date: r.Date}
		}
		day.TotalIncome += r.TotalIncome
		day.TripCost += r.TripCost
		day.Promo += r.Promo
		day.Tips += r.Tips
		day.TripCount += r.TripCount
		day.TotalHours += r.TotalHours
		day.Entries++
		snap.Days[key] = day

		if key[:4] == yearKey {
			snap.Annual.TotalIncome += r.TotalIncome
			snap.Annual.TotalHours += r.TotalHours
			snap.Annual.TotalTrips += r.TripCount
			snap.Annual.TripCost += r.TripCost
			snap.Annual.Promo += r.Promo
		}

		if key == todayKey {
			snap.Today.Income += r.TotalIncome
			snap.Today.Hours += r.TotalHours
			snap.Today.Trips += r.TripCount
			snap.Today.HasRecord = true
		}

		mk := key[:7]
		month, ok := snap.Months[mk]
		if !ok {
			month = MonthBucket{Key: mk, Year: r.Date.Year(), Month: int(r.Date.Month())}
		}
		month.TotalIncome += r.TotalIncome
		month.TripCost += r.TripCost
		month.Promo += r.Promo
		month.Tips += r.Tips
		month.TripCount += r.TripCount
		month.TotalHours += r.TotalHours
		month.Records = append(month.Records, r)
		snap.Months[mk] = month
	}

	return snap
}

// HourlyWage is the day's income per hour under the safe-division policy.
func (b DayBucket) HourlyWage() float64 { return SafeDiv(b.TotalIncome, b.TotalHours) }

// TripsPerHour is the day's trips per hour under the safe-division policy.
func (b DayBucket) TripsPerHour() float64 { return SafeDiv(b.TripCount, b.TotalHours) }

// HourlyWage is the month's income per hour.
func (b MonthBucket) HourlyWage() float64 { return SafeDiv(b.TotalIncome, b.TotalHours) }

// TripsPerHour is the month's trips per hour.
func (b MonthBucket) TripsPerHour() float64 { return SafeDiv(b.TripCount, b.TotalHours) }

// AvgNetTrip is the month's base fare per trip, promotions excluded.
func (b MonthBucket) AvgNetTrip() float64 { return SafeDiv(b.TripCost, b.TripCount) }

// AvgGrossTrip is the month's fare plus promotions per trip.
func (b MonthBucket) AvgGrossTrip() float64 {
	return SafeDiv(b.TripCost+b.Promo, b.TripCount)
}

// AvgHourly is the year's income per hour.
func (a AnnualTotals) AvgHourly() float64 { return SafeDiv(a.TotalIncome, a.TotalHours) }

// AvgNetTrip is the year's base fare per trip.
func (a AnnualTotals) AvgNetTrip() float64 { return SafeDiv(a.TripCost, a.TotalTrips) }

// AvgGrossTrip is the year's fare plus promotions per trip.
func (a AnnualTotals) AvgGrossTrip() float64 {
	return SafeDiv(a.TripCost+a.Promo, a.TotalTrips)
}
