package core

import (
	"reflect"
	"testing"
	"time"
)

func recordOn(key string, tripCost, promo, tips, hours, trips float64) Record {
	day, _ := ParseDateKey(key)
	return Record{
		ID:          key + "-r",
		Date:        day,
		TripCost:    tripCost,
		Promo:       promo,
		Tips:        tips,
		TotalIncome: tripCost + promo + tips,
		TotalHours:  hours,
		TripCount:   trips,
		CreatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local),
	}
}

func TestAggregateDayMerge(t *testing.T) {
	a := recordOn("2024-03-14", 800, 100, 0, 4, 3)
	b := recordOn("2024-03-14", 400, 0, 50, 2, 5)
	b.ID = "second"

	snap := Aggregate([]Record{a, b}, testNow)
	day, ok := snap.Days["2024-03-14"]
	if !ok {
		t.Fatalf("missing day bucket")
	}
	if day.TripCount != 8 {
		t.Fatalf("TripCount: got %v want 8", day.TripCount)
	}
	if day.TotalIncome != 1350 || day.TotalHours != 6 {
		t.Fatalf("sums: income=%v hours=%v", day.TotalIncome, day.TotalHours)
	}
	if day.Entries != 2 {
		t.Fatalf("Entries: got %d", day.Entries)
	}
	if day.ID != a.ID {
		t.Fatalf("representative id: got %q want first-seen %q", day.ID, a.ID)
	}
}

func TestAggregateDayMergeCommutative(t *testing.T) {
	a := recordOn("2024-03-14", 800, 100, 0, 4, 3)
	b := recordOn("2024-03-14", 400, 0, 50, 2, 5)

	ab := Aggregate([]Record{a, b}, testNow).Days["2024-03-14"]
	ba := Aggregate([]Record{b, a}, testNow).Days["2024-03-14"]

	// Representative fields follow input order; the sums must not.
	ab.ID, ba.ID = "", ""
	if ab != ba {
		t.Fatalf("merge not commutative: %+v vs %+v", ab, ba)
	}
}

func TestAggregateMonthKeepsUnmergedRecords(t *testing.T) {
	a := recordOn("2024-03-14", 0, 0, 0, 4, 3)
	b := recordOn("2024-03-14", 0, 0, 0, 2, 5)

	snap := Aggregate([]Record{a, b}, testNow)
	month, ok := snap.Months["2024-03"]
	if !ok {
		t.Fatalf("missing month bucket")
	}
	if len(month.Records) != 2 {
		t.Fatalf("month records: got %d want 2", len(month.Records))
	}
	if month.TripCount != 8 {
		t.Fatalf("month TripCount: got %v want 8", month.TripCount)
	}
	if day := snap.Days["2024-03-14"]; day.Entries != 1+1 {
		t.Fatalf("day entries: got %d", day.Entries)
	}
}

func TestAggregateSkipsInvalidDates(t *testing.T) {
	bad := Record{ID: "bad", TotalIncome: 999, TotalHours: 9, TripCount: 9}
	good := recordOn("2024-03-14", 100, 0, 0, 1, 1)

	snap := Aggregate([]Record{bad, good}, testNow)
	if len(snap.Days) != 1 || len(snap.Months) != 1 {
		t.Fatalf("invalid record leaked into buckets: days=%d months=%d", len(snap.Days), len(snap.Months))
	}
	if snap.Annual.TotalIncome != 100 {
		t.Fatalf("annual income: got %v want 100", snap.Annual.TotalIncome)
	}
}

func TestAggregateAnnualCurrentYearOnly(t *testing.T) {
	thisYear := recordOn("2024-03-14", 100, 10, 0, 2, 4)
	lastYear := recordOn("2023-11-02", 500, 0, 0, 5, 9)

	snap := Aggregate([]Record{thisYear, lastYear}, testNow)
	if snap.Annual.Year != 2024 {
		t.Fatalf("year: got %d", snap.Annual.Year)
	}
	if snap.Annual.TotalIncome != 110 || snap.Annual.TotalTrips != 4 {
		t.Fatalf("annual: %+v", snap.Annual)
	}
	// Both years keep their month buckets regardless.
	if _, ok := snap.Months["2023-11"]; !ok {
		t.Fatalf("missing prior-year month bucket")
	}
}

func TestAggregateTodayTotals(t *testing.T) {
	today := recordOn("2024-03-14", 100, 0, 0, 2, 4)
	yesterday := recordOn("2024-03-13", 900, 0, 0, 8, 20)

	snap := Aggregate([]Record{today, yesterday}, testNow)
	if !snap.Today.HasRecord {
		t.Fatalf("expected HasRecord")
	}
	if snap.Today.Income != 100 || snap.Today.Hours != 2 || snap.Today.Trips != 4 {
		t.Fatalf("today: %+v", snap.Today)
	}

	empty := Aggregate([]Record{yesterday}, testNow)
	if empty.Today.HasRecord {
		t.Fatalf("expected no record for today")
	}
}

func TestAggregateIdempotent(t *testing.T) {
	records := []Record{
		recordOn("2024-03-14", 800, 100, 0, 4, 3),
		recordOn("2024-03-14", 400, 0, 50, 2, 5),
		recordOn("2024-02-01", 200, 0, 0, 1, 2),
	}
	first := Aggregate(records, testNow)
	second := Aggregate(records, testNow)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation not idempotent")
	}
}

func TestDerivedRatiosSafeOnEmptyBuckets(t *testing.T) {
	var day DayBucket
	var month MonthBucket
	var annual AnnualTotals
	vals := []float64{
		day.HourlyWage(), day.TripsPerHour(),
		month.HourlyWage(), month.TripsPerHour(), month.AvgNetTrip(), month.AvgGrossTrip(),
		annual.AvgHourly(), annual.AvgNetTrip(), annual.AvgGrossTrip(),
	}
	for i, v := range vals {
		if v != 0 {
			t.Fatalf("ratio %d: got %v want 0", i, v)
		}
	}
}
