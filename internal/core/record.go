package core

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

type (
	// Record is one submitted earnings entry for a work day. Several records
	// may share the same calendar date; they are merged per-day by the
	// aggregation engine, never in the stored collection.
	//
	// TotalIncome, HourlyWage and TripsPerHour are creation-time snapshots:
	// they are computed once when the record is built and never recomputed,
	// even if they disagree with the component fields of a remote-sourced row.
	Record struct {
		ID           string    `json:"id"`
		Date         time.Time `json:"date"`
		TripCost     float64   `json:"tripCost"`
		Promo        float64   `json:"promo"`
		Tips         float64   `json:"tips"`
		TotalIncome  float64   `json:"totalIncome"`
		TotalHours   float64   `json:"totalHoursDec"`
		TripCount    float64   `json:"tripCount"`
		HourlyWage   float64   `json:"hourlyWage"`
		TripsPerHour float64   `json:"tripsPerHour"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	// Draft is the record submission contract from the presentation layer.
	// All fields arrive as free-form strings; numeric fields default to zero
	// when unparseable rather than rejecting the submission.
	Draft struct {
		Date      string
		TripCost  string
		Promo     string
		Tips      string
		Hours     string
		Minutes   string
		TripCount string
	}
)

var (
	ErrMissingDate      = errors.New("missing date")
	ErrInvalidDate      = errors.New("invalid date")
	ErrMissingHours     = errors.New("missing hours")
	ErrNegativeHours    = errors.New("negative hours")
	ErrInvalidMinutes   = errors.New("minutes out of range")
	ErrMissingTripCount = errors.New("missing trip count")
	ErrNegativeTrips    = errors.New("negative trip count")
)

// Validate checks the fields the submission contract marks required.
// Optional monetary fields are never a validation failure.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Date) == "" {
		return ErrMissingDate
	}
	if _, ok := ParseDateKey(strings.TrimSpace(d.Date)); !ok {
		return ErrInvalidDate
	}
	if strings.TrimSpace(d.Hours) == "" {
		return ErrMissingHours
	}
	if parseAmount(d.Hours) < 0 {
		return ErrNegativeHours
	}
	if m := strings.TrimSpace(d.Minutes); m != "" {
		v := parseAmount(m)
		if v < 0 || v > 59 {
			return ErrInvalidMinutes
		}
	}
	if strings.TrimSpace(d.TripCount) == "" {
		return ErrMissingTripCount
	}
	if parseAmount(d.TripCount) < 0 {
		return ErrNegativeTrips
	}
	return nil
}

// idSeq disambiguates records built within the same millisecond.
var idSeq atomic.Int64

// NewRecord builds a Record from a draft, computing every derived field at
// creation time. The id and CreatedAt come from the injected now so the
// construction stays deterministic under test.
func NewRecord(d Draft, now time.Time) (Record, error) {
	if err := d.Validate(); err != nil {
		return Record{}, err
	}
	date, _ := ParseDateKey(strings.TrimSpace(d.Date))

	tripCost := parseAmount(d.TripCost)
	promo := parseAmount(d.Promo)
	tips := parseAmount(d.Tips)
	income := tripCost + promo + tips
	hours := parseAmount(d.Hours) + parseAmount(d.Minutes)/60
	trips := parseAmount(d.TripCount)

	return Record{
		ID:           newRecordID(now),
		Date:         date,
		TripCost:     tripCost,
		Promo:        promo,
		Tips:         tips,
		TotalIncome:  income,
		TotalHours:   hours,
		TripCount:    trips,
		HourlyWage:   SafeDiv(income, hours),
		TripsPerHour: SafeDiv(trips, hours),
		CreatedAt:    now,
	}, nil
}

// newRecordID produces a time-based id. The process-local sequence suffix
// keeps two records created in the same millisecond distinct.
func newRecordID(now time.Time) string {
	n := idSeq.Add(1)
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.FormatInt(n, 10)
}

// DateKey returns the record's day bucket key, "" when the date is unusable.
func (r Record) DateKey() string {
	return DateKey(r.Date)
}

// SortByDateDesc orders records newest-date-first in place. Ties on the
// calendar date break on CreatedAt then ID so the order is deterministic
// regardless of arrival order.
func SortByDateDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		di, dj := records[i].DateKey(), records[j].DateKey()
		if di != dj {
			return di > dj
		}
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
}

// parseAmount converts a free-form numeric string to a float, defaulting
// empty or unparseable input to 0 per the silent-defaulting error policy.
func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CoerceNumber applies the same defaulting to values decoded from loosely
// typed remote payloads, where a numeric field may arrive as a string.
func CoerceNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case string:
		return parseAmount(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
