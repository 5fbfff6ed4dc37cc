// Package core provides the domain model and the pure aggregation engine
// for earnings records.
//
// This file contains calendar and formatting helpers. Every function is a
// pure transformation: invalid input degrades to a zero value rather than
// an error, because records may originate from free-form spreadsheet rows.
package core

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateKey renders t as the local-calendar YYYY-MM-DD bucket key.
// A zero time yields "" so that unbucketable records can be skipped.
func DateKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseDateKey parses a YYYY-MM-DD key back into a local-midnight time.
// The boolean is false for anything that does not round-trip through DateKey.
func ParseDateKey(s string) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthKey renders t as the YYYY-MM bucket key, or "" for a zero time.
func MonthKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	y, m, _ := t.Date()
	return fmt.Sprintf("%04d-%02d", y, int(m))
}

// ISOWeekNumber computes the ISO-8601 week number of the week containing t:
// shift to the Thursday of t's Monday-start week, then count seven-day
// blocks from that Thursday's year start. Returns 0 for a zero time.
func ISOWeekNumber(t time.Time) int {
	if t.IsZero() {
		return 0
	}
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	thursday := t.AddDate(0, 0, 4-wd)
	return (thursday.YearDay() + 6) / 7
}

// FormatDuration renders decimal hours as "Xh Ym", dropping the zero part:
// 1.5 -> "1h 30m", 0.5 -> "30m", 2.0 -> "2h". NaN renders as "0m".
func FormatDuration(decimalHours float64) string {
	if math.IsNaN(decimalHours) || math.IsInf(decimalHours, 0) {
		return "0m"
	}
	hrs := int(math.Floor(decimalHours))
	mins := int(math.Round((decimalHours - float64(hrs)) * 60))
	if mins == 60 {
		hrs++
		mins = 0
	}
	if hrs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	if mins == 0 {
		return strconv.Itoa(hrs) + "h"
	}
	return fmt.Sprintf("%dh %dm", hrs, mins)
}

// shortFormThreshold is the value above which FormatAmountShort switches to
// the abbreviated one-decimal ten-thousands unit.
const shortFormThreshold = 10000

// FormatAmount renders a monetary value with thousands grouping and no
// fraction, e.g. 12345.6 -> "$12,346". NaN renders as "$0".
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return "$" + groupDigits(int64(math.Round(v)))
}

// FormatAmountShort abbreviates large amounts to a one-decimal
// ten-thousands unit: 37200 -> "3.7w". Below the threshold it falls back
// to plain grouped digits.
func FormatAmountShort(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	if v >= shortFormThreshold {
		return strconv.FormatFloat(v/shortFormThreshold, 'f', 1, 64) + "w"
	}
	return groupDigits(int64(math.Round(v)))
}

// FormatCount renders a count with thousands grouping. NaN renders as "0".
func FormatCount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return groupDigits(int64(math.Round(v)))
}

// FormatRatio renders a derived ratio with exactly one decimal place.
// NaN renders as "0.0".
func FormatRatio(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// SafeDiv divides num by den, yielding 0 whenever den is not strictly
// positive. Every derived ratio in the engine goes through here so that
// empty buckets never surface NaN or infinity.
func SafeDiv(num, den float64) float64 {
	if den <= 0 || math.IsNaN(den) || math.IsNaN(num) {
		return 0
	}
	return num / den
}

func groupDigits(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		var out []byte
		for i, c := range []byte(s) {
			if i > 0 && (len(s)-i)%3 == 0 {
				out = append(out, ',')
			}
			out = append(out, c)
		}
		s = string(out)
	}
	if neg {
		return "-" + s
	}
	return s
}
