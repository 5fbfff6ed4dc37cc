// Package webapp talks to a spreadsheet web-app endpoint: a single URL that
// serves the full record sheet as JSON on GET and accepts one appended
// record as JSON on POST.
package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ridelog/internal/core"

	ports "ridelog/internal/sync"
)

// Ensure interface conformance
var (
	_ ports.RecordPuller = (*Client)(nil)
	_ ports.RecordPusher = (*Client)(nil)
)

type Client struct {
	endpoint string
	http     *http.Client
}

// New builds a client for the given endpoint URL.
func New(endpoint string) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("missing web app endpoint URL")
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// flexNumber accepts a JSON number, a numeric string, null, or garbage; the
// sheet serves whatever the cells hold and every non-number defaults to 0.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*f = 0
			return nil
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexNumber(v)
	return nil
}

// wireRecord mirrors one sheet row. Field names match what the web app
// serves and what Push sends, so a pushed record round-trips unchanged.
type wireRecord struct {
	ID           string     `json:"id"`
	Date         string     `json:"date"`
	TripCost     flexNumber `json:"tripCost"`
	Promo        flexNumber `json:"promo"`
	Tips         flexNumber `json:"tips"`
	TotalIncome  flexNumber `json:"totalIncome"`
	TotalHours   flexNumber `json:"totalHoursDec"`
	TripCount    flexNumber `json:"tripCount"`
	HourlyWage   flexNumber `json:"hourlyWage"`
	TripsPerHour flexNumber `json:"tripsPerHour"`
	CreatedAt    flexNumber `json:"createdAt"`
}

func (w wireRecord) toRecord() core.Record {
	r := core.Record{
		ID:           w.ID,
		TripCost:     float64(w.TripCost),
		Promo:        float64(w.Promo),
		Tips:         float64(w.Tips),
		TotalIncome:  float64(w.TotalIncome),
		TotalHours:   float64(w.TotalHours),
		TripCount:    float64(w.TripCount),
		HourlyWage:   float64(w.HourlyWage),
		TripsPerHour: float64(w.TripsPerHour),
	}
	if day, ok := core.ParseDateKey(strings.TrimSpace(w.Date)); ok {
		r.Date = day
	}
	if w.CreatedAt > 0 {
		r.CreatedAt = time.UnixMilli(int64(w.CreatedAt))
	}
	return r
}

// Pull fetches the full sheet, coerces every row and returns the records
// newest first. Rows without a parseable date are kept; the aggregation
// layer skips them.
func (c *Client) Pull(ctx context.Context) ([]core.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build pull request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pull from web app: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("web app pull status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rows []wireRecord
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode web app response: %w", err)
	}

	records := make([]core.Record, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	core.SortByDateDesc(records)
	return records, nil
}

// Push appends one record. The web app replies with an opaque body the
// client ignores; only the transport result matters.
func (c *Client) Push(ctx context.Context, r core.Record) error {
	var created flexNumber
	if !r.CreatedAt.IsZero() {
		created = flexNumber(r.CreatedAt.UnixMilli())
	}
	payload, err := json.Marshal(wireRecord{
		ID:           r.ID,
		Date:         r.DateKey(),
		TripCost:     flexNumber(r.TripCost),
		Promo:        flexNumber(r.Promo),
		Tips:         flexNumber(r.Tips),
		TotalIncome:  flexNumber(r.TotalIncome),
		TotalHours:   flexNumber(r.TotalHours),
		TripCount:    flexNumber(r.TripCount),
		HourlyWage:   flexNumber(r.HourlyWage),
		TripsPerHour: flexNumber(r.TripsPerHour),
		CreatedAt:    created,
	})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("push to web app: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("web app push status %d", resp.StatusCode)
	}
	return nil
}
