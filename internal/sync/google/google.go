package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"ridelog/internal/core"

	ports "ridelog/internal/sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client syncs records against one sheet of a Google spreadsheet. Each row
// is one record: id, date, trip cost, promo, tips, total income, hours,
// trip count, hourly wage, trips per hour, created-at millis.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	recordsSheet  string
}

// Ensure interface conformance
var (
	_ ports.RecordPuller = (*Client)(nil)
	_ ports.RecordPusher = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Records")
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheet := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheet == "" {
		sheet = "Records"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		recordsSheet:  sheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// Pull reads the records sheet whole. Malformed cells default to zero;
// rows with neither an id nor a date are skipped as blanks.
func (c *Client) Pull(ctx context.Context) ([]core.Record, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A2:K", c.recordsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var out []core.Record
	for _, row := range resp.Values {
		rec, ok := rowToRecord(row)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	core.SortByDateDesc(out)

	slog.InfoContext(ctx, "Pulled records from Google Sheets", "count", len(out))
	return out, nil
}

// Push appends one record past the last occupied row, mirroring how rows
// accumulate when records are entered by hand.
func (c *Client) Push(ctx context.Context, r core.Record) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.recordsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get sheet dimensions for %s: %w", c.recordsSheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:K%d", c.recordsSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		r.ID, r.DateKey(), r.TripCost, r.Promo, r.Tips, r.TotalIncome,
		r.TotalHours, r.TripCount, r.HourlyWage, r.TripsPerHour,
		r.CreatedAt.UnixMilli(),
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append record to sheet %s: %w", c.recordsSheet, err)
	}

	slog.InfoContext(ctx, "Pushed record to Google Sheets", "id", r.ID, "row", nextRow)
	return nil
}

func rowToRecord(row []interface{}) (core.Record, bool) {
	cols := toStrings(row)
	id := safeGet(cols, 0)
	dateStr := safeGet(cols, 1)
	if id == "" && dateStr == "" {
		return core.Record{}, false
	}

	rec := core.Record{
		ID:           id,
		TripCost:     parseCell(safeGet(cols, 2)),
		Promo:        parseCell(safeGet(cols, 3)),
		Tips:         parseCell(safeGet(cols, 4)),
		TotalIncome:  parseCell(safeGet(cols, 5)),
		TotalHours:   parseCell(safeGet(cols, 6)),
		TripCount:    parseCell(safeGet(cols, 7)),
		HourlyWage:   parseCell(safeGet(cols, 8)),
		TripsPerHour: parseCell(safeGet(cols, 9)),
	}
	if day, ok := core.ParseDateKey(dateStr); ok {
		rec.Date = day
	}
	if millis, err := strconv.ParseInt(safeGet(cols, 10), 10, 64); err == nil && millis > 0 {
		rec.CreatedAt = time.UnixMilli(millis)
	}
	return rec, true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseCell applies the defaulting policy to one sheet cell: decimal comma
// normalized, anything unparseable is 0.
func parseCell(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
