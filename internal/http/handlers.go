package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ridelog/internal/core"
	"ridelog/internal/records"
	"ridelog/internal/services"
)

const maxRequestBody = 1 << 20 // 1MB

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, services.ErrPushPending):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoRemote):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, v := range []error{
		core.ErrMissingDate, core.ErrInvalidDate,
		core.ErrMissingHours, core.ErrNegativeHours, core.ErrInvalidMinutes,
		core.ErrMissingTripCount, core.ErrNegativeTrips,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// flexString accepts a JSON string, number or null for fields the
// submission contract treats as free-form text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*f = ""
			return nil
		}
		*f = flexString(v)
		return nil
	}
	*f = flexString(s)
	return nil
}

type createRecordRequest struct {
	Date      flexString `json:"date"`
	TripCost  flexString `json:"tripCost"`
	Promo     flexString `json:"promo"`
	Tips      flexString `json:"tips"`
	Hours     flexString `json:"hours"`
	Minutes   flexString `json:"minutes"`
	TripCount flexString `json:"tripCount"`
}

func (r createRecordRequest) draft() core.Draft {
	return core.Draft{
		Date:      string(r.Date),
		TripCost:  string(r.TripCost),
		Promo:     string(r.Promo),
		Tips:      string(r.Tips),
		Hours:     string(r.Hours),
		Minutes:   string(r.Minutes),
		TripCount: string(r.TripCount),
	}
}

type todayResponse struct {
	Income    float64 `json:"income"`
	Hours     float64 `json:"hours"`
	Trips     float64 `json:"trips"`
	HasRecord bool    `json:"hasRecord"`
}

type annualResponse struct {
	Year         int     `json:"year"`
	TotalIncome  float64 `json:"totalIncome"`
	TotalHours   float64 `json:"totalHours"`
	TotalTrips   float64 `json:"totalTrips"`
	TripCost     float64 `json:"tripCost"`
	Promo        float64 `json:"promo"`
	AvgHourly    float64 `json:"avgHourly"`
	AvgNetTrip   float64 `json:"avgNetTrip"`
	AvgGrossTrip float64 `json:"avgGrossTrip"`
}

type overviewResponse struct {
	Today         todayResponse  `json:"today"`
	Annual        annualResponse `json:"annual"`
	RecordCount   int            `json:"recordCount"`
	PendingPushes int            `json:"pendingPushes"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := s.svc.Snapshot()
	resp := overviewResponse{
		Today: todayResponse{
			Income:    snap.Today.Income,
			Hours:     snap.Today.Hours,
			Trips:     snap.Today.Trips,
			HasRecord: snap.Today.HasRecord,
		},
		Annual: annualResponse{
			Year:         snap.Annual.Year,
			TotalIncome:  snap.Annual.TotalIncome,
			TotalHours:   snap.Annual.TotalHours,
			TotalTrips:   snap.Annual.TotalTrips,
			TripCost:     snap.Annual.TripCost,
			Promo:        snap.Annual.Promo,
			AvgHourly:    snap.Annual.AvgHourly(),
			AvgNetTrip:   snap.Annual.AvgNetTrip(),
			AvgGrossTrip: snap.Annual.AvgGrossTrip(),
		},
		RecordCount:   len(s.svc.Records()),
		PendingPushes: s.svc.PendingPushes(),
	}
	writeJSON(w, http.StatusOK, resp)
}

type daySlotResponse struct {
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	IsToday bool    `json:"isToday"`
}

type weekResponse struct {
	WeekNumber     int               `json:"weekNumber"`
	Start          string            `json:"start"`
	End            string            `json:"end"`
	Days           []daySlotResponse `json:"days"`
	RecordedDays   int               `json:"recordedDays"`
	TotalIncome    float64           `json:"totalIncome"`
	TotalHours     float64           `json:"totalHours"`
	TotalTrips     float64           `json:"totalTrips"`
	TripCost       float64           `json:"tripCost"`
	Promo          float64           `json:"promo"`
	Tips           float64           `json:"tips"`
	MaxDailyIncome float64           `json:"maxDailyIncome"`
	HourlyWage     float64           `json:"hourlyWage"`
	AvgNetTrip     float64           `json:"avgNetTrip"`
	AvgGrossTrip   float64           `json:"avgGrossTrip"`
}

func toWeekResponse(stats core.WeekStats) weekResponse {
	resp := weekResponse{
		WeekNumber:     stats.WeekNumber,
		Start:          stats.StartKey,
		End:            stats.EndKey,
		Days:           make([]daySlotResponse, 0, len(stats.Days)),
		RecordedDays:   stats.RecordedDays,
		TotalIncome:    stats.TotalIncome,
		TotalHours:     stats.TotalHours,
		TotalTrips:     stats.TotalTrips,
		TripCost:       stats.TripCost,
		Promo:          stats.Promo,
		Tips:           stats.Tips,
		MaxDailyIncome: stats.MaxDailyIncome,
		HourlyWage:     stats.HourlyWage,
		AvgNetTrip:     stats.AvgNetTrip,
		AvgGrossTrip:   stats.AvgGrossTrip,
	}
	for _, d := range stats.Days {
		resp.Days = append(resp.Days, daySlotResponse{Date: d.DateKey, Income: d.Income, IsToday: d.IsToday})
	}
	return resp
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// An unparseable anchor falls back to the current week rather than
	// rejecting the request.
	anchor := s.svc.Now()
	if raw := r.URL.Query().Get("anchor"); raw != "" {
		if t, ok := core.ParseDateKey(raw); ok {
			anchor = t
		}
	}

	cacheKey := core.DateKey(core.WeekStart(anchor))
	if cached, found := s.weekCache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, toWeekResponse(cached))
		return
	}

	stats := s.svc.Week(anchor)
	s.weekCache.Set(cacheKey, stats)
	writeJSON(w, http.StatusOK, toWeekResponse(stats))
}

type calendarCellResponse struct {
	Day    int          `json:"day"`
	Record *core.Record `json:"record,omitempty"`
}

type monthResponse struct {
	Key          string                 `json:"key"`
	Year         int                    `json:"year"`
	Month        int                    `json:"month"`
	TotalIncome  float64                `json:"totalIncome"`
	TotalHours   float64                `json:"totalHours"`
	TripCount    float64                `json:"tripCount"`
	TripCost     float64                `json:"tripCost"`
	Promo        float64                `json:"promo"`
	Tips         float64                `json:"tips"`
	HourlyWage   float64                `json:"hourlyWage"`
	TripsPerHour float64                `json:"tripsPerHour"`
	AvgNetTrip   float64                `json:"avgNetTrip"`
	AvgGrossTrip float64                `json:"avgGrossTrip"`
	Calendar     []calendarCellResponse `json:"calendar"`
	Records      []core.Record          `json:"records"`
}

func toMonthResponse(stats core.MonthStats) monthResponse {
	resp := monthResponse{
		Key:          stats.Key,
		Year:         stats.Year,
		Month:        stats.Month,
		TotalIncome:  stats.TotalIncome,
		TotalHours:   stats.TotalHours,
		TripCount:    stats.TripCount,
		TripCost:     stats.TripCost,
		Promo:        stats.Promo,
		Tips:         stats.Tips,
		HourlyWage:   stats.HourlyWageVal,
		TripsPerHour: stats.TripsPerHourVal,
		AvgNetTrip:   stats.AvgNetTripVal,
		AvgGrossTrip: stats.AvgGrossTripVal,
		Calendar:     make([]calendarCellResponse, 0, len(stats.Calendar)),
		Records:      stats.List,
	}
	if resp.Records == nil {
		resp.Records = []core.Record{}
	}
	for _, c := range stats.Calendar {
		resp.Calendar = append(resp.Calendar, calendarCellResponse{Day: c.Day, Record: c.Record})
	}
	return resp
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	key := core.MonthKey(s.svc.Now())
	if raw := r.URL.Query().Get("key"); raw != "" {
		if _, _, ok := core.ParseMonthKey(raw); ok {
			key = raw
		}
	}

	if cached, found := s.monthCache.Get(key); found {
		writeJSON(w, http.StatusOK, toMonthResponse(cached))
		return
	}

	stats := s.svc.Month(key)
	s.monthCache.Set(key, stats)
	writeJSON(w, http.StatusOK, toMonthResponse(stats))
}

type yearPointResponse struct {
	Month        int     `json:"month"`
	Income       float64 `json:"income"`
	Trips        float64 `json:"trips"`
	Hours        float64 `json:"hours"`
	HourlyWage   float64 `json:"hourlyWage"`
	TripsPerHour float64 `json:"tripsPerHour"`
}

type yearResponse struct {
	Year          int                 `json:"year"`
	Series        []yearPointResponse `json:"series"`
	TripCost      float64             `json:"tripCost"`
	Promo         float64             `json:"promo"`
	Tips          float64             `json:"tips"`
	TotalHours    float64             `json:"totalHours"`
	FullDays      int                 `json:"fullDays"`
	HalfDays      int                 `json:"halfDays"`
	OffDays       int                 `json:"offDays"`
	RemainingDays int                 `json:"remainingDays"`
}

func toYearResponse(stats core.YearStats) yearResponse {
	resp := yearResponse{
		Year:          stats.Year,
		Series:        make([]yearPointResponse, 0, len(stats.Series)),
		TripCost:      stats.TripCost,
		Promo:         stats.Promo,
		Tips:          stats.Tips,
		TotalHours:    stats.TotalHours,
		FullDays:      stats.FullDays,
		HalfDays:      stats.HalfDays,
		OffDays:       stats.OffDays,
		RemainingDays: stats.RemainingDays,
	}
	for _, p := range stats.Series {
		resp.Series = append(resp.Series, yearPointResponse{
			Month:        p.Month,
			Income:       p.Income,
			Trips:        p.Trips,
			Hours:        p.Hours,
			HourlyWage:   p.HourlyWage,
			TripsPerHour: p.TripsPerHour,
		})
	}
	return resp
}

func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year := s.svc.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			year = v
		}
	}

	cacheKey := strconv.Itoa(year)
	if cached, found := s.yearCache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, toYearResponse(cached))
		return
	}

	stats := s.svc.Year(year)
	s.yearCache.Set(cacheKey, stats)
	writeJSON(w, http.StatusOK, toYearResponse(stats))
}

type recentResponse struct {
	Start   string        `json:"start"`
	End     string        `json:"end"`
	Records []core.Record `json:"records"`
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats := s.svc.Recent()
	resp := recentResponse{Start: stats.StartKey, End: stats.EndKey, Records: stats.Records}
	if resp.Records == nil {
		resp.Records = []core.Record{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		all := s.svc.Records()
		if all == nil {
			all = []core.Record{}
		}
		writeJSON(w, http.StatusOK, all)
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	record, err := s.svc.Create(r.Context(), req.draft())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateViews()
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/records/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, ok := s.svc.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeJSON(w, http.StatusOK, record)
	case http.MethodDelete:
		if err := s.svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		s.invalidateViews()
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type pullResponse struct {
	Pulled int `json:"pulled"`
}

func (s *Server) handleSyncPull(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	n, err := s.svc.PullRemote(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateViews()
	writeJSON(w, http.StatusOK, pullResponse{Pulled: n})
}
