package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/app"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// DateStatusReader is the minimal interface for the calendar endpoint.
type DateStatusReader interface {
	GetDateStatuses(ctx context.Context, resourceIDs []string, from, to time.Time) (app.DateStatuses, error)
}

// HandleCalendar returns an HTTP handler for
// GET /calendar?resource_ids=a,b&from=YYYY-MM-DD&to=YYYY-MM-DD.
func HandleCalendar(svc DateStatusReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		q := r.URL.Query()
		resourceIDs := splitCSV(q.Get("resource_ids"))
		if len(resourceIDs) == 0 {
			writeError(w, http.StatusBadRequest, codeValidation, "resource_ids is required")
			return
		}
		from, err := time.Parse(domain.DateLayout, q.Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "from: expected YYYY-MM-DD")
			return
		}
		to, err := time.Parse(domain.DateLayout, q.Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "to: expected YYYY-MM-DD")
			return
		}

		statuses, err := svc.GetDateStatuses(r.Context(), resourceIDs, from, to)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(newCalendarResponse(statuses))
	}
}

type calendarResponse struct {
	Bookings     []calendarEntry `json:"bookings"`
	Reservations []calendarEntry `json:"reservations"`
	Blackouts    []calendarEntry `json:"blackouts"`
}

type calendarEntry struct {
	ResourceID string `json:"resource_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Slot       string `json:"slot,omitempty"`
	ClaimantID string `json:"claimant_id,omitempty"`
	ReservedBy string `json:"reserved_by,omitempty"`
	Remarks    string `json:"remarks,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func newCalendarResponse(s app.DateStatuses) calendarResponse {
	resp := calendarResponse{
		Bookings:     make([]calendarEntry, 0, len(s.Bookings)),
		Reservations: make([]calendarEntry, 0, len(s.Reservations)),
		Blackouts:    make([]calendarEntry, 0, len(s.Blackouts)),
	}
	for _, b := range s.Bookings {
		resp.Bookings = append(resp.Bookings, calendarEntry{
			ResourceID: b.ResourceID,
			StartDate:  b.Extent.Start.Format(domain.DateLayout),
			EndDate:    b.Extent.End.Format(domain.DateLayout),
			Slot:       string(b.Extent.Slot),
			ClaimantID: b.ClaimantID,
		})
	}
	for _, ar := range s.Reservations {
		resp.Reservations = append(resp.Reservations, calendarEntry{
			ResourceID: ar.ResourceID,
			StartDate:  ar.Extent.Start.Format(domain.DateLayout),
			EndDate:    ar.Extent.End.Format(domain.DateLayout),
			Slot:       string(ar.Extent.Slot),
			ReservedBy: ar.ReservedBy,
			Remarks:    ar.Remarks,
		})
	}
	for _, b := range s.Blackouts {
		resp.Blackouts = append(resp.Blackouts, calendarEntry{
			ResourceID: b.ResourceID,
			StartDate:  b.Start.Format(domain.DateLayout),
			EndDate:    b.End.Format(domain.DateLayout),
			Reason:     b.Reason,
		})
	}
	return resp
}

func splitCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
