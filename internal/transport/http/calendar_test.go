package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/app"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

type fakeDateStatusReader struct {
	resourceIDs []string
	from, to    time.Time
	statuses    app.DateStatuses
	err         error
}

func (f *fakeDateStatusReader) GetDateStatuses(_ context.Context, resourceIDs []string, from, to time.Time) (app.DateStatuses, error) {
	f.resourceIDs = resourceIDs
	f.from, f.to = from, to
	return f.statuses, f.err
}

func TestHandleCalendar(t *testing.T) {
	t.Parallel()

	t.Run("returns claims in window", func(t *testing.T) {
		svc := &fakeDateStatusReader{statuses: app.DateStatuses{
			Bookings: []domain.BookingClaim{{
				BookingID: "bk-1", ResourceID: "room-1", ClaimantID: "member-1",
				Extent: domain.Extent{
					Start: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
					End:   time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
				},
			}},
			Blackouts: []domain.Blackout{{
				ID: "b-1", ResourceID: "room-1",
				Start:  time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
				End:    time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC),
				Reason: "painting",
			}},
		}}

		req := httptest.NewRequest(http.MethodGet, "/calendar?resource_ids=room-1,hall-1&from=2025-06-01&to=2025-06-30", nil)
		rec := httptest.NewRecorder()
		HandleCalendar(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d body %s", rec.Code, rec.Body.String())
		}
		if len(svc.resourceIDs) != 2 {
			t.Fatalf("expected both resource ids passed, got %v", svc.resourceIDs)
		}
		var resp calendarResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Bookings) != 1 || resp.Bookings[0].StartDate != "2025-06-10" {
			t.Fatalf("unexpected bookings: %v", resp.Bookings)
		}
		if len(resp.Blackouts) != 1 || resp.Blackouts[0].Reason != "painting" {
			t.Fatalf("unexpected blackouts: %v", resp.Blackouts)
		}
		if len(resp.Reservations) != 0 {
			t.Fatalf("expected empty reservations list, got %v", resp.Reservations)
		}
	})

	t.Run("missing resource ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/calendar?from=2025-06-01&to=2025-06-30", nil)
		rec := httptest.NewRecorder()
		HandleCalendar(&fakeDateStatusReader{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("malformed dates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/calendar?resource_ids=room-1&from=June&to=2025-06-30", nil)
		rec := httptest.NewRecorder()
		HandleCalendar(&fakeDateStatusReader{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}
