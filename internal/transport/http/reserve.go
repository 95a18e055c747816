package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/app"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// BulkReserver is the minimal interface for bulk staff reservations.
type BulkReserver interface {
	ReserveBulk(ctx context.Context, in app.ReserveBulkInput) (app.ReserveBulkResult, error)
}

// HandleReserveBulk returns an HTTP handler for
// POST /admin/reservations/bulk. The call is all-or-nothing: any
// conflicting resource fails the whole batch and the response names
// every offender.
func HandleReserveBulk(svc BulkReserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req reserveBulkRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in, err := req.toInput()
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}

		result, err := svc.ReserveBulk(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reserveBulkResponse{
			Message: result.Message,
			Count:   result.Count,
		})
	}
}

type reserveBulkRequest struct {
	ResourceIDs []string `json:"resource_ids"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Slot        string   `json:"slot,omitempty"`
	ReservedBy  string   `json:"reserved_by,omitempty"`
	Remarks     string   `json:"remarks,omitempty"`
	Reserve     bool     `json:"reserve"`
}

func (r reserveBulkRequest) toInput() (app.ReserveBulkInput, error) {
	start, err := time.Parse(domain.DateLayout, r.StartDate)
	if err != nil {
		return app.ReserveBulkInput{}, domain.ValidationError{Field: "start_date", Reason: "expected YYYY-MM-DD"}
	}
	end, err := time.Parse(domain.DateLayout, r.EndDate)
	if err != nil {
		return app.ReserveBulkInput{}, domain.ValidationError{Field: "end_date", Reason: "expected YYYY-MM-DD"}
	}
	slot, ok := domain.ParseSlot(r.Slot)
	if !ok {
		return app.ReserveBulkInput{}, domain.ValidationError{Field: "slot", Reason: "slot must be MORNING, EVENING or NIGHT"}
	}
	return app.ReserveBulkInput{
		ResourceIDs: r.ResourceIDs,
		Extent:      domain.NewExtent(start, end, slot),
		ReservedBy:  r.ReservedBy,
		Remarks:     r.Remarks,
		Reserve:     r.Reserve,
	}, nil
}

type reserveBulkResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
