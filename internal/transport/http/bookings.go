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

// BookingWorkflow is the minimal interface the booking endpoints need.
type BookingWorkflow interface {
	CreateBooking(ctx context.Context, in app.CreateBookingInput) (app.CreateBookingResult, error)
	Confirm(ctx context.Context, kind domain.ResourceKind, bookingID string) (app.ConfirmResult, error)
	Cancel(ctx context.Context, bookingID string) (domain.Booking, error)
}

// HandleCreateBooking returns an HTTP handler for POST /bookings.
func HandleCreateBooking(svc BookingWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createBookingRequest
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

		result, err := svc.CreateBooking(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(newBookingResponse(result.Booking, &result.Voucher))
	}
}

// HandleBookingAction routes POST /bookings/{id}/confirm and
// /bookings/{id}/cancel. Confirm is the payment-gateway callback and
// stays a no-op for duplicates, lapsed holds and cancelled bookings.
func HandleBookingAction(svc BookingWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		bookingID, action, ok := parseBookingActionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "confirm":
			var req confirmBookingRequest
			if r.Body != nil && r.ContentLength != 0 {
				dec := json.NewDecoder(r.Body)
				dec.DisallowUnknownFields()
				if err := dec.Decode(&req); err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
					return
				}
			}
			var kind domain.ResourceKind
			if req.BookingType != "" {
				parsed, ok := domain.ParseResourceKind(req.BookingType)
				if !ok {
					writeError(w, http.StatusBadRequest, codeValidation, "invalid booking_type")
					return
				}
				kind = parsed
			}

			result, err := svc.Confirm(r.Context(), kind, bookingID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := newBookingResponse(result.Booking, nil)
			resp.Promoted = result.Promoted
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)

		case "cancel":
			booking, err := svc.Cancel(r.Context(), bookingID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(newBookingResponse(booking, nil))

		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

type createBookingRequest struct {
	ResourceID string `json:"resource_id,omitempty"`
	TypeCode   string `json:"type_code,omitempty"`
	ClaimantID string `json:"claimant_id"`
	Pricing    string `json:"pricing"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Slot       string `json:"slot,omitempty"`
	Guests     int    `json:"guests,omitempty"`
	Units      int    `json:"units,omitempty"`
}

func (r createBookingRequest) toInput() (app.CreateBookingInput, error) {
	start, err := time.Parse(domain.DateLayout, r.StartDate)
	if err != nil {
		return app.CreateBookingInput{}, domain.ValidationError{Field: "start_date", Reason: "expected YYYY-MM-DD"}
	}
	end, err := time.Parse(domain.DateLayout, r.EndDate)
	if err != nil {
		return app.CreateBookingInput{}, domain.ValidationError{Field: "end_date", Reason: "expected YYYY-MM-DD"}
	}
	slot, ok := domain.ParseSlot(r.Slot)
	if !ok {
		return app.CreateBookingInput{}, domain.ValidationError{Field: "slot", Reason: "slot must be MORNING, EVENING or NIGHT"}
	}
	pricing, ok := domain.ParsePricingType(r.Pricing)
	if !ok {
		return app.CreateBookingInput{}, domain.ValidationError{Field: "pricing", Reason: "pricing must be MEMBER or GUEST"}
	}
	return app.CreateBookingInput{
		ResourceID: r.ResourceID,
		TypeCode:   r.TypeCode,
		ClaimantID: r.ClaimantID,
		Pricing:    pricing,
		Extent:     domain.NewExtent(start, end, slot),
		Guests:     r.Guests,
		Units:      r.Units,
	}, nil
}

type confirmBookingRequest struct {
	BookingType string `json:"booking_type,omitempty"`
}

type bookingResponse struct {
	ID           string           `json:"id"`
	ResourceKind string           `json:"resource_kind"`
	ClaimantID   string           `json:"claimant_id"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	Slot         string           `json:"slot,omitempty"`
	Guests       int              `json:"guests,omitempty"`
	Units        int              `json:"units"`
	UnitIDs      []string         `json:"unit_ids,omitempty"`
	Price        string           `json:"price"`
	PaymentState string           `json:"payment_state"`
	Confirmed    bool             `json:"confirmed"`
	Cancelled    bool             `json:"cancelled"`
	Promoted     bool             `json:"promoted,omitempty"`
	Voucher      *voucherResponse `json:"voucher,omitempty"`
}

type voucherResponse struct {
	ID        string    `json:"id"`
	Amount    string    `json:"amount"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

func newBookingResponse(b domain.Booking, v *domain.Voucher) bookingResponse {
	resp := bookingResponse{
		ID:           b.ID,
		ResourceKind: string(b.ResourceKind),
		ClaimantID:   b.ClaimantID,
		StartDate:    b.Extent.Start.Format(domain.DateLayout),
		EndDate:      b.Extent.End.Format(domain.DateLayout),
		Slot:         string(b.Extent.Slot),
		Guests:       b.Guests,
		Units:        b.Units,
		UnitIDs:      b.UnitIDs,
		Price:        b.Price.String(),
		PaymentState: string(b.PaymentState),
		Confirmed:    b.Confirmed,
		Cancelled:    b.Cancelled,
	}
	if v != nil {
		resp.Voucher = &voucherResponse{
			ID:        v.ID,
			Amount:    v.Amount.String(),
			State:     string(v.State),
			CreatedAt: v.CreatedAt,
		}
	}
	return resp
}

func parseBookingActionPath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "bookings" || parts[1] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
